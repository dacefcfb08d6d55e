package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// RecordPaidOrderCommandHandler is the entry point for order-paid events: it stores
// the order snapshot in the local projection and dispatches the order.
type RecordPaidOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher DispatchOrderCommandHandler
}

func NewRecordPaidOrderCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher DispatchOrderCommandHandler,
) RecordPaidOrderCommandHandler {
	return RecordPaidOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

func (h RecordPaidOrderCommandHandler) Handle(
	ctx context.Context,
	command RecordPaidOrderCommand,
) (DispatchResult, error) {
	if err := command.Validate(); err != nil {
		return DispatchResult{}, err
	}

	if command.HasSnapshot() {
		if err := h.upsert(ctx, command); err != nil {
			return DispatchResult{}, err
		}
	}

	dispatch, err := NewDispatchOrderCommand(command.OrderID())
	if err != nil {
		return DispatchResult{}, err
	}
	return h.dispatcher.Handle(ctx, dispatch)
}

func (h RecordPaidOrderCommandHandler) upsert(ctx context.Context, command RecordPaidOrderCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()

	o, err := orders.Get(ctx, command.OrderID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		var total int64
		if command.Total() != nil {
			total = *command.Total()
		}
		o, err = order.NewOrder(command.OrderID(), command.Pickup(), command.Dropoff(), total, command.Currency())
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		total, currency := o.Total(), o.Currency()
		if command.Total() != nil {
			total = *command.Total()
		}
		if command.Currency() != "" {
			currency = command.Currency()
		}
		if err = o.Refresh(command.Pickup(), command.Dropoff(), total, currency); err != nil {
			return err
		}
	}

	if err = orders.Save(ctx, o); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
