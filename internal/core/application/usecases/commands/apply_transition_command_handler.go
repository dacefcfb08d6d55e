package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ApplyTransitionResult is the assignment after the action and the state of the
// order projection.
type ApplyTransitionResult struct {
	Assignment *assignment.Assignment
	// OrderStatus is the status the order was moved to, empty when the transition does not affect it.
	OrderStatus order.Status
	// OrderSynced is false when the order status could not be written or published.
	// The assignment change is committed regardless.
	OrderSynced bool
}

// ApplyTransitionCommandHandler drives the assignment lifecycle on behalf of riders and operators.
//
// Side effects happen in this order:
//  1. assignment row (compare-and-swap) and, on a terminal status, the rider release
//  2. rider position, when the action carries one
//  3. order status projection and the outbound order-changed message
//
// A failure in step 3 is a reconciliation gap: it is logged and counted, never returned.
type ApplyTransitionCommandHandler struct {
	uowFactory      UoWFactory
	orderUoWFactory OrderUoWFactory
	publisher       ports.OrderStatusPublisher
	feed            ChangeFeed
	clock           ports.Clock
	metrics         ports.Metrics
	logger          *slog.Logger
}

func NewApplyTransitionCommandHandler(
	uowFactory UoWFactory,
	orderUoWFactory OrderUoWFactory,
	publisher ports.OrderStatusPublisher,
	feed ChangeFeed,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *slog.Logger,
) ApplyTransitionCommandHandler {
	return ApplyTransitionCommandHandler{
		uowFactory:      uowFactory,
		orderUoWFactory: orderUoWFactory,
		publisher:       publisher,
		feed:            feed,
		clock:           clock,
		metrics:         metrics,
		logger:          logger.With("component", "lifecycle"),
	}
}

func (h ApplyTransitionCommandHandler) Handle(
	ctx context.Context,
	command ApplyTransitionCommand,
) (ApplyTransitionResult, error) {
	if err := command.Validate(); err != nil {
		return ApplyTransitionResult{}, err
	}

	now := h.clock.Now()

	a, events, moved, err := h.transition(ctx, command, now)
	if err != nil {
		return ApplyTransitionResult{}, err
	}

	h.metrics.TransitionApplied(string(a.Status()))
	h.feed.AssignmentChanged(ctx, a, events)
	if moved != nil {
		h.feed.RiderMoved(ctx, ports.RiderPositionChange{
			RiderID:    *moved,
			Location:   *command.Position(),
			Available:  a.IsTerminal(),
			OccurredAt: now,
		})
	}

	result := ApplyTransitionResult{Assignment: a, OrderSynced: true}
	status, ok := order.StatusForAssignment(a.Status())
	if !ok {
		return result, nil
	}
	result.OrderStatus = status

	if err = h.syncOrder(ctx, a.OrderID(), status, now); err != nil {
		h.metrics.ReconciliationGap()
		h.logger.WarnContext(ctx, "order status not synchronised",
			"event", "reconciliation_gap",
			"order_id", a.OrderID().String(),
			"assignment_id", a.ID().String(),
			"order_status", string(status),
			"error", err)
		result.OrderSynced = false
	}

	return result, nil
}

// transition writes the assignment, releases a terminal holder and records the
// position report. moved is the rider whose position was stored, if any.
func (h ApplyTransitionCommandHandler) transition(
	ctx context.Context,
	command ApplyTransitionCommand,
	now time.Time,
) (a *assignment.Assignment, events []assignment.Event, moved *kernel.UUID, err error) {
	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, nil, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignments := uow.AssignmentRepository()
	riders := uow.RiderRepository()

	a, err = assignments.Get(ctx, command.AssignmentID())
	if err != nil {
		return nil, nil, nil, err
	}

	acting := command.ActingRider()
	if acting != nil && !a.IsHeldBy(*acting) {
		return nil, nil, nil, assignment.ErrRiderNotAssigned
	}

	holder := a.RiderID()
	if err = a.Transition(command.Target(), command.Completion(), now); err != nil {
		return nil, nil, nil, err
	}
	if err = assignments.Update(ctx, a); err != nil {
		return nil, nil, nil, err
	}

	if a.IsTerminal() && holder != nil {
		if err = riders.Release(ctx, *holder); err != nil {
			return nil, nil, nil, err
		}
	}

	// Without an acting rider the report belongs to whoever held the assignment.
	reporter := acting
	if reporter == nil {
		reporter = holder
	}
	if reporter != nil && command.Position() != nil {
		var applied bool
		if applied, err = riders.UpdatePresence(ctx, *reporter, *command.Position(), now); err != nil {
			return nil, nil, nil, err
		}
		if applied {
			moved = reporter
		}
	}

	events = a.PullEvents()
	if err = assignments.AppendEvents(ctx, events); err != nil {
		return nil, nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, nil, err
	}
	return a, events, moved, nil
}

func (h ApplyTransitionCommandHandler) syncOrder(
	ctx context.Context,
	orderID kernel.UUID,
	status order.Status,
	at time.Time,
) error {
	uow := h.orderUoWFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		return err
	}

	return h.publisher.PublishOrderStatus(ctx, orderID, status, at)
}
