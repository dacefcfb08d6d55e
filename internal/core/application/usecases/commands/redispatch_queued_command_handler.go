package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/assignment"
)

type RedispatchSummary struct {
	Processed int
	Offered   int
	Failed    int
	// Exhausted is true when a dispatch found no rider and the run stopped early.
	Exhausted bool
}

// RedispatchQueuedCommandHandler retries dispatch for assignments waiting in the queue.
// The queue is walked oldest first; the first assignment that stays queued ends the run
// because every younger one would find the same empty pool.
type RedispatchQueuedCommandHandler struct {
	uowFactory UoWFactory
	dispatcher DispatchOrderCommandHandler
	logger     *slog.Logger
}

func NewRedispatchQueuedCommandHandler(
	uowFactory UoWFactory,
	dispatcher DispatchOrderCommandHandler,
	logger *slog.Logger,
) RedispatchQueuedCommandHandler {
	return RedispatchQueuedCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger.With("component", "queued_redispatch"),
	}
}

func (h RedispatchQueuedCommandHandler) Handle(
	ctx context.Context,
	command RedispatchQueuedCommand,
) (RedispatchSummary, error) {
	if err := command.Validate(); err != nil {
		return RedispatchSummary{}, err
	}

	queued, err := h.listQueued(ctx, command.Limit())
	if err != nil {
		return RedispatchSummary{}, err
	}

	var summary RedispatchSummary
	for _, a := range queued {
		if ctx.Err() != nil {
			break
		}
		summary.Processed++

		dispatch, err := NewDispatchOrderCommand(a.OrderID())
		if err != nil {
			return summary, err
		}
		result, err := h.dispatcher.Handle(ctx, dispatch)
		if err != nil {
			summary.Failed++
			h.logger.ErrorContext(ctx, "redispatch failed",
				"assignment_id", a.ID().String(), "order_id", a.OrderID().String(), "error", err)
			continue
		}

		if result.Outcome == DispatchQueued {
			summary.Exhausted = true
			break
		}
		if result.Outcome == DispatchOffered {
			summary.Offered++
		}
	}

	return summary, nil
}

func (h RedispatchQueuedCommandHandler) listQueued(ctx context.Context, limit int) ([]*assignment.Assignment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.AssignmentRepository().FindQueued(ctx, limit)
}
