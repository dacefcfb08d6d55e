package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// DispatchOutcome tells the caller what a dispatch call did.
type DispatchOutcome string

const (
	// DispatchOffered means a rider was claimed and the assignment is waiting for acceptance.
	DispatchOffered DispatchOutcome = "offered"
	// DispatchQueued means no rider was eligible and the assignment waits in the queue.
	DispatchQueued DispatchOutcome = "queued"
	// DispatchExisting means the order already had an active assignment, which is returned unchanged.
	DispatchExisting DispatchOutcome = "existing"
)

// DispatchResult is the assignment after a dispatch call and how it got there.
type DispatchResult struct {
	Assignment *assignment.Assignment
	Outcome    DispatchOutcome
}

// DispatchOrderCommandHandler assigns the nearest available rider to a paid order.
//
// Business rules:
//   - An order has at most one non-terminal assignment; a repeated call returns it
//   - A queued assignment is re-offered in place rather than duplicated
//   - Claiming the rider and writing the assignment commit in one unit of work
//   - The order status is not changed here, only by rider transitions
type DispatchOrderCommandHandler struct {
	uowFactory UoWFactory
	matcher    RiderMatcher
	feed       ChangeFeed
	clock      ports.Clock
	metrics    ports.Metrics
}

func NewDispatchOrderCommandHandler(
	uowFactory UoWFactory,
	matcher RiderMatcher,
	feed ChangeFeed,
	clock ports.Clock,
	metrics ports.Metrics,
) DispatchOrderCommandHandler {
	return DispatchOrderCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		feed:       feed,
		clock:      clock,
		metrics:    metrics,
	}
}

func (h DispatchOrderCommandHandler) Handle(ctx context.Context, command DispatchOrderCommand) (DispatchResult, error) {
	if err := command.Validate(); err != nil {
		return DispatchResult{}, err
	}

	result, err := h.dispatch(ctx, command.OrderID())
	// The claimed rider turned out to hold another assignment; the next attempt no longer ranks them.
	for attempt := 1; errors.Is(err, ports.ErrRiderAlreadyAssigned) && attempt < DefaultClaimRounds; attempt++ {
		h.metrics.ClaimConflict()
		result, err = h.dispatch(ctx, command.OrderID())
	}
	// A concurrent dispatch of the same order won the insert or the queued row.
	if errors.Is(err, ports.ErrActiveAssignmentExists) || errors.Is(err, errs.ErrVersionIsInvalid) {
		result, err = h.loadActive(ctx, command.OrderID())
	}
	if err != nil {
		return DispatchResult{}, err
	}

	h.metrics.DispatchCompleted(string(result.Outcome))
	return result, nil
}

func (h DispatchOrderCommandHandler) dispatch(ctx context.Context, orderID kernel.UUID) (DispatchResult, error) {
	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return DispatchResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignments := uow.AssignmentRepository()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return DispatchResult{}, err
	}

	active, err := assignments.GetActiveByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return DispatchResult{}, err
	}
	if active != nil && active.Status() != assignment.Queued {
		return DispatchResult{Assignment: active, Outcome: DispatchExisting}, nil
	}

	a := active
	if a == nil {
		if err = o.ValidateDispatchable(); err != nil {
			return DispatchResult{}, err
		}
		pickup, dropoff, err := o.Route()
		if err != nil {
			return DispatchResult{}, err
		}
		if a, err = assignment.NewAssignment(kernel.NewUUID(), orderID, pickup, dropoff, now); err != nil {
			return DispatchResult{}, err
		}
	}

	match, err := h.matcher.ClaimNearest(ctx, uow.RiderRepository(), a, now)
	if err != nil {
		return DispatchResult{}, err
	}

	outcome := DispatchQueued
	if match != nil {
		if err = a.Offer(match.Candidate.Rider.ID(), match.Estimate, now); err != nil {
			return DispatchResult{}, err
		}
		outcome = DispatchOffered
	}

	events := a.PullEvents()
	if len(events) == 0 {
		// Still queued and nothing changed; leave the row alone.
		return DispatchResult{Assignment: a, Outcome: outcome}, nil
	}

	if a.IsNew() {
		err = assignments.Add(ctx, a)
	} else {
		err = assignments.Update(ctx, a)
	}
	if err != nil {
		return DispatchResult{}, err
	}
	if err = assignments.AppendEvents(ctx, events); err != nil {
		return DispatchResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return DispatchResult{}, err
	}

	h.feed.AssignmentChanged(ctx, a, events)
	return DispatchResult{Assignment: a, Outcome: outcome}, nil
}

func (h DispatchOrderCommandHandler) loadActive(ctx context.Context, orderID kernel.UUID) (DispatchResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return DispatchResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, err := uow.AssignmentRepository().GetActiveByOrder(ctx, orderID)
	if err != nil {
		return DispatchResult{}, err
	}
	return DispatchResult{Assignment: a, Outcome: DispatchExisting}, nil
}
