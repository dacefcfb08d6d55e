package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	DefaultOfferGracePeriod = 2 * time.Minute
	DefaultSweepItemTimeout = 5 * time.Second
)

// SweepOutcome is what happened to one expired offer.
type SweepOutcome string

const (
	SweepReassigned SweepOutcome = "reassigned"
	SweepRequeued   SweepOutcome = "requeued"
	// SweepSkipped means the offer was answered or changed between listing and processing.
	SweepSkipped SweepOutcome = "skipped"
	SweepFailed  SweepOutcome = "failed"
)

type SweepItemResult struct {
	AssignmentID    kernel.UUID
	Outcome         SweepOutcome
	PreviousRiderID *kernel.UUID
	RiderID         *kernel.UUID
	Err             error
}

type SweepSummary struct {
	Processed  int
	Reassigned int
	Requeued   int
	Skipped    int
	Failed     int
	Results    []SweepItemResult
}

func (s *SweepSummary) add(r SweepItemResult) {
	s.Processed++
	switch r.Outcome {
	case SweepReassigned:
		s.Reassigned++
	case SweepRequeued:
		s.Requeued++
	case SweepSkipped:
		s.Skipped++
	case SweepFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// SweepTimeoutsCommandHandler recovers offers nobody accepted within the grace period.
//
// Each expired offer is handled in its own unit of work and under its own timeout:
// the held rider is released, the nearest other rider is claimed and the offer is
// reassigned, or the assignment goes back to the queue. A failing item does not
// stop the sweep.
type SweepTimeoutsCommandHandler struct {
	uowFactory  UoWFactory
	matcher     RiderMatcher
	feed        ChangeFeed
	clock       ports.Clock
	metrics     ports.Metrics
	logger      *slog.Logger
	grace       time.Duration
	itemTimeout time.Duration
}

func NewSweepTimeoutsCommandHandler(
	uowFactory UoWFactory,
	matcher RiderMatcher,
	feed ChangeFeed,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *slog.Logger,
	grace, itemTimeout time.Duration,
) SweepTimeoutsCommandHandler {
	if grace <= 0 {
		grace = DefaultOfferGracePeriod
	}
	if itemTimeout <= 0 {
		itemTimeout = DefaultSweepItemTimeout
	}
	return SweepTimeoutsCommandHandler{
		uowFactory:  uowFactory,
		matcher:     matcher,
		feed:        feed,
		clock:       clock,
		metrics:     metrics,
		logger:      logger.With("component", "timeout_sweeper"),
		grace:       grace,
		itemTimeout: itemTimeout,
	}
}

func (h SweepTimeoutsCommandHandler) Handle(ctx context.Context, command SweepTimeoutsCommand) (SweepSummary, error) {
	if err := command.Validate(); err != nil {
		return SweepSummary{}, err
	}

	cutoff := h.clock.Now().Add(-h.grace)

	expired, err := h.listExpired(ctx, cutoff, command.Limit())
	if err != nil {
		return SweepSummary{}, err
	}

	var summary SweepSummary
	for _, a := range expired {
		if ctx.Err() != nil {
			break
		}

		result := h.sweepOne(ctx, a.ID(), cutoff)
		if result.Err != nil {
			h.logger.ErrorContext(ctx, "sweep item failed",
				"assignment_id", a.ID().String(), "error", result.Err)
		}
		h.metrics.SweepItem(string(result.Outcome))
		summary.add(result)
	}

	if summary.Processed > 0 {
		h.logger.InfoContext(ctx, "sweep finished",
			"processed", summary.Processed,
			"reassigned", summary.Reassigned,
			"requeued", summary.Requeued,
			"skipped", summary.Skipped,
			"failed", summary.Failed)
	}
	return summary, nil
}

func (h SweepTimeoutsCommandHandler) listExpired(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*assignment.Assignment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.AssignmentRepository().FindOfferedBefore(ctx, cutoff, limit)
}

func (h SweepTimeoutsCommandHandler) sweepOne(ctx context.Context, id kernel.UUID, cutoff time.Time) SweepItemResult {
	ctx, cancel := context.WithTimeout(ctx, h.itemTimeout)
	defer cancel()

	result := SweepItemResult{AssignmentID: id}
	outcome, err := h.reoffer(ctx, id, cutoff, &result)
	for attempt := 1; errors.Is(err, ports.ErrRiderAlreadyAssigned) && attempt < DefaultClaimRounds; attempt++ {
		h.metrics.ClaimConflict()
		outcome, err = h.reoffer(ctx, id, cutoff, &result)
	}
	if errors.Is(err, errs.ErrVersionIsInvalid) {
		// Accepted or cancelled while we were working on it.
		outcome, err = SweepSkipped, nil
	}
	if err != nil {
		result.Outcome = SweepFailed
		result.Err = err
		return result
	}
	result.Outcome = outcome
	return result
}

func (h SweepTimeoutsCommandHandler) reoffer(
	ctx context.Context,
	id kernel.UUID,
	cutoff time.Time,
	result *SweepItemResult,
) (SweepOutcome, error) {
	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignments := uow.AssignmentRepository()
	riders := uow.RiderRepository()

	a, err := assignments.Get(ctx, id)
	if err != nil {
		return "", err
	}
	offeredAt := a.OfferedAt()
	if a.Status() != assignment.Offered || offeredAt == nil || !offeredAt.Before(cutoff) {
		return SweepSkipped, nil
	}

	previous := a.RiderID()
	result.PreviousRiderID = previous
	if err = riders.Release(ctx, *previous); err != nil {
		return "", err
	}

	match, err := h.matcher.ClaimNearest(ctx, riders, a, now, *previous)
	if err != nil {
		return "", err
	}

	outcome := SweepRequeued
	if match != nil {
		if err = a.Reassign(match.Candidate.Rider.ID(), match.Estimate, now); err != nil {
			return "", err
		}
		outcome = SweepReassigned
	} else if err = a.Requeue(now); err != nil {
		return "", err
	}

	if err = assignments.Update(ctx, a); err != nil {
		return "", err
	}
	events := a.PullEvents()
	if err = assignments.AppendEvents(ctx, events); err != nil {
		return "", err
	}
	if err = uow.Commit(ctx); err != nil {
		return "", err
	}

	result.RiderID = a.RiderID()
	h.feed.AssignmentChanged(ctx, a, events)
	return outcome, nil
}
