package queries

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// PollRiderAssignmentQueryResponse is the assignment shown to a polling rider.
type PollRiderAssignmentQueryResponse struct {
	Assignment assignment.Snapshot
	// Own is true when the rider holds the assignment, false for a nearby queued one.
	Own bool
	// DistanceKm is the distance from the rider to the pickup point, zero when the rider has no position.
	DistanceKm float64
}

// PollRiderAssignmentQueryHandler returns the rider's own open assignment or, when
// there is none, the queued assignment with the nearest pickup.
// errs.ObjectNotFoundError means nothing is available.
type PollRiderAssignmentQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	window     int
}

func NewPollRiderAssignmentQueryHandler(uowFactory ports.UnitOfWorkFactory) PollRiderAssignmentQueryHandler {
	return PollRiderAssignmentQueryHandler{
		uowFactory: uowFactory,
		window:     DefaultPollWindow,
	}
}

func (h PollRiderAssignmentQueryHandler) Handle(
	ctx context.Context,
	query PollRiderAssignmentQuery,
) (PollRiderAssignmentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return PollRiderAssignmentQueryResponse{}, err
	}

	var response PollRiderAssignmentQueryResponse
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		r, err := uow.RiderRepository().Get(ctx, query.RiderID())
		if err != nil {
			return err
		}

		assignments := uow.AssignmentRepository()

		own, err := assignments.GetActiveByRider(ctx, r.ID())
		switch {
		case err == nil:
			response.Assignment = own.Snapshot()
			response.Own = true
			if loc := r.Location(); loc != nil {
				response.DistanceKm, err = loc.DistanceKm(own.Pickup())
			}
			return err
		case !errors.Is(err, errs.ErrObjectNotFound):
			return err
		}

		queued, err := assignments.FindQueued(ctx, h.window)
		if err != nil {
			return err
		}
		if len(queued) == 0 {
			return errs.NewObjectNotFoundError("assignment for rider", r.ID())
		}

		loc := r.Location()
		if loc == nil {
			// Without a position, the oldest queued assignment is as good as any.
			response.Assignment = queued[0].Snapshot()
			return nil
		}

		best := -1
		for i, a := range queued {
			d, err := loc.DistanceKm(a.Pickup())
			if err != nil {
				return err
			}
			if best < 0 || d < response.DistanceKm {
				best, response.DistanceKm = i, d
			}
		}
		response.Assignment = queued[best].Snapshot()
		return nil
	})
	if err != nil {
		return PollRiderAssignmentQueryResponse{}, err
	}
	return response, nil
}
