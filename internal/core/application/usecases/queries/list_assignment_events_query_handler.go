package queries

import (
	"context"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

type ListAssignmentEventsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListAssignmentEventsQueryHandler(uowFactory ports.UnitOfWorkFactory) ListAssignmentEventsQueryHandler {
	return ListAssignmentEventsQueryHandler{uowFactory: uowFactory}
}

// Handle returns the events in occurrence order. An unknown assignment yields
// errs.ObjectNotFoundError rather than an empty trail.
func (h ListAssignmentEventsQueryHandler) Handle(
	ctx context.Context,
	query ListAssignmentEventsQuery,
) ([]assignment.Event, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var events []assignment.Event
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		assignments := uow.AssignmentRepository()
		if _, err := assignments.Get(ctx, query.AssignmentID()); err != nil {
			return err
		}

		var err error
		events, err = assignments.ListEvents(ctx, query.AssignmentID())
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
