package queries

import (
	"context"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

// GetAssignmentQueryHandler returns the current snapshot of an assignment.
type GetAssignmentQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetAssignmentQueryHandler(uowFactory ports.UnitOfWorkFactory) GetAssignmentQueryHandler {
	return GetAssignmentQueryHandler{uowFactory: uowFactory}
}

func (h GetAssignmentQueryHandler) Handle(ctx context.Context, query GetAssignmentQuery) (assignment.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return assignment.Snapshot{}, err
	}

	var snapshot assignment.Snapshot
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		a, err := uow.AssignmentRepository().Get(ctx, query.AssignmentID())
		if err != nil {
			return err
		}
		snapshot = a.Snapshot()
		return nil
	})
	return snapshot, err
}
