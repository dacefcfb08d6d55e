package queries

import (
	"context"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

type GetOrderAssignmentQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetOrderAssignmentQueryHandler(uowFactory ports.UnitOfWorkFactory) GetOrderAssignmentQueryHandler {
	return GetOrderAssignmentQueryHandler{uowFactory: uowFactory}
}

// Handle returns the most recent assignment of the order, terminal or not.
func (h GetOrderAssignmentQueryHandler) Handle(
	ctx context.Context,
	query GetOrderAssignmentQuery,
) (assignment.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return assignment.Snapshot{}, err
	}

	var snapshot assignment.Snapshot
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		a, err := uow.AssignmentRepository().GetLatestByOrder(ctx, query.OrderID())
		if err != nil {
			return err
		}
		snapshot = a.Snapshot()
		return nil
	})
	return snapshot, err
}
