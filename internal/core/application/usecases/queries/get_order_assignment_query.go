package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderAssignmentQueryIsNotConstructed = errors.New(
	"GetOrderAssignmentQuery must be created via NewGetOrderAssignmentQuery constructor",
)

// GetOrderAssignmentQuery reads the latest assignment of an order, which is what
// the customer tracking page shows.
type GetOrderAssignmentQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderAssignmentQuery(orderID kernel.UUID) (GetOrderAssignmentQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderAssignmentQuery{}, err
	}
	return GetOrderAssignmentQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderAssignmentQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderAssignmentQueryIsNotConstructed)
}

func (q GetOrderAssignmentQuery) OrderID() kernel.UUID {
	return q.orderID
}
