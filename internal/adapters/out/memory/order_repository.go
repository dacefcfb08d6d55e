package memory

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s, err := r.uow.data()
	if err != nil {
		return nil, err
	}
	row, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(row.id, row.pickup, row.dropoff, row.total, row.currency, row.status)
}

func (r *OrderRepository) Save(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.data()
	if err != nil {
		return err
	}

	s.orders[aggregate.ID()] = orderRow{
		id:       aggregate.ID(),
		pickup:   aggregate.Pickup(),
		dropoff:  aggregate.Dropoff(),
		total:    aggregate.Total(),
		currency: aggregate.Currency(),
		status:   aggregate.Status(),
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id kernel.UUID, status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	s, err := r.uow.data()
	if err != nil {
		return err
	}
	row, ok := s.orders[id]
	if !ok {
		return errs.NewObjectNotFoundError("order", id.String())
	}

	row.status = status
	s.orders[id] = row
	return nil
}
