package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository persists the local order projection.
type OrderRepository interface {
	// Get returns the order or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Save inserts the order or overwrites its snapshot fields and status.
	Save(ctx context.Context, o *order.Order) error

	// UpdateStatus sets the delivery status of an existing order.
	UpdateStatus(ctx context.Context, id kernel.UUID, status order.Status) error
}
