package queries

import (
	"context"

	"dispatch/internal/core/ports"
)

// read runs fn inside a unit of work that is always rolled back.
func read(ctx context.Context, factory ports.UnitOfWorkFactory, fn func(uow ports.UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return fn(uow)
}
