// Package commands contains the dispatch operations that modify state.
// Every command follows the same pattern: constructor-validated input, a handler that
// opens a unit of work, applies domain rules, commits, and only then publishes side effects.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// RiderRepoFactory provides access to the rider repository within a transaction.
	RiderRepoFactory interface {
		RiderRepository() ports.RiderRepository
	}

	// AssignmentRepoFactory provides access to the assignment repository within a transaction.
	AssignmentRepoFactory interface {
		AssignmentRepository() ports.AssignmentRepository
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// RiderUoW covers operations touching riders and reading their assignments,
	// such as registration and presence updates.
	RiderUoW interface {
		TxManager
		RiderRepoFactory
		AssignmentRepoFactory
	}

	// RiderUoWFactory creates rider unit of work instances.
	RiderUoWFactory interface {
		Create() RiderUoW
	}

	// OrderUoW manages transactions for order projection updates.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW spans riders, assignments and orders. Dispatch, lifecycle transitions and
	// the sweeper use it so that claiming a rider and writing the assignment commit together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   riders := uow.RiderRepository()
	//   assignments := uow.AssignmentRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		RiderRepoFactory
		AssignmentRepoFactory
		OrderRepoFactory
	}

	// UoWFactory creates unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
