package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// DefaultRedispatchBatchSize caps how many queued assignments one run retries.
const DefaultRedispatchBatchSize = 50

var ErrRedispatchQueuedCommandIsNotConstructed = errors.New(
	"RedispatchQueuedCommand must be created via NewRedispatchQueuedCommand constructor",
)

type RedispatchQueuedCommand struct { //nolint:recvcheck //using for validation
	limit int

	guard guard.ConstructorGuard
}

// NewRedispatchQueuedCommand retries at most limit queued assignments, oldest first.
// A zero limit selects DefaultRedispatchBatchSize.
func NewRedispatchQueuedCommand(limit int) (RedispatchQueuedCommand, error) {
	if limit < 0 {
		return RedispatchQueuedCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, 1000)
	}
	if limit == 0 {
		limit = DefaultRedispatchBatchSize
	}
	return RedispatchQueuedCommand{
		limit: limit,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c RedispatchQueuedCommand) Validate() error {
	return c.guard.Validate(ErrRedispatchQueuedCommandIsNotConstructed)
}

func (c RedispatchQueuedCommand) Limit() int {
	return c.limit
}
