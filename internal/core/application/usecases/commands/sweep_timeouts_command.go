package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// DefaultSweepBatchSize caps how many expired offers one sweep looks at.
const DefaultSweepBatchSize = 100

var ErrSweepTimeoutsCommandIsNotConstructed = errors.New(
	"SweepTimeoutsCommand must be created via NewSweepTimeoutsCommand constructor",
)

type SweepTimeoutsCommand struct { //nolint:recvcheck //using for validation
	limit int

	guard guard.ConstructorGuard
}

// NewSweepTimeoutsCommand builds a sweep over at most limit expired offers.
// A zero limit selects DefaultSweepBatchSize.
func NewSweepTimeoutsCommand(limit int) (SweepTimeoutsCommand, error) {
	if limit < 0 {
		return SweepTimeoutsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, 1000)
	}
	if limit == 0 {
		limit = DefaultSweepBatchSize
	}
	return SweepTimeoutsCommand{
		limit: limit,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c SweepTimeoutsCommand) Validate() error {
	return c.guard.Validate(ErrSweepTimeoutsCommandIsNotConstructed)
}

func (c SweepTimeoutsCommand) Limit() int {
	return c.limit
}
