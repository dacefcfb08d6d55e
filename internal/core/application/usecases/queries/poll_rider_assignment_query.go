package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// DefaultPollWindow is how many queued assignments are considered when a free rider polls.
const DefaultPollWindow = 50

var ErrPollRiderAssignmentQueryIsNotConstructed = errors.New(
	"PollRiderAssignmentQuery must be created via NewPollRiderAssignmentQuery constructor",
)

// PollRiderAssignmentQuery is the rider app asking "what should I be doing".
type PollRiderAssignmentQuery struct {
	riderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewPollRiderAssignmentQuery(riderID kernel.UUID) (PollRiderAssignmentQuery, error) {
	if err := riderID.Validate(); err != nil {
		return PollRiderAssignmentQuery{}, err
	}
	return PollRiderAssignmentQuery{
		riderID: riderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q PollRiderAssignmentQuery) Validate() error {
	return q.guard.Validate(ErrPollRiderAssignmentQueryIsNotConstructed)
}

func (q PollRiderAssignmentQuery) RiderID() kernel.UUID {
	return q.riderID
}
