package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrListAssignmentEventsQueryIsNotConstructed = errors.New(
	"ListAssignmentEventsQuery must be created via NewListAssignmentEventsQuery constructor",
)

// ListAssignmentEventsQuery reads the audit trail of an assignment.
type ListAssignmentEventsQuery struct {
	assignmentID kernel.UUID
	guard        guard.ConstructorGuard
}

func NewListAssignmentEventsQuery(assignmentID kernel.UUID) (ListAssignmentEventsQuery, error) {
	if err := assignmentID.Validate(); err != nil {
		return ListAssignmentEventsQuery{}, err
	}
	return ListAssignmentEventsQuery{
		assignmentID: assignmentID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q ListAssignmentEventsQuery) Validate() error {
	return q.guard.Validate(ErrListAssignmentEventsQueryIsNotConstructed)
}

func (q ListAssignmentEventsQuery) AssignmentID() kernel.UUID {
	return q.assignmentID
}
