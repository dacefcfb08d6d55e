// Package queries contains read operations for tracking views and the rider app.
// Queries return assignment snapshots and ranked candidates; they never change state.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetAssignmentQueryIsNotConstructed = errors.New(
	"GetAssignmentQuery must be created via NewGetAssignmentQuery constructor",
)

// GetAssignmentQuery reads one assignment by id.
//
// Example:
//
//	query, err := NewGetAssignmentQuery(id)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := handler.Handle(ctx, query)
type GetAssignmentQuery struct {
	assignmentID kernel.UUID
	guard        guard.ConstructorGuard
}

func NewGetAssignmentQuery(assignmentID kernel.UUID) (GetAssignmentQuery, error) {
	if err := assignmentID.Validate(); err != nil {
		return GetAssignmentQuery{}, err
	}
	return GetAssignmentQuery{
		assignmentID: assignmentID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetAssignmentQuery) Validate() error {
	return q.guard.Validate(ErrGetAssignmentQueryIsNotConstructed)
}

func (q GetAssignmentQuery) AssignmentID() kernel.UUID {
	return q.assignmentID
}
