package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrActiveAssignmentExists is returned by Add when the order already has a non-terminal
// assignment. It is how a lost race between two dispatches of the same order surfaces.
var ErrActiveAssignmentExists = errors.New("order already has an active assignment")

// ErrRiderAlreadyAssigned is returned by Add and Update when the rider written to the
// assignment already holds another non-terminal one. Callers treat it as a lost claim.
var ErrRiderAlreadyAssigned = errors.New("rider already holds an active assignment")

// AssignmentRepository persists delivery assignments and their audit events.
type AssignmentRepository interface {
	// Add inserts a new assignment and marks it persisted at version 1.
	// Returns ErrActiveAssignmentExists when the order already has an active assignment
	// and ErrRiderAlreadyAssigned when its rider is busy elsewhere.
	Add(ctx context.Context, a *assignment.Assignment) error

	// Update writes the aggregate with compare-and-swap semantics: the stored row must
	// still have a.PersistedStatus() and a.Version(). Otherwise errs.VersionIsInvalidError
	// is returned and nothing is written. ErrRiderAlreadyAssigned as for Add.
	Update(ctx context.Context, a *assignment.Assignment) error

	// Get returns the assignment or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// GetActiveByOrder returns the non-terminal assignment of an order or errs.ObjectNotFoundError.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error)

	// GetLatestByOrder returns the most recently created assignment of an order, terminal or not.
	GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error)

	// GetActiveByRider returns the non-terminal assignment held by a rider or errs.ObjectNotFoundError.
	GetActiveByRider(ctx context.Context, riderID kernel.UUID) (*assignment.Assignment, error)

	// FindOfferedBefore returns offered assignments whose offer is older than cutoff, oldest first.
	FindOfferedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*assignment.Assignment, error)

	// FindQueued returns queued assignments, oldest first.
	FindQueued(ctx context.Context, limit int) ([]*assignment.Assignment, error)

	// AppendEvents stores audit events.
	AppendEvents(ctx context.Context, events []assignment.Event) error

	// ListEvents returns the audit trail of one assignment in occurrence order.
	ListEvents(ctx context.Context, assignmentID kernel.UUID) ([]assignment.Event, error)
}
