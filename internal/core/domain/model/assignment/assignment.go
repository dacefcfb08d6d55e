package assignment

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrAssignmentIsNotConstructed is returned when using an improperly initialized Assignment.
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment or RestoreAssignment constructors")
	// ErrRiderNotAssigned is returned when a rider acts on an assignment held by someone else.
	ErrRiderNotAssigned = errors.New("rider is not assigned to this delivery")
)

// Assignment is the aggregate root of the dispatch lifecycle.
//
// Invariants:
//   - riderID is nil while queued and set for offered, accepted, picked_up, en_route and delivered
//   - status changes only along the edges in riderTransitions, plus Offer, Reassign and Requeue
//   - completion artifacts exist only once delivered
//   - version increases by one on every persisted write
type Assignment struct {
	id              kernel.UUID
	orderID         kernel.UUID
	riderID         *kernel.UUID
	pickup          kernel.Location
	dropoff         kernel.Location
	distanceKm      float64
	durationMinutes int
	status          Status
	offeredAt       *time.Time
	acceptedAt      *time.Time
	completedAt     *time.Time
	createdAt       time.Time
	updatedAt       time.Time
	completion      *Completion

	// version and persistedStatus are what the stored row held when this aggregate was loaded.
	version         int64
	persistedStatus Status

	events []Event
	guard  guard.ConstructorGuard
}

// NewAssignment creates a queued assignment for an order whose route is resolved.
//
// Example:
//
//	a, err := assignment.NewAssignment(kernel.NewUUID(), orderID, pickup, dropoff, time.Now())
//	if err != nil {
//	    return nil, err
//	}
//	err = a.Offer(riderID, estimate, time.Now())
func NewAssignment(id, orderID kernel.UUID, pickup, dropoff kernel.Location, now time.Time) (*Assignment, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		pickup.Validate(),
		dropoff.Validate(),
	); err != nil {
		return nil, err
	}

	now = now.UTC()
	a := &Assignment{
		id:        id,
		orderID:   orderID,
		pickup:    pickup,
		dropoff:   dropoff,
		status:    Queued,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}
	a.record(EventCreated, "", nil, now)
	return a, nil
}

// Snapshot is the flat persisted form of an Assignment.
type Snapshot struct {
	ID              kernel.UUID
	OrderID         kernel.UUID
	RiderID         *kernel.UUID
	Pickup          kernel.Location
	Dropoff         kernel.Location
	DistanceKm      float64
	DurationMinutes int
	Status          Status
	OfferedAt       *time.Time
	AcceptedAt      *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Completion      *Completion
	Version         int64
}

// RestoreAssignment rebuilds an Assignment from a Snapshot and checks its invariants.
func RestoreAssignment(s Snapshot) (*Assignment, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.Pickup.Validate(),
		s.Dropoff.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	if s.RiderID != nil {
		if err := s.RiderID.Validate(); err != nil {
			return nil, err
		}
	}
	if s.Status.RequiresRider() && s.RiderID == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("riderID",
			fmt.Errorf("status %s requires a rider", s.Status))
	}
	if s.Status == Queued && s.RiderID != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("riderID",
			errors.New("queued assignment cannot reference a rider"))
	}
	if s.Completion != nil && s.Status != Delivered {
		return nil, errs.NewValueIsInvalidErrorWithCause("completion",
			fmt.Errorf("status %s cannot carry completion artifacts", s.Status))
	}

	return &Assignment{
		id:              s.ID,
		orderID:         s.OrderID,
		riderID:         copyID(s.RiderID),
		pickup:          s.Pickup,
		dropoff:         s.Dropoff,
		distanceKm:      s.DistanceKm,
		durationMinutes: s.DurationMinutes,
		status:          s.Status,
		offeredAt:       copyTime(s.OfferedAt),
		acceptedAt:      copyTime(s.AcceptedAt),
		completedAt:     copyTime(s.CompletedAt),
		createdAt:       s.CreatedAt.UTC(),
		updatedAt:       s.UpdatedAt.UTC(),
		completion:      s.Completion,
		version:         s.Version,
		persistedStatus: s.Status,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Snapshot exports the current state for persistence and read models.
func (a *Assignment) Snapshot() Snapshot {
	return Snapshot{
		ID:              a.id,
		OrderID:         a.orderID,
		RiderID:         copyID(a.riderID),
		Pickup:          a.pickup,
		Dropoff:         a.dropoff,
		DistanceKm:      a.distanceKm,
		DurationMinutes: a.durationMinutes,
		Status:          a.status,
		OfferedAt:       copyTime(a.offeredAt),
		AcceptedAt:      copyTime(a.acceptedAt),
		CompletedAt:     copyTime(a.completedAt),
		CreatedAt:       a.createdAt,
		UpdatedAt:       a.updatedAt,
		Completion:      a.completion,
		Version:         a.version,
	}
}

// Validate reports ErrAssignmentIsNotConstructed for a nil or zero-value Assignment.
// Repositories call it before every write.
//
// Example:
//
//	if err := a.Validate(); err != nil {
//	    return err
//	}
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// ID returns the assignment identifier.
func (a *Assignment) ID() kernel.UUID {
	return a.id
}

// OrderID returns the order this assignment delivers.
func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

// RiderID returns a copy of the holding rider's id, or nil while queued.
//
// Example:
//
//	if id := a.RiderID(); id != nil {
//	    logger.Info("offered", "rider_id", id.String())
//	}
func (a *Assignment) RiderID() *kernel.UUID {
	return copyID(a.riderID)
}

// Pickup returns where the rider collects the order.
func (a *Assignment) Pickup() kernel.Location {
	return a.pickup
}

// Dropoff returns the delivery location.
func (a *Assignment) Dropoff() kernel.Location {
	return a.dropoff
}

// DistanceKm is the rider to pickup leg quoted with the last offer. Zero while queued.
func (a *Assignment) DistanceKm() float64 {
	return a.distanceKm
}

// DurationMinutes is the quoted time for both legs, never below geo.MinDurationMinutes once offered.
func (a *Assignment) DurationMinutes() int {
	return a.durationMinutes
}

// Status returns the current lifecycle status, including unsaved transitions.
func (a *Assignment) Status() Status {
	return a.status
}

// OfferedAt returns when the current offer was made. The sweeper times offers out from it.
func (a *Assignment) OfferedAt() *time.Time {
	return copyTime(a.offeredAt)
}

// AcceptedAt returns when the rider accepted, or nil.
func (a *Assignment) AcceptedAt() *time.Time {
	return copyTime(a.acceptedAt)
}

// CompletedAt returns when the assignment reached a terminal status, or nil.
func (a *Assignment) CompletedAt() *time.Time {
	return copyTime(a.completedAt)
}

// CreatedAt returns when the assignment was first created.
func (a *Assignment) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns the time of the last state change.
func (a *Assignment) UpdatedAt() time.Time {
	return a.updatedAt
}

// Completion returns the proof of delivery, set only once delivered.
func (a *Assignment) Completion() *Completion {
	return a.completion
}

// Version is the stored row version the aggregate was read at. Zero for a new assignment.
// AssignmentRepository.Update uses it for compare-and-swap.
func (a *Assignment) Version() int64 {
	return a.version
}

// PersistedStatus is the status the stored row had when the aggregate was read.
// It differs from Status after an unsaved transition.
//
// Example:
//
//	a.PersistedStatus() // offered
//	_ = a.Transition(assignment.Accepted, nil, now)
//	a.Status()          // accepted
func (a *Assignment) PersistedStatus() Status {
	return a.persistedStatus
}

// IsTerminal reports whether the assignment is delivered or cancelled.
func (a *Assignment) IsTerminal() bool {
	return a.status.IsTerminal()
}

// IsNew reports whether the assignment has never been stored.
func (a *Assignment) IsNew() bool {
	return a.version == 0
}

// IsHeldBy reports whether riderID currently holds the assignment.
func (a *Assignment) IsHeldBy(riderID kernel.UUID) bool {
	return a.riderID != nil && a.riderID.IsEqual(riderID)
}

// Offer moves a queued assignment to offered for riderID.
func (a *Assignment) Offer(riderID kernel.UUID, estimate Estimate, now time.Time) error {
	if a.status != Queued {
		return &InvalidTransitionError{From: a.status, To: Offered}
	}
	if err := errors.Join(riderID.Validate(), estimate.Validate()); err != nil {
		return err
	}

	from := a.status
	a.applyOffer(riderID, estimate, now)
	a.record(EventOffered, from, nil, now)
	return nil
}

// Reassign hands an unanswered offer to another rider and restarts the offer clock.
func (a *Assignment) Reassign(riderID kernel.UUID, estimate Estimate, now time.Time) error {
	if a.status != Offered {
		return &InvalidTransitionError{From: a.status, To: Offered}
	}
	if err := errors.Join(riderID.Validate(), estimate.Validate()); err != nil {
		return err
	}
	if a.IsHeldBy(riderID) {
		return errs.NewValueIsInvalidErrorWithCause("riderID",
			errors.New("reassignment must pick a different rider"))
	}

	previous := copyID(a.riderID)
	a.applyOffer(riderID, estimate, now)
	a.record(EventReassigned, Offered, previous, now)
	return nil
}

// Requeue returns an unanswered offer to the unassigned pool.
func (a *Assignment) Requeue(now time.Time) error {
	if a.status != Offered {
		return &InvalidTransitionError{From: a.status, To: Queued}
	}

	previous := copyID(a.riderID)
	a.riderID = nil
	a.status = Queued
	a.offeredAt = nil
	a.distanceKm = 0
	a.durationMinutes = 0
	a.updatedAt = now.UTC()
	a.record(EventRequeued, Offered, previous, now)
	return nil
}

// Transition applies a rider-driven status change.
//
// Rules:
//   - the edge must exist (InvalidTransitionError otherwise)
//   - accepted stamps acceptedAt
//   - delivered requires completion (ErrMissingProof otherwise) and stamps completedAt
//   - cancelled stamps completedAt
//
// On error the aggregate is left unchanged.
func (a *Assignment) Transition(target Status, completion *Completion, now time.Time) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := a.status.ValidateTransition(target); err != nil {
		return err
	}
	if target == Delivered {
		if completion == nil {
			return ErrMissingProof
		}
		if err := completion.Validate(); err != nil {
			return err
		}
	}

	now = now.UTC()
	from := a.status
	switch target {
	case Accepted:
		a.acceptedAt = &now
	case Delivered:
		c := *completion
		a.completion = &c
		a.completedAt = &now
	case Cancelled:
		a.completedAt = &now
	}
	a.status = target
	a.updatedAt = now
	a.record(EventTransitioned, from, nil, now)
	return nil
}

// MarkPersisted is called by repositories after a successful write.
func (a *Assignment) MarkPersisted(version int64) {
	a.version = version
	a.persistedStatus = a.status
}

// PullEvents returns and clears the events recorded since the last call.
func (a *Assignment) PullEvents() []Event {
	events := a.events
	a.events = nil
	return events
}

func (a *Assignment) applyOffer(riderID kernel.UUID, estimate Estimate, now time.Time) {
	now = now.UTC()
	id := riderID
	a.riderID = &id
	a.status = Offered
	a.offeredAt = &now
	a.distanceKm = estimate.DistanceKm()
	a.durationMinutes = estimate.DurationMinutes()
	a.updatedAt = now
}

func (a *Assignment) record(t EventType, from Status, previous *kernel.UUID, now time.Time) {
	a.events = append(a.events, Event{
		ID:              kernel.NewUUID(),
		AssignmentID:    a.id,
		OrderID:         a.orderID,
		Type:            t,
		From:            from,
		To:              a.status,
		RiderID:         copyID(a.riderID),
		PreviousRiderID: previous,
		OccurredAt:      now.UTC(),
	})
}

func copyID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
