package assignment

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// EventType names what happened to an assignment.
type EventType string

const (
	EventCreated      EventType = "created"
	EventOffered      EventType = "offered"
	EventReassigned   EventType = "reassigned"
	EventRequeued     EventType = "requeued"
	EventTransitioned EventType = "transitioned"
)

// Event is an immutable record of one assignment mutation.
// PreviousRiderID is set for reassignments and requeues.
type Event struct {
	ID              kernel.UUID
	AssignmentID    kernel.UUID
	OrderID         kernel.UUID
	Type            EventType
	From            Status
	To              Status
	RiderID         *kernel.UUID
	PreviousRiderID *kernel.UUID
	OccurredAt      time.Time
}
