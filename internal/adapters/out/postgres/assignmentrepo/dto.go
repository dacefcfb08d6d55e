// Package assignmentrepo persists delivery assignments and their audit trail.
package assignmentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO is the assignments table row. Version drives optimistic concurrency.
type AssignmentDTO struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID   `gorm:"type:uuid;index"`
	RiderID         *uuid.UUID  `gorm:"type:uuid;index"`
	Pickup          LocationDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff         LocationDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	DistanceKm      float64
	DurationMinutes int
	Status          string `gorm:"type:varchar(16);index"`
	OfferedAt       *time.Time
	AcceptedAt      *time.Time
	CompletedAt     *time.Time
	ProofURL        *string
	Notes           *string
	CustomerRating  *int
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
	Version         int64     `gorm:"not null"`
}

func (AssignmentDTO) TableName() string {
	return "assignments"
}

type LocationDTO struct {
	Lat float64 `gorm:"type:double precision"`
	Lng float64 `gorm:"type:double precision"`
}

// EventDTO is one row of the append-only audit trail. Seq preserves insertion order
// for events that share a timestamp.
type EventDTO struct {
	Seq             int64      `gorm:"primaryKey;autoIncrement"`
	ID              uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	AssignmentID    uuid.UUID  `gorm:"type:uuid;index"`
	OrderID         uuid.UUID  `gorm:"type:uuid"`
	Type            string     `gorm:"type:varchar(16)"`
	FromStatus      string     `gorm:"type:varchar(16)"`
	ToStatus        string     `gorm:"type:varchar(16)"`
	RiderID         *uuid.UUID `gorm:"type:uuid"`
	PreviousRiderID *uuid.UUID `gorm:"type:uuid"`
	OccurredAt      time.Time
}

func (EventDTO) TableName() string {
	return "assignment_events"
}

func fromDomain(a *assignment.Assignment) AssignmentDTO {
	s := a.Snapshot()
	dto := AssignmentDTO{
		ID:              s.ID.Google(),
		OrderID:         s.OrderID.Google(),
		RiderID:         optionalID(s.RiderID),
		Pickup:          LocationDTO{Lat: s.Pickup.Lat(), Lng: s.Pickup.Lng()},
		Dropoff:         LocationDTO{Lat: s.Dropoff.Lat(), Lng: s.Dropoff.Lng()},
		DistanceKm:      s.DistanceKm,
		DurationMinutes: s.DurationMinutes,
		Status:          s.Status.String(),
		OfferedAt:       s.OfferedAt,
		AcceptedAt:      s.AcceptedAt,
		CompletedAt:     s.CompletedAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
	if c := s.Completion; c != nil {
		proof, notes := c.ProofURL(), c.Notes()
		dto.ProofURL = &proof
		dto.Notes = &notes
		dto.CustomerRating = c.Rating()
	}
	return dto
}

func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromGoogle(dto.OrderID)
	if err != nil {
		return nil, err
	}

	riderID, err := domainID(dto.RiderID)
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewLocation(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}

	dropoff, err := kernel.NewLocation(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	status, err := assignment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var completion *assignment.Completion
	if dto.ProofURL != nil {
		notes := ""
		if dto.Notes != nil {
			notes = *dto.Notes
		}
		c, completionErr := assignment.NewCompletion(*dto.ProofURL, notes, dto.CustomerRating)
		if completionErr != nil {
			return nil, completionErr
		}
		completion = &c
	}

	return assignment.RestoreAssignment(assignment.Snapshot{
		ID:              id,
		OrderID:         orderID,
		RiderID:         riderID,
		Pickup:          pickup,
		Dropoff:         dropoff,
		DistanceKm:      dto.DistanceKm,
		DurationMinutes: dto.DurationMinutes,
		Status:          status,
		OfferedAt:       utc(dto.OfferedAt),
		AcceptedAt:      utc(dto.AcceptedAt),
		CompletedAt:     utc(dto.CompletedAt),
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
		Completion:      completion,
		Version:         dto.Version,
	})
}

func eventFromDomain(e assignment.Event) EventDTO {
	return EventDTO{
		ID:              e.ID.Google(),
		AssignmentID:    e.AssignmentID.Google(),
		OrderID:         e.OrderID.Google(),
		Type:            string(e.Type),
		FromStatus:      string(e.From),
		ToStatus:        string(e.To),
		RiderID:         optionalID(e.RiderID),
		PreviousRiderID: optionalID(e.PreviousRiderID),
		OccurredAt:      e.OccurredAt.UTC(),
	}
}

func eventToDomain(dto EventDTO) (assignment.Event, error) {
	var (
		e   assignment.Event
		err error
	)
	if e.ID, err = kernel.UUIDFromGoogle(dto.ID); err != nil {
		return assignment.Event{}, err
	}
	if e.AssignmentID, err = kernel.UUIDFromGoogle(dto.AssignmentID); err != nil {
		return assignment.Event{}, err
	}
	if e.OrderID, err = kernel.UUIDFromGoogle(dto.OrderID); err != nil {
		return assignment.Event{}, err
	}
	if e.RiderID, err = domainID(dto.RiderID); err != nil {
		return assignment.Event{}, err
	}
	if e.PreviousRiderID, err = domainID(dto.PreviousRiderID); err != nil {
		return assignment.Event{}, err
	}

	e.Type = assignment.EventType(dto.Type)
	e.From = assignment.Status(dto.FromStatus)
	e.To = assignment.Status(dto.ToStatus)
	e.OccurredAt = dto.OccurredAt.UTC()
	return e, nil
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Google()
	return &raw
}

func domainID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // absent id
	}
	id, err := kernel.UUIDFromGoogle(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
