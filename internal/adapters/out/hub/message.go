package hub

import (
	"time"

	"dispatch/internal/core/ports"
)

const (
	TypeAssignment    = "assignment"
	TypeRiderPosition = "rider_position"
)

// Message is the wire form of a change, shared by the websocket streams and the
// Postgres NOTIFY channel.
type Message struct {
	Type            string    `json:"type"`
	Event           string    `json:"event,omitempty"`
	AssignmentID    string    `json:"assignmentId,omitempty"`
	OrderID         string    `json:"orderId,omitempty"`
	RiderID         string    `json:"riderId,omitempty"`
	PreviousRiderID string    `json:"previousRiderId,omitempty"`
	From            string    `json:"from,omitempty"`
	Status          string    `json:"status,omitempty"`
	DistanceKm      *float64  `json:"distanceKm,omitempty"`
	DurationMinutes *int      `json:"estimatedDurationMinutes,omitempty"`
	Lat             *float64  `json:"lat,omitempty"`
	Lng             *float64  `json:"lng,omitempty"`
	Available       *bool     `json:"available,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func NewAssignmentMessage(change ports.AssignmentChange) Message {
	e, a := change.Event, change.Assignment
	m := Message{
		Type:         TypeAssignment,
		Event:        string(e.Type),
		AssignmentID: e.AssignmentID.String(),
		OrderID:      e.OrderID.String(),
		From:         string(e.From),
		Status:       string(a.Status),
		OccurredAt:   e.OccurredAt,
	}
	if a.RiderID != nil {
		m.RiderID = a.RiderID.String()
	}
	if e.PreviousRiderID != nil {
		m.PreviousRiderID = e.PreviousRiderID.String()
	}
	if a.DurationMinutes > 0 {
		d, mins := a.DistanceKm, a.DurationMinutes
		m.DistanceKm, m.DurationMinutes = &d, &mins
	}
	return m
}

func NewRiderPositionMessage(change ports.RiderPositionChange) Message {
	lat, lng, available := change.Location.Lat(), change.Location.Lng(), change.Available
	return Message{
		Type:       TypeRiderPosition,
		RiderID:    change.RiderID.String(),
		Lat:        &lat,
		Lng:        &lng,
		Available:  &available,
		OccurredAt: change.OccurredAt,
	}
}

// Terminal reports whether the assignment in an assignment message is finished.
func (m Message) Terminal() bool {
	return m.Type == TypeAssignment && (m.Status == "delivered" || m.Status == "cancelled")
}
