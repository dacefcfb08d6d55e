package assignment

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an assignment, persisted as its string value.
type Status string

const (
	Queued    Status = "queued"
	Offered   Status = "offered"
	Accepted  Status = "accepted"
	PickedUp  Status = "picked_up"
	EnRoute   Status = "en_route"
	Delivered Status = "delivered"
	Cancelled Status = "cancelled"
)

// ErrInvalidTransition is the sentinel wrapped by InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// InvalidTransitionError names the current and requested status of a rejected transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %s to %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// riderTransitions lists the edges a rider may drive. queued -> offered is absent on purpose:
// only dispatch performs it, through Assignment.Offer.
func riderTransitions() map[Status][]Status {
	return map[Status][]Status{
		Queued:   {Cancelled},
		Offered:  {Accepted, Cancelled},
		Accepted: {PickedUp, Cancelled},
		PickedUp: {EnRoute, Cancelled},
		EnRoute:  {Delivered, Cancelled},
	}
}

// ParseStatus converts a persisted or wire value into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// NonTerminalStatuses returns every status that still holds resources.
func NonTerminalStatuses() []Status {
	return []Status{Queued, Offered, Accepted, PickedUp, EnRoute}
}

func (s Status) Validate() error {
	switch s {
	case Queued, Offered, Accepted, PickedUp, EnRoute, Delivered, Cancelled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", string(s)))
	}
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// RequiresRider reports whether an assignment in this status must reference a rider.
// Queued never has one; a cancellation keeps whatever the previous status had.
func (s Status) RequiresRider() bool {
	return s != Queued && s != Cancelled
}

// CanTransitionTo reports whether a rider-driven transition from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range riderTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns an *InvalidTransitionError when s -> target is not an edge.
func (s Status) ValidateTransition(target Status) error {
	if !s.CanTransitionTo(target) {
		return &InvalidTransitionError{From: s, To: target}
	}
	return nil
}
