package order

import (
	"fmt"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/pkg/errs"
)

// Status is the order status as far as delivery is concerned. The order subsystem owns
// the rest of the order lifecycle; dispatch only reads Paid and writes the delivery values.
type Status string

const (
	// Paid is the entry point: payment is confirmed and the order awaits a rider.
	Paid              Status = "paid"
	Preparing         Status = "preparing"
	Dispatched        Status = "dispatched"
	InTransit         Status = "in_transit"
	Delivered         Status = "delivered"
	DeliveryCancelled Status = "delivery_cancelled"
)

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// Validate checks the status is one of the known values.
func (s Status) Validate() error {
	switch s {
	case Paid, Preparing, Dispatched, InTransit, Delivered, DeliveryCancelled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid order status", string(s)))
	}
}

func (s Status) String() string {
	return string(s)
}

// IsDispatchable reports whether an order in this status may be handed to dispatch.
// A cancelled delivery can be dispatched again.
func (s Status) IsDispatchable() bool {
	return s == Paid || s == DeliveryCancelled
}

// StatusForAssignment maps an assignment status to the order status it implies.
// ok is false for statuses that leave the order untouched (queued, offered).
//
//	accepted  -> preparing
//	picked_up -> dispatched
//	en_route  -> in_transit
//	delivered -> delivered
//	cancelled -> delivery_cancelled
func StatusForAssignment(s assignment.Status) (status Status, ok bool) {
	switch s {
	case assignment.Accepted:
		return Preparing, true
	case assignment.PickedUp:
		return Dispatched, true
	case assignment.EnRoute:
		return InTransit, true
	case assignment.Delivered:
		return Delivered, true
	case assignment.Cancelled:
		return DeliveryCancelled, true
	case assignment.Queued, assignment.Offered:
		return "", false
	default:
		return "", false
	}
}
