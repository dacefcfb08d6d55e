package commands

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrApplyTransitionCommandIsNotConstructed = errors.New(
	"ApplyTransitionCommand must be created via NewApplyTransitionCommand constructor",
)

// ParseAction maps a courier action to the assignment status it requests.
// Both the action names (accept, cancel) and the status names are accepted.
func ParseAction(action string) (assignment.Status, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "accept", string(assignment.Accepted):
		return assignment.Accepted, nil
	case "pickup", "pick_up", string(assignment.PickedUp):
		return assignment.PickedUp, nil
	case string(assignment.EnRoute):
		return assignment.EnRoute, nil
	case "deliver", string(assignment.Delivered):
		return assignment.Delivered, nil
	case "cancel", string(assignment.Cancelled):
		return assignment.Cancelled, nil
	case "":
		return "", errs.NewValueIsRequiredError("action")
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("unknown action %q", action))
	}
}

// ApplyTransitionCommand is a courier or operator action on an assignment.
type ApplyTransitionCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	target       assignment.Status
	actingRider  *kernel.UUID
	position     *kernel.Location
	completion   *assignment.Completion

	guard guard.ConstructorGuard
}

// NewApplyTransitionCommand builds the command.
//
// Parameters:
//   - actingRider: the rider performing the action, nil for operator actions
//   - position: the rider's current position, applied as a heartbeat when actingRider is set
//   - proofURL, notes, rating: delivery artifacts, only read for the delivered target
func NewApplyTransitionCommand(
	assignmentID kernel.UUID,
	target assignment.Status,
	actingRider *kernel.UUID,
	position *kernel.Location,
	proofURL, notes string,
	rating *int,
) (ApplyTransitionCommand, error) {
	if err := errors.Join(assignmentID.Validate(), target.Validate()); err != nil {
		return ApplyTransitionCommand{}, err
	}
	if actingRider != nil {
		if err := actingRider.Validate(); err != nil {
			return ApplyTransitionCommand{}, err
		}
	}
	if position != nil {
		if err := position.Validate(); err != nil {
			return ApplyTransitionCommand{}, err
		}
	}

	command := ApplyTransitionCommand{
		assignmentID: assignmentID,
		target:       target,
		guard:        guard.NewConstructorGuard(),
	}
	if actingRider != nil {
		id := *actingRider
		command.actingRider = &id
	}
	if position != nil {
		p := *position
		command.position = &p
	}

	// A missing proof is reported by the aggregate, after the edge itself is checked.
	if target == assignment.Delivered && strings.TrimSpace(proofURL) != "" {
		completion, err := assignment.NewCompletion(proofURL, notes, rating)
		if err != nil {
			return ApplyTransitionCommand{}, err
		}
		command.completion = &completion
	}

	return command, nil
}

func (c ApplyTransitionCommand) Validate() error {
	return c.guard.Validate(ErrApplyTransitionCommandIsNotConstructed)
}

func (c ApplyTransitionCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

func (c ApplyTransitionCommand) Target() assignment.Status {
	return c.target
}

func (c ApplyTransitionCommand) ActingRider() *kernel.UUID {
	return c.actingRider
}

func (c ApplyTransitionCommand) Position() *kernel.Location {
	return c.position
}

func (c ApplyTransitionCommand) Completion() *assignment.Completion {
	return c.completion
}
