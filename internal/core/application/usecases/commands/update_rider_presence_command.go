package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateRiderPresenceCommandIsNotConstructed = errors.New(
	"UpdateRiderPresenceCommand must be created via NewUpdateRiderPresenceCommand constructor",
)

// UpdateRiderPresenceCommand is a rider heartbeat: current position and, optionally,
// the availability the rider asks for.
type UpdateRiderPresenceCommand struct { //nolint:recvcheck //using for validation
	riderID   kernel.UUID
	location  kernel.Location
	available *bool

	guard guard.ConstructorGuard
}

func NewUpdateRiderPresenceCommand(
	riderID kernel.UUID,
	location kernel.Location,
	available *bool,
) (UpdateRiderPresenceCommand, error) {
	command := UpdateRiderPresenceCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		riderID.Validate(),
		location.Validate(),
	); err != nil {
		return UpdateRiderPresenceCommand{}, err
	}

	command.riderID = riderID
	command.location = location
	if available != nil {
		v := *available
		command.available = &v
	}
	return command, nil
}

func (c UpdateRiderPresenceCommand) Validate() error {
	return c.guard.Validate(ErrUpdateRiderPresenceCommandIsNotConstructed)
}

func (c UpdateRiderPresenceCommand) RiderID() kernel.UUID {
	return c.riderID
}

func (c UpdateRiderPresenceCommand) Location() kernel.Location {
	return c.location
}

// Available returns the requested availability, or nil when the heartbeat carries none.
func (c UpdateRiderPresenceCommand) Available() *bool {
	return c.available
}
