package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterRiderCommandIsNotConstructed = errors.New(
	"RegisterRiderCommand must be created via NewRegisterRiderCommand constructor",
)

// RegisterRiderCommand opens or resumes the session of a rider device.
//
// Example:
//
//	identity, _ := rider.NewIdentity(signals)
//	cmd, err := NewRegisterRiderCommand(identity, "Ada", "+2348010000000", &position)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type RegisterRiderCommand struct { //nolint:recvcheck //using for validation
	identity rider.Identity
	name     string
	phone    string
	location *kernel.Location

	guard guard.ConstructorGuard
}

// NewRegisterRiderCommand validates the registration input. Position is optional.
func NewRegisterRiderCommand(
	identity rider.Identity,
	name, phone string,
	location *kernel.Location,
) (RegisterRiderCommand, error) {
	command := RegisterRiderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setIdentity(identity),
		command.setName(name),
		command.setPhone(phone),
		command.setLocation(location),
	); err != nil {
		return RegisterRiderCommand{}, err
	}

	return command, nil
}

func (c RegisterRiderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterRiderCommandIsNotConstructed)
}

func (c RegisterRiderCommand) Identity() rider.Identity {
	return c.identity
}

func (c RegisterRiderCommand) Name() string {
	return c.name
}

func (c RegisterRiderCommand) Phone() string {
	return c.phone
}

func (c RegisterRiderCommand) Location() *kernel.Location {
	return c.location
}

func (c *RegisterRiderCommand) setIdentity(identity rider.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	c.identity = identity
	return nil
}

func (c *RegisterRiderCommand) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return rider.ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *RegisterRiderCommand) setPhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return rider.ErrPhoneIsRequired
	}
	c.phone = phone
	return nil
}

func (c *RegisterRiderCommand) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	c.location = &loc
	return nil
}
