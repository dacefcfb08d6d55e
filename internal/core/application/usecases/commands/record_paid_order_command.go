package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRecordPaidOrderCommandIsNotConstructed = errors.New(
	"RecordPaidOrderCommand must be created via NewRecordPaidOrderCommand constructor",
)

// RecordPaidOrderCommand carries an order-paid event. The snapshot fields are optional:
// an event with only the order id dispatches an order already known locally.
type RecordPaidOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	pickup   *kernel.Location
	dropoff  *kernel.Location
	total    *int64
	currency string

	guard guard.ConstructorGuard
}

func NewRecordPaidOrderCommand(
	orderID kernel.UUID,
	pickup, dropoff *kernel.Location,
	total *int64,
	currency string,
) (RecordPaidOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RecordPaidOrderCommand{}, err
	}
	for _, loc := range []*kernel.Location{pickup, dropoff} {
		if loc == nil {
			continue
		}
		if err := loc.Validate(); err != nil {
			return RecordPaidOrderCommand{}, err
		}
	}
	if total != nil && *total < 0 {
		return RecordPaidOrderCommand{}, errs.NewValueIsInvalidError("total")
	}

	command := RecordPaidOrderCommand{
		orderID:  orderID,
		pickup:   pickup,
		dropoff:  dropoff,
		currency: strings.TrimSpace(currency),
		guard:    guard.NewConstructorGuard(),
	}
	if total != nil {
		t := *total
		command.total = &t
	}
	return command, nil
}

func (c RecordPaidOrderCommand) Validate() error {
	return c.guard.Validate(ErrRecordPaidOrderCommandIsNotConstructed)
}

func (c RecordPaidOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RecordPaidOrderCommand) Pickup() *kernel.Location {
	return c.pickup
}

func (c RecordPaidOrderCommand) Dropoff() *kernel.Location {
	return c.dropoff
}

func (c RecordPaidOrderCommand) Total() *int64 {
	return c.total
}

func (c RecordPaidOrderCommand) Currency() string {
	return c.currency
}

// HasSnapshot reports whether the event carries any order fields to store.
func (c RecordPaidOrderCommand) HasSnapshot() bool {
	return c.pickup != nil || c.dropoff != nil || c.total != nil || c.currency != ""
}
