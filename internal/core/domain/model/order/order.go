package order

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not built through its constructors.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructors")
	// ErrUnresolvableLocation is returned when pickup or drop-off coordinates are unknown.
	ErrUnresolvableLocation = errors.New("order location is unresolvable")
)

// Order is the local projection of an order owned by the order subsystem.
//
// Dispatch needs only the identifier, the pickup point (the store's base location),
// the drop-off point (the customer's address), the total and the delivery status.
// Either location may be missing when the upstream record could not be geocoded.
type Order struct {
	id       kernel.UUID
	pickup   *kernel.Location
	dropoff  *kernel.Location
	total    int64
	currency string
	status   Status
	guard    guard.ConstructorGuard
}

// NewOrder registers a paid order.
//
// Parameters:
//   - id: order identifier from the order subsystem
//   - pickup, dropoff: resolved coordinates, nil when unknown
//   - total: precomputed order total in minor units (must not be negative)
//   - currency: ISO 4217 code, upper-cased
//
// Example:
//
//	pickup, _ := kernel.NewLocation(6.53, 3.41)
//	dropoff, _ := kernel.NewLocation(6.45, 3.39)
//	o, err := order.NewOrder(id, &pickup, &dropoff, 250000, "NGN")
func NewOrder(id kernel.UUID, pickup, dropoff *kernel.Location, total int64, currency string) (*Order, error) {
	return RestoreOrder(id, pickup, dropoff, total, currency, Paid)
}

// RestoreOrder reconstructs an Order from persisted state.
func RestoreOrder(
	id kernel.UUID,
	pickup, dropoff *kernel.Location,
	total int64,
	currency string,
	status Status,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
		o.setTotal(total, currency),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

// Pickup returns the pickup point, or nil when it is not resolved.
func (o *Order) Pickup() *kernel.Location {
	return o.pickup
}

// Dropoff returns the drop-off point, or nil when it is not resolved.
func (o *Order) Dropoff() *kernel.Location {
	return o.dropoff
}

// Total returns the order total in minor units.
func (o *Order) Total() int64 {
	return o.total
}

func (o *Order) Currency() string {
	return o.currency
}

func (o *Order) Status() Status {
	return o.status
}

// Route returns both resolved points or ErrUnresolvableLocation.
func (o *Order) Route() (pickup, dropoff kernel.Location, err error) {
	if o.pickup == nil || o.dropoff == nil {
		var missing []string
		if o.pickup == nil {
			missing = append(missing, "pickup")
		}
		if o.dropoff == nil {
			missing = append(missing, "dropoff")
		}
		return kernel.Location{}, kernel.Location{},
			fmt.Errorf("%w: %s missing for order %s", ErrUnresolvableLocation, strings.Join(missing, " and "), o.id)
	}
	return *o.pickup, *o.dropoff, nil
}

// ValidateDispatchable checks the order may be handed to dispatch.
func (o *Order) ValidateDispatchable() error {
	if !o.status.IsDispatchable() {
		return errs.NewValueIsInvalidErrorWithCause("order status",
			fmt.Errorf("order %s is %s, not awaiting delivery", o.id, o.status))
	}
	return nil
}

// Refresh updates the snapshot fields delivered by a newer upstream event.
// A nil location keeps the currently known one.
func (o *Order) Refresh(pickup, dropoff *kernel.Location, total int64, currency string) error {
	next := *o
	if err := errors.Join(
		next.setPickup(coalesce(pickup, o.pickup)),
		next.setDropoff(coalesce(dropoff, o.dropoff)),
		next.setTotal(total, currency),
	); err != nil {
		return err
	}
	*o = next
	return nil
}

// AdvanceTo sets the delivery status.
func (o *Order) AdvanceTo(status Status) error {
	return o.setStatus(status)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setPickup(loc *kernel.Location) error {
	if loc != nil {
		if err := loc.Validate(); err != nil {
			return err
		}
	}
	o.pickup = copyLocation(loc)
	return nil
}

func (o *Order) setDropoff(loc *kernel.Location) error {
	if loc != nil {
		if err := loc.Validate(); err != nil {
			return err
		}
	}
	o.dropoff = copyLocation(loc)
	return nil
}

func (o *Order) setTotal(total int64, currency string) error {
	if total < 0 {
		return errs.NewValueIsInvalidErrorWithCause("total", fmt.Errorf("%d is negative", total))
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency != "" && len(currency) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}
	o.total = total
	o.currency = currency
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func coalesce(a, b *kernel.Location) *kernel.Location {
	if a != nil {
		return a
	}
	return b
}

func copyLocation(loc *kernel.Location) *kernel.Location {
	if loc == nil {
		return nil
	}
	c := *loc
	return &c
}
