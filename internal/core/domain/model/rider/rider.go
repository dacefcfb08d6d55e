package rider

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for rider operations.
var (
	// ErrNameIsRequired is returned when a rider registers without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when a rider registers without a phone number.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrRiderIsNotConstructed is returned when using an improperly initialized Rider.
	ErrRiderIsNotConstructed = errors.New("Rider must be created via NewRider or RestoreRider constructors")
	// ErrRiderIsUnavailable is returned when claiming a rider that is already busy or offline.
	ErrRiderIsUnavailable = errors.New("rider is unavailable")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Rider is the aggregate root for a courier session.
//
// Key responsibilities:
//   - Holding the profile a customer sees (name, phone)
//   - Tracking the last known position and heartbeat
//   - Guarding the availability flag that dispatch claims and releases
//
// Business rules:
//   - The rider ID is the session id derived from the Identity
//   - Newly registered riders are available
//   - CanReceiveWork requires availability, a known position and a fresh heartbeat
//
// Example usage:
//
//	identity, _ := rider.NewIdentity(rider.Signals{ClientIP: "10.0.0.8", UserAgent: "RiderApp/2.1"})
//	pos, _ := kernel.NewLocation(6.52, 3.40)
//	r, err := rider.NewRider(identity, "Ada", "+2348010000000", &pos, time.Now())
type Rider struct {
	// id is the session id derived from identity
	id kernel.UUID
	// identity is the device fingerprint the session was opened with
	identity Identity
	name     string
	phone    string
	// location is nil until the device reports a position
	location *kernel.Location
	// lastSeenAt is the timestamp of the latest accepted heartbeat
	lastSeenAt time.Time
	// available is true while the rider is free to receive an offer
	available bool
	guard     guard.ConstructorGuard
}

// NewRider opens a session for a device. The rider starts available with the
// heartbeat stamped at now.
//
// Parameters:
//   - identity: device identity computed at the boundary
//   - name, phone: profile, both mandatory
//   - location: optional starting position
//   - now: registration time
//
// Returns:
//   - *Rider: the registered rider
//   - error: aggregated validation errors
func NewRider(identity Identity, name, phone string, location *kernel.Location, now time.Time) (*Rider, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	r := &Rider{
		id:         identity.SessionID(),
		identity:   identity,
		lastSeenAt: now.UTC(),
		available:  true,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setName(name),
		r.setPhone(phone),
		r.setLocation(location),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreRider reconstructs a Rider from persisted state.
func RestoreRider(
	id kernel.UUID,
	identity Identity,
	name string,
	phone string,
	location *kernel.Location,
	lastSeenAt time.Time,
	available bool,
) (*Rider, error) {
	r := &Rider{
		lastSeenAt: lastSeenAt.UTC(),
		available:  available,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setIdentity(identity),
		r.setName(name),
		r.setPhone(phone),
		r.setLocation(location),
	); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Rider) Validate() error {
	if r == nil {
		return ErrRiderIsNotConstructed
	}
	return r.guard.Validate(ErrRiderIsNotConstructed)
}

// IsEqual compares riders by session id.
func (r *Rider) IsEqual(other *Rider) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *Rider) ID() kernel.UUID {
	return r.id
}

func (r *Rider) Identity() Identity {
	return r.identity
}

func (r *Rider) Name() string {
	return r.name
}

func (r *Rider) Phone() string {
	return r.phone
}

// Location returns the last known position, or nil when none was reported yet.
func (r *Rider) Location() *kernel.Location {
	if r.location == nil {
		return nil
	}
	loc := *r.location
	return &loc
}

func (r *Rider) LastSeenAt() time.Time {
	return r.lastSeenAt
}

func (r *Rider) IsAvailable() bool {
	return r.available
}

// Resume refreshes the profile of a returning device. A supplied location is
// applied like a heartbeat; availability is left untouched.
func (r *Rider) Resume(name, phone string, location *kernel.Location, now time.Time) error {
	if err := errors.Join(r.setName(name), r.setPhone(phone)); err != nil {
		return err
	}
	if location != nil {
		_, err := r.ReportPosition(*location, now)
		return err
	}
	r.touch(now)
	return nil
}

// ReportPosition records a heartbeat with a position.
// Reports stamped before the latest accepted heartbeat are dropped and applied is false.
func (r *Rider) ReportPosition(location kernel.Location, at time.Time) (applied bool, err error) {
	if err = location.Validate(); err != nil {
		return false, err
	}
	if at.Before(r.lastSeenAt) {
		return false, nil
	}

	r.location = &location
	r.lastSeenAt = at.UTC()
	return true, nil
}

// IsFresh reports whether the last heartbeat falls inside window before now.
func (r *Rider) IsFresh(now time.Time, window time.Duration) bool {
	return !r.lastSeenAt.Before(now.Add(-window))
}

// CanReceiveWork reports whether the rider may be offered an assignment.
func (r *Rider) CanReceiveWork(now time.Time, window time.Duration) bool {
	return r.available && r.location != nil && r.IsFresh(now, window)
}

// Claim marks the rider busy. It fails with ErrRiderIsUnavailable when the rider
// is already busy or offline. Storage adapters apply it under their own lock on
// the rider, which is what makes the claim exclusive.
//
// Example:
//
//	if err := r.Claim(); errors.Is(err, rider.ErrRiderIsUnavailable) {
//	    // try the next candidate
//	}
func (r *Rider) Claim() error {
	if !r.available {
		return ErrRiderIsUnavailable
	}
	r.available = false
	return nil
}

// Release marks the rider free again.
func (r *Rider) Release() {
	r.available = true
}

// GoOffline takes a free rider off the dispatch pool.
func (r *Rider) GoOffline() {
	r.available = false
}

func (r *Rider) touch(now time.Time) {
	if now.After(r.lastSeenAt) {
		r.lastSeenAt = now.UTC()
	}
}

func (r *Rider) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Rider) setIdentity(identity Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	r.identity = identity
	return nil
}

func (r *Rider) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	r.name = name
	return nil
}

func (r *Rider) setPhone(phone string) error {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if phone == "" {
		return ErrPhoneIsRequired
	}
	if !phonePattern.MatchString(phone) {
		return errs.NewValueIsInvalidErrorWithCause("phone", fmt.Errorf("%q is not a phone number", phone))
	}
	r.phone = phone
	return nil
}

func (r *Rider) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	r.location = &loc
	return nil
}
