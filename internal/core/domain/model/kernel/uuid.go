package kernel

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates a zero-value UUID was used as an identifier.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, UUIDFromString or UUIDFromName")

// sessionNamespace scopes name-based identifiers generated by UUIDFromName.
var sessionNamespace = uuid.MustParse("7f1c2a9e-52d4-4c1b-9a8e-3d5f60b1e2c4")

// UUID is the identifier value object shared by riders, assignments and orders.
// It wraps github.com/google/uuid. The zero value is invalid.
//
// Example:
//
//	id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
//	if err != nil {
//	    return fmt.Errorf("invalid assignment ID: %w", err)
//	}
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a new random (version 4) identifier.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// UUIDFromString parses the canonical textual form of a UUID.
// The nil UUID is rejected.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", fmt.Errorf("%q: %w", s, err))
	}
	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

// UUIDFromName derives a deterministic (version 5, SHA-1) identifier from name.
// The same name always yields the same UUID, which lets a rider device resume
// its session without an account.
//
// Example:
//
//	a := kernel.UUIDFromName("f3b1...")
//	b := kernel.UUIDFromName("f3b1...")
//	a.IsEqual(b) // true
func UUIDFromName(name string) UUID {
	return UUID{id: uuid.NewSHA1(sessionNamespace, []byte(name))}
}

// UUIDFromGoogle adopts an already parsed github.com/google/uuid value.
// Used by adapters that bind identifiers with their own decoders.
func UUIDFromGoogle(id uuid.UUID) (UUID, error) {
	u := UUID{id: id}
	if err := u.Validate(); err != nil {
		return UUID{}, err
	}
	return u, nil
}

func (u UUID) String() string {
	return u.id.String()
}

// Google returns the wrapped github.com/google/uuid value, for persistence adapters.
func (u UUID) Google() uuid.UUID {
	return u.id
}

func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Compare orders identifiers by their canonical string form and returns -1, 0 or +1.
// It gives the deterministic tie-break used when two riders are equally close.
func (u UUID) Compare(other UUID) int {
	return strings.Compare(u.id.String(), other.id.String())
}

// Validate returns ErrUUIDIsNotConstructed for the zero (nil) UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
