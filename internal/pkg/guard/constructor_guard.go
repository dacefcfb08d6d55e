// Package guard protects value objects and aggregates from being used as zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing struct was built by its constructor.
// Embed it as a field, set it with NewConstructorGuard inside the constructor and call
// Validate from the type's own Validate method:
//
//	type Position struct {
//	    lat, lng float64
//	    guard    guard.ConstructorGuard
//	}
//
//	func (p Position) Validate() error {
//	    return p.guard.Validate(ErrPositionIsNotConstructed)
//	}
//
// The zero value reports "not constructed". The type is immutable and safe to copy.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. For the zero value it returns err,
// or ErrDefaultConstructorGuard when err is nil.
func (g ConstructorGuard) Validate(err error) error {
	if g.isConstructed {
		return nil
	}
	if err == nil {
		return ErrDefaultConstructorGuard
	}
	return err
}
