// Package ports defines the contracts between the dispatch core and its adapters:
// persistence, outbound messaging, change notification, locking and time.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
)

// RiderRepository persists rider sessions.
//
// Availability is never written by a plain update. It changes only through the
// conditional operations Claim, Release, GoOnline and GoOffline, each atomic with
// respect to the rider row, so two dispatchers can never both take the same rider.
type RiderRepository interface {
	// Add stores a newly registered rider.
	Add(ctx context.Context, r *rider.Rider) error

	// Get returns the rider or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error)

	// UpdateProfile writes name, phone, position and heartbeat. Availability is untouched.
	UpdateProfile(ctx context.Context, r *rider.Rider) error

	// UpdatePresence writes position and heartbeat unless a newer heartbeat is already stored.
	// applied is false when the report was stale.
	UpdatePresence(ctx context.Context, id kernel.UUID, location kernel.Location, seenAt time.Time) (applied bool, err error)

	// Claim flips an available rider to unavailable.
	// claimed is false when the rider is offline or already holds a non-terminal assignment.
	Claim(ctx context.Context, id kernel.UUID) (claimed bool, err error)

	// Release makes the rider available again.
	Release(ctx context.Context, id kernel.UUID) error

	// GoOnline makes the rider available unless it holds a non-terminal assignment.
	// The check must observe assignments committed by a Claim it waited on.
	GoOnline(ctx context.Context, id kernel.UUID) (online bool, err error)

	// GoOffline makes the rider unavailable.
	GoOffline(ctx context.Context, id kernel.UUID) error

	// FindAvailable returns available, positioned riders seen at or after freshSince.
	// Ordering is left to the caller.
	FindAvailable(ctx context.Context, freshSince time.Time) ([]*rider.Rider, error)
}
