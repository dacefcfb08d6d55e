package ports

import (
	"context"
	"time"
)

// Clock abstracts wall time so time-based rules can be tested.
type Clock interface {
	Now() time.Time
}

// Locker grants short-lived exclusive leases across replicas.
type Locker interface {
	// TryLock acquires key for ttl. ok is false when another holder owns it.
	// unlock must be called once the work is done.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// Metrics records dispatch outcomes.
type Metrics interface {
	DispatchCompleted(outcome string)
	ClaimConflict()
	TransitionApplied(to string)
	SweepItem(outcome string)
	ReconciliationGap()
}
