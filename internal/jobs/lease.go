package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// withLease runs fn only if this replica obtains the named lease.
// A nil locker means a single replica and fn always runs.
func withLease(
	ctx context.Context,
	locker ports.Locker,
	key string,
	ttl time.Duration,
	logger *slog.Logger,
	fn func(context.Context),
) {
	if locker == nil {
		fn(ctx)
		return
	}

	unlock, ok, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to acquire job lease", "key", key, "error", err)
		return
	}
	if !ok {
		logger.DebugContext(ctx, "Job lease held by another replica", "key", key)
		return
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "Failed to release job lease", "key", key, "error", err)
		}
	}()

	fn(ctx)
}
