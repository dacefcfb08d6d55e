package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is a process-wide lease table for the memory storage driver.
type LocalLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		leases: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (l *LocalLocker) TryLock(
	_ context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expires, held := l.leases[key]; held && now.Before(expires) {
		return nil, false, nil
	}
	expires := now.Add(ttl)
	l.leases[key] = expires

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.leases[key].Equal(expires) {
			delete(l.leases, key)
			return nil
		}
		return ErrLockLost
	}, true, nil
}
