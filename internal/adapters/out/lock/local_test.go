package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_ExclusiveUntilReleased(t *testing.T) {
	// Given
	l := NewLocalLocker()

	// When
	unlock, ok, err := l.TryLock(t.Context(), "sweeper", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	_, second, err := l.TryLock(t.Context(), "sweeper", time.Minute)
	require.NoError(t, err)

	// Then
	assert.False(t, second)
	require.NoError(t, unlock(t.Context()))
	_, again, err := l.TryLock(t.Context(), "sweeper", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}

func TestLocalLocker_ExpiredLeaseCanBeTaken(t *testing.T) {
	// Given
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }
	stale, ok, err := l.TryLock(t.Context(), "sweeper", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// When
	now = now.Add(2 * time.Second)
	_, ok, err = l.TryLock(t.Context(), "sweeper", time.Second)

	// Then
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ErrorIs(t, stale(t.Context()), ErrLockLost)
}
