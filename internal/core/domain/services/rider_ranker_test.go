package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newRider(t *testing.T, device string, lat, lng float64, seen time.Time) *rider.Rider {
	t.Helper()
	identity, err := rider.NewIdentity(rider.Signals{DeviceID: device})
	require.NoError(t, err)
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	r, err := rider.NewRider(identity, device, "08010000000", &loc, seen)
	require.NoError(t, err)
	return r
}

func restoreWithID(t *testing.T, id string, lat, lng float64) *rider.Rider {
	t.Helper()
	uid, err := kernel.UUIDFromString(id)
	require.NoError(t, err)
	identity, err := rider.NewIdentity(rider.Signals{DeviceID: id})
	require.NoError(t, err)
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	r, err := rider.RestoreRider(uid, identity, "r", "08010000000", &loc, t0, true)
	require.NoError(t, err)
	return r
}

func TestRiderRanker_Rank(t *testing.T) {
	pickup, _ := kernel.NewLocation(6.53, 3.41)
	ranker := services.NewRiderRanker(2 * time.Minute)

	t.Run("sorts nearest first", func(t *testing.T) {
		// Given
		far := newRider(t, "far", 6.60, 3.50, t0)
		near := newRider(t, "near", 6.52, 3.40, t0)
		mid := newRider(t, "mid", 6.55, 3.45, t0)

		// When
		got, err := ranker.Rank(pickup, []*rider.Rider{far, near, mid}, t0)

		// Then
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.True(t, got[0].Rider.IsEqual(near))
		assert.True(t, got[1].Rider.IsEqual(mid))
		assert.True(t, got[2].Rider.IsEqual(far))
		assert.InDelta(t, 1.57, got[0].DistanceKm, 0.05)
	})

	t.Run("filters ineligible riders", func(t *testing.T) {
		stale := newRider(t, "stale", 6.52, 3.40, t0.Add(-3*time.Minute))
		busy := newRider(t, "busy", 6.52, 3.40, t0)
		require.NoError(t, busy.Claim())
		identity, _ := rider.NewIdentity(rider.Signals{DeviceID: "nowhere"})
		unpositioned, _ := rider.NewRider(identity, "n", "08010000000", nil, t0)
		fresh := newRider(t, "fresh", 6.60, 3.50, t0)

		got, err := ranker.Rank(pickup, []*rider.Rider{stale, busy, unpositioned, fresh}, t0)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Rider.IsEqual(fresh))
	})

	t.Run("excludes given riders", func(t *testing.T) {
		a := newRider(t, "a", 6.52, 3.40, t0)
		b := newRider(t, "b", 6.60, 3.50, t0)

		got, err := ranker.Rank(pickup, []*rider.Rider{a, b}, t0, services.Excluding(a.ID()))

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Rider.IsEqual(b))
	})

	t.Run("ties go to lowest id", func(t *testing.T) {
		high := restoreWithID(t, "ffffffff-0000-4000-8000-000000000000", 6.52, 3.40)
		low := restoreWithID(t, "00000000-0000-4000-8000-000000000001", 6.52, 3.40)

		got, err := ranker.Rank(pickup, []*rider.Rider{high, low}, t0)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].Rider.IsEqual(low))
	})

	t.Run("no riders is not an error", func(t *testing.T) {
		got, err := ranker.Rank(pickup, nil, t0)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid point", func(t *testing.T) {
		_, err := ranker.Rank(kernel.Location{}, nil, t0)

		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})
}
