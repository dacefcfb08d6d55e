package memory_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func loc(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return l
}

func newRider(t *testing.T, device string, at kernel.Location) *rider.Rider {
	t.Helper()
	identity, err := rider.NewIdentity(rider.Signals{DeviceID: device})
	require.NoError(t, err)
	r, err := rider.NewRider(identity, "Ada", "+2348010000000", &at, t0)
	require.NoError(t, err)
	return r
}

func newAssignment(t *testing.T, orderID kernel.UUID) *assignment.Assignment {
	t.Helper()
	a, err := assignment.NewAssignment(kernel.NewUUID(), orderID, loc(t, 6.5244, 3.3792), loc(t, 6.4281, 3.4219), t0)
	require.NoError(t, err)
	a.PullEvents()
	return a
}

// inTx runs fn inside a committed unit of work.
func inTx(t *testing.T, store *memory.Store, fn func(uow ports.UnitOfWork)) {
	t.Helper()
	ctx := t.Context()
	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	fn(uow)
	require.NoError(t, uow.Commit(ctx))
}

func TestUnitOfWork_RollbackRestoresState(t *testing.T) {
	// Given
	ctx := t.Context()
	store := memory.NewStore()
	r := newRider(t, "d-1", loc(t, 6.52, 3.38))
	inTx(t, store, func(uow ports.UnitOfWork) {
		require.NoError(t, uow.RiderRepository().Add(ctx, r))
	})

	// When
	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	claimed, err := uow.RiderRepository().Claim(ctx, r.ID())
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, uow.Rollback(ctx))

	// Then
	inTx(t, store, func(uow ports.UnitOfWork) {
		got, err := uow.RiderRepository().Get(ctx, r.ID())
		require.NoError(t, err)
		assert.True(t, got.IsAvailable())
	})
}

func TestUnitOfWork_RollbackAfterCommitIsNoop(t *testing.T) {
	ctx := t.Context()
	uow := memory.NewStore().Create()

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.Commit(ctx))

	assert.NoError(t, uow.Rollback(ctx))
	assert.ErrorIs(t, uow.Commit(ctx), memory.ErrTransactionIsNotActive)
}

func TestUnitOfWork_BeginWaitsForActiveUnit(t *testing.T) {
	// Given
	store := memory.NewStore()
	first := store.Create()
	require.NoError(t, first.Begin(t.Context()))

	// When
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := store.Create().Begin(ctx)

	// Then
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, first.Commit(t.Context()))
	assert.NoError(t, store.Create().Begin(t.Context()))
}

func TestRepositories_RequireActiveUnit(t *testing.T) {
	uow := memory.NewStore().Create()

	_, err := uow.RiderRepository().Get(t.Context(), kernel.NewUUID())

	assert.ErrorIs(t, err, memory.ErrTransactionIsNotActive)
}

func TestRiderRepository_ClaimIsConditional(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	r := newRider(t, "d-1", loc(t, 6.52, 3.38))

	inTx(t, store, func(uow ports.UnitOfWork) {
		riders := uow.RiderRepository()
		require.NoError(t, riders.Add(ctx, r))

		first, err := riders.Claim(ctx, r.ID())
		require.NoError(t, err)
		second, err := riders.Claim(ctx, r.ID())
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
	})
}

func TestRiderRepository_UpdatePresenceDropsStaleHeartbeat(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	r := newRider(t, "d-1", loc(t, 6.52, 3.38))

	inTx(t, store, func(uow ports.UnitOfWork) {
		riders := uow.RiderRepository()
		require.NoError(t, riders.Add(ctx, r))

		applied, err := riders.UpdatePresence(ctx, r.ID(), loc(t, 6.53, 3.39), t0.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = riders.UpdatePresence(ctx, r.ID(), loc(t, 6.60, 3.50), t0.Add(30*time.Second))
		require.NoError(t, err)
		assert.False(t, applied)

		got, err := riders.Get(ctx, r.ID())
		require.NoError(t, err)
		assert.Equal(t, 6.53, got.Location().Lat())
		assert.Equal(t, t0.Add(time.Minute), got.LastSeenAt())
	})
}

func TestRiderRepository_GoOnlineRefusedWhileBusy(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	r := newRider(t, "d-1", loc(t, 6.52, 3.38))
	a := newAssignment(t, kernel.NewUUID())
	estimate, err := assignment.NewEstimate(1.2, 8)
	require.NoError(t, err)
	require.NoError(t, a.Offer(r.ID(), estimate, t0))

	inTx(t, store, func(uow ports.UnitOfWork) {
		riders := uow.RiderRepository()
		require.NoError(t, riders.Add(ctx, r))
		require.NoError(t, uow.AssignmentRepository().Add(ctx, a))
		require.NoError(t, riders.GoOffline(ctx, r.ID()))

		online, err := riders.GoOnline(ctx, r.ID())

		require.NoError(t, err)
		assert.False(t, online)
	})
}

func TestRiderRepository_ClaimRefusesRiderHoldingAssignment(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	r := newRider(t, "d-1", loc(t, 6.52, 3.38))
	a := newAssignment(t, kernel.NewUUID())
	estimate, err := assignment.NewEstimate(1.2, 8)
	require.NoError(t, err)
	require.NoError(t, a.Offer(r.ID(), estimate, t0))

	inTx(t, store, func(uow ports.UnitOfWork) {
		riders := uow.RiderRepository()
		require.NoError(t, riders.Add(ctx, r))
		require.NoError(t, uow.AssignmentRepository().Add(ctx, a))
		// Flagged available while the offer is still open.
		require.NoError(t, riders.Release(ctx, r.ID()))

		claimed, err := riders.Claim(ctx, r.ID())

		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

func TestRiderRepository_GoOfflineThenGoOnline(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	r := newRider(t, "d-1", loc(t, 6.52, 3.38))

	inTx(t, store, func(uow ports.UnitOfWork) {
		riders := uow.RiderRepository()
		require.NoError(t, riders.Add(ctx, r))

		require.NoError(t, riders.GoOffline(ctx, r.ID()))
		claimed, err := riders.Claim(ctx, r.ID())
		require.NoError(t, err)
		assert.False(t, claimed)

		online, err := riders.GoOnline(ctx, r.ID())
		require.NoError(t, err)
		assert.True(t, online)
		got, err := riders.Get(ctx, r.ID())
		require.NoError(t, err)
		assert.True(t, got.IsAvailable())
	})
}

func TestRiderRepository_FindAvailableFiltersStaleAndBusy(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	fresh := newRider(t, "fresh", loc(t, 6.52, 3.38))
	busy := newRider(t, "busy", loc(t, 6.52, 3.38))

	inTx(t, store, func(uow ports.UnitOfWork) {
		riders := uow.RiderRepository()
		require.NoError(t, riders.Add(ctx, fresh))
		require.NoError(t, riders.Add(ctx, busy))
		_, err := riders.Claim(ctx, busy.ID())
		require.NoError(t, err)

		found, err := riders.FindAvailable(ctx, t0.Add(-time.Minute))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.True(t, found[0].ID().IsEqual(fresh.ID()))

		found, err = riders.FindAvailable(ctx, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestAssignmentRepository_OneActivePerOrder(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	orderID := kernel.NewUUID()

	inTx(t, store, func(uow ports.UnitOfWork) {
		assignments := uow.AssignmentRepository()
		require.NoError(t, assignments.Add(ctx, newAssignment(t, orderID)))

		err := assignments.Add(ctx, newAssignment(t, orderID))

		assert.ErrorIs(t, err, ports.ErrActiveAssignmentExists)
	})
}

func TestAssignmentRepository_OneActivePerRider(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	riderID := kernel.NewUUID()
	estimate, err := assignment.NewEstimate(1.2, 8)
	require.NoError(t, err)

	first := newAssignment(t, kernel.NewUUID())
	require.NoError(t, first.Offer(riderID, estimate, t0))
	added := newAssignment(t, kernel.NewUUID())
	require.NoError(t, added.Offer(riderID, estimate, t0))
	updated := newAssignment(t, kernel.NewUUID())

	inTx(t, store, func(uow ports.UnitOfWork) {
		assignments := uow.AssignmentRepository()
		require.NoError(t, assignments.Add(ctx, first))
		require.NoError(t, assignments.Add(ctx, updated))

		err := assignments.Add(ctx, added)
		assert.ErrorIs(t, err, ports.ErrRiderAlreadyAssigned)

		require.NoError(t, updated.Offer(riderID, estimate, t0))
		err = assignments.Update(ctx, updated)
		assert.ErrorIs(t, err, ports.ErrRiderAlreadyAssigned)
	})
}

func TestAssignmentRepository_UpdateIsCompareAndSwap(t *testing.T) {
	// Given
	ctx := t.Context()
	store := memory.NewStore()
	a := newAssignment(t, kernel.NewUUID())
	inTx(t, store, func(uow ports.UnitOfWork) {
		require.NoError(t, uow.AssignmentRepository().Add(ctx, a))
	})
	assert.Equal(t, int64(1), a.Version())

	var first, second *assignment.Assignment
	inTx(t, store, func(uow ports.UnitOfWork) {
		var err error
		first, err = uow.AssignmentRepository().Get(ctx, a.ID())
		require.NoError(t, err)
		second, err = uow.AssignmentRepository().Get(ctx, a.ID())
		require.NoError(t, err)
	})

	// When
	require.NoError(t, first.Transition(assignment.Cancelled, nil, t0))
	require.NoError(t, second.Transition(assignment.Cancelled, nil, t0))
	inTx(t, store, func(uow ports.UnitOfWork) {
		require.NoError(t, uow.AssignmentRepository().Update(ctx, first))
		err := uow.AssignmentRepository().Update(ctx, second)

		// Then
		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	})
	assert.Equal(t, int64(2), first.Version())
}

func TestAssignmentRepository_LatestAndQueuedOrdering(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	orderID := kernel.NewUUID()
	cancelled := newAssignment(t, orderID)
	require.NoError(t, cancelled.Transition(assignment.Cancelled, nil, t0))
	current := newAssignment(t, orderID)
	other := newAssignment(t, kernel.NewUUID())

	inTx(t, store, func(uow ports.UnitOfWork) {
		assignments := uow.AssignmentRepository()
		require.NoError(t, assignments.Add(ctx, cancelled))
		require.NoError(t, assignments.Add(ctx, current))
		require.NoError(t, assignments.Add(ctx, other))

		latest, err := assignments.GetLatestByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, latest.ID().IsEqual(current.ID()))

		queued, err := assignments.FindQueued(ctx, 10)
		require.NoError(t, err)
		require.Len(t, queued, 2)
		assert.True(t, queued[0].ID().IsEqual(current.ID()))
		assert.True(t, queued[1].ID().IsEqual(other.ID()))

		queued, err = assignments.FindQueued(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, queued, 1)
	})
}

func TestOrderRepository_SaveAndUpdateStatus(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	pickup, dropoff := loc(t, 6.5244, 3.3792), loc(t, 6.4281, 3.4219)
	o, err := order.NewOrder(kernel.NewUUID(), &pickup, &dropoff, 250000, "ngn")
	require.NoError(t, err)

	inTx(t, store, func(uow ports.UnitOfWork) {
		orders := uow.OrderRepository()
		require.NoError(t, orders.Save(ctx, o))
		require.NoError(t, orders.UpdateStatus(ctx, o.ID(), order.Preparing))

		got, err := orders.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Preparing, got.Status())
		assert.Equal(t, "NGN", got.Currency())

		err = orders.UpdateStatus(ctx, kernel.NewUUID(), order.Preparing)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
