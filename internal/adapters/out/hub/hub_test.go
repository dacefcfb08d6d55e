package hub_test

import (
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func offeredChange(assignmentID, orderID, riderID kernel.UUID) ports.AssignmentChange {
	return ports.AssignmentChange{
		Event: assignment.Event{
			ID:           kernel.NewUUID(),
			AssignmentID: assignmentID,
			OrderID:      orderID,
			Type:         assignment.EventOffered,
			From:         assignment.Queued,
			To:           assignment.Offered,
			RiderID:      &riderID,
			OccurredAt:   t0,
		},
		Assignment: assignment.Snapshot{
			ID:              assignmentID,
			OrderID:         orderID,
			RiderID:         &riderID,
			Status:          assignment.Offered,
			DistanceKm:      1.57,
			DurationMinutes: 20,
		},
	}
}

func receive(t *testing.T, ch <-chan hub.Message) hub.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(time.Second):
		require.FailNow(t, "no message received")
		return hub.Message{}
	}
}

func TestHub_RoutesAssignmentChangesByAssignmentAndOrder(t *testing.T) {
	// Given
	h := hub.New(slog.Default())
	assignmentID, orderID, riderID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	byAssignment, cancelA := h.Subscribe(assignmentID)
	defer cancelA()
	byOrder, cancelO := h.Subscribe(orderID)
	defer cancelO()

	// When
	require.NoError(t, h.AssignmentChanged(t.Context(), offeredChange(assignmentID, orderID, riderID)))

	// Then
	for _, ch := range []<-chan hub.Message{byAssignment, byOrder} {
		m := receive(t, ch)
		assert.Equal(t, hub.TypeAssignment, m.Type)
		assert.Equal(t, "offered", m.Event)
		assert.Equal(t, riderID.String(), m.RiderID)
		require.NotNil(t, m.DurationMinutes)
		assert.Equal(t, 20, *m.DurationMinutes)
	}
}

func TestHub_ForwardsRiderPositionToTrackingSubscribers(t *testing.T) {
	// Given
	h := hub.New(slog.Default())
	assignmentID, orderID, riderID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	byOrder, cancel := h.Subscribe(orderID)
	defer cancel()
	require.NoError(t, h.AssignmentChanged(t.Context(), offeredChange(assignmentID, orderID, riderID)))
	receive(t, byOrder)

	position, err := kernel.NewLocation(6.53, 3.38)
	require.NoError(t, err)

	// When
	require.NoError(t, h.RiderPositionChanged(t.Context(), ports.RiderPositionChange{
		RiderID:    riderID,
		Location:   position,
		OccurredAt: t0.Add(time.Minute),
	}))

	// Then
	m := receive(t, byOrder)
	assert.Equal(t, hub.TypeRiderPosition, m.Type)
	require.NotNil(t, m.Lat)
	assert.InDelta(t, 6.53, *m.Lat, 1e-9)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := hub.New(slog.Default())
	ch, cancel := h.Subscribe(kernel.NewUUID())

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}
