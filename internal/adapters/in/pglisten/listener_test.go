package pglisten

import (
	"io"
	"log/slog"
	"testing"

	"dispatch/internal/adapters/out/hub"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	messages []hub.Message
}

func (r *recordingBroadcaster) Broadcast(m hub.Message) {
	r.messages = append(r.messages, m)
}

func newTestListener(target Broadcaster) *Listener {
	return NewListener("", "dispatch_changes", target, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListener_HandleForwardsDecodedMessage(t *testing.T) {
	// Given
	target := &recordingBroadcaster{}
	l := newTestListener(target)

	// When
	l.handle(&pq.Notification{
		Channel: "dispatch_changes",
		Extra:   `{"type":"assignment","event":"offered","assignmentId":"a1","orderId":"o1","status":"offered","occurredAt":"2025-03-14T12:00:00Z"}`,
	})

	// Then
	require.Len(t, target.messages, 1)
	assert.Equal(t, hub.TypeAssignment, target.messages[0].Type)
	assert.Equal(t, "a1", target.messages[0].AssignmentID)
	assert.Equal(t, "offered", target.messages[0].Status)
}

func TestListener_HandleDropsMalformedPayload(t *testing.T) {
	// Given
	target := &recordingBroadcaster{}
	l := newTestListener(target)

	// When
	l.handle(&pq.Notification{Channel: "dispatch_changes", Extra: "{not json"})

	// Then
	assert.Empty(t, target.messages)
}
