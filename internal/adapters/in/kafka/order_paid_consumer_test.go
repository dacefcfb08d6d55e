package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeSession struct {
	ctx context.Context

	mu     sync.Mutex
	marked int
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(*sarama.ConsumerMessage, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked++
}

func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "" }
func (s *fakeSession) GenerationID() int32                      { return 0 }

func (s *fakeSession) MarkedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c fakeClaim) Topic() string                            { return "order.paid" }
func (c fakeClaim) Partition() int32                         { return 0 }
func (c fakeClaim) InitialOffset() int64                     { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

type recorderFunc func(context.Context, commands.RecordPaidOrderCommand) (commands.DispatchResult, error)

func (f recorderFunc) Handle(ctx context.Context, cmd commands.RecordPaidOrderCommand) (commands.DispatchResult, error) {
	return f(ctx, cmd)
}

func claimOf(values ...string) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for _, v := range values {
		ch <- &sarama.ConsumerMessage{Value: []byte(v)}
	}
	close(ch)
	return fakeClaim{ch: ch}
}

func queuedResult(t *testing.T, orderID kernel.UUID) commands.DispatchResult {
	t.Helper()
	pickup, err := kernel.NewLocation(6.53, 3.41)
	require.NoError(t, err)
	dropoff, err := kernel.NewLocation(6.45, 3.39)
	require.NoError(t, err)
	a, err := assignment.NewAssignment(kernel.NewUUID(), orderID, pickup, dropoff, t0)
	require.NoError(t, err)
	return commands.DispatchResult{Assignment: a, Outcome: commands.DispatchQueued}
}

func TestConsumeClaim_ValidEvent_RecordsSnapshotAndMarks(t *testing.T) {
	// Given
	orderID := kernel.NewUUID()
	var got commands.RecordPaidOrderCommand
	c := newOrderPaidConsumer(nil, "order.paid", recorderFunc(
		func(_ context.Context, cmd commands.RecordPaidOrderCommand) (commands.DispatchResult, error) {
			got = cmd
			return queuedResult(t, cmd.OrderID()), nil
		}), 0, slog.Default())
	sess := &fakeSession{ctx: t.Context()}

	// When
	err := c.ConsumeClaim(sess, claimOf(`{"order_id":"`+orderID.String()+
		`","pickup":{"lat":6.53,"lng":3.41},"total":250000,"currency":"NGN"}`))

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, sess.MarkedCount())
	assert.Equal(t, orderID, got.OrderID())
	assert.True(t, got.HasSnapshot())
}

func TestConsumeClaim_InvalidEvents_AreSkipped(t *testing.T) {
	// Given
	c := newOrderPaidConsumer(nil, "order.paid", recorderFunc(
		func(context.Context, commands.RecordPaidOrderCommand) (commands.DispatchResult, error) {
			t.Fatal("recorder must not be called")
			return commands.DispatchResult{}, nil
		}), 0, slog.Default())
	sess := &fakeSession{ctx: t.Context()}

	// When
	err := c.ConsumeClaim(sess, claimOf(
		"not-json",
		`{"order_id":""}`,
		`{"order_id":"`+kernel.NewUUID().String()+`","pickup":{"lat":95,"lng":3.41}}`,
	))

	// Then
	require.NoError(t, err)
	assert.Equal(t, 3, sess.MarkedCount())
}

func TestConsumeClaim_UnknownOrder_IsSkipped(t *testing.T) {
	// Given
	c := newOrderPaidConsumer(nil, "order.paid", recorderFunc(
		func(_ context.Context, cmd commands.RecordPaidOrderCommand) (commands.DispatchResult, error) {
			return commands.DispatchResult{}, errs.NewObjectNotFoundError("order", cmd.OrderID().String())
		}), 0, slog.Default())
	sess := &fakeSession{ctx: t.Context()}

	// When
	err := c.ConsumeClaim(sess, claimOf(`{"order_id":"`+kernel.NewUUID().String()+`"}`))

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, sess.MarkedCount())
}

func TestConsumeClaim_TransientFailure_StopsWithoutMarking(t *testing.T) {
	// Given
	storageDown := errors.New("storage down")
	c := newOrderPaidConsumer(nil, "order.paid", recorderFunc(
		func(context.Context, commands.RecordPaidOrderCommand) (commands.DispatchResult, error) {
			return commands.DispatchResult{}, storageDown
		}), 0, slog.Default())
	sess := &fakeSession{ctx: t.Context()}

	// When
	err := c.ConsumeClaim(sess, claimOf(`{"order_id":"`+kernel.NewUUID().String()+`"}`))

	// Then
	require.ErrorIs(t, err, storageDown)
	assert.Zero(t, sess.MarkedCount())
}
