package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockSweepHandler struct{ mock.Mock }

func (m *MockSweepHandler) Handle(ctx context.Context, cmd commands.SweepTimeoutsCommand) (commands.SweepSummary, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.SweepSummary), args.Error(1)
}

type MockRedispatchHandler struct{ mock.Mock }

func (m *MockRedispatchHandler) Handle(
	ctx context.Context,
	cmd commands.RedispatchQueuedCommand,
) (commands.RedispatchSummary, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.RedispatchSummary), args.Error(1)
}

type stubLocker struct {
	granted  bool
	err      error
	keys     []string
	released int
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.keys = append(l.keys, key)
	if l.err != nil || !l.granted {
		return nil, false, l.err
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, true, nil
}

func TestTimeoutSweeperJob_RunSweepsUnderLease(t *testing.T) {
	// Given
	handler := &MockSweepHandler{}
	handler.On("Handle", mock.Anything, mock.Anything).Return(commands.SweepSummary{Processed: 2, Requeued: 2}, nil).Once()
	locker := &stubLocker{granted: true}
	job := jobs.NewTimeoutSweeperJob(handler, locker, "", time.Minute, discard)

	// When
	job.Run(t.Context())

	// Then
	handler.AssertExpectations(t)
	assert.Equal(t, []string{"jobs:timeout_sweeper"}, locker.keys)
	assert.Equal(t, 1, locker.released)
}

func TestTimeoutSweeperJob_RunSkipsWhenLeaseHeldElsewhere(t *testing.T) {
	// Given
	handler := &MockSweepHandler{}
	locker := &stubLocker{granted: false}
	job := jobs.NewTimeoutSweeperJob(handler, locker, "", time.Minute, discard)

	// When
	job.Run(t.Context())

	// Then
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	assert.Zero(t, locker.released)
}

func TestTimeoutSweeperJob_RunSkipsWhenLockerFails(t *testing.T) {
	// Given
	handler := &MockSweepHandler{}
	locker := &stubLocker{err: errors.New("redis unavailable")}
	job := jobs.NewTimeoutSweeperJob(handler, locker, "", time.Minute, discard)

	// When
	job.Run(t.Context())

	// Then
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestTimeoutSweeperJob_RunWithoutLockerAlwaysSweeps(t *testing.T) {
	// Given
	handler := &MockSweepHandler{}
	handler.On("Handle", mock.Anything, mock.Anything).Return(commands.SweepSummary{}, errors.New("boom")).Once()
	job := jobs.NewTimeoutSweeperJob(handler, nil, "", time.Minute, discard)

	// When
	job.Run(t.Context())

	// Then
	handler.AssertExpectations(t)
}

func TestQueuedRedispatchJob_RunUsesItsOwnLease(t *testing.T) {
	// Given
	handler := &MockRedispatchHandler{}
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RedispatchQueuedCommand) bool {
		return cmd.Limit() > 0
	})).Return(commands.RedispatchSummary{Processed: 1, Offered: 1}, nil).Once()
	locker := &stubLocker{granted: true}
	job := jobs.NewQueuedRedispatchJob(handler, locker, "", time.Minute, discard)

	// When
	job.Run(t.Context())

	// Then
	handler.AssertExpectations(t)
	assert.Equal(t, []string{"jobs:queued_redispatch"}, locker.keys)
}

func TestTimeoutSweeperJob_StartRejectsInvalidSchedule(t *testing.T) {
	// Given
	job := jobs.NewTimeoutSweeperJob(&MockSweepHandler{}, nil, "not a schedule", time.Minute, discard)

	// When
	err := job.Start()

	// Then
	require.Error(t, err)
}

type recordingJob struct {
	name    string
	failing bool
	log     *[]string
}

func (j recordingJob) Start() error {
	if j.failing {
		return errors.New("cannot start")
	}
	*j.log = append(*j.log, "start "+j.name)
	return nil
}

func (j recordingJob) Stop() {
	*j.log = append(*j.log, "stop "+j.name)
}

func TestJobManager_StopsStartedJobsInReverseOrder(t *testing.T) {
	// Given
	var log []string
	jm := jobs.NewJobManager(recordingJob{name: "a", log: &log}, recordingJob{name: "b", log: &log})

	// When
	require.NoError(t, jm.StartAll())
	jm.StopAll()

	// Then
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
}

func TestJobManager_StartFailureStopsAlreadyStarted(t *testing.T) {
	// Given
	var log []string
	jm := jobs.NewJobManager(
		recordingJob{name: "a", log: &log},
		recordingJob{name: "b", failing: true, log: &log},
	)

	// When
	err := jm.StartAll()

	// Then
	require.Error(t, err)
	assert.Equal(t, []string{"start a", "stop a"}, log)
}
