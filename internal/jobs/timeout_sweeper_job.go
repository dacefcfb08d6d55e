package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const (
	DefaultSweepSchedule = "@every 30s"
	sweepLeaseKey        = "jobs:timeout_sweeper"
)

type SweepTimeoutsHandler interface {
	Handle(ctx context.Context, command commands.SweepTimeoutsCommand) (commands.SweepSummary, error)
}

// TimeoutSweeperJob periodically recovers offers that were not accepted in time.
// With several replicas only the holder of the lease sweeps in a given tick.
type TimeoutSweeperJob struct {
	handler  SweepTimeoutsHandler
	locker   ports.Locker
	schedule string
	leaseTTL time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewTimeoutSweeperJob(
	handler SweepTimeoutsHandler,
	locker ports.Locker,
	schedule string,
	leaseTTL time.Duration,
	logger *slog.Logger,
) *TimeoutSweeperJob {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &TimeoutSweeperJob{
		handler:  handler,
		locker:   locker,
		schedule: schedule,
		leaseTTL: leaseTTL,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "timeout_sweeper_job"),
	}
}

func (j *TimeoutSweeperJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Timeout sweeper job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (j *TimeoutSweeperJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Timeout sweeper job stopped")
}

// Run performs one tick.
func (j *TimeoutSweeperJob) Run(ctx context.Context) {
	withLease(ctx, j.locker, sweepLeaseKey, j.leaseTTL, j.logger, func(ctx context.Context) {
		cmd, err := commands.NewSweepTimeoutsCommand(0)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build sweep command", "error", err)
			return
		}

		summary, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Timeout sweep failed", "error", err)
			return
		}
		if summary.Processed == 0 {
			return
		}
		j.logger.InfoContext(ctx, "Timeout sweep finished",
			"processed", summary.Processed,
			"reassigned", summary.Reassigned,
			"requeued", summary.Requeued,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
		)
	})
}
