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
	DefaultRedispatchSchedule = "@every 15s"
	redispatchLeaseKey        = "jobs:queued_redispatch"
)

type RedispatchQueuedHandler interface {
	Handle(ctx context.Context, command commands.RedispatchQueuedCommand) (commands.RedispatchSummary, error)
}

// QueuedRedispatchJob retries dispatch for orders that found no rider earlier.
type QueuedRedispatchJob struct {
	handler  RedispatchQueuedHandler
	locker   ports.Locker
	schedule string
	leaseTTL time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewQueuedRedispatchJob(
	handler RedispatchQueuedHandler,
	locker ports.Locker,
	schedule string,
	leaseTTL time.Duration,
	logger *slog.Logger,
) *QueuedRedispatchJob {
	if schedule == "" {
		schedule = DefaultRedispatchSchedule
	}
	return &QueuedRedispatchJob{
		handler:  handler,
		locker:   locker,
		schedule: schedule,
		leaseTTL: leaseTTL,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "queued_redispatch_job"),
	}
}

func (j *QueuedRedispatchJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Queued redispatch job started", "schedule", j.schedule)
	return nil
}

func (j *QueuedRedispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Queued redispatch job stopped")
}

// Run performs one tick.
func (j *QueuedRedispatchJob) Run(ctx context.Context) {
	withLease(ctx, j.locker, redispatchLeaseKey, j.leaseTTL, j.logger, func(ctx context.Context) {
		cmd, err := commands.NewRedispatchQueuedCommand(0)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build redispatch command", "error", err)
			return
		}

		summary, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Queued redispatch failed", "error", err)
			return
		}
		if summary.Processed == 0 {
			return
		}
		j.logger.InfoContext(ctx, "Queued redispatch finished",
			"processed", summary.Processed,
			"offered", summary.Offered,
			"failed", summary.Failed,
			"exhausted", summary.Exhausted,
		)
	})
}
