package http

import (
	"net/http"

	"dispatch/internal/adapters/in/http/openapi"
	"dispatch/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
)

// RunSweep handles POST /api/v1/sweeps - the manual form of the timeout sweeper job.
func (s *Server) RunSweep(ctx echo.Context) error {
	limit, err := queryParam[openapi.Limit](ctx, "limit", false)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewSweepTimeoutsCommand(limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	summary, err := s.handlers.SweepTimeouts.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, openapi.SweepSummary{
		Processed:  summary.Processed,
		Reassigned: summary.Reassigned,
		Requeued:   summary.Requeued,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	})
}

// RedispatchQueued handles POST /api/v1/dispatches/queued.
func (s *Server) RedispatchQueued(ctx echo.Context) error {
	limit, err := queryParam[openapi.Limit](ctx, "limit", false)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRedispatchQueuedCommand(limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	summary, err := s.handlers.RedispatchQueued.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, openapi.RedispatchSummary{
		Processed: summary.Processed,
		Offered:   summary.Offered,
		Failed:    summary.Failed,
		Exhausted: summary.Exhausted,
	})
}
