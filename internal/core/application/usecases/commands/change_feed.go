package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

// ChangeFeed forwards committed changes to the AssignmentNotifier.
// Notification failures are logged and never fail the command that produced them.
type ChangeFeed struct {
	notifier ports.AssignmentNotifier
	logger   *slog.Logger
}

func NewChangeFeed(notifier ports.AssignmentNotifier, logger *slog.Logger) ChangeFeed {
	return ChangeFeed{
		notifier: notifier,
		logger:   logger.With("component", "change_feed"),
	}
}

// AssignmentChanged publishes one notification per event, each carrying the final snapshot.
func (f ChangeFeed) AssignmentChanged(ctx context.Context, a *assignment.Assignment, events []assignment.Event) {
	snapshot := a.Snapshot()
	for _, e := range events {
		if err := f.notifier.AssignmentChanged(ctx, ports.AssignmentChange{Event: e, Assignment: snapshot}); err != nil {
			f.logger.WarnContext(ctx, "assignment notification failed",
				"assignment_id", e.AssignmentID.String(), "event", string(e.Type), "error", err)
		}
	}
}

// RiderMoved publishes an accepted heartbeat.
func (f ChangeFeed) RiderMoved(ctx context.Context, change ports.RiderPositionChange) {
	if err := f.notifier.RiderPositionChanged(ctx, change); err != nil {
		f.logger.WarnContext(ctx, "rider position notification failed",
			"rider_id", change.RiderID.String(), "error", err)
	}
}
