package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// AssignmentChange is published after an assignment mutation is committed.
type AssignmentChange struct {
	Event      assignment.Event
	Assignment assignment.Snapshot
}

// RiderPositionChange is published after a heartbeat is accepted.
type RiderPositionChange struct {
	RiderID    kernel.UUID
	Location   kernel.Location
	Available  bool
	OccurredAt time.Time
}

// AssignmentNotifier is the observer tracking views subscribe through.
// Implementations must not block the caller for long; delivery is best effort.
type AssignmentNotifier interface {
	AssignmentChanged(ctx context.Context, change AssignmentChange) error
	RiderPositionChanged(ctx context.Context, change RiderPositionChange) error
}

// OrderStatusPublisher propagates delivery status to the order subsystem.
type OrderStatusPublisher interface {
	PublishOrderStatus(ctx context.Context, orderID kernel.UUID, status order.Status, at time.Time) error
}
