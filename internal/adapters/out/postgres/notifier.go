package postgres

import (
	"context"
	"encoding/json"

	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// ChangesChannel is the NOTIFY channel every replica listens on.
const ChangesChannel = "dispatch_changes"

var _ ports.AssignmentNotifier = (*Notifier)(nil)

// Notifier fans changes out to all replicas through pg_notify.
// Payloads are hub.Message documents; NOTIFY caps them at 8000 bytes, far above their size.
type Notifier struct {
	db *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

func (n *Notifier) AssignmentChanged(ctx context.Context, change ports.AssignmentChange) error {
	return n.notify(ctx, hub.NewAssignmentMessage(change))
}

func (n *Notifier) RiderPositionChanged(ctx context.Context, change ports.RiderPositionChange) error {
	return n.notify(ctx, hub.NewRiderPositionMessage(change))
}

func (n *Notifier) notify(ctx context.Context, m hub.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", ChangesChannel, string(payload)).Error
}
