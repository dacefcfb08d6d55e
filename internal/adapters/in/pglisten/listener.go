// Package pglisten bridges Postgres NOTIFY traffic into the local change hub so that
// tracking streams see changes committed by any replica.
package pglisten

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"dispatch/internal/adapters/out/hub"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

type Broadcaster interface {
	Broadcast(m hub.Message)
}

type Listener struct {
	dsn     string
	channel string
	target  Broadcaster
	logger  *slog.Logger
}

func NewListener(dsn, channel string, target Broadcaster, logger *slog.Logger) *Listener {
	return &Listener{
		dsn:     dsn,
		channel: channel,
		target:  target,
		logger:  logger.With("component", "pglisten", "channel", channel),
	}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, l.onEvent)
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(l.channel); err != nil {
		return err
	}
	l.logger.Info("listening for changes")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; anything sent meanwhile is gone.
			if n == nil {
				l.logger.Warn("connection re-established, notifications may have been missed")
				continue
			}
			l.handle(n)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn("listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (l *Listener) handle(n *pq.Notification) {
	var m hub.Message
	if err := json.Unmarshal([]byte(n.Extra), &m); err != nil {
		l.logger.Warn("dropping malformed notification", "error", err)
		return
	}
	l.target.Broadcast(m)
}

func (l *Listener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.logger.Debug("listener connected")
	case pq.ListenerEventDisconnected:
		l.logger.Warn("listener disconnected", "error", err)
	case pq.ListenerEventReconnected:
		l.logger.Info("listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Error("listener connection attempt failed", "error", err)
	}
}
