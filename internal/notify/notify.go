// Package notify publishes build-completed events for downstream consumers
// (chat hooks, cache invalidation). Publishing is best effort: a notification
// failure never changes a build outcome.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/stationhq/stylebook/internal/config"
)

// BuildEvent describes one completed build.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Outcome    string    `json:"outcome"`
	Commit     string    `json:"commit,omitempty"`
	Rulesets   int       `json:"rulesets"`
	Guidelines int       `json:"guidelines"`
	Pages      int       `json:"pages"`
	Warnings   int       `json:"warnings"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier publishes build events.
type Notifier interface {
	BuildCompleted(ctx context.Context, event BuildEvent) error
	Close()
}

// NoopNotifier is the default when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) BuildCompleted(context.Context, BuildEvent) error { return nil }
func (NoopNotifier) Close()                                           {}

// NATSNotifier publishes build events to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the configured NATS server.
func NewNATSNotifier(cfg config.NotifyConfig) (*NATSNotifier, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("notifications are disabled")
	}
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	slog.Info("NATS notifier initialized", "url", cfg.URL, "subject", cfg.Subject)
	return &NATSNotifier{conn: conn, subject: cfg.Subject}, nil
}

// BuildCompleted publishes the event as JSON.
func (n *NATSNotifier) BuildCompleted(ctx context.Context, event BuildEvent) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}

	slog.Debug("Published build event",
		"build_id", event.BuildID,
		"outcome", event.Outcome,
		"subject", n.subject)
	return nil
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
