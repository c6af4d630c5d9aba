package audit

import (
	"context"
	"log/slog"
)

// Publisher delivers one event to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"audit_id", e.ID,
		"entity", e.Entity,
		"entity_id", e.EntityID,
		"action", string(e.Action),
		"request_id", e.RequestID,
		"timestamp", e.Timestamp,
	)
	return nil
}
