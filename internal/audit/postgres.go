package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresPublisher appends events to the audit_events table. Inserts are
// idempotent on the event id so a retried publish never duplicates a row.
type PostgresPublisher struct {
	db *sql.DB
}

func NewPostgresPublisher(db *sql.DB) *PostgresPublisher {
	return &PostgresPublisher{db: db}
}

func (p *PostgresPublisher) Publish(ctx context.Context, e Event) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, entity, entity_id, action, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Entity, e.EntityID, string(e.Action), e.RequestID, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByEntity returns the recorded events of one row, oldest first.
func (p *PostgresPublisher) ListByEntity(ctx context.Context, entity string, entityID int) ([]Event, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, entity, entity_id, action, request_id, occurred_at
		FROM audit_events
		WHERE entity = $1 AND entity_id = $2
		ORDER BY occurred_at, id`,
		entity, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			action string
		)
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &action, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
