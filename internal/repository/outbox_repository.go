package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// OutboxRecord is a durable event row awaiting broker dispatch. Payload holds
// the event's flattened form as JSON.
type OutboxRecord struct {
	ID           string
	EventType    domain.EventType
	TicketID     string
	Payload      []byte
	CreatedAt    time.Time
	DispatchedAt *time.Time
}

// OutboxRepository persists events in the same transaction as the state
// change they describe, and hands pending rows to the dispatcher.
type OutboxRepository interface {
	Append(ctx context.Context, tx pgx.Tx, events []domain.Event) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkDispatched(ctx context.Context, ids []string) error
}

type outboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository returns a Postgres-backed implementation.
func NewOutboxRepository(pool *pgxpool.Pool) OutboxRepository {
	return &outboxRepository{pool: pool}
}

func (r *outboxRepository) Append(ctx context.Context, tx pgx.Tx, events []domain.Event) error {
	const query = `
        INSERT INTO outbox_events (id, event_type, ticket_id, payload, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	for _, event := range events {
		payload, err := json.Marshal(event.Flatten())
		if err != nil {
			return fmt.Errorf("marshal outbox payload: %w", err)
		}
		if _, err := tx.Exec(ctx, query,
			event.ID,
			event.Type,
			event.TicketID,
			payload,
			event.Timestamp,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, event_type, ticket_id, payload, created_at, dispatched_at
        FROM outbox_events
        WHERE dispatched_at IS NULL
        ORDER BY created_at, id
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OutboxRecord
	for rows.Next() {
		var record OutboxRecord
		if err := rows.Scan(
			&record.ID,
			&record.EventType,
			&record.TicketID,
			&record.Payload,
			&record.CreatedAt,
			&record.DispatchedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *outboxRepository) MarkDispatched(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE outbox_events SET dispatched_at = NOW() WHERE id = ANY($1)`
	_, err := r.pool.Exec(ctx, query, ids)
	return err
}
