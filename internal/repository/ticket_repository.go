package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// TicketFilter captures listing parameters. Results come back in a stable
// order regardless of filters.
type TicketFilter struct {
	UserID     *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Limit      int
	Offset     int
}

// TicketRepository is the storage port for the ticket aggregate. Mutating
// calls write the ticket row and the given events' outbox rows in one
// transaction, so a committed state change always carries its announcement.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error
	Update(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error
	AddResponse(ctx context.Context, ticket *domain.Ticket, response *domain.TicketResponse, events []domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListResponses(ctx context.Context, ticketID string) ([]domain.TicketResponse, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool, outbox OutboxRepository) TicketRepository {
	return &ticketRepository{pool: pool, outbox: outbox}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, priority_justification, user_id, version, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			ticket.ID,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.PriorityJustification,
			ticket.UserID,
			ticket.Version,
			ticket.CreatedAt,
			ticket.UpdatedAt,
		); err != nil {
			return err
		}
		return r.outbox.Append(ctx, tx, events)
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4,
            priority_justification=$5, version=version+1, updated_at=$6
        WHERE id=$7 AND version=$8`

	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, query,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.PriorityJustification,
			ticket.UpdatedAt,
			ticket.ID,
			ticket.Version,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return r.missingOrStale(ctx, tx, ticket.ID)
		}
		ticket.Version++
		return r.outbox.Append(ctx, tx, events)
	})
}

func (r *ticketRepository) AddResponse(ctx context.Context, ticket *domain.Ticket, response *domain.TicketResponse, events []domain.Event) error {
	const query = `
        INSERT INTO ticket_responses (id, ticket_id, admin_id, text, created_at)
        VALUES ($1,$2,$3,$4,$5)`

	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			response.ID,
			response.TicketID,
			response.AdminID,
			response.Text,
			response.CreatedAt,
		); err != nil {
			return err
		}
		return r.outbox.Append(ctx, tx, events)
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, priority, priority_justification,
               user_id, version, created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.PriorityJustification,
		&ticket.UserID,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, status, priority, priority_justification,
                    user_id, version, created_at, updated_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.PriorityJustification,
			&ticket.UserID,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListResponses(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	const query = `
        SELECT id, ticket_id, admin_id, text, created_at
        FROM ticket_responses WHERE ticket_id=$1
        ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var response domain.TicketResponse
		if err := rows.Scan(
			&response.ID,
			&response.TicketID,
			&response.AdminID,
			&response.Text,
			&response.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}

// Delete is a data-retention operation for the messaging adapter, not a
// domain mutation; it emits no events.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) missingOrStale(ctx context.Context, tx pgx.Tx, id string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrVersionConflict
	}
	return domain.ErrTicketNotFound
}
