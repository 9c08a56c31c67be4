package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// cachedTicketRepository is a read-through cache over GetByID. Cache failures
// degrade to the underlying repository; mutations invalidate the entry.
type cachedTicketRepository struct {
	inner  TicketRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTicketRepository wraps a ticket repository with a Redis cache.
func NewCachedTicketRepository(inner TicketRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) TicketRepository {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &cachedTicketRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return "ticket:" + id
}

func (r *cachedTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if raw, err := r.client.Get(ctx, cacheKey(id)).Bytes(); err == nil {
		var ticket domain.Ticket
		if err := json.Unmarshal(raw, &ticket); err == nil {
			return &ticket, nil
		}
		r.invalidate(ctx, id)
	}

	ticket, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(ticket); err == nil {
		if err := r.client.Set(ctx, cacheKey(id), raw, r.ttl).Err(); err != nil {
			r.logger.Debug("ticket cache set failed", zap.String("ticket_id", id), zap.Error(err))
		}
	}
	return ticket, nil
}

func (r *cachedTicketRepository) Create(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error {
	return r.inner.Create(ctx, ticket, events)
}

func (r *cachedTicketRepository) Update(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error {
	if err := r.inner.Update(ctx, ticket, events); err != nil {
		return err
	}
	r.invalidate(ctx, ticket.ID)
	return nil
}

func (r *cachedTicketRepository) AddResponse(ctx context.Context, ticket *domain.Ticket, response *domain.TicketResponse, events []domain.Event) error {
	return r.inner.AddResponse(ctx, ticket, response, events)
}

func (r *cachedTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	return r.inner.ListWithFilter(ctx, filter)
}

func (r *cachedTicketRepository) ListResponses(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	return r.inner.ListResponses(ctx, ticketID)
}

func (r *cachedTicketRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedTicketRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.Debug("ticket cache invalidation failed", zap.String("ticket_id", id), zap.Error(err))
	}
}
