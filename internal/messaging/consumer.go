package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/config"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/repository"
)

const (
	initialRetryDelay  = time.Second
	maxRetryDelay      = 60 * time.Second
	retryBackoffFactor = 2
)

// eventTypeAssignmentDeleted is announced by the assignment service on the
// shared fanout exchange; the ticket it references must be removed.
const eventTypeAssignmentDeleted = "assignment.deleted"

// inboundEvent is the subset of foreign event fields this consumer reads.
type inboundEvent struct {
	EventType string `json:"event_type"`
	TicketID  string `json:"ticket_id"`
}

// Consumer listens on the shared exchange for events from other services.
// Removing tickets for deleted assignments is a data-retention concern of
// this adapter; it is not a domain operation and emits no events.
type Consumer struct {
	cfg     config.RabbitConfig
	tickets repository.TicketRepository
	logger  *zap.Logger
}

// NewConsumer builds the consumer.
func NewConsumer(cfg config.RabbitConfig, tickets repository.TicketRepository, logger *zap.Logger) *Consumer {
	return &Consumer{cfg: cfg, tickets: tickets, logger: logger}
}

// Run consumes until the context is cancelled, reconnecting with exponential
// backoff when the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.consume(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return ctx.Err()
		}

		attempt++
		delay := retryDelay(attempt)
		c.logger.Warn("rabbitmq connection lost",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL())
	if err != nil {
		return err
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	if err := declareExchange(channel, c.cfg.Exchange); err != nil {
		return err
	}
	if _, err := channel.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := channel.QueueBind(c.cfg.Queue, "", c.cfg.Exchange, false, nil); err != nil {
		return err
	}

	deliveries, err := channel.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.logger.Info("consumer started, waiting for messages",
		zap.String("queue", c.cfg.Queue),
		zap.String("exchange", c.cfg.Exchange))

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, delivery)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var event inboundEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		c.logger.Error("invalid JSON in message body", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	if event.EventType != eventTypeAssignmentDeleted {
		// Fanout exchange: foreign events arrive here too, skip them.
		_ = delivery.Ack(false)
		return
	}

	if err := c.handleAssignmentDeleted(ctx, event); err != nil {
		c.logger.Error("error processing event",
			zap.String("event_type", event.EventType),
			zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}
	_ = delivery.Ack(false)
}

func (c *Consumer) handleAssignmentDeleted(ctx context.Context, event inboundEvent) error {
	if event.TicketID == "" {
		c.logger.Warn("assignment.deleted event without ticket_id, ignoring")
		return nil
	}

	err := c.tickets.Delete(ctx, event.TicketID)
	if errors.Is(err, domain.ErrTicketNotFound) {
		c.logger.Warn("ticket referenced by assignment.deleted not found",
			zap.String("ticket_id", event.TicketID))
		return nil
	}
	if err != nil {
		return err
	}

	c.logger.Info("ticket removed for deleted assignment", zap.String("ticket_id", event.TicketID))
	return nil
}

func retryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= retryBackoffFactor
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
