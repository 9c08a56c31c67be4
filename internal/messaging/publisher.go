package messaging

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/config"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// Publisher delivers event payloads to the shared fanout exchange. The
// connection is established lazily and re-established after a failed publish.
type Publisher struct {
	cfg    config.RabbitConfig
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher creates a broker publisher for the configured exchange.
func NewPublisher(cfg config.RabbitConfig, logger *zap.Logger) *Publisher {
	return &Publisher{cfg: cfg, logger: logger}
}

// Publish sends one JSON body to the exchange with persistent delivery. The
// routing key carries the event type; fanout consumers ignore it but it aids
// debugging on the broker.
func (p *Publisher) Publish(ctx context.Context, eventType string, body []byte) error {
	channel, err := p.ensureChannel()
	if err != nil {
		return &domain.PublishError{Err: err}
	}

	err = channel.PublishWithContext(ctx, p.cfg.Exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.reset()
		return &domain.PublishError{Err: err}
	}
	return nil
}

// Close releases the connection.
func (p *Publisher) Close() {
	p.reset()
}

func (p *Publisher) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.conn.IsClosed() {
		return p.channel, nil
	}

	conn, err := amqp.Dial(p.cfg.URL())
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := declareExchange(channel, p.cfg.Exchange); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	p.conn = conn
	p.channel = channel
	p.logger.Info("connected to rabbitmq", zap.String("exchange", p.cfg.Exchange))
	return channel, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func declareExchange(channel *amqp.Channel, name string) error {
	return channel.ExchangeDeclare(name, "fanout", true, false, false, false, nil)
}
