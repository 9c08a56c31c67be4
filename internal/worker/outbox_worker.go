package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/events"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/repository"
)

// BrokerPublisher sends one serialized event to the broker.
type BrokerPublisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// OutboxWorker relays committed outbox rows to the broker. Rows are claimed
// oldest-first and marked dispatched only after the broker accepted them, so
// a crash or broker outage re-delivers rather than losing events.
type OutboxWorker struct {
	outbox     repository.OutboxRepository
	broker     BrokerPublisher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration
	batchSize  int
}

// NewOutboxWorker builds the worker. dispatcher may be nil when no in-process
// subscribers exist.
func NewOutboxWorker(outbox repository.OutboxRepository, broker BrokerPublisher, dispatcher events.Dispatcher, logger *zap.Logger, interval time.Duration, batchSize int) *OutboxWorker {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxWorker{
		outbox:     outbox,
		broker:     broker,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Run polls until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				w.logger.Warn("outbox drain failed", zap.Error(err))
			}
		}
	}
}

// Drain publishes one batch of pending rows in buffering order. It stops at
// the first broker failure so later events are never announced before
// earlier ones; unmarked rows are retried on the next tick.
func (w *OutboxWorker) Drain(ctx context.Context) error {
	records, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	dispatched := make([]string, 0, len(records))
	var publishErr error
	for _, record := range records {
		if err := w.broker.Publish(ctx, string(record.EventType), record.Payload); err != nil {
			publishErr = err
			break
		}
		dispatched = append(dispatched, record.ID)
		w.fanOut(ctx, record)
	}

	if len(dispatched) > 0 {
		if err := w.outbox.MarkDispatched(ctx, dispatched); err != nil {
			// The broker already has these events; re-delivery on the next
			// tick is the at-least-once contract, not a fault.
			w.logger.Warn("failed to mark outbox rows dispatched",
				zap.Int("count", len(dispatched)), zap.Error(err))
			return err
		}
	}
	return publishErr
}

func (w *OutboxWorker) fanOut(ctx context.Context, record repository.OutboxRecord) {
	if w.dispatcher == nil {
		return
	}
	var flat map[string]string
	if err := json.Unmarshal(record.Payload, &flat); err != nil {
		w.logger.Warn("malformed outbox payload", zap.String("outbox_id", record.ID), zap.Error(err))
		return
	}
	event, err := domain.EventFromFlat(flat)
	if err != nil {
		w.logger.Warn("cannot rebuild event from outbox row", zap.String("outbox_id", record.ID), zap.Error(err))
		return
	}
	_ = w.dispatcher.Publish(ctx, event)
}
