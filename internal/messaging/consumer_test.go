package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/config"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/repository"
)

func TestRetryDelayBacksOffAndCaps(t *testing.T) {
	assert.Equal(t, time.Second, retryDelay(1))
	assert.Equal(t, 2*time.Second, retryDelay(2))
	assert.Equal(t, 4*time.Second, retryDelay(3))
	assert.Equal(t, 32*time.Second, retryDelay(6))
	assert.Equal(t, 60*time.Second, retryDelay(7))
	assert.Equal(t, 60*time.Second, retryDelay(20))
}

func TestInboundEventParsing(t *testing.T) {
	body := []byte(`{"event_type":"assignment.deleted","ticket_id":"t-1","assignment_id":"a-9"}`)

	var event inboundEvent
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, eventTypeAssignmentDeleted, event.EventType)
	assert.Equal(t, "t-1", event.TicketID)
}

// fakeAcknowledger records which settlement path a delivery took.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

// deleteRecorder implements the ticket repository; only Delete matters here.
type deleteRecorder struct {
	deleted   []string
	deleteErr error
}

func (d *deleteRecorder) Create(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error {
	return nil
}

func (d *deleteRecorder) Update(ctx context.Context, ticket *domain.Ticket, events []domain.Event) error {
	return nil
}

func (d *deleteRecorder) AddResponse(ctx context.Context, ticket *domain.Ticket, response *domain.TicketResponse, events []domain.Event) error {
	return nil
}

func (d *deleteRecorder) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return nil, domain.ErrTicketNotFound
}

func (d *deleteRecorder) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (d *deleteRecorder) ListResponses(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	return nil, nil
}

func (d *deleteRecorder) Delete(ctx context.Context, id string) error {
	if d.deleteErr != nil {
		return d.deleteErr
	}
	d.deleted = append(d.deleted, id)
	return nil
}

func newTestConsumer(tickets repository.TicketRepository) *Consumer {
	return NewConsumer(config.RabbitConfig{Exchange: "tickets", Queue: "tickets_queue"}, tickets, zap.NewNop())
}

func delivery(ack *fakeAcknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)}
}

func TestHandleDeliveryDeletesTicket(t *testing.T) {
	tickets := &deleteRecorder{}
	consumer := newTestConsumer(tickets)
	ack := &fakeAcknowledger{}

	consumer.handleDelivery(context.Background(),
		delivery(ack, `{"event_type":"assignment.deleted","ticket_id":"t-1"}`))

	assert.Equal(t, []string{"t-1"}, tickets.deleted)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDeliveryNacksPoisonMessage(t *testing.T) {
	tickets := &deleteRecorder{}
	consumer := newTestConsumer(tickets)
	ack := &fakeAcknowledger{}

	consumer.handleDelivery(context.Background(), delivery(ack, `{not json`))

	assert.Empty(t, tickets.deleted)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleDeliveryAcksForeignEvents(t *testing.T) {
	tickets := &deleteRecorder{}
	consumer := newTestConsumer(tickets)
	ack := &fakeAcknowledger{}

	consumer.handleDelivery(context.Background(),
		delivery(ack, `{"event_type":"ticket.created","ticket_id":"t-1"}`))

	assert.Empty(t, tickets.deleted)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDeliveryAcksMissingTicket(t *testing.T) {
	tickets := &deleteRecorder{deleteErr: domain.ErrTicketNotFound}
	consumer := newTestConsumer(tickets)
	ack := &fakeAcknowledger{}

	consumer.handleDelivery(context.Background(),
		delivery(ack, `{"event_type":"assignment.deleted","ticket_id":"t-gone"}`))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDeliveryAcksEmptyTicketID(t *testing.T) {
	tickets := &deleteRecorder{}
	consumer := newTestConsumer(tickets)
	ack := &fakeAcknowledger{}

	consumer.handleDelivery(context.Background(),
		delivery(ack, `{"event_type":"assignment.deleted"}`))

	assert.Empty(t, tickets.deleted)
	assert.True(t, ack.acked)
}

func TestHandleDeliveryNacksOnStorageFailure(t *testing.T) {
	tickets := &deleteRecorder{deleteErr: errors.New("connection refused")}
	consumer := newTestConsumer(tickets)
	ack := &fakeAcknowledger{}

	consumer.handleDelivery(context.Background(),
		delivery(ack, `{"event_type":"assignment.deleted","ticket_id":"t-1"}`))

	assert.True(t, ack.nacked)
	assert.False(t, ack.acked)
}
