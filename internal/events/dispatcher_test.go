package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

func statusEvent(t *testing.T) domain.Event {
	t.Helper()
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	ticket, err := domain.NewTicket("Bug", "Crash on load", "u1", staticClock{at: at})
	require.NoError(t, err)
	require.NoError(t, ticket.ChangeStatus(domain.TicketStatusInProgress, at.Add(time.Minute)))
	evs := ticket.PullEvents()
	return evs[len(evs)-1]
}

type staticClock struct {
	at time.Time
}

func (c staticClock) Now() time.Time {
	return c.at
}

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []domain.Event
	d.Subscribe(domain.EventTicketStatusChanged, func(ctx context.Context, event domain.Event) error {
		got = append(got, event)
		return nil
	})

	event := statusEvent(t)
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, event.ID, got[0].ID)
}

func TestDispatcherIgnoresOtherEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(domain.EventTicketCreated, func(ctx context.Context, event domain.Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), statusEvent(t)))
	assert.False(t, called)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	var order []string
	d.Subscribe(domain.EventTicketStatusChanged, func(ctx context.Context, event domain.Event) error {
		order = append(order, "first")
		return errors.New("handler boom")
	})
	d.Subscribe(domain.EventTicketStatusChanged, func(ctx context.Context, event domain.Event) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), statusEvent(t)))
	assert.Equal(t, []string{"first", "second"}, order)
}
