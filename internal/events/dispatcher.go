package events

import (
	"context"
	"sync"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// Handler handles a dispatched event.
type Handler func(context.Context, domain.Event) error

// Publisher is the port through which events leave the process.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Dispatcher fans events out to in-process subscribers. The outbox worker
// feeds it after a successful broker publish, so local side effects
// (notifications, counters) see the same stream external consumers do.
type Dispatcher interface {
	Publisher
	Subscribe(eventType domain.EventType, handler Handler)
}

type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[domain.EventType][]Handler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[domain.EventType][]Handler),
	}
}

// Publish synchronously invokes handlers for the given event.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event domain.Event) error {
	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// continue processing other handlers despite errors
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType domain.EventType, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
