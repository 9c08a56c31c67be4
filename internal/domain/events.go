package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the domain events this service announces.
type EventType string

const (
	EventTicketCreated         EventType = "ticket.created"
	EventTicketStatusChanged   EventType = "ticket.status_changed"
	EventTicketPriorityChanged EventType = "ticket.priority_changed"
	EventTicketResponseAdded   EventType = "ticket.response_added"
)

// Event is the immutable envelope handed to the publish side. TicketID is the
// correlation key on every event.
type Event struct {
	ID        string
	Type      EventType
	TicketID  string
	Timestamp time.Time
	Payload   any
}

// TicketCreatedPayload describes a newly opened ticket.
type TicketCreatedPayload struct {
	Title       string
	Description string
	Status      TicketStatus
}

// TicketStatusChangedPayload carries the before and after status.
type TicketStatusChangedPayload struct {
	OldStatus TicketStatus
	NewStatus TicketStatus
}

// TicketPriorityChangedPayload carries the before and after priority.
type TicketPriorityChangedPayload struct {
	OldPriority   TicketPriority
	NewPriority   TicketPriority
	Justification string
}

// TicketResponseAddedPayload describes an admin response.
type TicketResponseAddedPayload struct {
	ResponseID string
	AdminID    string
	Text       string
}

func newEvent(eventType EventType, ticketID string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: at,
		Payload:   payload,
	}
}

// Flatten renders the event as the flat key/value structure used on the wire.
// The timestamp is RFC3339 in UTC.
func (e Event) Flatten() map[string]string {
	out := map[string]string{
		"event_id":   e.ID,
		"event_type": string(e.Type),
		"ticket_id":  e.TicketID,
		"timestamp":  e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	switch p := e.Payload.(type) {
	case TicketCreatedPayload:
		out["title"] = p.Title
		out["description"] = p.Description
		out["status"] = string(p.Status)
	case TicketStatusChangedPayload:
		out["old_status"] = string(p.OldStatus)
		out["new_status"] = string(p.NewStatus)
	case TicketPriorityChangedPayload:
		out["old_priority"] = string(p.OldPriority)
		out["new_priority"] = string(p.NewPriority)
		out["justification"] = p.Justification
	case TicketResponseAddedPayload:
		out["response_id"] = p.ResponseID
		out["admin_id"] = p.AdminID
		out["text"] = p.Text
	}
	return out
}

// EventFromFlat rebuilds an Event from its flattened form. Used by the outbox
// dispatcher to hand stored events to in-process subscribers.
func EventFromFlat(flat map[string]string) (Event, error) {
	ts, err := time.Parse(time.RFC3339Nano, flat["timestamp"])
	if err != nil {
		return Event{}, fmt.Errorf("parse event timestamp: %w", err)
	}

	event := Event{
		ID:        flat["event_id"],
		Type:      EventType(flat["event_type"]),
		TicketID:  flat["ticket_id"],
		Timestamp: ts,
	}
	switch event.Type {
	case EventTicketCreated:
		event.Payload = TicketCreatedPayload{
			Title:       flat["title"],
			Description: flat["description"],
			Status:      TicketStatus(flat["status"]),
		}
	case EventTicketStatusChanged:
		event.Payload = TicketStatusChangedPayload{
			OldStatus: TicketStatus(flat["old_status"]),
			NewStatus: TicketStatus(flat["new_status"]),
		}
	case EventTicketPriorityChanged:
		event.Payload = TicketPriorityChangedPayload{
			OldPriority:   TicketPriority(flat["old_priority"]),
			NewPriority:   TicketPriority(flat["new_priority"]),
			Justification: flat["justification"],
		}
	case EventTicketResponseAdded:
		event.Payload = TicketResponseAddedPayload{
			ResponseID: flat["response_id"],
			AdminID:    flat["admin_id"],
			Text:       flat["text"],
		}
	default:
		return Event{}, fmt.Errorf("unknown event type %q", flat["event_type"])
	}
	return event, nil
}
