package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// statusOrder defines the only legal direction of travel. A transition is
// valid iff it advances exactly one position.
var statusOrder = map[TicketStatus]int{
	TicketStatusOpen:       0,
	TicketStatusInProgress: 1,
	TicketStatusClosed:     2,
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityUnassigned TicketPriority = "UNASSIGNED"
	TicketPriorityLow        TicketPriority = "LOW"
	TicketPriorityMedium     TicketPriority = "MEDIUM"
	TicketPriorityHigh       TicketPriority = "HIGH"
)

var knownPriorities = map[TicketPriority]struct{}{
	TicketPriorityUnassigned: {},
	TicketPriorityLow:        {},
	TicketPriorityMedium:     {},
	TicketPriorityHigh:       {},
}

const (
	// MaxJustificationLength bounds the priority justification text.
	MaxJustificationLength = 255
	// MaxResponseLength bounds admin response text.
	MaxResponseLength = 2000
)

// Ticket is the aggregate root for support requests. All lifecycle rules are
// enforced here; callers obtain instances through NewTicket or a repository,
// never by filling the struct directly.
type Ticket struct {
	ID                    string
	Title                 string
	Description           string
	Status                TicketStatus
	Priority              TicketPriority
	PriorityJustification string
	UserID                string
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// pending holds events produced by the last mutation, in order. It is
	// never persisted; the orchestration layer drains it after a successful
	// write via PullEvents.
	pending []Event
}

// ChangeStatus advances the ticket exactly one step along
// OPEN -> IN_PROGRESS -> CLOSED. Requesting the current status is a no-op
// and buffers nothing. Backward moves and skipped steps are rejected.
func (t *Ticket) ChangeStatus(next TicketStatus, now time.Time) error {
	if t.Status == TicketStatusClosed {
		return ErrTicketClosed
	}
	nextRank, ok := statusOrder[next]
	if !ok {
		return NewValidationError(fmt.Sprintf("unknown ticket status %q", next))
	}
	if next == t.Status {
		return nil
	}
	if nextRank != statusOrder[t.Status]+1 {
		return &InvalidTransitionError{From: t.Status, To: next}
	}

	old := t.Status
	t.Status = next
	t.UpdatedAt = now
	t.record(newEvent(EventTicketStatusChanged, t.ID, now, TicketStatusChangedPayload{
		OldStatus: old,
		NewStatus: next,
	}))
	return nil
}

// ChangePriority sets a new priority with its justification. Once a priority
// has been assigned it can never return to UNASSIGNED. Requesting the current
// priority is a no-op and buffers nothing.
func (t *Ticket) ChangePriority(next TicketPriority, justification string, now time.Time) error {
	if t.Status == TicketStatusClosed {
		return ErrTicketClosed
	}
	if _, ok := knownPriorities[next]; !ok {
		return NewValidationError(fmt.Sprintf("unknown ticket priority %q", next))
	}
	if t.Priority != TicketPriorityUnassigned && next == TicketPriorityUnassigned {
		return ErrPriorityReversal
	}
	justification = strings.TrimSpace(justification)
	if utf8.RuneCountInString(justification) > MaxJustificationLength {
		return NewValidationError(fmt.Sprintf("justification exceeds %d characters", MaxJustificationLength))
	}
	if next == t.Priority {
		return nil
	}
	if next != TicketPriorityUnassigned && justification == "" {
		return NewValidationError("justification required when assigning a priority")
	}

	old := t.Priority
	t.Priority = next
	t.PriorityJustification = justification
	t.UpdatedAt = now
	t.record(newEvent(EventTicketPriorityChanged, t.ID, now, TicketPriorityChangedPayload{
		OldPriority:   old,
		NewPriority:   next,
		Justification: justification,
	}))
	return nil
}

// AddResponse validates and builds an admin response to this ticket. The
// ticket's own fields are untouched; the returned child record must be
// persisted by the orchestration layer together with the buffered
// TicketResponseAdded event.
func (t *Ticket) AddResponse(text, adminID string, now time.Time) (*TicketResponse, error) {
	if t.Status == TicketStatusClosed {
		return nil, ErrTicketClosed
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}
	if utf8.RuneCountInString(trimmed) > MaxResponseLength {
		return nil, ErrResponseTooLong
	}

	response := &TicketResponse{
		ID:        uuid.NewString(),
		TicketID:  t.ID,
		AdminID:   adminID,
		Text:      trimmed,
		CreatedAt: now,
	}
	t.record(newEvent(EventTicketResponseAdded, t.ID, now, TicketResponseAddedPayload{
		ResponseID: response.ID,
		AdminID:    adminID,
		Text:       trimmed,
	}))
	return response, nil
}

// PullEvents drains and returns the buffered events, in the order they were
// produced. Subsequent calls return nil until the next mutation.
func (t *Ticket) PullEvents() []Event {
	out := t.pending
	t.pending = nil
	return out
}

// PendingEvents returns a copy of the buffer without draining it.
func (t *Ticket) PendingEvents() []Event {
	return append([]Event(nil), t.pending...)
}

func (t *Ticket) record(event Event) {
	t.pending = append(t.pending, event)
}
