package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// tagPattern is a conservative denylist for markup-like content. It is not a
// sanitizer; it stops obviously dangerous payloads at the domain boundary
// regardless of what the transport layer already checked.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// NewTicket is the only legal way to create a Ticket. The identity is
// generated here, so the buffered TicketCreated event carries the real id
// before anything has been persisted.
func NewTicket(title, description, userID string, clock Clock) (*Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	userID = strings.TrimSpace(userID)

	if title == "" {
		return nil, NewValidationError("title must not be blank")
	}
	if description == "" {
		return nil, NewValidationError("description must not be blank")
	}
	if userID == "" {
		return nil, NewValidationError("user_id must not be blank")
	}
	for _, value := range []string{title, description, userID} {
		if tagPattern.MatchString(value) {
			return nil, ErrDangerousInput
		}
	}

	now := clock.Now()
	ticket := &Ticket{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      TicketStatusOpen,
		Priority:    TicketPriorityUnassigned,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ticket.record(newEvent(EventTicketCreated, ticket.ID, now, TicketCreatedPayload{
		Title:       title,
		Description: description,
		Status:      TicketStatusOpen,
	}))
	return ticket, nil
}
