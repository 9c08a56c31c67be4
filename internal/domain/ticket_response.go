package domain

import "time"

// TicketResponse is an admin reply attached to a ticket. It is a child record
// of the aggregate; its identity is generated in the domain layer so the
// TicketResponseAdded event can embed it before persistence.
type TicketResponse struct {
	ID        string
	TicketID  string
	AdminID   string
	Text      string
	CreatedAt time.Time
}
