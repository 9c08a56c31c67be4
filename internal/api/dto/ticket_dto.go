package dto

import (
	"time"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority      domain.TicketPriority `json:"priority"`
	Justification string                `json:"justification"`
}

// CreateResponseRequest payload.
type CreateResponseRequest struct {
	Text string `json:"text"`
}

// TicketSummary response.
type TicketSummary struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	UserID    string                `json:"user_id"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID                    string                   `json:"id"`
	Title                 string                   `json:"title"`
	Description           string                   `json:"description"`
	Status                domain.TicketStatus      `json:"status"`
	Priority              domain.TicketPriority    `json:"priority"`
	PriorityJustification string                   `json:"priority_justification,omitempty"`
	UserID                string                   `json:"user_id"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
	Responses             []TicketResponseResponse `json:"responses"`
}

// TicketResponseResponse represents an admin reply.
type TicketResponseResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AdminID   string    `json:"admin_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
