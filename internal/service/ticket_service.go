package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/repository"
)

// AuthContext carries the caller's identity alongside a command. It is never
// part of the command itself; the entity consumes commands only.
type AuthContext struct {
	SubjectID string
	Role      domain.Role
}

// CreateTicketCommand opens a new ticket.
type CreateTicketCommand struct {
	Title       string
	Description string
	UserID      string
}

// ChangeStatusCommand advances a ticket's lifecycle.
type ChangeStatusCommand struct {
	TicketID  string
	NewStatus domain.TicketStatus
}

// ChangePriorityCommand assigns or raises a ticket's priority.
type ChangePriorityCommand struct {
	TicketID      string
	NewPriority   domain.TicketPriority
	Justification string
}

// AddResponseCommand attaches an admin reply to a ticket.
type AddResponseCommand struct {
	TicketID string
	Text     string
	AdminID  string
}

// TicketListFilter captures listing parameters for the read side.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Limit      int
	Offset     int
}

// TicketService orchestrates the ticket use cases. Every mutating method
// follows the same template: resolve the ticket, invoke exactly one mutation
// (domain failures propagate untouched), persist state together with the
// drained events in one transactional save.
type TicketService struct {
	tickets repository.TicketRepository
	clock   domain.Clock
	logger  *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, clock domain.Clock, logger *zap.Logger) *TicketService {
	if clock == nil {
		clock = domain.SystemClock()
	}
	return &TicketService{tickets: tickets, clock: clock, logger: logger}
}

// CreateTicket builds a ticket through the factory and persists it with its
// TicketCreated event.
func (s *TicketService) CreateTicket(ctx context.Context, cmd CreateTicketCommand) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(cmd.Title, cmd.Description, cmd.UserID, s.clock)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket, ticket.PullEvents()); err != nil {
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("user_id", ticket.UserID))
	return ticket, nil
}

// ChangeStatus advances the ticket one lifecycle step. A request for the
// current status is a successful no-op and touches neither storage nor the
// outbox.
func (s *TicketService) ChangeStatus(ctx context.Context, cmd ChangeStatusCommand) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.ChangeStatus(cmd.NewStatus, s.clock.Now()); err != nil {
		return nil, err
	}

	pending := ticket.PullEvents()
	if len(pending) == 0 {
		return ticket, nil
	}
	if err := s.tickets.Update(ctx, ticket, pending); err != nil {
		return nil, err
	}
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("status", string(ticket.Status)))
	return ticket, nil
}

// ChangePriority assigns a new priority. Only admins may call this; the check
// happens here, outside the entity.
func (s *TicketService) ChangePriority(ctx context.Context, authz AuthContext, cmd ChangePriorityCommand) (*domain.Ticket, error) {
	if authz.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	ticket, err := s.tickets.GetByID(ctx, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.ChangePriority(cmd.NewPriority, cmd.Justification, s.clock.Now()); err != nil {
		return nil, err
	}

	pending := ticket.PullEvents()
	if len(pending) == 0 {
		return ticket, nil
	}
	if err := s.tickets.Update(ctx, ticket, pending); err != nil {
		return nil, err
	}
	s.logger.Info("ticket priority changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)))
	return ticket, nil
}

// AddResponse attaches an admin reply. The response row and the
// TicketResponseAdded event commit in the same transaction; the response's
// identity is generated in the domain, so the event is complete before
// persistence.
func (s *TicketService) AddResponse(ctx context.Context, authz AuthContext, cmd AddResponseCommand) (*domain.TicketResponse, error) {
	if authz.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	ticket, err := s.tickets.GetByID(ctx, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	response, err := ticket.AddResponse(cmd.Text, cmd.AdminID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.tickets.AddResponse(ctx, ticket, response, ticket.PullEvents()); err != nil {
		return nil, err
	}
	s.logger.Info("ticket response added",
		zap.String("ticket_id", ticket.ID),
		zap.String("response_id", response.ID))
	return response, nil
}

// GetTicket fetches a ticket with its responses. End-users may only see
// their own tickets.
func (s *TicketService) GetTicket(ctx context.Context, authz AuthContext, ticketID string) (*domain.Ticket, []domain.TicketResponse, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if authz.Role != domain.RoleAdmin && ticket.UserID != authz.SubjectID {
		return nil, nil, domain.ErrForbidden
	}
	responses, err := s.tickets.ListResponses(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, responses, nil
}

// ListTickets returns tickets matching the filter. End-users are always
// scoped to their own tickets.
func (s *TicketService) ListTickets(ctx context.Context, authz AuthContext, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if authz.Role != domain.RoleAdmin {
		userID := authz.SubjectID
		repoFilter.UserID = &userID
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}
