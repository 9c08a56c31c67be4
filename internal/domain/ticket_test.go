package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestTicket(t *testing.T) *Ticket {
	t.Helper()
	ticket, err := NewTicket("Bug", "Crash on load", "u1", fixedClock{at: testTime})
	require.NoError(t, err)
	ticket.PullEvents()
	return ticket
}

func TestChangeStatusAdvancesOneStep(t *testing.T) {
	ticket := newTestTicket(t)

	require.NoError(t, ticket.ChangeStatus(TicketStatusInProgress, testTime))
	assert.Equal(t, TicketStatusInProgress, ticket.Status)

	events := ticket.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTicketStatusChanged, events[0].Type)
	payload := events[0].Payload.(TicketStatusChangedPayload)
	assert.Equal(t, TicketStatusOpen, payload.OldStatus)
	assert.Equal(t, TicketStatusInProgress, payload.NewStatus)

	require.NoError(t, ticket.ChangeStatus(TicketStatusClosed, testTime))
	events = ticket.PullEvents()
	require.Len(t, events, 1)
	payload = events[0].Payload.(TicketStatusChangedPayload)
	assert.Equal(t, TicketStatusInProgress, payload.OldStatus)
	assert.Equal(t, TicketStatusClosed, payload.NewStatus)
}

func TestChangeStatusRejectsSkipAndBackward(t *testing.T) {
	tests := []struct {
		name string
		from TicketStatus
		to   TicketStatus
	}{
		{"skip forward", TicketStatusOpen, TicketStatusClosed},
		{"backward", TicketStatusInProgress, TicketStatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTestTicket(t)
			if tt.from != TicketStatusOpen {
				require.NoError(t, ticket.ChangeStatus(tt.from, testTime))
				ticket.PullEvents()
			}

			err := ticket.ChangeStatus(tt.to, testTime)

			var transitionErr *InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, tt.from, transitionErr.From)
			assert.Equal(t, tt.to, transitionErr.To)
			assert.Equal(t, tt.from, ticket.Status)
			assert.Empty(t, ticket.PendingEvents())
		})
	}
}

func TestChangeStatusUnknownValue(t *testing.T) {
	ticket := newTestTicket(t)

	err := ticket.ChangeStatus("ARCHIVED", testTime)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
}

func TestChangeStatusIdempotentNoOp(t *testing.T) {
	ticket := newTestTicket(t)

	require.NoError(t, ticket.ChangeStatus(TicketStatusOpen, testTime))
	assert.Empty(t, ticket.PendingEvents())
}

func TestClosedTicketIsImmutable(t *testing.T) {
	ticket := newTestTicket(t)
	require.NoError(t, ticket.ChangeStatus(TicketStatusInProgress, testTime))
	require.NoError(t, ticket.ChangeStatus(TicketStatusClosed, testTime))
	ticket.PullEvents()
	before := *ticket

	assert.ErrorIs(t, ticket.ChangeStatus(TicketStatusOpen, testTime), ErrTicketClosed)
	assert.ErrorIs(t, ticket.ChangeStatus(TicketStatusClosed, testTime), ErrTicketClosed)
	assert.ErrorIs(t, ticket.ChangePriority(TicketPriorityHigh, "urgent", testTime), ErrTicketClosed)
	_, err := ticket.AddResponse("hello", "a1", testTime)
	assert.ErrorIs(t, err, ErrTicketClosed)

	assert.Equal(t, before.Status, ticket.Status)
	assert.Equal(t, before.Priority, ticket.Priority)
	assert.Equal(t, before.UpdatedAt, ticket.UpdatedAt)
	assert.Empty(t, ticket.PendingEvents())
}

func TestMonotonicStatusSequence(t *testing.T) {
	ticket := newTestTicket(t)
	sequence := []TicketStatus{ticket.Status}

	attempts := []TicketStatus{
		TicketStatusClosed,
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusOpen,
		TicketStatusClosed,
	}
	for _, next := range attempts {
		if err := ticket.ChangeStatus(next, testTime); err == nil {
			sequence = append(sequence, ticket.Status)
		}
	}

	for i := 1; i < len(sequence); i++ {
		assert.Less(t, statusOrder[sequence[i-1]], statusOrder[sequence[i]])
	}
	assert.Equal(t, TicketStatusClosed, ticket.Status)
}

func TestChangePriorityBuffersOneEvent(t *testing.T) {
	ticket := newTestTicket(t)

	require.NoError(t, ticket.ChangePriority(TicketPriorityMedium, "customer impact", testTime))

	assert.Equal(t, TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "customer impact", ticket.PriorityJustification)
	events := ticket.PullEvents()
	require.Len(t, events, 1)
	payload := events[0].Payload.(TicketPriorityChangedPayload)
	assert.Equal(t, TicketPriorityUnassigned, payload.OldPriority)
	assert.Equal(t, TicketPriorityMedium, payload.NewPriority)
	assert.Equal(t, "customer impact", payload.Justification)
}

func TestChangePriorityOneWayGate(t *testing.T) {
	ticket := newTestTicket(t)
	require.NoError(t, ticket.ChangePriority(TicketPriorityLow, "minor", testTime))
	ticket.PullEvents()

	err := ticket.ChangePriority(TicketPriorityUnassigned, "", testTime)

	assert.ErrorIs(t, err, ErrPriorityReversal)
	assert.Equal(t, TicketPriorityLow, ticket.Priority)
	assert.Empty(t, ticket.PendingEvents())
}

func TestChangePriorityJustificationTooLong(t *testing.T) {
	ticket := newTestTicket(t)

	err := ticket.ChangePriority(TicketPriorityMedium, strings.Repeat("x", 256), testTime)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TicketPriorityUnassigned, ticket.Priority)
	assert.Empty(t, ticket.PendingEvents())
}

func TestChangePriorityJustificationRequired(t *testing.T) {
	ticket := newTestTicket(t)

	err := ticket.ChangePriority(TicketPriorityHigh, "   ", testTime)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TicketPriorityUnassigned, ticket.Priority)
}

func TestChangePriorityUnknownValue(t *testing.T) {
	ticket := newTestTicket(t)

	err := ticket.ChangePriority("CRITICAL", "why", testTime)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestChangePriorityIdempotentNoOp(t *testing.T) {
	ticket := newTestTicket(t)
	require.NoError(t, ticket.ChangePriority(TicketPriorityHigh, "outage", testTime))
	ticket.PullEvents()

	require.NoError(t, ticket.ChangePriority(TicketPriorityHigh, "outage", testTime))
	assert.Empty(t, ticket.PendingEvents())

	// A bare repeat with no justification is just as much a no-op.
	require.NoError(t, ticket.ChangePriority(TicketPriorityHigh, "", testTime))
	assert.Empty(t, ticket.PendingEvents())
	assert.Equal(t, "outage", ticket.PriorityJustification)
}

func TestAddResponse(t *testing.T) {
	ticket := newTestTicket(t)

	response, err := ticket.AddResponse("  We are looking into it.  ", "a1", testTime)

	require.NoError(t, err)
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, ticket.ID, response.TicketID)
	assert.Equal(t, "a1", response.AdminID)
	assert.Equal(t, "We are looking into it.", response.Text)
	assert.Equal(t, testTime, response.CreatedAt)

	events := ticket.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTicketResponseAdded, events[0].Type)
	payload := events[0].Payload.(TicketResponseAddedPayload)
	assert.Equal(t, response.ID, payload.ResponseID)
	assert.Equal(t, "a1", payload.AdminID)
}

func TestAddResponseValidation(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrEmptyResponse},
		{"whitespace only", "   \t", ErrEmptyResponse},
		{"too long", strings.Repeat("y", 2001), ErrResponseTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTestTicket(t)

			_, err := ticket.AddResponse(tt.text, "a1", testTime)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, ticket.PendingEvents())
		})
	}
}

func TestPullEventsDrainsBuffer(t *testing.T) {
	ticket := newTestTicket(t)
	require.NoError(t, ticket.ChangeStatus(TicketStatusInProgress, testTime))

	first := ticket.PullEvents()
	require.Len(t, first, 1)
	assert.Empty(t, ticket.PullEvents())
}
