package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenCarriesCorrelationKey(t *testing.T) {
	ticket, err := NewTicket("Bug", "Crash on load", "u1", fixedClock{at: testTime})
	require.NoError(t, err)
	require.NoError(t, ticket.ChangeStatus(TicketStatusInProgress, testTime))
	require.NoError(t, ticket.ChangePriority(TicketPriorityHigh, "outage", testTime))
	_, err = ticket.AddResponse("on it", "a1", testTime)
	require.NoError(t, err)

	for _, event := range ticket.PullEvents() {
		flat := event.Flatten()
		assert.Equal(t, ticket.ID, flat["ticket_id"])
		assert.Equal(t, string(event.Type), flat["event_type"])
		assert.Equal(t, event.ID, flat["event_id"])

		ts, err := time.Parse(time.RFC3339Nano, flat["timestamp"])
		require.NoError(t, err)
		assert.True(t, ts.Equal(testTime))
	}
}

func TestFlattenStatusChanged(t *testing.T) {
	ticket, err := NewTicket("Bug", "Crash on load", "u1", fixedClock{at: testTime})
	require.NoError(t, err)
	ticket.PullEvents()
	require.NoError(t, ticket.ChangeStatus(TicketStatusInProgress, testTime))

	flat := ticket.PullEvents()[0].Flatten()

	assert.Equal(t, "OPEN", flat["old_status"])
	assert.Equal(t, "IN_PROGRESS", flat["new_status"])
}

func TestEventFromFlatRoundTrip(t *testing.T) {
	ticket, err := NewTicket("Bug", "Crash on load", "u1", fixedClock{at: testTime})
	require.NoError(t, err)
	require.NoError(t, ticket.ChangeStatus(TicketStatusInProgress, testTime))
	require.NoError(t, ticket.ChangePriority(TicketPriorityHigh, "outage", testTime))
	_, err = ticket.AddResponse("on it", "a1", testTime)
	require.NoError(t, err)

	for _, original := range ticket.PullEvents() {
		rebuilt, err := EventFromFlat(original.Flatten())
		require.NoError(t, err)

		assert.Equal(t, original.ID, rebuilt.ID)
		assert.Equal(t, original.Type, rebuilt.Type)
		assert.Equal(t, original.TicketID, rebuilt.TicketID)
		assert.Equal(t, original.Payload, rebuilt.Payload)
		assert.True(t, rebuilt.Timestamp.Equal(original.Timestamp))
	}
}

func TestEventFromFlatUnknownType(t *testing.T) {
	_, err := EventFromFlat(map[string]string{
		"event_type": "assignment.deleted",
		"timestamp":  testTime.Format(time.RFC3339Nano),
	})

	assert.Error(t, err)
}
