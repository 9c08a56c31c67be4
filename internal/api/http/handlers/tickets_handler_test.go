package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/service"
)

func parseListQuery(t *testing.T, rawQuery string) service.TicketListFilter {
	t.Helper()
	var filter service.TicketListFilter
	app := fiber.New()
	app.Get("/tickets", func(c *fiber.Ctx) error {
		filter = parseTicketListQuery(c)
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?"+rawQuery, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return filter
}

func TestParseTicketListQueryDefaults(t *testing.T) {
	filter := parseListQuery(t, "")

	assert.Empty(t, filter.Statuses)
	assert.Empty(t, filter.Priorities)
	assert.Equal(t, 20, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}

func TestParseTicketListQueryFiltersAndPaging(t *testing.T) {
	filter := parseListQuery(t, "status=OPEN,IN_PROGRESS&priority=HIGH&page=3&page_size=10")

	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}, filter.Statuses)
	assert.Equal(t, []domain.TicketPriority{domain.TicketPriorityHigh}, filter.Priorities)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, 20, filter.Offset)
}

func TestParseTicketListQueryCapsPageSize(t *testing.T) {
	filter := parseListQuery(t, "page=2&page_size=5000")

	assert.Equal(t, maxPageSize, filter.Limit)
	assert.Equal(t, maxPageSize, filter.Offset)
}

func TestParseTicketListQueryRejectsBadNumbers(t *testing.T) {
	filter := parseListQuery(t, "page=-1&page_size=zero")

	assert.Equal(t, 20, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}
