package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyweb/vms/internal/domain"
	"github.com/skyweb/vms/internal/service"
)

// NotificationHandler serves the polling feed kiosk and dashboard clients
// consume. The response shape is a frozen contract:
//
//	{"notifications": [...ascending id...], "has_new": bool, "latest_id": int}
//
// so it is written bare, not wrapped in the API envelope.
type NotificationHandler struct {
	feed *service.FeedService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(feed *service.FeedService) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// Poll returns all events after last_id visible to the caller. role and
// user_name are identity hints: role=staff scopes the feed to that host's
// visitors, anything else sees the full feed. A missing or garbled identity
// degrades to full visibility rather than an error.
func (h *NotificationHandler) Poll(c echo.Context) error {
	cursor, err := parseCursor(c.QueryParam("last_id"))
	if err != nil {
		return err
	}

	identity := domain.Identity{
		Role: c.QueryParam("role"),
		Name: c.QueryParam("user_name"),
	}

	page, err := h.feed.Poll(c.Request().Context(), cursor, identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

func parseCursor(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cursor < 0 {
		return 0, domain.ErrInvalidInput
	}
	return cursor, nil
}
