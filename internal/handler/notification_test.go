package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyweb/vms/internal/domain"
	"github.com/skyweb/vms/internal/service"
)

type stubEventLog struct {
	events []domain.Notification
}

func (s *stubEventLog) QueryAfter(_ context.Context, cursor int64, identity domain.Identity) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, e := range s.events {
		if e.ID <= cursor {
			continue
		}
		if identity.Scoped() && (e.HostName == nil || *e.HostName != identity.Name) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func newFeedServer(events []domain.Notification) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	h := NewNotificationHandler(service.NewFeedService(&stubEventLog{events: events}))
	e.GET("/api/v1/notifications", h.Poll)
	return e
}

func pollFeed(t *testing.T, e *echo.Echo, query string) (int, domain.FeedPage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications"+query, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var page domain.FeedPage
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	}
	return rec.Code, page
}

func TestPollEndpointContract(t *testing.T) {
	alice, bob := "Alice", "Bob"
	e := newFeedServer([]domain.Notification{
		{ID: 1, VisitorID: "va", Type: domain.NotificationNewVisitor, HostName: &alice},
		{ID: 2, VisitorID: "vb", Type: domain.NotificationNewVisitor, HostName: &bob},
		{ID: 3, VisitorID: "va", Type: domain.NotificationCheckInApproved, HostName: &alice},
	})

	code, page := pollFeed(t, e, "?last_id=0")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, page.HasNew)
	require.Len(t, page.Notifications, 3)
	assert.Equal(t, int64(3), page.LatestID)

	// The cursor excludes everything already seen.
	code, page = pollFeed(t, e, "?last_id=2")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, int64(3), page.Notifications[0].ID)

	// An empty page echoes the cursor unchanged.
	code, page = pollFeed(t, e, "?last_id=9")
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, page.HasNew)
	assert.Empty(t, page.Notifications)
	assert.Equal(t, int64(9), page.LatestID)
}

func TestPollEndpointStaffScoping(t *testing.T) {
	alice, bob := "Alice", "Bob"
	e := newFeedServer([]domain.Notification{
		{ID: 1, VisitorID: "va", Type: domain.NotificationNewVisitor, HostName: &alice},
		{ID: 2, VisitorID: "vb", Type: domain.NotificationNewVisitor, HostName: &bob},
	})

	code, page := pollFeed(t, e, "?last_id=0&role=staff&user_name=Bob")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "vb", page.Notifications[0].VisitorID)
	assert.Equal(t, int64(2), page.LatestID)

	// A missing identity degrades to full visibility.
	code, page = pollFeed(t, e, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, page.Notifications, 2)
}

func TestPollEndpointRejectsBadCursor(t *testing.T) {
	e := newFeedServer(nil)

	code, _ := pollFeed(t, e, "?last_id=abc")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = pollFeed(t, e, "?last_id=-4")
	assert.Equal(t, http.StatusBadRequest, code)
}
