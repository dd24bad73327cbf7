package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyweb/vms/client"
	"github.com/skyweb/vms/internal/domain"
	"github.com/skyweb/vms/internal/handler"
	"github.com/skyweb/vms/internal/repository"
	"github.com/skyweb/vms/internal/service"
)

// Full round trip: check-in and approval on the server side reach a polling
// client as exactly one alert each, in order, with no refetching.
func TestCheckInToPollerRoundTrip(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(context.Background(), db))

	visitorRepo := repository.NewVisitorRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	visitorSvc := service.NewVisitorService(visitorRepo, nil, nil)
	feedSvc := service.NewFeedService(notificationRepo)

	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.GET("/api/v1/notifications", handler.NewNotificationHandler(feedSvc).Poll)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	alerts := make(chan client.Notification, 8)
	p := client.NewPoller(client.New(srv.URL, time.Second), client.Options{
		Interval: 10 * time.Millisecond,
		Identity: client.Identity{Role: "staff", Name: "Alice"},
		OnAlert:  func(n client.Notification, _ bool) { alerts <- n },
	})
	p.Start(context.Background())
	t.Cleanup(p.Stop)

	ctx := context.Background()
	v, err := visitorSvc.CheckIn(ctx, domain.Visitor{
		FullName: "Jane Doe",
		Purpose:  "interview",
		HostName: "Alice",
	})
	require.NoError(t, err)

	first := waitFor(t, alerts)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "NEW_VISITOR", first.Type)
	assert.Equal(t, v.ID, first.VisitorID)
	assert.Equal(t, int64(1), p.Cursor())

	_, err = visitorSvc.UpdateStatus(ctx, v.ID, domain.VisitorStatusApproved, nil)
	require.NoError(t, err)

	second := waitFor(t, alerts)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, "CHECK_IN_APPROVED", second.Type)
	assert.Equal(t, int64(2), p.Cursor())

	held := p.Notifications()
	require.Len(t, held, 2)
	assert.Equal(t, int64(2), held[0].ID)
	assert.Equal(t, int64(1), held[1].ID)

	// No event arrived twice.
	select {
	case extra := <-alerts:
		t.Fatalf("unexpected extra alert: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

// A staff poller must not observe another host's visitors.
func TestPollerStaffIsolation(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(context.Background(), db))

	visitorSvc := service.NewVisitorService(repository.NewVisitorRepository(db), nil, nil)
	feedSvc := service.NewFeedService(repository.NewNotificationRepository(db))

	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.GET("/api/v1/notifications", handler.NewNotificationHandler(feedSvc).Poll)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	_, err = visitorSvc.CheckIn(ctx, domain.Visitor{FullName: "Visitor A", Purpose: "x", HostName: "Alice"})
	require.NoError(t, err)
	vb, err := visitorSvc.CheckIn(ctx, domain.Visitor{FullName: "Visitor B", Purpose: "x", HostName: "Bob"})
	require.NoError(t, err)

	bob := client.New(srv.URL, time.Second)
	pageForBob, err := bob.Fetch(ctx, 0, client.Identity{Role: "staff", Name: "Bob"})
	require.NoError(t, err)
	require.Len(t, pageForBob.Notifications, 1)
	assert.Equal(t, vb.ID, pageForBob.Notifications[0].VisitorID)
}

// Two approvals racing on the same pending visitor: one wins, one gets a
// conflict, and the feed carries a single CHECK_IN_APPROVED event.
func TestConcurrentApprovalsAppendOneEvent(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(context.Background(), db))

	visitorSvc := service.NewVisitorService(repository.NewVisitorRepository(db), nil, nil)
	feedSvc := service.NewFeedService(repository.NewNotificationRepository(db))

	ctx := context.Background()
	v, err := visitorSvc.CheckIn(ctx, domain.Visitor{FullName: "Jane Doe", Purpose: "x", HostName: "Alice"})
	require.NoError(t, err)

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := visitorSvc.UpdateStatus(ctx, v.ID, domain.VisitorStatusApproved, nil)
			errs <- err
		}()
	}

	var succeeded, conflicted int
	for range 2 {
		switch err := <-errs; {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	page, err := feedSvc.Poll(ctx, 0, domain.Identity{})
	require.NoError(t, err)

	var approvals int
	for _, n := range page.Notifications {
		if n.Type == domain.NotificationCheckInApproved {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}

func waitFor(t *testing.T, alerts chan client.Notification) client.Notification {
	t.Helper()
	select {
	case n := <-alerts:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alert")
		return client.Notification{}
	}
}
