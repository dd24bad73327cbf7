package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyweb/vms/internal/domain"
)

type fakeEventLog struct {
	events []domain.Notification
}

func (f *fakeEventLog) QueryAfter(_ context.Context, cursor int64, identity domain.Identity) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, e := range f.events {
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

func TestPollEmptyFeedEchoesCursor(t *testing.T) {
	feed := NewFeedService(&fakeEventLog{})

	page, err := feed.Poll(context.Background(), 7, domain.Identity{})
	require.NoError(t, err)
	assert.False(t, page.HasNew)
	assert.Equal(t, int64(7), page.LatestID)
	assert.NotNil(t, page.Notifications)
	assert.Empty(t, page.Notifications)
}

func TestPollReturnsEventsAfterCursor(t *testing.T) {
	host := "Alice"
	feed := NewFeedService(&fakeEventLog{events: []domain.Notification{
		{ID: 5, Type: domain.NotificationNewVisitor, HostName: &host},
		{ID: 6, Type: domain.NotificationCheckInApproved, HostName: &host},
		{ID: 7, Type: domain.NotificationCheckInDeclined, HostName: &host},
	}})

	page, err := feed.Poll(context.Background(), 4, domain.Identity{})
	require.NoError(t, err)
	assert.True(t, page.HasNew)
	require.Len(t, page.Notifications, 3)
	assert.Equal(t, int64(5), page.Notifications[0].ID)
	assert.Equal(t, int64(7), page.Notifications[2].ID)
	assert.Equal(t, int64(7), page.LatestID)
}

func TestPollRejectsNegativeCursor(t *testing.T) {
	feed := NewFeedService(&fakeEventLog{})

	_, err := feed.Poll(context.Background(), -1, domain.Identity{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
