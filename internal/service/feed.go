package service

import (
	"context"
	"fmt"

	"github.com/skyweb/vms/internal/domain"
)

// EventLog defines the notification query interface consumed by FeedService.
type EventLog interface {
	QueryAfter(ctx context.Context, cursor int64, identity domain.Identity) ([]domain.Notification, error)
}

// FeedService serves the cursor-based polling protocol.
type FeedService struct {
	log EventLog
}

// NewFeedService creates a new FeedService.
func NewFeedService(log EventLog) *FeedService {
	return &FeedService{log: log}
}

// Poll returns every event after the cursor visible to the identity, in
// ascending id order. LatestID is the highest returned id, or the request
// cursor unchanged when nothing is new, so polling clients can feed it
// straight back without ever moving backwards.
func (s *FeedService) Poll(ctx context.Context, cursor int64, identity domain.Identity) (*domain.FeedPage, error) {
	if cursor < 0 {
		return nil, fmt.Errorf("%w: cursor must not be negative", domain.ErrInvalidInput)
	}

	notifications, err := s.log.QueryAfter(ctx, cursor, identity)
	if err != nil {
		return nil, err
	}

	page := &domain.FeedPage{
		Notifications: notifications,
		HasNew:        len(notifications) > 0,
		LatestID:      cursor,
	}
	if page.Notifications == nil {
		page.Notifications = []domain.Notification{}
	}
	if page.HasNew {
		page.LatestID = notifications[len(notifications)-1].ID
	}
	return page, nil
}
