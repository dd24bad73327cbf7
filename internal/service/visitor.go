package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skyweb/vms/internal/domain"
)

// VisitorStore defines the visitor data access interface consumed by
// VisitorService. Create and UpdateStatus append the matching feed event
// atomically with the row mutation and return its id.
type VisitorStore interface {
	Create(ctx context.Context, v domain.Visitor) (int64, error)
	UpdateStatus(ctx context.Context, id string, change domain.StatusChange) (int64, error)
	FindByID(ctx context.Context, id string) (*domain.Visitor, error)
	FindByInviteCode(ctx context.Context, code string) (*domain.Visitor, error)
	SearchActive(ctx context.Context, query string) ([]domain.Visitor, error)
	List(ctx context.Context) ([]domain.Visitor, error)
	StatsBetween(ctx context.Context, from, to time.Time) (*domain.DashboardStats, error)
}

// HostDirectory resolves a host's directory entry for outbound alerts.
type HostDirectory interface {
	FindByName(ctx context.Context, name string) (*domain.User, error)
}

// VisitorService handles the visitor check-in/out lifecycle.
type VisitorService struct {
	visitors VisitorStore
	hosts    HostDirectory
	alerts   *AlertDispatcher
}

// NewVisitorService creates a new VisitorService. alerts may be nil when
// outbound check-in alerts are disabled.
func NewVisitorService(visitors VisitorStore, hosts HostDirectory, alerts *AlertDispatcher) *VisitorService {
	return &VisitorService{visitors: visitors, hosts: hosts, alerts: alerts}
}

// CheckIn registers a new visitor. The record starts PENDING, gets a fresh
// id when none is supplied, and its NEW_VISITOR event is written in the same
// transaction as the row. Host email/webhook alerts go out asynchronously
// and never fail the check-in.
func (s *VisitorService) CheckIn(ctx context.Context, v domain.Visitor) (*domain.Visitor, error) {
	now := time.Now().UTC()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CheckInTime.IsZero() {
		v.CheckInTime = now
	}
	v.Status = domain.VisitorStatusPending
	v.CreatedAt = now

	if _, err := s.visitors.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("check in visitor: %w", err)
	}

	s.dispatchAlerts(v)

	return &v, nil
}

// UpdateStatus applies a visitor status transition. Invalid transitions are
// rejected with ErrConflict, as is a transition that loses a race: the store
// applies the change only while the visitor still holds the status observed
// here. Approval stamps the approval time and optional badge number; checkout
// stamps the checkout time. The approval/decline event is appended atomically
// with the status change.
func (s *VisitorService) UpdateStatus(ctx context.Context, id string, status domain.VisitorStatus, badgeNumber *string) (*domain.Visitor, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	v, err := s.visitors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(v.Status, status) {
		return nil, fmt.Errorf("%w: cannot move visitor from %s to %s", domain.ErrConflict, v.Status, status)
	}

	now := time.Now().UTC()
	change := domain.StatusChange{From: v.Status, Status: status}
	switch status {
	case domain.VisitorStatusApproved:
		change.ApprovalTime = &now
		change.BadgeNumber = badgeNumber
	case domain.VisitorStatusCheckedOut:
		change.CheckOutTime = &now
	}

	if _, err := s.visitors.UpdateStatus(ctx, id, change); err != nil {
		return nil, err
	}

	return s.visitors.FindByID(ctx, id)
}

// CheckOut marks an approved visitor as checked out.
func (s *VisitorService) CheckOut(ctx context.Context, id string) (*domain.Visitor, error) {
	return s.UpdateStatus(ctx, id, domain.VisitorStatusCheckedOut, nil)
}

// LookupByID finds a visitor by id.
func (s *VisitorService) LookupByID(ctx context.Context, id string) (*domain.Visitor, error) {
	return s.visitors.FindByID(ctx, id)
}

// LookupByInviteCode finds a pre-registered visitor for express check-in.
func (s *VisitorService) LookupByInviteCode(ctx context.Context, code string) (*domain.Visitor, error) {
	return s.visitors.FindByInviteCode(ctx, code)
}

// SearchActive finds currently on-site visitors matching the query.
func (s *VisitorService) SearchActive(ctx context.Context, query string) ([]domain.Visitor, error) {
	return s.visitors.SearchActive(ctx, query)
}

// List returns all visitors, most recent first.
func (s *VisitorService) List(ctx context.Context) ([]domain.Visitor, error) {
	return s.visitors.List(ctx)
}

// TodayStats aggregates today's visitor counts for the reception dashboard.
func (s *VisitorService) TodayStats(ctx context.Context) (*domain.DashboardStats, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.visitors.StatsBetween(ctx, start, start.AddDate(0, 0, 1))
}

func (s *VisitorService) dispatchAlerts(v domain.Visitor) {
	if s.alerts == nil {
		return
	}

	// Host lookup and delivery run off the request path.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var host *domain.User
		if s.hosts != nil {
			h, err := s.hosts.FindByName(ctx, v.HostName)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				slog.Error("resolve host for alert", "host", v.HostName, "error", err)
			} else {
				host = h
			}
		}

		s.alerts.Dispatch(ctx, CheckInAlert{Visitor: v, Host: host})
	}()
}
