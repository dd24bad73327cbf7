package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyweb/vms/internal/domain"
)

type fakeVisitorStore struct {
	visitors map[string]*domain.Visitor
	nextID   int64
}

func newFakeVisitorStore() *fakeVisitorStore {
	return &fakeVisitorStore{visitors: make(map[string]*domain.Visitor)}
}

func (f *fakeVisitorStore) Create(_ context.Context, v domain.Visitor) (int64, error) {
	f.visitors[v.ID] = &v
	f.nextID++
	return f.nextID, nil
}

func (f *fakeVisitorStore) UpdateStatus(_ context.Context, id string, change domain.StatusChange) (int64, error) {
	v, ok := f.visitors[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if v.Status != change.From {
		return 0, domain.ErrConflict
	}
	v.Status = change.Status
	if change.ApprovalTime != nil {
		v.ApprovalTime = change.ApprovalTime
	}
	if change.CheckOutTime != nil {
		v.CheckOutTime = change.CheckOutTime
	}
	if change.BadgeNumber != nil {
		v.BadgeNumber = change.BadgeNumber
	}
	if change.Status == domain.VisitorStatusApproved || change.Status == domain.VisitorStatusDeclined {
		f.nextID++
		return f.nextID, nil
	}
	return 0, nil
}

func (f *fakeVisitorStore) FindByID(_ context.Context, id string) (*domain.Visitor, error) {
	v, ok := f.visitors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVisitorStore) FindByInviteCode(_ context.Context, code string) (*domain.Visitor, error) {
	for _, v := range f.visitors {
		if v.InviteCode != nil && *v.InviteCode == code {
			copied := *v
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVisitorStore) SearchActive(_ context.Context, _ string) ([]domain.Visitor, error) {
	return nil, nil
}

func (f *fakeVisitorStore) List(_ context.Context) ([]domain.Visitor, error) {
	return nil, nil
}

func (f *fakeVisitorStore) StatsBetween(_ context.Context, _, _ time.Time) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func TestCheckInAssignsIDAndPendingStatus(t *testing.T) {
	store := newFakeVisitorStore()
	svc := NewVisitorService(store, nil, nil)

	v, err := svc.CheckIn(context.Background(), domain.Visitor{
		FullName: "Jane Doe",
		HostName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, domain.VisitorStatusPending, v.Status)
	assert.False(t, v.CheckInTime.IsZero())
	assert.False(t, v.CreatedAt.IsZero())
}

func TestUpdateStatusApproveStampsBadgeAndTime(t *testing.T) {
	store := newFakeVisitorStore()
	svc := NewVisitorService(store, nil, nil)
	ctx := context.Background()

	v, err := svc.CheckIn(ctx, domain.Visitor{FullName: "Jane Doe", HostName: "Alice"})
	require.NoError(t, err)

	badge := "B-1"
	updated, err := svc.UpdateStatus(ctx, v.ID, domain.VisitorStatusApproved, &badge)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovalTime)
	require.NotNil(t, updated.BadgeNumber)
	assert.Equal(t, "B-1", *updated.BadgeNumber)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	store := newFakeVisitorStore()
	svc := NewVisitorService(store, nil, nil)
	ctx := context.Background()

	v, err := svc.CheckIn(ctx, domain.Visitor{FullName: "Jane Doe", HostName: "Alice"})
	require.NoError(t, err)

	// A pending visitor cannot check out.
	_, err = svc.UpdateStatus(ctx, v.ID, domain.VisitorStatusCheckedOut, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// A declined visitor is terminal.
	_, err = svc.UpdateStatus(ctx, v.ID, domain.VisitorStatusDeclined, nil)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, v.ID, domain.VisitorStatusApproved, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCheckOutStampsTime(t *testing.T) {
	store := newFakeVisitorStore()
	svc := NewVisitorService(store, nil, nil)
	ctx := context.Background()

	v, err := svc.CheckIn(ctx, domain.Visitor{FullName: "Jane Doe", HostName: "Alice"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, v.ID, domain.VisitorStatusApproved, nil)
	require.NoError(t, err)

	out, err := svc.CheckOut(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusCheckedOut, out.Status)
	require.NotNil(t, out.CheckOutTime)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc := NewVisitorService(newFakeVisitorStore(), nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "v1", domain.VisitorStatus("BOGUS"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
