package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/skyweb/vms/internal/domain"
)

// Staff members created by an admin without an explicit password get this
// one and are expected to change it on first login.
const defaultStaffPassword = "password123"

// StaffStore defines the staff directory mutation interface consumed by
// StaffService.
type StaffStore interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// StaffService manages the staff directory that drives the host dropdown and
// the feed's per-host visibility scoping.
type StaffService struct {
	users StaffStore
}

// NewStaffService creates a new StaffService.
func NewStaffService(users StaffStore) *StaffService {
	return &StaffService{users: users}
}

// Create adds a staff member. An empty password falls back to the default
// onboarding password.
func (s *StaffService) Create(ctx context.Context, user domain.User, password string) (*domain.User, error) {
	if !user.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, user.Role)
	}
	if password == "" {
		password = defaultStaffPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	return s.users.Create(ctx, user)
}

// Update modifies a staff member's directory fields.
func (s *StaffService) Update(ctx context.Context, user domain.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, user.Role)
	}
	return s.users.Update(ctx, user)
}

// Delete removes a staff member.
func (s *StaffService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// List returns staff members, optionally filtered by role.
func (s *StaffService) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if role == "" {
		return s.users.List(ctx)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.users.ListByRole(ctx, role)
}
