package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/skyweb/vms/internal/domain"
)

// VisitorRepository handles visitor data access. It is the only writer of
// the notifications table: every mutation that qualifies for an event
// appends it in the same transaction as the visitor row change.
type VisitorRepository struct {
	db *sqlx.DB
}

// NewVisitorRepository creates a new VisitorRepository.
func NewVisitorRepository(db *sqlx.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

const visitorColumns = `id, full_name, email, phone_number, company, purpose,
	host_name, host_department, photo_url, signature, invite_code,
	id_type, id_number, badge_number, check_in_time, check_out_time,
	approval_time, status, created_at`

// Create inserts a new visitor and appends its NEW_VISITOR event atomically.
// Returns the id of the appended event.
func (r *VisitorRepository) Create(ctx context.Context, v domain.Visitor) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create visitor: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO visitors (`+visitorColumns+`)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.FullName, v.Email, v.PhoneNumber, v.Company, v.Purpose,
		v.HostName, v.HostDepartment, v.PhotoURL, v.Signature, v.InviteCode,
		v.IDType, v.IDNumber, v.BadgeNumber, v.CheckInTime, v.CheckOutTime,
		v.ApprovalTime, v.Status, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrConflict
		}
		return 0, fmt.Errorf("insert visitor: %w", err)
	}

	message := fmt.Sprintf("New visitor %s for %s", v.FullName, v.HostName)
	eventID, err := appendNotification(ctx, tx, v.ID, domain.NotificationNewVisitor, message)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create visitor: %w", err)
	}
	return eventID, nil
}

// UpdateStatus applies a status transition and, for approvals and declines,
// appends the matching event in the same transaction. Checkout produces no
// event. Returns the appended event id, or zero when none applies.
//
// The UPDATE is predicated on change.From, so a transition only commits when
// the row still holds the status the caller observed. A racing transition
// loses the race, matches zero rows, and gets ErrConflict instead of
// appending a second event.
func (r *VisitorRepository) UpdateStatus(ctx context.Context, id string, change domain.StatusChange) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE visitors
		           SET status = ?, approval_time = COALESCE(?, approval_time),
		               check_out_time = COALESCE(?, check_out_time),
		               badge_number = COALESCE(?, badge_number)
		           WHERE id = ? AND status = ?`),
		change.Status, change.ApprovalTime, change.CheckOutTime, change.BadgeNumber, id, change.From,
	)
	if err != nil {
		return 0, fmt.Errorf("update visitor %s status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			tx.Rebind(`SELECT EXISTS (SELECT 1 FROM visitors WHERE id = ?)`), id); err != nil {
			return 0, fmt.Errorf("check visitor %s: %w", id, err)
		}
		if !exists {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("%w: visitor %s is no longer %s", domain.ErrConflict, id, change.From)
	}

	var eventID int64
	switch change.Status {
	case domain.VisitorStatusApproved:
		eventID, err = appendNotification(ctx, tx, id, domain.NotificationCheckInApproved, "Visit request was approved.")
	case domain.VisitorStatusDeclined:
		eventID, err = appendNotification(ctx, tx, id, domain.NotificationCheckInDeclined, "Visit request was declined.")
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit status update: %w", err)
	}
	return eventID, nil
}

// FindByID retrieves a visitor by id.
func (r *VisitorRepository) FindByID(ctx context.Context, id string) (*domain.Visitor, error) {
	var v domain.Visitor
	err := r.db.GetContext(ctx, &v,
		r.db.Rebind(`SELECT `+visitorColumns+` FROM visitors WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor by id %s: %w", id, err)
	}
	return &v, nil
}

// FindByInviteCode retrieves a pre-registered visitor by invite code.
func (r *VisitorRepository) FindByInviteCode(ctx context.Context, code string) (*domain.Visitor, error) {
	var v domain.Visitor
	err := r.db.GetContext(ctx, &v,
		r.db.Rebind(`SELECT `+visitorColumns+` FROM visitors WHERE invite_code = ?`), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor by invite code: %w", err)
	}
	return &v, nil
}

// SearchActive finds on-site visitors (approved, not checked out) matching
// the query by name or phone number, for the checkout kiosk.
func (r *VisitorRepository) SearchActive(ctx context.Context, query string) ([]domain.Visitor, error) {
	pattern := "%" + query + "%"
	var visitors []domain.Visitor
	err := r.db.SelectContext(ctx, &visitors,
		r.db.Rebind(`SELECT `+visitorColumns+` FROM visitors
		             WHERE (full_name LIKE ? OR phone_number LIKE ?)
		               AND status = ? AND check_out_time IS NULL
		             ORDER BY created_at DESC`),
		pattern, pattern, domain.VisitorStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("search active visitors: %w", err)
	}
	return visitors, nil
}

// List returns all visitors, most recent first.
func (r *VisitorRepository) List(ctx context.Context) ([]domain.Visitor, error) {
	var visitors []domain.Visitor
	err := r.db.SelectContext(ctx, &visitors,
		`SELECT `+visitorColumns+` FROM visitors ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	return visitors, nil
}

// StatsBetween aggregates visitor counts by status for check-ins within
// [from, to).
func (r *VisitorRepository) StatsBetween(ctx context.Context, from, to time.Time) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := r.db.GetContext(ctx, &stats,
		r.db.Rebind(`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END), 0) AS pending,
		        COALESCE(SUM(CASE WHEN status = 'APPROVED' THEN 1 ELSE 0 END), 0) AS approved,
		        COALESCE(SUM(CASE WHEN status = 'DECLINED' THEN 1 ELSE 0 END), 0) AS declined,
		        COALESCE(SUM(CASE WHEN status = 'CHECKED_OUT' THEN 1 ELSE 0 END), 0) AS checked_out
		     FROM visitors WHERE check_in_time >= ? AND check_in_time < ?`),
		from, to)
	if err != nil {
		return nil, fmt.Errorf("visitor stats: %w", err)
	}
	return &stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
