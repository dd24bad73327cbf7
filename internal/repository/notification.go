package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyweb/vms/internal/domain"
)

// NotificationRepository reads the append-only visitor event log. Appends go
// through appendNotification inside the same transaction as the visitor
// mutation that caused them, so a status change and its event are committed
// or rolled back together.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// appendNotification inserts one event and returns its store-assigned id.
// Ids come from the table's auto-increment counter, so assignment is
// serialized and strictly increasing across concurrent writers.
func appendNotification(ctx context.Context, tx *sqlx.Tx, visitorID string, typ domain.NotificationType, message string) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO notifications (visitor_id, type, message, created_at)
		           VALUES (?, ?, ?, ?) RETURNING id`),
		visitorID, typ, message, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append notification: %w", err)
	}
	return id, nil
}

// QueryAfter returns all events with id greater than cursor, ascending,
// restricted to what the identity may see. Each event is enriched with the
// referenced visitor's name and host at read time. Staff identities only
// receive events for visitors they host; every other identity sees the full
// log. The filter runs in SQL so a client cannot widen its own visibility.
func (r *NotificationRepository) QueryAfter(ctx context.Context, cursor int64, identity domain.Identity) ([]domain.Notification, error) {
	query := `SELECT n.id, n.visitor_id, n.type, n.message, n.created_at,
	                 v.full_name AS visitor_name, v.host_name AS host_name
	          FROM notifications n
	          LEFT JOIN visitors v ON n.visitor_id = v.id
	          WHERE n.id > ?`
	args := []any{cursor}

	if identity.Scoped() {
		query += ` AND v.host_name = ?`
		args = append(args, identity.Name)
	}

	query += ` ORDER BY n.id ASC`

	var notifications []domain.Notification
	if err := r.db.SelectContext(ctx, &notifications, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query notifications after %d: %w", cursor, err)
	}
	return notifications, nil
}
