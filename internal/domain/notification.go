package domain

import "time"

// NotificationType represents the kind of visitor event.
type NotificationType string

const (
	NotificationNewVisitor      NotificationType = "NEW_VISITOR"
	NotificationCheckInApproved NotificationType = "CHECK_IN_APPROVED"
	NotificationCheckInDeclined NotificationType = "CHECK_IN_DECLINED"
)

// Notification is one entry in the append-only visitor event log. The id is
// assigned by the store at insertion and is strictly increasing; it is the
// only ordering key and the cursor clients poll from. Timestamps are
// informational.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	VisitorID string           `json:"visitor_id" db:"visitor_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	// Resolved from the referenced visitor at read time, never stored.
	VisitorName *string `json:"visitorName,omitempty" db:"visitor_name"`
	HostName    *string `json:"hostName,omitempty" db:"host_name"`
}

// Identity describes the caller of a feed query for visibility filtering.
// Staff see only events for visitors they host; reception, admin, and
// anonymous callers see everything.
type Identity struct {
	Role string
	Name string
}

// Scoped reports whether the identity restricts visibility to its own
// hosted visitors.
func (id Identity) Scoped() bool {
	return id.Role == string(RoleStaff) && id.Name != ""
}

// FeedPage is the wire response of the polling endpoint. LatestID equals the
// highest notification id when the page is non-empty and echoes the request
// cursor unchanged when it is empty, so a client's cursor never regresses.
type FeedPage struct {
	Notifications []Notification `json:"notifications"`
	HasNew        bool           `json:"has_new"`
	LatestID      int64          `json:"latest_id"`
}
