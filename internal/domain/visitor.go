package domain

import "time"

// VisitorStatus represents the lifecycle state of a visitor.
type VisitorStatus string

const (
	VisitorStatusPending    VisitorStatus = "PENDING"
	VisitorStatusApproved   VisitorStatus = "APPROVED"
	VisitorStatusDeclined   VisitorStatus = "DECLINED"
	VisitorStatusCheckedOut VisitorStatus = "CHECKED_OUT"
)

// Valid reports whether s is one of the known lifecycle states.
func (s VisitorStatus) Valid() bool {
	switch s {
	case VisitorStatusPending, VisitorStatusApproved, VisitorStatusDeclined, VisitorStatusCheckedOut:
		return true
	}
	return false
}

// CanTransition reports whether a visitor may move from one status to
// another. The lifecycle is monotonic: a pending visitor is approved or
// declined exactly once, and only an approved visitor can check out.
func CanTransition(from, to VisitorStatus) bool {
	switch from {
	case VisitorStatusPending:
		return to == VisitorStatusApproved || to == VisitorStatusDeclined
	case VisitorStatusApproved:
		return to == VisitorStatusCheckedOut
	default:
		return false
	}
}

// Visitor represents a check-in record at the kiosk.
type Visitor struct {
	ID             string        `json:"id" db:"id"`
	FullName       string        `json:"fullName" db:"full_name"`
	Email          string        `json:"email" db:"email"`
	PhoneNumber    string        `json:"phoneNumber" db:"phone_number"`
	Company        string        `json:"company" db:"company"`
	Purpose        string        `json:"purpose" db:"purpose"`
	HostName       string        `json:"hostName" db:"host_name"`
	HostDepartment string        `json:"hostDepartment" db:"host_department"`
	PhotoURL       *string       `json:"photoUrl,omitempty" db:"photo_url"`
	Signature      *string       `json:"signature,omitempty" db:"signature"`
	InviteCode     *string       `json:"inviteCode,omitempty" db:"invite_code"`
	IDType         string        `json:"idType" db:"id_type"`
	IDNumber       string        `json:"idNumber" db:"id_number"`
	BadgeNumber    *string       `json:"badgeNumber,omitempty" db:"badge_number"`
	CheckInTime    time.Time     `json:"checkInTime" db:"check_in_time"`
	CheckOutTime   *time.Time    `json:"checkOutTime,omitempty" db:"check_out_time"`
	ApprovalTime   *time.Time    `json:"approvalTime,omitempty" db:"approval_time"`
	Status         VisitorStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// StatusChange carries the fields stamped alongside a status transition.
// From is the status the caller observed; the store only applies the change
// if the row still holds it, so two racing transitions cannot both commit.
type StatusChange struct {
	From         VisitorStatus
	Status       VisitorStatus
	ApprovalTime *time.Time
	CheckOutTime *time.Time
	BadgeNumber  *string
}

// DashboardStats summarizes today's visitor traffic for the reception view.
type DashboardStats struct {
	Total      int `json:"total" db:"total"`
	Pending    int `json:"pending" db:"pending"`
	Approved   int `json:"approved" db:"approved"`
	Declined   int `json:"declined" db:"declined"`
	CheckedOut int `json:"checkedOut" db:"checked_out"`
}
