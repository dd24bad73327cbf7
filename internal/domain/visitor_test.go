package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from VisitorStatus
		to   VisitorStatus
		want bool
	}{
		{"pending to approved", VisitorStatusPending, VisitorStatusApproved, true},
		{"pending to declined", VisitorStatusPending, VisitorStatusDeclined, true},
		{"pending to checked out", VisitorStatusPending, VisitorStatusCheckedOut, false},
		{"approved to checked out", VisitorStatusApproved, VisitorStatusCheckedOut, true},
		{"approved to declined", VisitorStatusApproved, VisitorStatusDeclined, false},
		{"approved to pending", VisitorStatusApproved, VisitorStatusPending, false},
		{"declined is terminal", VisitorStatusDeclined, VisitorStatusApproved, false},
		{"checked out is terminal", VisitorStatusCheckedOut, VisitorStatusApproved, false},
		{"no self loop", VisitorStatusPending, VisitorStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIdentityScoped(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     bool
	}{
		{"staff with name", Identity{Role: "staff", Name: "Alice"}, true},
		{"staff without name", Identity{Role: "staff"}, false},
		{"reception", Identity{Role: "reception", Name: "Bob"}, false},
		{"admin", Identity{Role: "admin", Name: "Carol"}, false},
		{"anonymous", Identity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.Scoped(); got != tt.want {
				t.Errorf("Scoped() = %v, want %v", got, tt.want)
			}
		})
	}
}
