package attendance

import (
	"time"

	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
)

type LogStatus string

const (
	StatusCheckedIn  LogStatus = "checked_in"
	StatusCheckedOut LogStatus = "checked_out"
)

// Log is one gym visit. CheckInDay is the calendar day of the check-in in
// the club's timezone, stored as its own column so the one-visit-per-day
// constraint survives timezone rule changes.
type Log struct {
	ID              int64                  `db:"id" json:"id"`
	MemberID        int64                  `db:"member_id" json:"member_id"`
	SubscriptionID  int64                  `db:"subscription_id" json:"subscription_id"`
	MembershipType  catalog.MembershipType `db:"membership_type" json:"membership_type"`
	LocationID      *int64                 `db:"location_id" json:"location_id,omitempty"`
	Status          LogStatus              `db:"status" json:"status"`
	CheckInAt       time.Time              `db:"check_in_at" json:"check_in_at"`
	CheckInDay      time.Time              `db:"check_in_day" json:"check_in_day"`
	CheckOutAt      *time.Time             `db:"check_out_at" json:"check_out_at,omitempty"`
	DurationMinutes *int                   `db:"duration_minutes" json:"duration_minutes,omitempty"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
}

// WithMember carries the member identity for the daily attendance list.
type WithMember struct {
	Log
	MemberFirstName string `db:"member_first_name" json:"member_first_name"`
	MemberLastName  string `db:"member_last_name" json:"member_last_name"`
	MemberPhone     string `db:"member_phone" json:"member_phone"`
}
