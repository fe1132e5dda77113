package subscription

import (
	"time"

	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
	"github.com/am-muhwezi/ptf-sub000/internal/clock"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentPartial PaymentStatus = "partial"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPaid, PaymentPending, PaymentOverdue, PaymentPartial:
		return true
	default:
		return false
	}
}

type LogType string

const (
	LogRegular       LogType = "regular"
	LogTrial         LogType = "trial"
	LogMakeup        LogType = "makeup"
	LogComplimentary LogType = "complimentary"
)

func (t LogType) Valid() bool {
	switch t {
	case LogRegular, LogTrial, LogMakeup, LogComplimentary:
		return true
	default:
		return false
	}
}

const (
	// ExpiringSoonDays and ExpiringSoonSessions bound the expiring-soon
	// predicate: within 7 days of end date or 3 or fewer sessions left.
	ExpiringSoonDays     = 7
	ExpiringSoonSessions = 3
)

// Subscription is one purchased membership instance. A member holds at most
// one active subscription per membership type.
type Subscription struct {
	ID             int64                  `db:"id" json:"id"`
	MemberID       int64                  `db:"member_id" json:"member_id"`
	PlanID         int64                  `db:"plan_id" json:"plan_id"`
	MembershipType catalog.MembershipType `db:"membership_type" json:"membership_type"`
	LocationID     *int64                 `db:"location_id" json:"location_id,omitempty"`

	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`

	TotalSessionsAllowed int `db:"total_sessions_allowed" json:"total_sessions_allowed"`
	SessionsUsed         int `db:"sessions_used" json:"sessions_used"`

	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	NextBillingDate *time.Time `db:"next_billing_date" json:"next_billing_date,omitempty"`

	AmountPaid decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Currency   string          `db:"currency" json:"currency"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Subscription) SessionsRemaining() int {
	return s.TotalSessionsAllowed - s.SessionsUsed
}

// IsExpired holds when now has passed the end date or the session budget is
// gone. The subscription is still admissible on its end date itself.
func (s *Subscription) IsExpired(now time.Time, loc *time.Location) bool {
	if clock.DaysBetween(s.EndDate, now, loc) > 0 {
		return true
	}
	return s.SessionsRemaining() <= 0
}

func (s *Subscription) IsExpiringSoon(now time.Time, loc *time.Location) bool {
	daysLeft := clock.DaysBetween(now, s.EndDate, loc)
	if daysLeft >= 0 && daysLeft <= ExpiringSoonDays {
		return true
	}
	return s.SessionsRemaining() <= ExpiringSoonSessions
}

func (s *Subscription) UsagePercentage() float64 {
	if s.TotalSessionsAllowed == 0 {
		return 0
	}
	return float64(s.SessionsUsed) / float64(s.TotalSessionsAllowed) * 100
}

// WithPlan joins the subscription with its plan and member identity for
// admission and dashboard rows.
type WithPlan struct {
	Subscription
	PlanCode        string `db:"plan_code" json:"plan_code"`
	PlanName        string `db:"plan_name" json:"plan_name"`
	MemberFirstName string `db:"member_first_name" json:"member_first_name"`
	MemberLastName  string `db:"member_last_name" json:"member_last_name"`
	MemberPhone     string `db:"member_phone" json:"member_phone"`
}

// SessionLog is an append-only record of one session consumption or
// correction.
type SessionLog struct {
	ID             int64     `db:"id" json:"id"`
	SubscriptionID int64     `db:"subscription_id" json:"subscription_id"`
	Type           LogType   `db:"type" json:"type"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PaymentBucket classifies a due payment for dashboards.
type PaymentBucket string

const (
	BucketOverdue  PaymentBucket = "overdue"
	BucketDueToday PaymentBucket = "due_today"
	BucketDueSoon  PaymentBucket = "due_soon"
	BucketCurrent  PaymentBucket = "current"
)

type PaymentDue struct {
	WithPlan
	DaysOverdue int           `json:"days_overdue"`
	Bucket      PaymentBucket `json:"bucket"`
}

func classifyPayment(nextBilling *time.Time, now time.Time, loc *time.Location) (PaymentBucket, int) {
	if nextBilling == nil {
		return BucketCurrent, 0
	}

	days := clock.DaysBetween(*nextBilling, now, loc)
	switch {
	case days > 0:
		return BucketOverdue, days
	case days == 0:
		return BucketDueToday, 0
	case days >= -ExpiringSoonDays:
		return BucketDueSoon, 0
	default:
		return BucketCurrent, 0
	}
}

// Urgency classifies an upcoming renewal.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	default:
		return false
	}
}

type RenewalDue struct {
	WithPlan
	DaysUntilEnd int     `json:"days_until_end"`
	Urgency      Urgency `json:"urgency"`
}

func classifyRenewal(daysUntilEnd int) Urgency {
	switch {
	case daysUntilEnd <= 7:
		return UrgencyCritical
	case daysUntilEnd <= 15:
		return UrgencyHigh
	case daysUntilEnd <= 30:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// TypeStatusCount is one cell of the membership-type by status aggregate.
type TypeStatusCount struct {
	MembershipType catalog.MembershipType `db:"membership_type" json:"membership_type"`
	Status         Status                 `db:"status" json:"status"`
	Count          int64                  `db:"count" json:"count"`
}
