package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type MembershipType string

const (
	MembershipIndoor  MembershipType = "indoor"
	MembershipOutdoor MembershipType = "outdoor"
)

func (m MembershipType) Valid() bool {
	return m == MembershipIndoor || m == MembershipOutdoor
}

// Plan is a rate card entry. Code and membership type are immutable once
// created; pricing is in the subscription's currency, no conversion.
type Plan struct {
	ID              int64           `db:"id" json:"id"`
	Code            string          `db:"code" json:"code"`
	Name            string          `db:"name" json:"name"`
	MembershipType  MembershipType  `db:"membership_type" json:"membership_type"`
	Shape           Shape           `db:"shape" json:"shape"`
	SessionsPerWeek int             `db:"sessions_per_week" json:"sessions_per_week"`
	DurationWeeks   int             `db:"duration_weeks" json:"duration_weeks"`
	MonthlyFee      decimal.Decimal `db:"monthly_fee" json:"monthly_fee"`
	WeeklyFee       decimal.Decimal `db:"weekly_fee" json:"weekly_fee"`
	SessionFee      decimal.Decimal `db:"session_fee" json:"session_fee"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

func (p *Plan) SessionsPerMonth() int {
	return p.SessionsPerWeek * 4
}

func (p *Plan) TotalSessions() int {
	return p.Shape.TotalSessions(p.SessionsPerWeek, p.DurationWeeks)
}

func (p *Plan) EndDate(start time.Time) time.Time {
	return p.Shape.EndDate(start, p.DurationWeeks)
}

// Location is a training ground referenced only by outdoor subscriptions.
type Location struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
