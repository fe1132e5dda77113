package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timeframe selects the aggregation window for a snapshot.
type Timeframe string

const (
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeYear    Timeframe = "year"
)

func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeYear:
		return true
	default:
		return false
	}
}

func (t Timeframe) Days() int {
	switch t {
	case TimeframeWeek:
		return 7
	case TimeframeQuarter:
		return 90
	case TimeframeYear:
		return 365
	default:
		return 30
	}
}

// fallbackSessionMinutes is assumed when no completed visit in the window
// carries a duration.
const fallbackSessionMinutes = 75.0

type Overview struct {
	TotalMembers         int64           `json:"total_members"`
	ActiveMembers        int64           `json:"active_members"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	MonthlyGrowthPct     float64         `json:"monthly_growth_pct"`
	AvgSessionsPerMember float64         `json:"avg_sessions_per_member"`
}

// TypeBreakdown is the per-membership-type slice of the snapshot.
type TypeBreakdown struct {
	Active     int64           `json:"active"`
	Suspended  int64           `json:"suspended"`
	Expired    int64           `json:"expired"`
	Revenue    decimal.Decimal `json:"revenue"`
	AverageFee decimal.Decimal `json:"average_fee"`
}

type PaymentAnalytics struct {
	Paid          int64           `json:"paid"`
	Pending       int64           `json:"pending"`
	Overdue       int64           `json:"overdue"`
	Partial       int64           `json:"partial"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	WindowRevenue decimal.Decimal `json:"window_revenue"`
}

type AttendanceAnalytics struct {
	Today             int64            `json:"today"`
	Last7Days         int64            `json:"last_7_days"`
	Window            int64            `json:"window"`
	ByType            map[string]int64 `json:"by_type"`
	AvgSessionMinutes float64          `json:"avg_session_minutes"`
}

// RevenueBucket is one month of the trend, oldest first in the slice.
type RevenueBucket struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Snapshot is the full dashboard aggregate. All counters inside one snapshot
// are read in a single read-only transaction so the numbers cohere.
type Snapshot struct {
	Timeframe    Timeframe           `json:"timeframe"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Overview     Overview            `json:"overview"`
	Indoor       TypeBreakdown       `json:"indoor"`
	Outdoor      TypeBreakdown       `json:"outdoor"`
	Payments     PaymentAnalytics    `json:"payments"`
	Attendance   AttendanceAnalytics `json:"attendance"`
	RevenueTrend []RevenueBucket     `json:"revenue_trend"`
}
