package stats

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/am-muhwezi/ptf-sub000/internal/clock"
)

type Repository interface {
	// Snapshot gathers every dashboard counter inside one read-only
	// transaction.
	Snapshot(ctx context.Context, timeframe Timeframe, now time.Time) (*Snapshot, error)
}

type repository struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewRepository(db *sqlx.DB, loc *time.Location) Repository {
	return &repository{db: db, loc: loc}
}

func (r *repository) Snapshot(ctx context.Context, timeframe Timeframe, now time.Time) (*Snapshot, error) {
	windowStart := now.AddDate(0, 0, -timeframe.Days())
	prevStart := windowStart.AddDate(0, 0, -timeframe.Days())
	today := clock.DayOf(now, r.loc).Format("2006-01-02")
	weekAgo := clock.DayOf(now.AddDate(0, 0, -7), r.loc).Format("2006-01-02")

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	snap := &Snapshot{Timeframe: timeframe, GeneratedAt: now}

	if err := r.overview(ctx, tx, snap, windowStart, prevStart); err != nil {
		return nil, err
	}
	if err := r.breakdowns(ctx, tx, snap); err != nil {
		return nil, err
	}
	if err := r.payments(ctx, tx, snap, windowStart); err != nil {
		return nil, err
	}
	if err := r.attendance(ctx, tx, snap, today, weekAgo, windowStart); err != nil {
		return nil, err
	}
	if err := r.revenueTrend(ctx, tx, snap, now); err != nil {
		return nil, err
	}

	return snap, tx.Commit()
}

func (r *repository) overview(ctx context.Context, tx *sqlx.Tx, snap *Snapshot, windowStart, prevStart time.Time) error {
	var row struct {
		TotalMembers  int64           `db:"total_members"`
		ActiveMembers int64           `db:"active_members"`
		TotalRevenue  decimal.Decimal `db:"total_revenue"`
		SessionsUsed  int64           `db:"sessions_used"`
	}
	err := tx.GetContext(ctx, &row, `
		SELECT
			(SELECT COUNT(*) FROM members) AS total_members,
			(SELECT COUNT(*) FROM members WHERE status = 'active') AS active_members,
			(SELECT COALESCE(SUM(amount_paid), 0) FROM subscriptions) AS total_revenue,
			(SELECT COALESCE(SUM(sessions_used), 0) FROM subscriptions) AS sessions_used
	`)
	if err != nil {
		return err
	}

	var windows struct {
		Current  int64 `db:"current_window"`
		Previous int64 `db:"previous_window"`
	}
	err = tx.GetContext(ctx, &windows, `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $1) AS current_window,
			COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $1) AS previous_window
		FROM subscriptions
	`, windowStart, prevStart)
	if err != nil {
		return err
	}

	growth := 0.0
	if windows.Previous > 0 {
		growth = float64(windows.Current-windows.Previous) / float64(windows.Previous) * 100
	}

	avgSessions := 0.0
	if row.TotalMembers > 0 {
		avgSessions = float64(row.SessionsUsed) / float64(row.TotalMembers)
	}

	snap.Overview = Overview{
		TotalMembers:         row.TotalMembers,
		ActiveMembers:        row.ActiveMembers,
		TotalRevenue:         row.TotalRevenue,
		MonthlyGrowthPct:     growth,
		AvgSessionsPerMember: avgSessions,
	}
	return nil
}

func (r *repository) breakdowns(ctx context.Context, tx *sqlx.Tx, snap *Snapshot) error {
	rows := []struct {
		MembershipType string          `db:"membership_type"`
		Active         int64           `db:"active"`
		Suspended      int64           `db:"suspended"`
		Expired        int64           `db:"expired"`
		Revenue        decimal.Decimal `db:"revenue"`
		AverageFee     decimal.Decimal `db:"average_fee"`
	}{}
	err := tx.SelectContext(ctx, &rows, `
		SELECT s.membership_type,
			COUNT(*) FILTER (WHERE s.status = 'active') AS active,
			COUNT(*) FILTER (WHERE s.status = 'suspended') AS suspended,
			COUNT(*) FILTER (WHERE s.status = 'expired') AS expired,
			COALESCE(SUM(s.amount_paid), 0) AS revenue,
			COALESCE(AVG(CASE WHEN s.membership_type = 'indoor' THEN p.monthly_fee ELSE p.weekly_fee END), 0) AS average_fee
		FROM subscriptions s
		JOIN plans p ON s.plan_id = p.id
		GROUP BY s.membership_type
	`)
	if err != nil {
		return err
	}

	for _, row := range rows {
		breakdown := TypeBreakdown{
			Active:     row.Active,
			Suspended:  row.Suspended,
			Expired:    row.Expired,
			Revenue:    row.Revenue,
			AverageFee: row.AverageFee,
		}
		if row.MembershipType == "indoor" {
			snap.Indoor = breakdown
		} else {
			snap.Outdoor = breakdown
		}
	}
	return nil
}

func (r *repository) payments(ctx context.Context, tx *sqlx.Tx, snap *Snapshot, windowStart time.Time) error {
	var row struct {
		Paid          int64           `db:"paid"`
		Pending       int64           `db:"pending"`
		Overdue       int64           `db:"overdue"`
		Partial       int64           `db:"partial"`
		TotalRevenue  decimal.Decimal `db:"total_revenue"`
		WindowRevenue decimal.Decimal `db:"window_revenue"`
	}
	err := tx.GetContext(ctx, &row, `
		SELECT
			COUNT(*) FILTER (WHERE payment_status = 'paid') AS paid,
			COUNT(*) FILTER (WHERE payment_status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE payment_status = 'overdue') AS overdue,
			COUNT(*) FILTER (WHERE payment_status = 'partial') AS partial,
			COALESCE(SUM(amount_paid), 0) AS total_revenue,
			COALESCE(SUM(amount_paid) FILTER (WHERE created_at >= $1), 0) AS window_revenue
		FROM subscriptions
	`, windowStart)
	if err != nil {
		return err
	}

	snap.Payments = PaymentAnalytics{
		Paid:          row.Paid,
		Pending:       row.Pending,
		Overdue:       row.Overdue,
		Partial:       row.Partial,
		TotalRevenue:  row.TotalRevenue,
		WindowRevenue: row.WindowRevenue,
	}
	return nil
}

func (r *repository) attendance(ctx context.Context, tx *sqlx.Tx, snap *Snapshot, today, weekAgo string, windowStart time.Time) error {
	var row struct {
		Today     int64 `db:"today"`
		Last7Days int64 `db:"last_7_days"`
		Window    int64 `db:"window"`
	}
	err := tx.GetContext(ctx, &row, `
		SELECT
			COUNT(*) FILTER (WHERE check_in_day = $1) AS today,
			COUNT(*) FILTER (WHERE check_in_day >= $2) AS last_7_days,
			COUNT(*) FILTER (WHERE check_in_at >= $3) AS window
		FROM attendance_logs
	`, today, weekAgo, windowStart)
	if err != nil {
		return err
	}

	byType := []struct {
		MembershipType string `db:"membership_type"`
		Count          int64  `db:"count"`
	}{}
	err = tx.SelectContext(ctx, &byType, `
		SELECT membership_type, COUNT(*) AS count
		FROM attendance_logs
		WHERE check_in_at >= $1
		GROUP BY membership_type
	`, windowStart)
	if err != nil {
		return err
	}

	var avg sql.NullFloat64
	err = tx.GetContext(ctx, &avg, `
		SELECT AVG(duration_minutes)
		FROM attendance_logs
		WHERE status = 'checked_out' AND check_in_at >= $1
	`, windowStart)
	if err != nil {
		return err
	}

	avgMinutes := fallbackSessionMinutes
	if avg.Valid {
		avgMinutes = avg.Float64
	}

	counts := map[string]int64{}
	for _, row := range byType {
		counts[row.MembershipType] = row.Count
	}

	snap.Attendance = AttendanceAnalytics{
		Today:             row.Today,
		Last7Days:         row.Last7Days,
		Window:            row.Window,
		ByType:            counts,
		AvgSessionMinutes: avgMinutes,
	}
	return nil
}

func (r *repository) revenueTrend(ctx context.Context, tx *sqlx.Tx, snap *Snapshot, now time.Time) error {
	rows := []struct {
		Month   time.Time       `db:"month"`
		Revenue decimal.Decimal `db:"revenue"`
	}{}
	err := tx.SelectContext(ctx, &rows, `
		SELECT date_trunc('month', created_at) AS month,
			COALESCE(SUM(amount_paid), 0) AS revenue
		FROM subscriptions
		WHERE created_at >= date_trunc('month', $1::timestamptz) - interval '4 months'
		GROUP BY 1
		ORDER BY 1
	`, now)
	if err != nil {
		return err
	}

	trend := make([]RevenueBucket, 0, len(rows))
	for _, row := range rows {
		trend = append(trend, RevenueBucket{
			Month:   row.Month.Format("2006-01"),
			Revenue: row.Revenue,
		})
	}
	snap.RevenueTrend = trend
	return nil
}
