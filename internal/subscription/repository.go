package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/am-muhwezi/ptf-sub000/internal/clock"
)

var (
	ErrNotFound             = errors.New("subscription not found")
	ErrNoActiveSubscription = errors.New("no_active_subscription")
	ErrActiveExists         = errors.New("member already has an active subscription of this type")
	ErrNoSessionsRemaining  = errors.New("no_sessions_remaining")
	ErrNoSessionsUsed       = errors.New("no sessions used to credit")
)

type repository struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewRepository(db *sqlx.DB, loc *time.Location) Repository {
	return &repository{db: db, loc: loc}
}

const subColumns = `s.id, s.member_id, s.plan_id, s.membership_type, s.location_id,
	s.status, s.payment_status, s.total_sessions_allowed, s.sessions_used,
	s.start_date, s.end_date, s.next_billing_date, s.amount_paid, s.currency,
	s.created_at, s.updated_at`

const withPlanColumns = subColumns + `,
	p.code AS plan_code, p.name AS plan_name,
	m.first_name AS member_first_name, m.last_name AS member_last_name, m.phone AS member_phone`

const withPlanFrom = `FROM subscriptions s
	JOIN plans p ON s.plan_id = p.id
	JOIN members m ON s.member_id = m.id`

func (r *repository) Create(ctx context.Context, params CreateParams) (*Subscription, error) {
	if params.Currency == "" {
		params.Currency = "KES"
	}

	var sub Subscription
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (member_id, plan_id, membership_type, location_id,
			status, payment_status, total_sessions_allowed, sessions_used,
			start_date, end_date, next_billing_date, amount_paid, currency)
		VALUES ($1, $2, $3, $4, 'active', $5, $6, 0, $7, $8, $9, $10, $11)
		RETURNING id, member_id, plan_id, membership_type, location_id,
			status, payment_status, total_sessions_allowed, sessions_used,
			start_date, end_date, next_billing_date, amount_paid, currency,
			created_at, updated_at
	`, params.MemberID, params.PlanID, params.MembershipType, params.LocationID,
		params.PaymentStatus, params.TotalSessions,
		params.StartDate, params.EndDate, params.NextBillingDate,
		params.AmountPaid, params.Currency,
	).StructScan(&sub)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrActiveExists
		}
		return nil, err
	}

	return &sub, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*WithPlan, error) {
	var sub WithPlan
	err := r.db.GetContext(ctx, &sub,
		fmt.Sprintf(`SELECT %s %s WHERE s.id = $1`, withPlanColumns, withPlanFrom), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) GetByIDForUpdate(ctx context.Context, ext sqlx.ExtContext, id int64) (*Subscription, error) {
	var sub Subscription
	err := sqlx.GetContext(ctx, ext, &sub, fmt.Sprintf(`
		SELECT %s FROM subscriptions s WHERE s.id = $1 FOR UPDATE
	`, subColumns), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) GetActiveForMember(ctx context.Context, ext sqlx.ExtContext, memberID int64, forUpdate bool) (*WithPlan, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE OF s"
	}

	var sub WithPlan
	err := sqlx.GetContext(ctx, ext, &sub, fmt.Sprintf(`
		SELECT %s %s
		WHERE s.member_id = $1 AND s.status = 'active'
		ORDER BY s.created_at DESC
		LIMIT 1%s
	`, withPlanColumns, withPlanFrom, lock), memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) SetStatus(ctx context.Context, ext sqlx.ExtContext, id int64, status Status) error {
	result, err := ext.ExecContext(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus, amountPaid decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET payment_status = $2, amount_paid = amount_paid + $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, amountPaid)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Debit is the guarded atomic increment: the WHERE clause refuses to push
// sessions_used past the budget, so two racing admissions cannot overdraw.
func (r *repository) Debit(ctx context.Context, ext sqlx.ExtContext, id int64) (int, error) {
	var remaining int
	err := sqlx.GetContext(ctx, ext, &remaining, `
		UPDATE subscriptions
		SET sessions_used = sessions_used + 1, updated_at = NOW()
		WHERE id = $1 AND sessions_used < total_sessions_allowed
		RETURNING total_sessions_allowed - sessions_used
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoSessionsRemaining
		}
		return 0, err
	}
	return remaining, nil
}

func (r *repository) Credit(ctx context.Context, ext sqlx.ExtContext, id int64) (int, error) {
	var remaining int
	err := sqlx.GetContext(ctx, ext, &remaining, `
		UPDATE subscriptions
		SET sessions_used = sessions_used - 1, updated_at = NOW()
		WHERE id = $1 AND sessions_used > 0
		RETURNING total_sessions_allowed - sessions_used
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoSessionsUsed
		}
		return 0, err
	}
	return remaining, nil
}

func (r *repository) InsertSessionLog(ctx context.Context, ext sqlx.ExtContext, subscriptionID int64, logType LogType, notes *string) (*SessionLog, error) {
	var log SessionLog
	err := sqlx.GetContext(ctx, ext, &log, `
		INSERT INTO session_logs (subscription_id, type, notes)
		VALUES ($1, $2, $3)
		RETURNING id, subscription_id, type, notes, created_at
	`, subscriptionID, logType, notes)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repository) ListSessionLogs(ctx context.Context, subscriptionID int64, limit int) ([]SessionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	logs := []SessionLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, subscription_id, type, notes, created_at
		FROM session_logs
		WHERE subscription_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, subscriptionID, limit)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repository) Renew(ctx context.Context, ext sqlx.ExtContext, id int64, params RenewParams) (*Subscription, error) {
	var sub Subscription
	err := sqlx.GetContext(ctx, ext, &sub, `
		UPDATE subscriptions
		SET plan_id = $2, status = 'active', payment_status = $3,
			total_sessions_allowed = $4, sessions_used = 0,
			end_date = $5, next_billing_date = $6,
			amount_paid = amount_paid + $7, updated_at = NOW()
		WHERE id = $1
		RETURNING id, member_id, plan_id, membership_type, location_id,
			status, payment_status, total_sessions_allowed, sessions_used,
			start_date, end_date, next_billing_date, amount_paid, currency,
			created_at, updated_at
	`, id, params.PlanID, params.PaymentStatus, params.TotalSessions,
		params.EndDate, params.NextBillingDate, params.AmountPaid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) PaymentsDue(ctx context.Context, filter PaymentsDueFilter, now time.Time) ([]PaymentDue, int64, error) {
	where := `WHERE s.payment_status IN ('pending', 'overdue', 'partial')`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = fmt.Sprintf(`WHERE s.payment_status = $%d`, len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		fmt.Sprintf(`SELECT COUNT(*) %s %s`, withPlanFrom, where), args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows := []WithPlan{}
	err := r.db.SelectContext(ctx, &rows, fmt.Sprintf(`
		SELECT %s %s %s
		ORDER BY s.next_billing_date NULLS LAST, s.id
		LIMIT $%d OFFSET $%d
	`, withPlanColumns, withPlanFrom, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}

	due := make([]PaymentDue, 0, len(rows))
	for _, row := range rows {
		bucket, daysOverdue := classifyPayment(row.NextBillingDate, now, r.loc)
		due = append(due, PaymentDue{WithPlan: row, DaysOverdue: daysOverdue, Bucket: bucket})
	}

	return due, total, nil
}

func (r *repository) RenewalsDue(ctx context.Context, filter RenewalsDueFilter, now time.Time) ([]RenewalDue, int64, error) {
	minDays, maxDays := 0, filter.HorizonDays
	switch filter.Urgency {
	case UrgencyCritical:
		maxDays = min(maxDays, 7)
	case UrgencyHigh:
		minDays, maxDays = 8, min(maxDays, 15)
	case UrgencyMedium:
		minDays, maxDays = 16, min(maxDays, 30)
	case UrgencyLow:
		minDays = 31
	}

	where := `WHERE s.status = 'active'
		AND (s.end_date::date - $1::date) BETWEEN $2 AND $3`
	args := []interface{}{now.In(r.loc).Format("2006-01-02"), minDays, maxDays}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		fmt.Sprintf(`SELECT COUNT(*) %s %s`, withPlanFrom, where), args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows := []WithPlan{}
	err := r.db.SelectContext(ctx, &rows, fmt.Sprintf(`
		SELECT %s %s %s
		ORDER BY s.end_date, s.id
		LIMIT $%d OFFSET $%d
	`, withPlanColumns, withPlanFrom, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}

	due := make([]RenewalDue, 0, len(rows))
	for _, row := range rows {
		days := clock.DaysBetween(now, row.EndDate, r.loc)
		due = append(due, RenewalDue{WithPlan: row, DaysUntilEnd: days, Urgency: classifyRenewal(days)})
	}

	return due, total, nil
}

func (r *repository) ExpiringSoon(ctx context.Context, now time.Time) ([]WithPlan, error) {
	rows := []WithPlan{}
	err := r.db.SelectContext(ctx, &rows, fmt.Sprintf(`
		SELECT %s %s
		WHERE s.status = 'active'
		  AND (
			(s.end_date::date - $1::date) BETWEEN 0 AND $2
			OR (s.total_sessions_allowed - s.sessions_used) <= $3
		  )
		ORDER BY s.end_date, s.id
	`, withPlanColumns, withPlanFrom),
		now.In(r.loc).Format("2006-01-02"), ExpiringSoonDays, ExpiringSoonSessions)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountsByTypeAndStatus(ctx context.Context) ([]TypeStatusCount, error) {
	counts := []TypeStatusCount{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT membership_type, status, COUNT(*) AS count
		FROM subscriptions
		GROUP BY membership_type, status
		ORDER BY membership_type, status
	`)
	if err != nil {
		return nil, err
	}
	return counts, nil
}
