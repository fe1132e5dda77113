package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNoOpenLog    = errors.New("no open attendance log")
	ErrAlreadyOpen  = errors.New("member already has an open attendance log")
	ErrAlreadyOnDay = errors.New("member already checked in on this day")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const logColumns = `a.id, a.member_id, a.subscription_id, a.membership_type, a.location_id,
	a.status, a.check_in_at, a.check_in_day, a.check_out_at, a.duration_minutes, a.created_at`

func (r *repository) Insert(ctx context.Context, ext sqlx.ExtContext, params InsertParams) (*Log, error) {
	var log Log
	err := sqlx.GetContext(ctx, ext, &log, `
		INSERT INTO attendance_logs (member_id, subscription_id, membership_type, location_id,
			status, check_in_at, check_in_day)
		VALUES ($1, $2, $3, $4, 'checked_in', $5, $6)
		RETURNING id, member_id, subscription_id, membership_type, location_id,
			status, check_in_at, check_in_day, check_out_at, duration_minutes, created_at
	`, params.MemberID, params.SubscriptionID, params.MembershipType, params.LocationID,
		params.CheckInAt, params.CheckInDay.Format("2006-01-02"))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "attendance_logs_one_open" {
				return nil, ErrAlreadyOpen
			}
			return nil, ErrAlreadyOnDay
		}
		return nil, err
	}
	return &log, nil
}

func (r *repository) OpenForMember(ctx context.Context, ext sqlx.ExtContext, memberID int64, forUpdate bool) (*Log, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE"
	}

	var log Log
	err := sqlx.GetContext(ctx, ext, &log, fmt.Sprintf(`
		SELECT %s FROM attendance_logs a
		WHERE a.member_id = $1 AND a.status = 'checked_in'
		ORDER BY a.check_in_at DESC
		LIMIT 1%s
	`, logColumns, lock), memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenLog
		}
		return nil, err
	}
	return &log, nil
}

func (r *repository) ExistsOnDay(ctx context.Context, ext sqlx.ExtContext, memberID int64, day time.Time) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, ext, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_logs
			WHERE member_id = $1 AND check_in_day = $2
		)
	`, memberID, day.Format("2006-01-02"))
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) Close(ctx context.Context, ext sqlx.ExtContext, id int64, at time.Time, durationMinutes int) (*Log, error) {
	var log Log
	err := sqlx.GetContext(ctx, ext, &log, `
		UPDATE attendance_logs
		SET status = 'checked_out', check_out_at = $2, duration_minutes = $3
		WHERE id = $1 AND status = 'checked_in'
		RETURNING id, member_id, subscription_id, membership_type, location_id,
			status, check_in_at, check_in_day, check_out_at, duration_minutes, created_at
	`, id, at, durationMinutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenLog
		}
		return nil, err
	}
	return &log, nil
}

func (r *repository) ListByDay(ctx context.Context, filter ListFilter) ([]WithMember, int64, error) {
	day := filter.Day.Format("2006-01-02")

	var total int64
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM attendance_logs WHERE check_in_day = $1
	`, day); err != nil {
		return nil, 0, err
	}

	logs := []WithMember{}
	err := r.db.SelectContext(ctx, &logs, fmt.Sprintf(`
		SELECT %s,
			m.first_name AS member_first_name,
			m.last_name AS member_last_name,
			m.phone AS member_phone
		FROM attendance_logs a
		JOIN members m ON a.member_id = m.id
		WHERE a.check_in_day = $1
		ORDER BY a.check_in_at DESC
		LIMIT $2 OFFSET $3
	`, logColumns), day, filter.PerPage, (filter.Page-1)*filter.PerPage)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
