package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPlanUnknown      = errors.New("plan_unknown")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrLocationNotFound = errors.New("location not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const planColumns = `id, code, name, membership_type, shape, sessions_per_week, duration_weeks,
	monthly_fee, weekly_fee, session_fee, active, created_at, updated_at`

func (r *repository) GetByCode(ctx context.Context, code string) (*Plan, error) {
	var plan Plan
	err := r.db.GetContext(ctx, &plan,
		fmt.Sprintf(`SELECT %s FROM plans WHERE code = $1`, planColumns), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Plan, error) {
	var plan Plan
	err := r.db.GetContext(ctx, &plan,
		fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1`, planColumns), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) List(ctx context.Context, membershipType MembershipType, activeOnly bool) ([]Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE 1=1`, planColumns)
	args := []interface{}{}

	if membershipType != "" {
		args = append(args, membershipType)
		query += fmt.Sprintf(" AND membership_type = $%d", len(args))
	}
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY membership_type, code"

	plans := []Plan{}
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, err
	}
	return plans, nil
}

// CreateOrGet is idempotent on plan code. Codes outside the built-in rate
// card are refused.
func (r *repository) CreateOrGet(ctx context.Context, code string) (*Plan, error) {
	plan, err := r.GetByCode(ctx, code)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, ErrPlanNotFound) {
		return nil, err
	}

	for _, builtin := range BuiltinPlans() {
		if builtin.Code == code {
			return r.insert(ctx, builtin)
		}
	}

	return nil, ErrPlanUnknown
}

func (r *repository) insert(ctx context.Context, p Plan) (*Plan, error) {
	var plan Plan
	err := r.db.QueryRowxContext(ctx, fmt.Sprintf(`
		INSERT INTO plans (code, name, membership_type, shape, sessions_per_week, duration_weeks,
			monthly_fee, weekly_fee, session_fee, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET updated_at = NOW()
		RETURNING %s
	`, planColumns),
		p.Code, p.Name, p.MembershipType, p.Shape, p.SessionsPerWeek, p.DurationWeeks,
		p.MonthlyFee, p.WeeklyFee, p.SessionFee, p.Active,
	).StructScan(&plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Seed inserts the built-in plans and locations, skipping existing rows.
func (r *repository) Seed(ctx context.Context) error {
	for _, p := range BuiltinPlans() {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO plans (code, name, membership_type, shape, sessions_per_week, duration_weeks,
				monthly_fee, weekly_fee, session_fee, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (code) DO NOTHING
		`, p.Code, p.Name, p.MembershipType, p.Shape, p.SessionsPerWeek, p.DurationWeeks,
			p.MonthlyFee, p.WeeklyFee, p.SessionFee, p.Active)
		if err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", p.Code, err)
		}
	}

	for _, l := range BuiltinLocations() {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO locations (code, name)
			VALUES ($1, $2)
			ON CONFLICT (code) DO NOTHING
		`, l.Code, l.Name)
		if err != nil {
			return fmt.Errorf("failed to seed location %s: %w", l.Code, err)
		}
	}

	return nil
}

func (r *repository) GetLocationByID(ctx context.Context, id int64) (*Location, error) {
	var loc Location
	err := r.db.GetContext(ctx, &loc,
		`SELECT id, code, name, created_at FROM locations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *repository) ListLocations(ctx context.Context) ([]Location, error) {
	locations := []Location{}
	err := r.db.SelectContext(ctx, &locations,
		`SELECT id, code, name, created_at FROM locations ORDER BY code`)
	if err != nil {
		return nil, err
	}
	return locations, nil
}
