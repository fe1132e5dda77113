package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound        = errors.New("member not found")
	ErrProfileNotFound = errors.New("physical profile not found")
)

// DuplicateFieldError reports a uniqueness collision on create or update.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate_field(%s)", e.Field)
}

// uniqueViolation maps a Postgres unique-constraint violation to the
// member field it guards.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	switch {
	case strings.Contains(pqErr.Constraint, "email"):
		return &DuplicateFieldError{Field: "email"}
	case strings.Contains(pqErr.Constraint, "phone"):
		return &DuplicateFieldError{Field: "phone"}
	case strings.Contains(pqErr.Constraint, "id_passport"):
		return &DuplicateFieldError{Field: "id_passport"}
	default:
		return &DuplicateFieldError{Field: pqErr.Constraint}
	}
}

// nullable normalizes "" to absent so unique indexes ignore empty values.
func nullable(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

type CreateParams struct {
	FirstName             string
	LastName              string
	OtherNames            *string
	Email                 *string
	Phone                 string
	IDPassport            *string
	DOB                   *time.Time
	BloodGroup            BloodGroup
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalConditions     *string
}

type UpdateParams struct {
	FirstName             string
	LastName              string
	OtherNames            *string
	Email                 *string
	Phone                 string
	IDPassport            *string
	DOB                   *time.Time
	BloodGroup            BloodGroup
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalConditions     *string
	Status                Status
}

type ProfileParams struct {
	HeightCM     float64
	WeightKG     float64
	BodyFatPct   *float64
	FitnessLevel FitnessLevel
	Goals        *string
	TestResults  *string
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const memberColumns = `id, first_name, last_name, other_names, email, phone, id_passport, dob,
	blood_group, emergency_contact_name, emergency_contact_phone, medical_conditions,
	status, registered_at, total_visits, last_visit_at, created_at, updated_at`

func withCode(m *Member) *Member {
	m.MemberCode = m.Code()
	return m
}

func withCodes(members []Member) []Member {
	for i := range members {
		members[i].MemberCode = members[i].Code()
	}
	return members
}

func (r *repository) Create(ctx context.Context, params CreateParams) (*Member, error) {
	if params.BloodGroup == "" {
		params.BloodGroup = BloodUnspecified
	}

	var m Member
	err := r.db.QueryRowxContext(ctx, fmt.Sprintf(`
		INSERT INTO members (first_name, last_name, other_names, email, phone, id_passport, dob,
			blood_group, emergency_contact_name, emergency_contact_phone, medical_conditions, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'active')
		RETURNING %s
	`, memberColumns),
		params.FirstName, params.LastName, nullable(params.OtherNames),
		nullable(params.Email), params.Phone, nullable(params.IDPassport), params.DOB,
		params.BloodGroup, params.EmergencyContactName, params.EmergencyContactPhone,
		nullable(params.MedicalConditions),
	).StructScan(&m)
	if err != nil {
		return nil, uniqueViolation(err)
	}

	return withCode(&m), nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Member, error) {
	var m Member
	err := r.db.GetContext(ctx, &m,
		fmt.Sprintf(`SELECT %s FROM members WHERE id = $1`, memberColumns), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return withCode(&m), nil
}

func (r *repository) GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id int64) (*Member, error) {
	var m Member
	err := sqlx.GetContext(ctx, ext, &m,
		fmt.Sprintf(`SELECT %s FROM members WHERE id = $1 FOR UPDATE`, memberColumns), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return withCode(&m), nil
}

// Update rewrites mutable fields. The id and registration timestamp never
// change.
func (r *repository) Update(ctx context.Context, id int64, params UpdateParams) (*Member, error) {
	var m Member
	err := r.db.QueryRowxContext(ctx, fmt.Sprintf(`
		UPDATE members
		SET first_name = $2, last_name = $3, other_names = $4, email = $5, phone = $6,
			id_passport = $7, dob = $8, blood_group = $9,
			emergency_contact_name = $10, emergency_contact_phone = $11,
			medical_conditions = $12, status = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, memberColumns),
		id, params.FirstName, params.LastName, nullable(params.OtherNames),
		nullable(params.Email), params.Phone, nullable(params.IDPassport), params.DOB,
		params.BloodGroup, params.EmergencyContactName, params.EmergencyContactPhone,
		nullable(params.MedicalConditions), params.Status,
	).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, uniqueViolation(err)
	}

	return withCode(&m), nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE members SET status = 'inactive', updated_at = NOW() WHERE id = $1
	`, id)
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

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Member, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.MembershipType != "" {
		args = append(args, filter.MembershipType)
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM subscriptions s
			WHERE s.member_id = members.id
			  AND s.status = 'active'
			  AND s.membership_type = $%d
		)`, len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		fmt.Sprintf("SELECT COUNT(*) FROM members %s", where), args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM members %s ORDER BY id LIMIT $%d OFFSET $%d`,
		memberColumns, where, len(args)-1, len(args))

	members := []Member{}
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, err
	}

	return withCodes(members), total, nil
}

// Search ranks matches: id exact, email exact (query contains '@'),
// first-name prefix, last-name prefix, phone substring; ties by id.
func (r *repository) Search(ctx context.Context, query string, limit int) ([]Member, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []Member{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	members := []Member{}
	err := r.db.SelectContext(ctx, &members, fmt.Sprintf(`
		SELECT %s FROM members
		WHERE id::text = $1
		   OR (position('@' in $1) > 0 AND email = $1)
		   OR lower(first_name) LIKE lower($1) || '%%'
		   OR lower(last_name) LIKE lower($1) || '%%'
		   OR phone LIKE '%%' || $1 || '%%'
		ORDER BY CASE
			WHEN id::text = $1 THEN 0
			WHEN position('@' in $1) > 0 AND email = $1 THEN 1
			WHEN lower(first_name) LIKE lower($1) || '%%' THEN 2
			WHEN lower(last_name) LIKE lower($1) || '%%' THEN 3
			ELSE 4
		END, id
		LIMIT $2
	`, memberColumns), query, limit)
	if err != nil {
		return nil, err
	}

	return withCodes(members), nil
}

func (r *repository) StatusCounts(ctx context.Context) (*StatusSummary, error) {
	var s StatusSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'inactive') AS inactive,
			COUNT(*) FILTER (WHERE status = 'suspended') AS suspended
		FROM members
	`)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TrackVisit is a single atomic UPDATE, never read-modify-write, so
// concurrent admissions cannot lose counts.
func (r *repository) TrackVisit(ctx context.Context, ext sqlx.ExtContext, id int64, now time.Time, threshold time.Duration) error {
	_, err := ext.ExecContext(ctx, `
		UPDATE members
		SET total_visits = total_visits + 1,
			last_visit_at = CASE
				WHEN last_visit_at IS NULL OR last_visit_at <= $2 - ($3 * interval '1 minute')
				THEN $2 ELSE last_visit_at
			END,
			updated_at = NOW()
		WHERE id = $1
	`, id, now, int(threshold.Minutes()))
	return err
}

const profileColumns = `id, member_id, height_cm, weight_kg, bmi, body_fat_pct,
	fitness_level, goals, test_results, created_at, updated_at`

func (r *repository) UpsertPhysicalProfile(ctx context.Context, memberID int64, params ProfileParams) (*PhysicalProfile, error) {
	bmi := ComputeBMI(params.HeightCM, params.WeightKG)

	var p PhysicalProfile
	err := r.db.QueryRowxContext(ctx, fmt.Sprintf(`
		INSERT INTO physical_profiles (member_id, height_cm, weight_kg, bmi, body_fat_pct,
			fitness_level, goals, test_results)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (member_id) DO UPDATE SET
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			bmi = EXCLUDED.bmi,
			body_fat_pct = EXCLUDED.body_fat_pct,
			fitness_level = EXCLUDED.fitness_level,
			goals = EXCLUDED.goals,
			test_results = EXCLUDED.test_results,
			updated_at = NOW()
		RETURNING %s
	`, profileColumns),
		memberID, params.HeightCM, params.WeightKG, bmi, params.BodyFatPct,
		params.FitnessLevel, nullable(params.Goals), nullable(params.TestResults),
	).StructScan(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetPhysicalProfile(ctx context.Context, memberID int64) (*PhysicalProfile, error) {
	var p PhysicalProfile
	err := r.db.GetContext(ctx, &p,
		fmt.Sprintf(`SELECT %s FROM physical_profiles WHERE member_id = $1`, profileColumns), memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}
