package subscription

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupSubscriptionMock(t *testing.T) (Repository, *sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB, time.UTC)

	closer := func() { sqlxDB.Close() }
	return repo, sqlxDB, mock, closer
}

var subRows = []string{
	"id", "member_id", "plan_id", "membership_type", "location_id",
	"status", "payment_status", "total_sessions_allowed", "sessions_used",
	"start_date", "end_date", "next_billing_date", "amount_paid", "currency",
	"created_at", "updated_at",
}

var withPlanRows = append(append([]string{}, subRows...),
	"plan_code", "plan_name", "member_first_name", "member_last_name", "member_phone")

func TestDebit(t *testing.T) {
	repo, db, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`sessions_used = sessions_used + 1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(4))

	remaining, err := repo.Debit(context.Background(), db, 7)
	require.NoError(t, err)
	require.Equal(t, 4, remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_BudgetExhausted(t *testing.T) {
	repo, db, mock, close := setupSubscriptionMock(t)
	defer close()

	// The guarded UPDATE matches no row once sessions_used hits the budget.
	mock.ExpectQuery(regexp.QuoteMeta(`sessions_used = sessions_used + 1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := repo.Debit(context.Background(), db, 7)
	require.ErrorIs(t, err, ErrNoSessionsRemaining)
}

func TestCredit_NothingUsed(t *testing.T) {
	repo, db, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`sessions_used = sessions_used - 1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := repo.Credit(context.Background(), db, 7)
	require.ErrorIs(t, err, ErrNoSessionsUsed)
}

func TestCreate_DuplicateActive(t *testing.T) {
	repo, _, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO subscriptions`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subscriptions_one_active_per_type"})

	_, err := repo.Create(context.Background(), CreateParams{
		MemberID:       1,
		PlanID:         2,
		MembershipType: "indoor",
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(0, 1, 0),
		TotalSessions:  12,
		PaymentStatus:  PaymentPending,
		AmountPaid:     decimal.New(8000, 0),
	})
	require.ErrorIs(t, err, ErrActiveExists)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(`SELECT .+ FROM subscriptions s`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(withPlanRows))

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetActiveForMember(t *testing.T) {
	repo, db, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Now()
	end := now.AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT .+ FOR UPDATE OF s`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(withPlanRows).AddRow(
			5, 1, 2, "indoor", nil,
			"active", "paid", 12, 3,
			now, end, end, "8000", "KES",
			now, now,
			"indoor_monthly", "Indoor Monthly", "Wanjiku", "Kamau", "+254700000001",
		))

	sub, err := repo.GetActiveForMember(context.Background(), db, 1, true)
	require.NoError(t, err)
	require.Equal(t, int64(5), sub.ID)
	require.Equal(t, "indoor_monthly", sub.PlanCode)
	require.Equal(t, 9, sub.SessionsRemaining())
}

func TestGetActiveForMember_None(t *testing.T) {
	repo, db, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(`SELECT .+ FROM subscriptions s`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(withPlanRows))

	_, err := repo.GetActiveForMember(context.Background(), db, 1, false)
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestRenewalsDue_UrgencyFromEndDate(t *testing.T) {
	repo, _, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM subscriptions s`).
		WillReturnRows(sqlmock.NewRows(withPlanRows).AddRow(
			5, 1, 2, "outdoor", 3,
			"active", "paid", 4, 1,
			now.AddDate(0, -1, 0), end, end, "4000", "KES",
			now, now,
			"outdoor_weekly", "Outdoor Weekly", "Achieng", "Odhiambo", "+254700000002",
		))

	due, total, err := repo.RenewalsDue(context.Background(), RenewalsDueFilter{
		HorizonDays: 30,
		Page:        1,
		PerPage:     20,
	}, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, due, 1)
	require.Equal(t, 4, due[0].DaysUntilEnd)
	require.Equal(t, UrgencyCritical, due[0].Urgency)
}

func TestPaymentsDue_Buckets(t *testing.T) {
	repo, _, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	billing := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM subscriptions s`).
		WillReturnRows(sqlmock.NewRows(withPlanRows).AddRow(
			5, 1, 2, "indoor", nil,
			"active", "overdue", 12, 3,
			now.AddDate(0, -1, 0), now.AddDate(0, 1, 0), billing, "0", "KES",
			now, now,
			"indoor_monthly", "Indoor Monthly", "Wanjiku", "Kamau", "+254700000001",
		))

	due, total, err := repo.PaymentsDue(context.Background(), PaymentsDueFilter{
		Page:    1,
		PerPage: 20,
	}, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, due, 1)
	require.Equal(t, BucketOverdue, due[0].Bucket)
	require.Equal(t, 9, due[0].DaysOverdue)
}

func TestCountsByTypeAndStatus(t *testing.T) {
	repo, _, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY membership_type, status`)).
		WillReturnRows(sqlmock.NewRows([]string{"membership_type", "status", "count"}).
			AddRow("indoor", "active", 42).
			AddRow("indoor", "expired", 7).
			AddRow("outdoor", "active", 15))

	counts, err := repo.CountsByTypeAndStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	require.Equal(t, int64(42), counts[0].Count)
}
