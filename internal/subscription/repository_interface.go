package subscription

import (
	"context"
	"time"

	"github.com/am-muhwezi/ptf-sub000/internal/catalog"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CreateParams struct {
	MemberID        int64
	PlanID          int64
	MembershipType  catalog.MembershipType
	LocationID      *int64
	StartDate       time.Time
	EndDate         time.Time
	TotalSessions   int
	PaymentStatus   PaymentStatus
	AmountPaid      decimal.Decimal
	Currency        string
	NextBillingDate *time.Time
}

type RenewParams struct {
	PlanID          int64
	EndDate         time.Time
	TotalSessions   int
	PaymentStatus   PaymentStatus
	AmountPaid      decimal.Decimal
	NextBillingDate *time.Time
}

type PaymentsDueFilter struct {
	Status  PaymentStatus
	Page    int
	PerPage int
}

type RenewalsDueFilter struct {
	HorizonDays int
	Urgency     Urgency
	Page        int
	PerPage     int
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Subscription, error)
	GetByID(ctx context.Context, id int64) (*WithPlan, error)
	GetByIDForUpdate(ctx context.Context, ext sqlx.ExtContext, id int64) (*Subscription, error)
	GetActiveForMember(ctx context.Context, ext sqlx.ExtContext, memberID int64, forUpdate bool) (*WithPlan, error)
	SetStatus(ctx context.Context, ext sqlx.ExtContext, id int64, status Status) error
	SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus, amountPaid decimal.Decimal) error

	// Debit consumes one session with a guarded atomic increment; it fails
	// with ErrNoSessionsRemaining when the budget is exhausted.
	Debit(ctx context.Context, ext sqlx.ExtContext, id int64) (remaining int, err error)
	Credit(ctx context.Context, ext sqlx.ExtContext, id int64) (remaining int, err error)
	InsertSessionLog(ctx context.Context, ext sqlx.ExtContext, subscriptionID int64, logType LogType, notes *string) (*SessionLog, error)
	ListSessionLogs(ctx context.Context, subscriptionID int64, limit int) ([]SessionLog, error)

	Renew(ctx context.Context, ext sqlx.ExtContext, id int64, params RenewParams) (*Subscription, error)

	PaymentsDue(ctx context.Context, filter PaymentsDueFilter, now time.Time) ([]PaymentDue, int64, error)
	RenewalsDue(ctx context.Context, filter RenewalsDueFilter, now time.Time) ([]RenewalDue, int64, error)
	ExpiringSoon(ctx context.Context, now time.Time) ([]WithPlan, error)
	CountsByTypeAndStatus(ctx context.Context) ([]TypeStatusCount, error)
}
