package subscription

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/metrics"
)

// Accountant handles manual session accounting outside the check-in flow:
// staff recording a session against a subscription directly, and superusers
// restoring one that was debited in error.
type Accountant interface {
	UseSession(ctx context.Context, subscriptionID int64, logType LogType, notes *string) (*SessionLog, int, error)
	CreditSession(ctx context.Context, subscriptionID int64, notes *string) (int, error)
}

type accountant struct {
	db   *sqlx.DB
	repo Repository
	clk  clock.Clock
	loc  *time.Location
}

func NewAccountant(db *sqlx.DB, repo Repository, clk clock.Clock, loc *time.Location) Accountant {
	return &accountant{db: db, repo: repo, clk: clk, loc: loc}
}

// UseSession debits one session and appends the matching log entry in a
// single transaction. The subscription row is locked first so the guarded
// decrement and the log line cannot diverge.
func (a *accountant) UseSession(ctx context.Context, subscriptionID int64, logType LogType, notes *string) (*SessionLog, int, error) {
	if !logType.Valid() {
		logType = LogRegular
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	sub, err := a.repo.GetByIDForUpdate(ctx, tx, subscriptionID)
	if err != nil {
		return nil, 0, err
	}
	if sub.Status != StatusActive {
		return nil, 0, ErrNoActiveSubscription
	}
	if clock.DaysBetween(sub.EndDate, a.clk.Now(), a.loc) > 0 {
		return nil, 0, ErrNoSessionsRemaining
	}

	remaining, err := a.repo.Debit(ctx, tx, subscriptionID)
	if err != nil {
		return nil, 0, err
	}

	log, err := a.repo.InsertSessionLog(ctx, tx, subscriptionID, logType, notes)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	logger.Infof("Session used: subscription=%d type=%s remaining=%d", subscriptionID, logType, remaining)
	metrics.RecordSessionDebit(string(logType))
	return log, remaining, nil
}

// CreditSession restores one session. Logged as a makeup entry so the
// correction stays visible in the subscription's history.
func (a *accountant) CreditSession(ctx context.Context, subscriptionID int64, notes *string) (int, error) {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := a.repo.GetByIDForUpdate(ctx, tx, subscriptionID); err != nil {
		return 0, err
	}

	remaining, err := a.repo.Credit(ctx, tx, subscriptionID)
	if err != nil {
		return 0, err
	}

	if _, err := a.repo.InsertSessionLog(ctx, tx, subscriptionID, LogMakeup, notes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	logger.Infof("Session credited: subscription=%d remaining=%d", subscriptionID, remaining)
	metrics.RecordSessionCredit()
	return remaining, nil
}
