package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/member"
	"github.com/am-muhwezi/ptf-sub000/internal/metrics"
	"github.com/am-muhwezi/ptf-sub000/internal/subscription"
)

// Reason is the stable code a rejected admission reports to the front desk.
type Reason string

const (
	ReasonMemberInactive        Reason = "member_inactive"
	ReasonNoActiveSubscription  Reason = "no_active_subscription"
	ReasonPaymentPending        Reason = "payment_pending"
	ReasonPaymentOverdue        Reason = "payment_overdue"
	ReasonPaymentPartial        Reason = "payment_partial"
	ReasonMembershipExpired     Reason = "membership_expired"
	ReasonNoSessionsRemaining   Reason = "no_sessions_remaining"
	ReasonAlreadyCheckedIn      Reason = "already_checked_in"
	ReasonAlreadyCheckedInToday Reason = "already_checked_in_today"
	ReasonNotCheckedIn          Reason = "not_checked_in"
)

// DeniedError is returned when an admission gate refuses the member.
type DeniedError struct {
	Reason Reason
	Detail string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("admission denied: %s", e.Reason)
}

func denied(reason Reason, detail string) *DeniedError {
	return &DeniedError{Reason: reason, Detail: detail}
}

// Result is a successful check-in.
type Result struct {
	Log               *Log                   `json:"log"`
	Subscription      *subscription.WithPlan `json:"subscription"`
	SessionsRemaining int                    `json:"sessions_remaining"`
}

// Service admits and releases members. Check-in runs the gate pipeline and
// the session debit in one serializable transaction; rows are always locked
// member first, then subscription, then attendance, so concurrent admissions
// for the same member queue up instead of deadlocking.
type Service interface {
	CheckIn(ctx context.Context, memberID int64) (*Result, error)
	CheckOut(ctx context.Context, memberID int64) (*Log, error)
}

type service struct {
	db        *sqlx.DB
	logs      Repository
	members   member.Repository
	subs      subscription.Repository
	clk       clock.Clock
	loc       *time.Location
	threshold time.Duration
}

func NewService(db *sqlx.DB, logs Repository, members member.Repository, subs subscription.Repository, clk clock.Clock, loc *time.Location, activityThreshold time.Duration) Service {
	return &service{
		db:        db,
		logs:      logs,
		members:   members,
		subs:      subs,
		clk:       clk,
		loc:       loc,
		threshold: activityThreshold,
	}
}

func (s *service) CheckIn(ctx context.Context, memberID int64) (*Result, error) {
	started := time.Now()
	result, err := s.checkIn(ctx, memberID)

	elapsed := time.Since(started).Seconds()
	var deniedErr *DeniedError
	switch {
	case err == nil:
		metrics.RecordAdmission(true, "", elapsed)
	case errors.As(err, &deniedErr):
		metrics.RecordAdmission(false, string(deniedErr.Reason), elapsed)
	}
	return result, err
}

func (s *service) checkIn(ctx context.Context, memberID int64) (*Result, error) {
	now := s.clk.Now()
	today := clock.DayOf(now, s.loc)

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := s.members.GetForUpdate(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}
	if m.Status != member.StatusActive {
		return nil, denied(ReasonMemberInactive, fmt.Sprintf("member is %s", m.Status))
	}

	sub, err := s.subs.GetActiveForMember(ctx, tx, memberID, true)
	if err != nil {
		if errors.Is(err, subscription.ErrNoActiveSubscription) {
			return nil, denied(ReasonNoActiveSubscription, "member has no active subscription")
		}
		return nil, err
	}

	// Refresh expiry before any gate runs: a lapsed row flips to expired and
	// the flip commits even when a payment gate denies the visit. Gate order
	// still decides the reason code: payment, expiry, session balance, one
	// visit per day, no doubled-up open log.
	lapsed := clock.DaysBetween(sub.EndDate, now, s.loc) > 0
	if lapsed {
		if err := s.subs.SetStatus(ctx, tx, sub.ID, subscription.StatusExpired); err != nil {
			return nil, err
		}
	}

	if reason, ok := paymentGate(sub.PaymentStatus); !ok {
		if lapsed {
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			metrics.RecordSubscriptionExpired()
		}
		return nil, denied(reason, fmt.Sprintf("payment status is %s", sub.PaymentStatus))
	}

	if lapsed {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		metrics.RecordSubscriptionExpired()
		return nil, denied(ReasonMembershipExpired, fmt.Sprintf("membership ended %s", sub.EndDate.In(s.loc).Format("2006-01-02")))
	}

	if sub.SessionsRemaining() <= 0 {
		if err := s.subs.SetStatus(ctx, tx, sub.ID, subscription.StatusExpired); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		metrics.RecordSubscriptionExpired()
		return nil, denied(ReasonNoSessionsRemaining, "session budget exhausted")
	}

	visited, err := s.logs.ExistsOnDay(ctx, tx, memberID, today)
	if err != nil {
		return nil, err
	}
	if visited {
		return nil, denied(ReasonAlreadyCheckedInToday, "one admission per calendar day")
	}

	if _, err := s.logs.OpenForMember(ctx, tx, memberID, false); err == nil {
		return nil, denied(ReasonAlreadyCheckedIn, "member has an open visit")
	} else if !errors.Is(err, ErrNoOpenLog) {
		return nil, err
	}

	remaining, err := s.subs.Debit(ctx, tx, sub.ID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoSessionsRemaining) {
			return nil, denied(ReasonNoSessionsRemaining, "session budget exhausted")
		}
		return nil, err
	}

	if _, err := s.subs.InsertSessionLog(ctx, tx, sub.ID, subscription.LogRegular, nil); err != nil {
		return nil, err
	}

	log, err := s.logs.Insert(ctx, tx, InsertParams{
		MemberID:       memberID,
		SubscriptionID: sub.ID,
		MembershipType: sub.MembershipType,
		LocationID:     sub.LocationID,
		CheckInAt:      now,
		CheckInDay:     today,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyOnDay) {
			return nil, denied(ReasonAlreadyCheckedInToday, "one admission per calendar day")
		}
		if errors.Is(err, ErrAlreadyOpen) {
			return nil, denied(ReasonAlreadyCheckedIn, "member has an open visit")
		}
		return nil, err
	}

	if err := s.members.TrackVisit(ctx, tx, memberID, now, s.threshold); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	sub.SessionsUsed = sub.TotalSessionsAllowed - remaining
	logger.Infof("Check-in: member=%d subscription=%d remaining=%d", memberID, sub.ID, remaining)
	return &Result{Log: log, Subscription: sub, SessionsRemaining: remaining}, nil
}

func paymentGate(status subscription.PaymentStatus) (Reason, bool) {
	switch status {
	case subscription.PaymentPending:
		return ReasonPaymentPending, false
	case subscription.PaymentOverdue:
		return ReasonPaymentOverdue, false
	case subscription.PaymentPartial:
		return ReasonPaymentPartial, false
	default:
		return "", true
	}
}

func (s *service) CheckOut(ctx context.Context, memberID int64) (*Log, error) {
	now := s.clk.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	open, err := s.logs.OpenForMember(ctx, tx, memberID, true)
	if err != nil {
		if errors.Is(err, ErrNoOpenLog) {
			return nil, denied(ReasonNotCheckedIn, "member has no open visit")
		}
		return nil, err
	}

	minutes := int(now.Sub(open.CheckInAt) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	closed, err := s.logs.Close(ctx, tx, open.ID, now, minutes)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Infof("Check-out: member=%d duration=%dm", memberID, minutes)
	metrics.RecordCheckout()
	return closed, nil
}
