package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/member"
	"github.com/am-muhwezi/ptf-sub000/internal/metrics"
)

var (
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrMemberSuspended        = errors.New("member is suspended")
	ErrLocationRequired       = errors.New("outdoor subscriptions require a location")
	ErrLocationNotAllowed     = errors.New("indoor subscriptions cannot carry a location")
	ErrPlanTypeMismatch       = errors.New("renewal plan must match the subscription's membership type")
)

type IssueParams struct {
	MemberID      int64
	PlanCode      string
	LocationID    *int64
	StartDate     *time.Time
	PaymentStatus PaymentStatus
	AmountPaid    decimal.Decimal
}

type RenewRequest struct {
	PlanCode      string // empty keeps the current plan
	PaymentStatus PaymentStatus
	AmountPaid    decimal.Decimal
}

// Service drives the subscription lifecycle: issuance, renewal, the
// suspend/reactivate/cancel transitions and lazy expiry on read paths.
type Service interface {
	Issue(ctx context.Context, params IssueParams) (*Subscription, error)
	Renew(ctx context.Context, id int64, req RenewRequest) (*Subscription, error)
	Suspend(ctx context.Context, id int64) (*Subscription, error)
	Reactivate(ctx context.Context, id int64) (*Subscription, error)
	Cancel(ctx context.Context, id int64) (*Subscription, error)
	RecordPayment(ctx context.Context, id int64, status PaymentStatus, amount decimal.Decimal) error

	// Refresh flips an active subscription to expired once its end date has
	// passed or the session budget is gone. Returns true when it did.
	Refresh(ctx context.Context, sub *Subscription) (bool, error)
}

type service struct {
	db      *sqlx.DB
	repo    Repository
	plans   catalog.Repository
	members member.Repository
	clk     clock.Clock
	loc     *time.Location
}

func NewService(db *sqlx.DB, repo Repository, plans catalog.Repository, members member.Repository, clk clock.Clock, loc *time.Location) Service {
	return &service{db: db, repo: repo, plans: plans, members: members, clk: clk, loc: loc}
}

func (s *service) Issue(ctx context.Context, params IssueParams) (*Subscription, error) {
	m, err := s.members.GetByID(ctx, params.MemberID)
	if err != nil {
		return nil, err
	}
	if m.Status == member.StatusSuspended {
		return nil, ErrMemberSuspended
	}

	plan, err := s.plans.CreateOrGet(ctx, params.PlanCode)
	if err != nil {
		return nil, err
	}

	if err := validateLocation(plan.MembershipType, params.LocationID); err != nil {
		return nil, err
	}
	if params.LocationID != nil {
		if _, err := s.plans.GetLocationByID(ctx, *params.LocationID); err != nil {
			return nil, err
		}
	}

	start := clock.DayOf(s.clk.Now(), s.loc)
	if params.StartDate != nil {
		start = clock.DayOf(*params.StartDate, s.loc)
	}
	end := plan.EndDate(start)

	paymentStatus := params.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	sub, err := s.repo.Create(ctx, CreateParams{
		MemberID:        params.MemberID,
		PlanID:          plan.ID,
		MembershipType:  plan.MembershipType,
		LocationID:      params.LocationID,
		StartDate:       start,
		EndDate:         end,
		TotalSessions:   plan.TotalSessions(),
		PaymentStatus:   paymentStatus,
		AmountPaid:      params.AmountPaid,
		NextBillingDate: &end,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("Subscription created: id=%d member=%d plan=%s", sub.ID, sub.MemberID, plan.Code)
	metrics.RecordSubscriptionCreated(string(plan.MembershipType))
	return sub, nil
}

func (s *service) Renew(ctx context.Context, id int64, req RenewRequest) (*Subscription, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sub, err := s.repo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == StatusCancelled {
		return nil, ErrInvalidStateTransition
	}

	var plan *catalog.Plan
	if req.PlanCode != "" {
		plan, err = s.plans.CreateOrGet(ctx, req.PlanCode)
	} else {
		plan, err = s.plans.GetByID(ctx, sub.PlanID)
	}
	if err != nil {
		return nil, err
	}
	if plan.MembershipType != sub.MembershipType {
		return nil, ErrPlanTypeMismatch
	}

	// Renewing early extends from the current end date; renewing late
	// restarts from today.
	now := s.clk.Now()
	base := clock.DayOf(now, s.loc)
	if clock.DaysBetween(now, sub.EndDate, s.loc) > 0 {
		base = clock.DayOf(sub.EndDate, s.loc)
	}
	end := plan.EndDate(base)

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	renewed, err := s.repo.Renew(ctx, tx, id, RenewParams{
		PlanID:          plan.ID,
		EndDate:         end,
		TotalSessions:   plan.TotalSessions(),
		PaymentStatus:   paymentStatus,
		AmountPaid:      req.AmountPaid,
		NextBillingDate: &end,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Infof("Subscription renewed: id=%d plan=%s end=%s", id, plan.Code, end.Format("2006-01-02"))
	return renewed, nil
}

func (s *service) Suspend(ctx context.Context, id int64) (*Subscription, error) {
	return s.transition(ctx, id, StatusSuspended)
}

func (s *service) Reactivate(ctx context.Context, id int64) (*Subscription, error) {
	return s.transition(ctx, id, StatusActive)
}

func (s *service) Cancel(ctx context.Context, id int64) (*Subscription, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *service) transition(ctx context.Context, id int64, to Status) (*Subscription, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sub, err := s.repo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(sub.Status, to) {
		return nil, ErrInvalidStateTransition
	}

	if err := s.repo.SetStatus(ctx, tx, id, to); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Infof("Subscription %d: %s -> %s", id, sub.Status, to)
	sub.Status = to
	return sub, nil
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusSuspended || to == StatusCancelled || to == StatusExpired
	case StatusSuspended:
		return to == StatusActive || to == StatusCancelled
	case StatusExpired:
		// Expired subscriptions come back only through Renew, but they can
		// still be closed out.
		return to == StatusCancelled
	default:
		// Cancelled is terminal.
		return false
	}
}

func (s *service) RecordPayment(ctx context.Context, id int64, status PaymentStatus, amount decimal.Decimal) error {
	if !status.Valid() {
		return errors.New("invalid payment status")
	}
	return s.repo.SetPaymentStatus(ctx, id, status, amount)
}

func (s *service) Refresh(ctx context.Context, sub *Subscription) (bool, error) {
	if sub.Status != StatusActive || !sub.IsExpired(s.clk.Now(), s.loc) {
		return false, nil
	}

	if err := s.repo.SetStatus(ctx, s.db, sub.ID, StatusExpired); err != nil {
		return false, err
	}
	sub.Status = StatusExpired
	metrics.RecordSubscriptionExpired()
	return true, nil
}

func validateLocation(membershipType catalog.MembershipType, locationID *int64) error {
	if membershipType == catalog.MembershipOutdoor && locationID == nil {
		return ErrLocationRequired
	}
	if membershipType == catalog.MembershipIndoor && locationID != nil {
		return ErrLocationNotAllowed
	}
	return nil
}
