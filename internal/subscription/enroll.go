package subscription

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
	"github.com/am-muhwezi/ptf-sub000/internal/member"
)

// Enroller adapts the lifecycle service to combined member registration.
// The opening subscription always starts with payment pending; the desk
// records the payment separately.
type Enroller struct {
	svc Service
}

func NewEnroller(svc Service) *Enroller {
	return &Enroller{svc: svc}
}

func (e *Enroller) Enroll(ctx context.Context, memberID int64, planCode string, locationID *int64) (json.RawMessage, error) {
	sub, err := e.svc.Issue(ctx, IssueParams{
		MemberID:      memberID,
		PlanCode:      planCode,
		LocationID:    locationID,
		PaymentStatus: PaymentPending,
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrPlanUnknown):
			return nil, &member.EnrollError{Reason: "plan_unknown", Detail: planCode}
		case errors.Is(err, catalog.ErrLocationNotFound):
			return nil, &member.EnrollError{Reason: "location_not_found"}
		case errors.Is(err, ErrLocationRequired):
			return nil, &member.EnrollError{Reason: "location_required", Detail: "outdoor plans need a location_id"}
		case errors.Is(err, ErrLocationNotAllowed):
			return nil, &member.EnrollError{Reason: "location_not_allowed", Detail: "indoor plans cannot carry a location_id"}
		case errors.Is(err, ErrActiveExists):
			return nil, &member.EnrollError{Reason: "active_subscription_exists"}
		}
		return nil, err
	}

	return json.Marshal(sub)
}
