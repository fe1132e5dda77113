package attendance

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
)

type InsertParams struct {
	MemberID       int64
	SubscriptionID int64
	MembershipType catalog.MembershipType
	LocationID     *int64
	CheckInAt      time.Time
	CheckInDay     time.Time
}

type ListFilter struct {
	Day     time.Time
	Page    int
	PerPage int
}

type Repository interface {
	Insert(ctx context.Context, ext sqlx.ExtContext, params InsertParams) (*Log, error)
	OpenForMember(ctx context.Context, ext sqlx.ExtContext, memberID int64, forUpdate bool) (*Log, error)
	ExistsOnDay(ctx context.Context, ext sqlx.ExtContext, memberID int64, day time.Time) (bool, error)
	Close(ctx context.Context, ext sqlx.ExtContext, id int64, at time.Time, durationMinutes int) (*Log, error)
	ListByDay(ctx context.Context, filter ListFilter) ([]WithMember, int64, error)
}
