package member

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type ListFilter struct {
	Status         Status
	MembershipType string
	Page           int
	PerPage        int
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Member, error)
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id int64) (*Member, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Member, error)
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Member, int64, error)
	Search(ctx context.Context, query string, limit int) ([]Member, error)
	StatusCounts(ctx context.Context) (*StatusSummary, error)

	// TrackVisit bumps total_visits with an atomic increment and advances
	// last_visit_at unless it moved within the threshold already.
	TrackVisit(ctx context.Context, ext sqlx.ExtContext, id int64, now time.Time, threshold time.Duration) error

	UpsertPhysicalProfile(ctx context.Context, memberID int64, params ProfileParams) (*PhysicalProfile, error)
	GetPhysicalProfile(ctx context.Context, memberID int64) (*PhysicalProfile, error)
}
