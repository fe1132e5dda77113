package catalog

import "context"

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Plan, error)
	GetByID(ctx context.Context, id int64) (*Plan, error)
	List(ctx context.Context, membershipType MembershipType, activeOnly bool) ([]Plan, error)
	CreateOrGet(ctx context.Context, code string) (*Plan, error)
	Seed(ctx context.Context) error

	GetLocationByID(ctx context.Context, id int64) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
}
