package team

import "context"

// Repository describes team lookups needed by use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Team, error)
}
