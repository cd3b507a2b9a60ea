package player

import "context"

// Repository resolves players for statistics and real-time enrichment.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Player, bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Player, error)
}
