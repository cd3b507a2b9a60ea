package match

import (
	"context"
	"time"
)

// Filter narrows List results. Zero values are ignored.
type Filter struct {
	TournamentID int64
	GroupID      int64
	TeamID       int64
	Statuses     []Status
	From         *time.Time
	To           *time.Time
	Limit        int
}

// Repository describes match persistence needs from use cases.
// List results are ordered by match date, match number, then id.
type Repository interface {
	Create(ctx context.Context, item Match) (Match, error)
	CreateBatch(ctx context.Context, items []Match) ([]Match, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	List(ctx context.Context, filter Filter) ([]Match, error)
	Update(ctx context.Context, item Match) (Match, error)
	UpdateScore(ctx context.Context, id int64, score Score) error
	Delete(ctx context.Context, id int64) error
	LastMatchNumber(ctx context.Context, tournamentID int64) (int, error)
}
