package matchstats

import "context"

// Filter narrows List results. Zero values are ignored; TournamentID joins
// through the parent match.
type Filter struct {
	MatchID      int64
	PlayerID     int64
	TeamID       int64
	TournamentID int64
}

// Repository persists per-player match statistics keyed by (match, player).
type Repository interface {
	Create(ctx context.Context, item Statistics) (Statistics, error)
	// CreateIfAbsent inserts item unless a row for the same match and player
	// exists. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, item Statistics) (bool, error)
	GetByID(ctx context.Context, id int64) (Statistics, bool, error)
	GetByMatchAndPlayer(ctx context.Context, matchID, playerID int64) (Statistics, bool, error)
	List(ctx context.Context, filter Filter) ([]Statistics, error)
	Update(ctx context.Context, item Statistics) (Statistics, error)
	// Upsert adds delta to the (match, player) row, creating it for teamID
	// when absent. Counters never drop below zero.
	Upsert(ctx context.Context, matchID, playerID, teamID int64, delta Counters) (Statistics, error)
	Delete(ctx context.Context, id int64) error
	DeleteByMatch(ctx context.Context, matchID int64) (int, error)
	// PlayerTotals sums rows of the tournament's started matches per player.
	PlayerTotals(ctx context.Context, tournamentID int64) ([]PlayerTotals, error)
}
