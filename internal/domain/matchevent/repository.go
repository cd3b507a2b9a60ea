package matchevent

import "context"

// Filter narrows List results. Zero values are ignored; MinMinute and
// MaxMinute are inclusive bounds. TournamentID joins through the parent match.
type Filter struct {
	MatchID      int64
	PlayerID     int64
	TeamID       int64
	TournamentID int64
	Types        []Type
	MinMinute    *int
	MaxMinute    *int
}

// Repository persists the event log. List returns events ordered by
// minute, extra time, then id.
type Repository interface {
	Create(ctx context.Context, item Event) (Event, error)
	GetByID(ctx context.Context, id int64) (Event, bool, error)
	List(ctx context.Context, filter Filter) ([]Event, error)
	Update(ctx context.Context, item Event) (Event, error)
	Delete(ctx context.Context, id int64) error
	DeleteByMatch(ctx context.Context, matchID int64) (int, error)
}
