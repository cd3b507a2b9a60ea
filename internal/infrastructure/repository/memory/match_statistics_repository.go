package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
)

type statsKey struct {
	matchID  int64
	playerID int64
}

type MatchStatisticsRepository struct {
	mu      sync.RWMutex
	lastID  int64
	items   map[int64]matchstats.Statistics
	byKey   map[statsKey]int64
	matches matchLookup
	now     func() time.Time
}

// NewMatchStatisticsRepository resolves tournament scoping through matches.
func NewMatchStatisticsRepository(matches matchLookup) *MatchStatisticsRepository {
	return &MatchStatisticsRepository{
		items:   make(map[int64]matchstats.Statistics),
		byKey:   make(map[statsKey]int64),
		matches: matches,
		now:     time.Now,
	}
}

func (r *MatchStatisticsRepository) Create(ctx context.Context, item matchstats.Statistics) (matchstats.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := statsKey{item.MatchID, item.PlayerID}
	if _, ok := r.byKey[key]; ok {
		return matchstats.Statistics{}, fmt.Errorf("statistics for match=%d player=%d already exist", item.MatchID, item.PlayerID)
	}
	return r.insertLocked(ctx, item), nil
}

func (r *MatchStatisticsRepository) CreateIfAbsent(ctx context.Context, item matchstats.Statistics) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[statsKey{item.MatchID, item.PlayerID}]; ok {
		return false, nil
	}
	r.insertLocked(ctx, item)
	return true, nil
}

func (r *MatchStatisticsRepository) insertLocked(ctx context.Context, item matchstats.Statistics) matchstats.Statistics {
	r.lastID++
	item.ID = r.lastID
	r.rememberLocked(ctx, item.ID)
	r.items[item.ID] = item
	r.byKey[statsKey{item.MatchID, item.PlayerID}] = item.ID
	return item
}

func (r *MatchStatisticsRepository) GetByID(_ context.Context, id int64) (matchstats.Statistics, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *MatchStatisticsRepository) GetByMatchAndPlayer(_ context.Context, matchID, playerID int64) (matchstats.Statistics, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[statsKey{matchID, playerID}]
	if !ok {
		return matchstats.Statistics{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *MatchStatisticsRepository) List(ctx context.Context, filter matchstats.Filter) ([]matchstats.Statistics, error) {
	r.mu.RLock()
	out := make([]matchstats.Statistics, 0)
	for _, item := range r.items {
		if filter.MatchID > 0 && item.MatchID != filter.MatchID {
			continue
		}
		if filter.PlayerID > 0 && item.PlayerID != filter.PlayerID {
			continue
		}
		if filter.TeamID > 0 && item.TeamID != filter.TeamID {
			continue
		}
		out = append(out, item)
	}
	r.mu.RUnlock()

	if filter.TournamentID > 0 {
		kept := out[:0]
		for _, item := range out {
			ok, err := inTournament(ctx, r.matches, item.MatchID, filter.TournamentID)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, item)
			}
		}
		out = kept
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *MatchStatisticsRepository) Update(ctx context.Context, item matchstats.Statistics) (matchstats.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return matchstats.Statistics{}, fmt.Errorf("statistics=%d not found", item.ID)
	}
	r.rememberLocked(ctx, item.ID)
	current.Counters = item.Counters
	current.UpdatedAt = item.UpdatedAt
	r.items[item.ID] = current
	return current, nil
}

func (r *MatchStatisticsRepository) Upsert(ctx context.Context, matchID, playerID, teamID int64, delta matchstats.Counters) (matchstats.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	id, ok := r.byKey[statsKey{matchID, playerID}]
	if !ok {
		item := r.insertLocked(ctx, matchstats.Statistics{
			MatchID:   matchID,
			PlayerID:  playerID,
			TeamID:    teamID,
			Counters:  matchstats.Counters{}.Apply(delta),
			CreatedAt: now,
			UpdatedAt: now,
		})
		return item, nil
	}

	r.rememberLocked(ctx, id)
	item := r.items[id]
	item.Counters = item.Counters.Apply(delta)
	item.UpdatedAt = now
	r.items[id] = item
	return item, nil
}

func (r *MatchStatisticsRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("statistics=%d not found", id)
	}
	r.rememberLocked(ctx, id)
	delete(r.items, id)
	delete(r.byKey, statsKey{item.MatchID, item.PlayerID})
	return nil
}

func (r *MatchStatisticsRepository) DeleteByMatch(ctx context.Context, matchID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, item := range r.items {
		if item.MatchID == matchID {
			r.rememberLocked(ctx, id)
			delete(r.items, id)
			delete(r.byKey, statsKey{item.MatchID, item.PlayerID})
			removed++
		}
	}
	return removed, nil
}

// PlayerTotals sums the rows of in-progress and finished matches of the
// tournament. TeamID is taken from the player's most recent row.
func (r *MatchStatisticsRepository) PlayerTotals(ctx context.Context, tournamentID int64) ([]matchstats.PlayerTotals, error) {
	rows, err := r.List(ctx, matchstats.Filter{TournamentID: tournamentID})
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]*matchstats.PlayerTotals)
	latest := make(map[int64]int64)
	started := make(map[int64]bool)
	for _, row := range rows {
		counted, ok := started[row.MatchID]
		if !ok {
			m, found, err := r.matches.GetByID(ctx, row.MatchID)
			if err != nil {
				return nil, fmt.Errorf("get match=%d: %w", row.MatchID, err)
			}
			counted = found && (m.Status == match.StatusInProgress || m.Status == match.StatusFinished)
			started[row.MatchID] = counted
		}
		if !counted {
			continue
		}

		t, ok := totals[row.PlayerID]
		if !ok {
			t = &matchstats.PlayerTotals{PlayerID: row.PlayerID}
			totals[row.PlayerID] = t
		}
		if row.ID > latest[row.PlayerID] {
			latest[row.PlayerID] = row.ID
			t.TeamID = row.TeamID
		}
		t.Goals += row.Goals
		t.Assists += row.Assists
		t.YellowCards += row.YellowCards
		t.RedCards += row.RedCards
		t.TotalMinutes += row.MinutesPlayed
		t.MatchesPlayed++
	}

	out := make([]matchstats.PlayerTotals, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

// rememberLocked records how to put row id and its key index back the way
// they are now.
func (r *MatchStatisticsRepository) rememberLocked(ctx context.Context, id int64) {
	prev, existed := r.items[id]
	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.items[id] = prev
			r.byKey[statsKey{prev.MatchID, prev.PlayerID}] = id
			return
		}
		if cur, ok := r.items[id]; ok {
			delete(r.byKey, statsKey{cur.MatchID, cur.PlayerID})
			delete(r.items, id)
		}
	})
}
