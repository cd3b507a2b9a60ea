package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
)

type MatchRepository struct {
	mu     sync.RWMutex
	lastID int64
	items  map[int64]match.Match
}

func NewMatchRepository(seed []match.Match) *MatchRepository {
	r := &MatchRepository{items: make(map[int64]match.Match, len(seed))}
	for _, item := range seed {
		if item.ID > r.lastID {
			r.lastID = item.ID
		}
		r.items[item.ID] = cloneMatch(item)
	}
	return r
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	item.ID = r.lastID
	r.rememberLocked(ctx, item.ID)
	r.items[item.ID] = cloneMatch(item)
	return cloneMatch(item), nil
}

func (r *MatchRepository) CreateBatch(ctx context.Context, items []match.Match) ([]match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		r.lastID++
		item.ID = r.lastID
		r.rememberLocked(ctx, item.ID)
		r.items[item.ID] = cloneMatch(item)
		out = append(out, cloneMatch(item))
	}
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) List(_ context.Context, filter match.Filter) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if matchMatchesFilter(item, filter) {
			out = append(out, cloneMatch(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.Before(b.MatchDate)
		}
		if a.MatchNumber != b.MatchNumber {
			return a.MatchNumber < b.MatchNumber
		}
		return a.ID < b.ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchMatchesFilter(item match.Match, f match.Filter) bool {
	if f.TournamentID > 0 && item.TournamentID != f.TournamentID {
		return false
	}
	if f.GroupID > 0 && (item.GroupID == nil || *item.GroupID != f.GroupID) {
		return false
	}
	if f.TeamID > 0 && !item.HasTeam(f.TeamID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, status := range f.Statuses {
			if item.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && item.MatchDate.Before(*f.From) {
		return false
	}
	if f.To != nil && item.MatchDate.After(*f.To) {
		return false
	}
	return true
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return match.Match{}, fmt.Errorf("match=%d not found", item.ID)
	}
	r.rememberLocked(ctx, item.ID)
	r.items[item.ID] = cloneMatch(item)
	return cloneMatch(item), nil
}

func (r *MatchRepository) UpdateScore(ctx context.Context, id int64, score match.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("match=%d not found", id)
	}
	r.rememberLocked(ctx, id)
	item.HomeScore = score.Home
	item.AwayScore = score.Away
	r.items[id] = item
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("match=%d not found", id)
	}
	r.rememberLocked(ctx, id)
	delete(r.items, id)
	return nil
}

func (r *MatchRepository) LastMatchNumber(_ context.Context, tournamentID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	last := 0
	for _, item := range r.items {
		if item.TournamentID == tournamentID && item.MatchNumber > last {
			last = item.MatchNumber
		}
	}
	return last, nil
}

// rememberLocked records how to put id back the way it is now.
func (r *MatchRepository) rememberLocked(ctx context.Context, id int64) {
	prev, existed := r.items[id]
	if existed {
		prev = cloneMatch(prev)
	}
	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
	})
}

func cloneMatch(item match.Match) match.Match {
	if item.AttendingPlayers != nil {
		item.AttendingPlayers = item.AttendingPlayers.Clone()
	}
	return item
}
