package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
)

type matchLookup interface {
	GetByID(ctx context.Context, id int64) (match.Match, bool, error)
}

type MatchEventRepository struct {
	mu      sync.RWMutex
	lastID  int64
	items   map[int64]matchevent.Event
	matches matchLookup
}

// NewMatchEventRepository resolves tournament filters through matches.
func NewMatchEventRepository(matches matchLookup) *MatchEventRepository {
	return &MatchEventRepository{
		items:   make(map[int64]matchevent.Event),
		matches: matches,
	}
}

func (r *MatchEventRepository) Create(ctx context.Context, item matchevent.Event) (matchevent.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	item.ID = r.lastID
	r.rememberLocked(ctx, item.ID)
	r.items[item.ID] = cloneEvent(item)
	return cloneEvent(item), nil
}

func (r *MatchEventRepository) GetByID(_ context.Context, id int64) (matchevent.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return matchevent.Event{}, false, nil
	}
	return cloneEvent(item), true, nil
}

func (r *MatchEventRepository) List(ctx context.Context, filter matchevent.Filter) ([]matchevent.Event, error) {
	r.mu.RLock()
	out := make([]matchevent.Event, 0)
	for _, item := range r.items {
		if eventMatchesFilter(item, filter) {
			out = append(out, cloneEvent(item))
		}
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
		a, b := out[i], out[j]
		if a.Minute != b.Minute {
			return a.Minute < b.Minute
		}
		if extraTime(a) != extraTime(b) {
			return extraTime(a) < extraTime(b)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func eventMatchesFilter(item matchevent.Event, f matchevent.Filter) bool {
	if f.MatchID > 0 && item.MatchID != f.MatchID {
		return false
	}
	if f.PlayerID > 0 && item.PlayerID != f.PlayerID {
		return false
	}
	if f.TeamID > 0 && item.TeamID != f.TeamID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if item.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinMinute != nil && item.Minute < *f.MinMinute {
		return false
	}
	if f.MaxMinute != nil && item.Minute > *f.MaxMinute {
		return false
	}
	return true
}

func inTournament(ctx context.Context, matches matchLookup, matchID, tournamentID int64) (bool, error) {
	m, ok, err := matches.GetByID(ctx, matchID)
	if err != nil {
		return false, fmt.Errorf("get match=%d: %w", matchID, err)
	}
	return ok && m.TournamentID == tournamentID, nil
}

func (r *MatchEventRepository) Update(ctx context.Context, item matchevent.Event) (matchevent.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return matchevent.Event{}, fmt.Errorf("event=%d not found", item.ID)
	}
	r.rememberLocked(ctx, item.ID)
	r.items[item.ID] = cloneEvent(item)
	return cloneEvent(item), nil
}

func (r *MatchEventRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("event=%d not found", id)
	}
	r.rememberLocked(ctx, id)
	delete(r.items, id)
	return nil
}

func (r *MatchEventRepository) DeleteByMatch(ctx context.Context, matchID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, item := range r.items {
		if item.MatchID == matchID {
			r.rememberLocked(ctx, id)
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

// rememberLocked records how to put id back the way it is now.
func (r *MatchEventRepository) rememberLocked(ctx context.Context, id int64) {
	prev, existed := r.items[id]
	if existed {
		prev = cloneEvent(prev)
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

func cloneEvent(item matchevent.Event) matchevent.Event {
	if item.ExtraTime != nil {
		v := *item.ExtraTime
		item.ExtraTime = &v
	}
	if item.AssistPlayerID != nil {
		v := *item.AssistPlayerID
		item.AssistPlayerID = &v
	}
	return item
}

func extraTime(item matchevent.Event) int {
	if item.ExtraTime == nil {
		return 0
	}
	return *item.ExtraTime
}
