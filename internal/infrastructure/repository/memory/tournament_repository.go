package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
)

type TournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[int64]tournament.Tournament
	configs     map[int64]tournament.Configuration
	teams       map[int64][]int64
}

// NewTournamentRepository indexes tournaments, their configurations and the
// team ids registered per tournament.
func NewTournamentRepository(
	tournaments []tournament.Tournament,
	configs []tournament.Configuration,
	teams map[int64][]int64,
) *TournamentRepository {
	r := &TournamentRepository{
		tournaments: make(map[int64]tournament.Tournament, len(tournaments)),
		configs:     make(map[int64]tournament.Configuration, len(configs)),
		teams:       make(map[int64][]int64, len(teams)),
	}
	for _, item := range tournaments {
		r.tournaments[item.ID] = item
	}
	for _, cfg := range configs {
		r.configs[cfg.TournamentID] = cfg
	}
	for tournamentID, teamIDs := range teams {
		ids := append([]int64(nil), teamIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		r.teams[tournamentID] = ids
	}

	return r
}

func (r *TournamentRepository) GetByID(_ context.Context, id int64) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.tournaments[id]
	return item, ok, nil
}

func (r *TournamentRepository) GetConfiguration(_ context.Context, tournamentID int64) (tournament.Configuration, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[tournamentID]
	return cfg, ok, nil
}

func (r *TournamentRepository) ListTeamIDs(_ context.Context, tournamentID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]int64{}, r.teams[tournamentID]...), nil
}

func (r *TournamentRepository) SaveConfiguration(ctx context.Context, cfg tournament.Configuration) (tournament.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rememberConfigLocked(ctx, cfg.TournamentID)
	r.configs[cfg.TournamentID] = cfg
	return cfg, nil
}

func (r *TournamentRepository) DeleteConfiguration(ctx context.Context, tournamentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[tournamentID]; !ok {
		return fmt.Errorf("tournament configuration=%d not found", tournamentID)
	}
	r.rememberConfigLocked(ctx, tournamentID)
	delete(r.configs, tournamentID)
	return nil
}

func (r *TournamentRepository) RegisterTeams(ctx context.Context, tournamentID int64, teamIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.teams[tournamentID]
	seen := make(map[int64]struct{}, len(current)+len(teamIDs))
	for _, id := range current {
		seen[id] = struct{}{}
	}
	merged := append([]int64(nil), current...)
	for _, id := range teamIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	if len(merged) == len(current) {
		return nil
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	prev, existed := r.teams[tournamentID]
	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.teams[tournamentID] = prev
			return
		}
		delete(r.teams, tournamentID)
	})
	r.teams[tournamentID] = merged
	return nil
}

func (r *TournamentRepository) rememberConfigLocked(ctx context.Context, tournamentID int64) {
	prev, existed := r.configs[tournamentID]
	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.configs[tournamentID] = prev
			return
		}
		delete(r.configs, tournamentID)
	})
}
