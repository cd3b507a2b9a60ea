package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/tournament-api/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[int64]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	index := make(map[int64]team.Team, len(teams))
	for _, item := range teams {
		index[item.ID] = item
	}

	return &TeamRepository{teams: index}
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[id]
	return item, ok, nil
}

func (r *TeamRepository) ListByIDs(_ context.Context, ids []int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.teams[id]; ok {
			out = append(out, item)
		}
	}

	return out, nil
}
