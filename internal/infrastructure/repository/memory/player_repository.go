package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/tournament-api/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[int64]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	index := make(map[int64]player.Player, len(players))
	for _, p := range players {
		index[p.ID] = p
	}

	return &PlayerRepository{players: index}
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	return p, ok, nil
}

// ListByIDs returns the known players in request order, skipping unknown and
// repeated ids.
func (r *PlayerRepository) ListByIDs(_ context.Context, ids []int64) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}
