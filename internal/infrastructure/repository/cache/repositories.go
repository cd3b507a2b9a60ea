package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	basecache "github.com/riskibarqy/tournament-api/internal/platform/cache"
)

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	key := "player:id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}

	cached, _ := v.(cachedPlayerByID)
	return cached.value, cached.exists, nil
}

func (r *PlayerRepository) ListByIDs(ctx context.Context, ids []int64) ([]player.Player, error) {
	key := "player:ids:" + idsKey(ids)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player{}, items...), nil
}

type cachedPlayerByID struct {
	value  player.Player
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	key := "team:id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListByIDs(ctx context.Context, ids []int64) ([]team.Team, error) {
	key := "team:ids:" + idsKey(ids)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team{}, items...), nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type TournamentRepository struct {
	next  tournament.Repository
	cache *basecache.Store
}

func NewTournamentRepository(next tournament.Repository, cache *basecache.Store) *TournamentRepository {
	return &TournamentRepository{next: next, cache: cache}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	key := "tournament:id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedTournamentByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}

	cached, _ := v.(cachedTournamentByID)
	return cached.value, cached.exists, nil
}

// Configuration is read on every fixture run and never cached.
func (r *TournamentRepository) GetConfiguration(ctx context.Context, tournamentID int64) (tournament.Configuration, bool, error) {
	return r.next.GetConfiguration(ctx, tournamentID)
}

func (r *TournamentRepository) SaveConfiguration(ctx context.Context, cfg tournament.Configuration) (tournament.Configuration, error) {
	return r.next.SaveConfiguration(ctx, cfg)
}

func (r *TournamentRepository) DeleteConfiguration(ctx context.Context, tournamentID int64) error {
	return r.next.DeleteConfiguration(ctx, tournamentID)
}

// RegisterTeams drops the cached team list before and after the write so a
// load racing the insert cannot keep a stale list.
func (r *TournamentRepository) RegisterTeams(ctx context.Context, tournamentID int64, teamIDs []int64) error {
	key := tournamentTeamsKey(tournamentID)
	r.cache.Delete(ctx, key)
	defer r.cache.Delete(ctx, key)
	return r.next.RegisterTeams(ctx, tournamentID, teamIDs)
}

func (r *TournamentRepository) ListTeamIDs(ctx context.Context, tournamentID int64) ([]int64, error) {
	key := tournamentTeamsKey(tournamentID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListTeamIDs(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		return append([]int64(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]int64)
	return append([]int64{}, items...), nil
}

type cachedTournamentByID struct {
	value  tournament.Tournament
	exists bool
}

// idsKey is order independent so permutations share one entry.
func idsKey(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func tournamentTeamsKey(tournamentID int64) string {
	return "tournament:teams:" + strconv.FormatInt(tournamentID, 10)
}
