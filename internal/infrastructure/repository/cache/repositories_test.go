package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	playermock "github.com/riskibarqy/tournament-api/internal/mocks/domain/player"
	teammock "github.com/riskibarqy/tournament-api/internal/mocks/domain/team"
	tournamentmock "github.com/riskibarqy/tournament-api/internal/mocks/domain/tournament"
	basecache "github.com/riskibarqy/tournament-api/internal/platform/cache"
)

func TestPlayerRepositoryCachesLookups(t *testing.T) {
	ctx := context.Background()
	next := playermock.NewRepository(t)
	next.On("GetByID", mock.Anything, int64(101)).
		Return(player.Player{ID: 101, FirstName: "Andi"}, true, nil).Once()
	next.On("GetByID", mock.Anything, int64(999)).
		Return(player.Player{}, false, nil).Once()
	next.On("ListByIDs", mock.Anything, []int64{102, 101}).
		Return([]player.Player{{ID: 101}, {ID: 102}}, nil).Once()

	store := basecache.NewStore(time.Minute)
	repo := NewPlayerRepository(next, store)

	for i := 0; i < 3; i++ {
		got, ok, err := repo.GetByID(ctx, 101)
		if err != nil || !ok || got.FirstName != "Andi" {
			t.Fatalf("GetByID attempt %d: got=%+v ok=%v err=%v", i, got, ok, err)
		}
	}
	// Misses are cached too.
	for i := 0; i < 2; i++ {
		if _, ok, err := repo.GetByID(ctx, 999); err != nil || ok {
			t.Fatalf("expected cached miss, ok=%v err=%v", ok, err)
		}
	}

	first, err := repo.ListByIDs(ctx, []int64{102, 101})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	first[0].FirstName = "mutated"
	second, err := repo.ListByIDs(ctx, []int64{101, 102})
	if err != nil {
		t.Fatalf("ListByIDs permuted: %v", err)
	}
	if len(second) != 2 || second[0].FirstName == "mutated" {
		t.Fatalf("expected an unshared copy, got %+v", second)
	}

	stats := store.Stats()
	if stats.Hits != 4 {
		t.Fatalf("expected 4 cache hits, got %d", stats.Hits)
	}
}

func TestTeamRepositoryDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := teammock.NewRepository(t)
	next.On("GetByID", mock.Anything, int64(10)).
		Return(team.Team{}, false, errors.New("connection reset")).Once()
	next.On("GetByID", mock.Anything, int64(10)).
		Return(team.Team{ID: 10, Name: "Team A"}, true, nil).Once()

	repo := NewTeamRepository(next, basecache.NewStore(time.Minute))
	if _, _, err := repo.GetByID(ctx, 10); err == nil {
		t.Fatalf("expected first lookup to fail")
	}
	got, ok, err := repo.GetByID(ctx, 10)
	if err != nil || !ok || got.Name != "Team A" {
		t.Fatalf("expected reload after error, got=%+v ok=%v err=%v", got, ok, err)
	}
}

func TestTournamentRepositoryPassesConfigurationThrough(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	next.On("GetConfiguration", mock.Anything, int64(1)).
		Return(tournament.Configuration{TournamentID: 1}, true, nil).Once()
	next.On("GetConfiguration", mock.Anything, int64(1)).
		Return(tournament.Configuration{TournamentID: 1, IsConfigured: true}, true, nil).Once()
	next.On("ListTeamIDs", mock.Anything, int64(1)).
		Return([]int64{10, 20}, nil).Once()

	repo := NewTournamentRepository(next, basecache.NewStore(time.Minute))

	if cfg, _, _ := repo.GetConfiguration(ctx, 1); cfg.IsConfigured {
		t.Fatalf("expected unconfigured first read")
	}
	if cfg, _, _ := repo.GetConfiguration(ctx, 1); !cfg.IsConfigured {
		t.Fatalf("expected fresh configuration on second read")
	}
	for i := 0; i < 2; i++ {
		ids, err := repo.ListTeamIDs(ctx, 1)
		if err != nil || len(ids) != 2 {
			t.Fatalf("ListTeamIDs attempt %d: ids=%v err=%v", i, ids, err)
		}
	}
}

func TestTournamentRepositoryRegisterTeamsRefreshesTeamList(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	next.On("ListTeamIDs", mock.Anything, int64(1)).
		Return([]int64{10, 20}, nil).Once()
	next.On("RegisterTeams", mock.Anything, int64(1), []int64{30}).
		Return(nil).Once()
	next.On("ListTeamIDs", mock.Anything, int64(1)).
		Return([]int64{10, 20, 30}, nil).Once()

	repo := NewTournamentRepository(next, basecache.NewStore(time.Minute))
	if ids, err := repo.ListTeamIDs(ctx, 1); err != nil || len(ids) != 2 {
		t.Fatalf("ListTeamIDs before register: ids=%v err=%v", ids, err)
	}
	if err := repo.RegisterTeams(ctx, 1, []int64{30}); err != nil {
		t.Fatalf("RegisterTeams: %v", err)
	}
	ids, err := repo.ListTeamIDs(ctx, 1)
	if err != nil || len(ids) != 3 {
		t.Fatalf("expected reloaded team list, ids=%v err=%v", ids, err)
	}
}
