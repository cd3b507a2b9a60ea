package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	teammock "github.com/riskibarqy/tournament-api/internal/mocks/domain/team"
	tournamentmock "github.com/riskibarqy/tournament-api/internal/mocks/domain/tournament"
)

func TestTournamentConfigurationService_ConfigureEnablesFixtureGeneration(t *testing.T) {
	env := newTestEnv(t, match.StatusScheduled, nil)
	ctx := context.Background()
	input := GenerateFixtureInput{StartDate: testNow.Add(24 * time.Hour), Location: "Stadion Utama"}

	if _, err := env.matchSvc.GenerateFixture(ctx, testFreshTournamentID, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected fixture to be refused before configuration, got %v", err)
	}

	cfg, err := env.configSvc.Configure(ctx, testFreshTournamentID, ConfigureTournamentInput{
		NumberOfGroups: 1,
		TeamsPerGroup:  3,
		TeamIDs:        []int64{30, testHomeTeamID, testAwayTeamID, 30},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	want := tournament.Configuration{TournamentID: testFreshTournamentID, NumberOfGroups: 1, TeamsPerGroup: 3, IsConfigured: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("configuration mismatch (-want +got):\n%s", diff)
	}

	teamIDs, err := env.tournament.ListTeamIDs(ctx, testFreshTournamentID)
	if err != nil {
		t.Fatalf("ListTeamIDs: %v", err)
	}
	if diff := cmp.Diff([]int64{testHomeTeamID, testAwayTeamID, 30}, teamIDs); diff != "" {
		t.Fatalf("registered teams mismatch (-want +got):\n%s", diff)
	}

	created, err := env.matchSvc.GenerateFixture(ctx, testFreshTournamentID, input)
	if err != nil {
		t.Fatalf("GenerateFixture after configure: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected a 3 match round robin, got %d", len(created))
	}
	for _, m := range created {
		if m.TournamentID != testFreshTournamentID || m.Status != match.StatusScheduled {
			t.Fatalf("unexpected fixture match %+v", m)
		}
	}
}

func TestTournamentConfigurationService_Validation(t *testing.T) {
	env := newTestEnv(t, match.StatusScheduled, nil)
	ctx := context.Background()

	cases := []struct {
		name         string
		tournamentID int64
		input        ConfigureTournamentInput
		want         error
	}{
		{"zero tournament", 0, ConfigureTournamentInput{NumberOfGroups: 1, TeamsPerGroup: 2}, ErrInvalidInput},
		{"unknown tournament", 99, ConfigureTournamentInput{NumberOfGroups: 1, TeamsPerGroup: 2}, ErrNotFound},
		{"no groups", testFreshTournamentID, ConfigureTournamentInput{TeamsPerGroup: 2}, ErrInvalidInput},
		{"too many groups", testFreshTournamentID, ConfigureTournamentInput{NumberOfGroups: 27, TeamsPerGroup: 2}, ErrInvalidInput},
		{"single team groups", testFreshTournamentID, ConfigureTournamentInput{NumberOfGroups: 2, TeamsPerGroup: 1}, ErrInvalidInput},
		{"unknown team", testFreshTournamentID, ConfigureTournamentInput{NumberOfGroups: 1, TeamsPerGroup: 2, TeamIDs: []int64{10, 999}}, ErrInvalidInput},
		{"negative team", testFreshTournamentID, ConfigureTournamentInput{NumberOfGroups: 1, TeamsPerGroup: 2, TeamIDs: []int64{-1}}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.configSvc.Configure(ctx, tc.tournamentID, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, ok, _ := env.tournament.GetConfiguration(ctx, testFreshTournamentID); ok {
		t.Fatalf("rejected input must not store a configuration")
	}
	if ids, _ := env.tournament.ListTeamIDs(ctx, testFreshTournamentID); len(ids) != 0 {
		t.Fatalf("rejected input must not register teams, got %v", ids)
	}
}

func TestTournamentConfigurationService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t, match.StatusScheduled, nil)
	ctx := context.Background()

	if _, err := env.configSvc.GetConfiguration(ctx, testFreshTournamentID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected missing configuration, got %v", err)
	}
	groups := 2
	if _, err := env.configSvc.UpdateConfiguration(ctx, testFreshTournamentID, UpdateConfigurationInput{NumberOfGroups: &groups}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of a missing configuration must be not found, got %v", err)
	}

	configured := true
	updated, err := env.configSvc.UpdateConfiguration(ctx, 2, UpdateConfigurationInput{NumberOfGroups: &groups, IsConfigured: &configured})
	if err != nil {
		t.Fatalf("UpdateConfiguration: %v", err)
	}
	want := tournament.Configuration{TournamentID: 2, NumberOfGroups: 2, TeamsPerGroup: 2, IsConfigured: true}
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("updated configuration mismatch (-want +got):\n%s", diff)
	}
	if _, err := env.matchSvc.GenerateFixture(ctx, 2, GenerateFixtureInput{StartDate: testNow.Add(time.Hour)}); err != nil {
		t.Fatalf("fixture after marking configured: %v", err)
	}

	tooMany := 30
	if _, err := env.configSvc.UpdateConfiguration(ctx, 2, UpdateConfigurationInput{NumberOfGroups: &tooMany}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got, _ := env.configSvc.GetConfiguration(ctx, 2); got.NumberOfGroups != 2 {
		t.Fatalf("rejected update must leave configuration untouched, got %+v", got)
	}

	if err := env.configSvc.DeleteConfiguration(ctx, 2); err != nil {
		t.Fatalf("DeleteConfiguration: %v", err)
	}
	if err := env.configSvc.DeleteConfiguration(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
	if _, err := env.matchSvc.GenerateFixture(ctx, 2, GenerateFixtureInput{StartDate: testNow.Add(time.Hour)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("fixture after delete must be refused, got %v", err)
	}
}

func TestTournamentConfigurationService_ConfigureSurfacesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	tournaments := tournamentmock.NewRepository(t)
	teams := teammock.NewRepository(t)

	tournaments.On("GetByID", mock.Anything, int64(5)).Return(tournament.Tournament{ID: 5}, true, nil).Once()
	teams.On("ListByIDs", mock.Anything, []int64{10}).Return([]team.Team{{ID: 10}}, nil).Once()
	tournaments.On("SaveConfiguration", mock.Anything, tournament.Configuration{
		TournamentID: 5, NumberOfGroups: 1, TeamsPerGroup: 2, IsConfigured: true,
	}).Return(tournament.Configuration{TournamentID: 5, NumberOfGroups: 1, TeamsPerGroup: 2, IsConfigured: true}, nil).Once()
	tournaments.On("RegisterTeams", mock.Anything, int64(5), []int64{10}).Return(errors.New("connection reset")).Once()

	svc := NewTournamentConfigurationService(tournaments, teams, nil, nil)
	_, err := svc.Configure(ctx, 5, ConfigureTournamentInput{NumberOfGroups: 1, TeamsPerGroup: 2, TeamIDs: []int64{10}})
	if err == nil || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}
