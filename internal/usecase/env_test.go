package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

const (
	testTournamentID int64 = 1
	testHomeTeamID   int64 = 10
	testAwayTeamID   int64 = 20
	testMatchID      int64 = 1
	// testFreshTournamentID has neither a configuration nor registered teams.
	testFreshTournamentID int64 = 3
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	matches    *memory.MatchRepository
	events     *memory.MatchEventRepository
	stats      *memory.MatchStatisticsRepository
	matchSvc   *MatchService
	eventSvc   *MatchEventService
	statsSvc   *MatchStatisticsService
	configSvc  *TournamentConfigurationService
	tournament *memory.TournamentRepository
}

// newTestEnv wires the three services on in-memory repositories with match 1
// (home team 10, away team 20) in the given status.
func newTestEnv(t *testing.T, status match.Status, notifier realtime.Notifier) *testEnv {
	t.Helper()

	players := memory.NewPlayerRepository([]player.Player{
		{ID: 101, TeamID: testHomeTeamID, FirstName: "Andi", LastName: "Setiawan"},
		{ID: 102, TeamID: testHomeTeamID, FirstName: "Budi", LastName: "Santoso"},
		{ID: 103, TeamID: testHomeTeamID, FirstName: "Cahya", LastName: "Putra"},
		{ID: 201, TeamID: testAwayTeamID, FirstName: "Dimas", LastName: "Pratama"},
		{ID: 202, TeamID: testAwayTeamID, FirstName: "Eko", LastName: "Wibowo"},
		{ID: 301, TeamID: 30, FirstName: "Fajar", LastName: "Nugroho"},
	})
	teams := memory.NewTeamRepository([]team.Team{
		{ID: testHomeTeamID, Name: "Team A"},
		{ID: testAwayTeamID, Name: "Team B"},
		{ID: 30, Name: "Team C"},
		{ID: 40, Name: "Team D"},
	})
	tournaments := memory.NewTournamentRepository(
		[]tournament.Tournament{{ID: testTournamentID, Name: "City Cup"}, {ID: 2, Name: "Unconfigured"}, {ID: testFreshTournamentID, Name: "Fresh Cup"}},
		[]tournament.Configuration{
			{TournamentID: testTournamentID, NumberOfGroups: 1, TeamsPerGroup: 4, IsConfigured: true},
			{TournamentID: 2, NumberOfGroups: 1, TeamsPerGroup: 2},
		},
		map[int64][]int64{testTournamentID: {testHomeTeamID, testAwayTeamID, 30, 40}, 2: {30, 40}},
	)

	matches := memory.NewMatchRepository([]match.Match{{
		ID:           testMatchID,
		TournamentID: testTournamentID,
		HomeTeamID:   testHomeTeamID,
		AwayTeamID:   testAwayTeamID,
		MatchDate:    testNow.Add(-time.Hour),
		Status:       status,
		MatchNumber:  1,
	}})
	events := memory.NewMatchEventRepository(matches)
	stats := memory.NewMatchStatisticsRepository(matches)
	tx := memory.NewTransactor()
	locks := &MatchLocks{}
	logger := logging.NewNop()

	matchSvc := NewMatchService(matches, events, stats, tournaments, tx, locks, notifier, logger)
	statsSvc := NewMatchStatisticsService(stats, matches, players, teams, tournaments, tx, logger)
	eventSvc := NewMatchEventService(events, matches, players, teams, statsSvc, matchSvc, tx, locks, notifier, logger)
	configSvc := NewTournamentConfigurationService(tournaments, teams, tx, logger)

	clock := func() time.Time { return testNow }
	matchSvc.now = clock
	statsSvc.now = clock
	eventSvc.now = clock

	return &testEnv{
		matches:    matches,
		events:     events,
		stats:      stats,
		matchSvc:   matchSvc,
		eventSvc:   eventSvc,
		statsSvc:   statsSvc,
		configSvc:  configSvc,
		tournament: tournaments,
	}
}

func (e *testEnv) match(t *testing.T, id int64) match.Match {
	t.Helper()
	m, ok, err := e.matches.GetByID(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("get match %d: ok=%v err=%v", id, ok, err)
	}
	return m
}

func (e *testEnv) statsRow(t *testing.T, matchID, playerID int64) (matchstats.Statistics, bool) {
	t.Helper()
	row, ok, err := e.stats.GetByMatchAndPlayer(context.Background(), matchID, playerID)
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	return row, ok
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
