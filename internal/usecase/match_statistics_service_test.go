package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/player"
	matchmock "github.com/riskibarqy/tournament-api/internal/mocks/domain/match"
	matchstatsmock "github.com/riskibarqy/tournament-api/internal/mocks/domain/matchstats"
	playermock "github.com/riskibarqy/tournament-api/internal/mocks/domain/player"
)

func TestMatchStatisticsService_InitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	if _, err := env.eventSvc.AddEvent(ctx, AddEventInput{
		MatchID: testMatchID, TeamID: testHomeTeamID, PlayerID: 101, Type: matchevent.TypeGoal, Minute: 23,
	}); err != nil {
		t.Fatalf("add goal: %v", err)
	}

	ids := []int64{101, 102, 103}
	first, err := env.statsSvc.InitializeMatchStatistics(ctx, testMatchID, ids)
	if err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	second, err := env.statsSvc.InitializeMatchStatistics(ctx, testMatchID, ids)
	if err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second call changed rows (-first +second):\n%s", diff)
	}

	rows, err := env.statsSvc.GetStatisticsByMatch(ctx, testMatchID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	perPlayer := map[int64]int{}
	for _, row := range rows {
		perPlayer[row.PlayerID]++
	}
	if diff := cmp.Diff(map[int64]int{101: 1, 102: 1, 103: 1}, perPlayer); diff != "" {
		t.Fatalf("expected one row per player (-want +got):\n%s", diff)
	}
	if row, _ := env.statsRow(t, testMatchID, 101); row.Goals != 1 {
		t.Fatalf("existing goals must be untouched, got %d", row.Goals)
	}
}

func TestMatchStatisticsService_InitializeRejectsUnknownPlayer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	if _, err := env.statsSvc.InitializeMatchStatistics(ctx, testMatchID, []int64{101, 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.statsSvc.InitializeMatchStatistics(ctx, testMatchID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty ids, got %v", err)
	}
	rows, _ := env.statsSvc.GetStatisticsByMatch(ctx, testMatchID)
	if len(rows) != 0 {
		t.Fatalf("no rows may be created, got %d", len(rows))
	}
}

func TestMatchStatisticsService_UpsertUnknownPlayer(t *testing.T) {
	statsRepo := matchstatsmock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)

	statsRepo.On("GetByMatchAndPlayer", mock.Anything, int64(1), int64(404)).
		Return(matchstats.Statistics{}, false, nil).
		Once()
	playerRepo.On("GetByID", mock.Anything, int64(404)).
		Return(player.Player{}, false, nil).
		Once()

	svc := NewMatchStatisticsService(statsRepo, nil, playerRepo, nil, nil, nil, nil)
	_, err := svc.Upsert(context.Background(), 1, 404, matchstats.Counters{Goals: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	statsRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchStatisticsService_UpsertKeepsRowTeam(t *testing.T) {
	statsRepo := matchstatsmock.NewRepository(t)

	existing := matchstats.Statistics{ID: 7, MatchID: 1, PlayerID: 101, TeamID: 10}
	delta := matchstats.Counters{Assists: -1}
	statsRepo.On("GetByMatchAndPlayer", mock.Anything, int64(1), int64(101)).Return(existing, true, nil).Once()
	statsRepo.On("Upsert", mock.Anything, int64(1), int64(101), int64(10), delta).Return(existing, nil).Once()

	svc := NewMatchStatisticsService(statsRepo, nil, nil, nil, nil, nil, nil)
	if _, err := svc.Upsert(context.Background(), 1, 101, delta); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func TestMatchStatisticsService_PatchValidatedBeforePersistence(t *testing.T) {
	statsRepo := matchstatsmock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	svc := NewMatchStatisticsService(statsRepo, matchRepo, nil, nil, nil, nil, nil)
	ctx := context.Background()

	patches := map[string]StatisticsPatch{
		"third yellow":     {YellowCards: intPtr(3)},
		"second red":       {RedCards: intPtr(2)},
		"too many minutes": {MinutesPlayed: intPtr(121)},
		"negative saves":   {Saves: intPtr(-1)},
	}
	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.UpdateStatistics(ctx, 1, patch); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("update: expected ErrInvalidInput, got %v", err)
			}
			if _, err := svc.UpdatePlayerStatistics(ctx, 1, 101, patch); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("update player: expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestMatchStatisticsService_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	created, err := env.statsSvc.CreateStatistics(ctx, CreateStatisticsInput{
		MatchID: testMatchID, PlayerID: 201, TeamID: testAwayTeamID,
		Counters: matchstats.Counters{MinutesPlayed: 90, Saves: 4},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.statsSvc.CreateStatistics(ctx, CreateStatisticsInput{
		MatchID: testMatchID, PlayerID: 201, TeamID: testAwayTeamID,
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate row, got %v", err)
	}

	updated, err := env.statsSvc.UpdateStatistics(ctx, created.ID, StatisticsPatch{Saves: intPtr(6), Corners: intPtr(1)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := matchstats.Counters{MinutesPlayed: 90, Saves: 6, Corners: 1}
	if diff := cmp.Diff(want, updated.Counters); diff != "" {
		t.Fatalf("patch must only touch provided fields (-want +got):\n%s", diff)
	}

	if err := env.statsSvc.DeleteStatistics(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.statsSvc.GetStatisticsByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMatchStatisticsService_FinishedMatchRows(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusFinished, nil)

	row, err := env.statsSvc.UpdatePlayerStatistics(ctx, testMatchID, 102, StatisticsPatch{MinutesPlayed: intPtr(90)})
	if err != nil {
		t.Fatalf("update player statistics: %v", err)
	}
	if row.TeamID != testHomeTeamID || row.MinutesPlayed != 90 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if _, err := env.statsSvc.UpdateStatistics(ctx, row.ID, StatisticsPatch{Goals: intPtr(1)}); err != nil {
		t.Fatalf("corrections on finished matches are allowed: %v", err)
	}
	if err := env.statsSvc.DeleteStatistics(ctx, row.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected delete rejection, got %v", err)
	}
}

func TestMatchStatisticsService_PlayerSeasonSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusFinished, nil)

	second, err := env.matches.Create(ctx, match.Match{
		TournamentID: testTournamentID, HomeTeamID: testHomeTeamID, AwayTeamID: 30,
		MatchDate: testNow.Add(-48 * time.Hour), Status: match.StatusFinished, MatchNumber: 2,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	third, err := env.matches.Create(ctx, match.Match{
		TournamentID: 2, HomeTeamID: 30, AwayTeamID: 40,
		MatchDate: testNow.Add(-24 * time.Hour), Status: match.StatusFinished, MatchNumber: 1,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	patches := map[int64]StatisticsPatch{
		testMatchID: {MinutesPlayed: intPtr(90), Goals: intPtr(1), ShotsOnTarget: intPtr(2), ShotsOffTarget: intPtr(1)},
		second.ID:   {MinutesPlayed: intPtr(45)},
		third.ID:    {MinutesPlayed: intPtr(30), Assists: intPtr(1)},
	}
	for matchID, patch := range patches {
		if _, err := env.statsSvc.UpdatePlayerStatistics(ctx, matchID, 101, patch); err != nil {
			t.Fatalf("seed match=%d: %v", matchID, err)
		}
	}

	all, err := env.statsSvc.GetPlayerSeasonSummary(ctx, 101, 0)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := matchstats.SeasonSummary{
		PlayerID:        101,
		MatchesPlayed:   3,
		Totals:          matchstats.Counters{MinutesPlayed: 165, Goals: 1, Assists: 1, ShotsOnTarget: 2, ShotsOffTarget: 1},
		AverageMinutes:  55,
		ShotAccuracy:    67,
		GoalsPerMatch:   0.33,
		AssistsPerMatch: 0.33,
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}

	scoped, err := env.statsSvc.GetPlayerSeasonSummary(ctx, 101, testTournamentID)
	if err != nil {
		t.Fatalf("scoped summary: %v", err)
	}
	if scoped.MatchesPlayed != 2 || scoped.TournamentID == nil || *scoped.TournamentID != testTournamentID {
		t.Fatalf("unexpected scoped summary: %+v", scoped)
	}
	if scoped.AverageMinutes != 68 || scoped.GoalsPerMatch != 0.5 {
		t.Fatalf("unexpected scoped averages: %+v", scoped)
	}

	empty, err := env.statsSvc.GetPlayerSeasonSummary(ctx, 202, 0)
	if err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if empty.MatchesPlayed != 0 || empty.GoalsPerMatch != 0 || empty.ShotAccuracy != 0 {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestMatchStatisticsService_TournamentAggregates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	for _, in := range []AddEventInput{
		{MatchID: testMatchID, TeamID: testHomeTeamID, PlayerID: 101, Type: matchevent.TypeGoal, Minute: 10, AssistPlayerID: int64Ptr(103)},
		{MatchID: testMatchID, TeamID: testHomeTeamID, PlayerID: 101, Type: matchevent.TypePenaltyGoal, Minute: 50, AssistPlayerID: int64Ptr(103)},
		{MatchID: testMatchID, TeamID: testAwayTeamID, PlayerID: 201, Type: matchevent.TypeGoal, Minute: 70},
		{MatchID: testMatchID, TeamID: testAwayTeamID, PlayerID: 202, Type: matchevent.TypeYellowCard, Minute: 75},
	} {
		if _, err := env.eventSvc.AddEvent(ctx, in); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := env.matchSvc.FinishMatch(ctx, testMatchID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := env.matches.Create(ctx, match.Match{
		TournamentID: testTournamentID, HomeTeamID: 30, AwayTeamID: 40,
		MatchDate: testNow.Add(-2 * time.Hour), Status: match.StatusFinished,
		HomeScore: 1, AwayScore: 1, MatchNumber: 2,
	}); err != nil {
		t.Fatalf("create draw: %v", err)
	}

	stats, err := env.statsSvc.GetTournamentStatistics(ctx, testTournamentID)
	if err != nil {
		t.Fatalf("tournament statistics: %v", err)
	}
	if stats.TotalMatches != 2 || stats.TotalGoals != 5 || stats.TotalCards != 1 {
		t.Fatalf("unexpected totals: matches=%d goals=%d cards=%d", stats.TotalMatches, stats.TotalGoals, stats.TotalCards)
	}

	var table []int64
	var points []int
	for _, row := range stats.TeamStats {
		table = append(table, row.TeamID)
		points = append(points, row.Points)
	}
	if diff := cmp.Diff([]int64{10, 30, 40, 20}, table); diff != "" {
		t.Fatalf("unexpected table order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 1, 1, 0}, points); diff != "" {
		t.Fatalf("unexpected points (-want +got):\n%s", diff)
	}
	if stats.TeamStats[0].TeamName != "Team A" || stats.TeamStats[0].GoalDifference != 1 {
		t.Fatalf("unexpected leader row: %+v", stats.TeamStats[0])
	}

	var scorers []int64
	for _, p := range stats.TopScorers {
		scorers = append(scorers, p.PlayerID)
	}
	if diff := cmp.Diff([]int64{101, 201}, scorers); diff != "" {
		t.Fatalf("unexpected top scorers (-want +got):\n%s", diff)
	}
	if len(stats.TopAssists) != 1 || stats.TopAssists[0].PlayerID != 103 || stats.TopAssists[0].Assists != 2 {
		t.Fatalf("unexpected top assists: %+v", stats.TopAssists)
	}
	if stats.TopScorers[0].TeamName != "Team A" || stats.TopScorers[0].FirstName != "Andi" {
		t.Fatalf("top scorer must be enriched: %+v", stats.TopScorers[0])
	}

	top, err := env.statsSvc.GetTopScorers(ctx, testTournamentID, 1)
	if err != nil || len(top) != 1 || top[0].PlayerID != 101 {
		t.Fatalf("top scorers limit: %+v err=%v", top, err)
	}
	all, err := env.statsSvc.GetPlayerTournamentStats(ctx, testTournamentID, 0)
	if err != nil || len(all) != 4 {
		t.Fatalf("player table: len=%d err=%v", len(all), err)
	}
}

func TestMatchStatisticsService_AggregateArguments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	if _, err := env.statsSvc.GetTopScorers(ctx, testTournamentID, maxTopLimit+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if _, err := env.statsSvc.GetTopAssists(ctx, testTournamentID, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if _, err := env.statsSvc.GetPlayerTournamentStats(ctx, testTournamentID, maxPlayerStatsLimit+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if _, err := env.statsSvc.GetTournamentStatistics(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	teams, err := env.statsSvc.GetTeamTournamentStats(ctx, 2)
	if err != nil {
		t.Fatalf("team stats: %v", err)
	}
	if len(teams) != 2 || teams[0].TeamID != 30 || teams[0].MatchesPlayed != 0 {
		t.Fatalf("registered teams must appear with zero rows: %+v", teams)
	}
}
