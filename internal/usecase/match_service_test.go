package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	matchmock "github.com/riskibarqy/tournament-api/internal/mocks/domain/match"
	realtimemock "github.com/riskibarqy/tournament-api/internal/mocks/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

func TestMatchService_StatusTransitions(t *testing.T) {
	all := []match.Status{match.StatusScheduled, match.StatusInProgress, match.StatusFinished, match.StatusCancelled}
	allowed := map[match.Status][]match.Status{
		match.StatusScheduled:  {match.StatusInProgress, match.StatusCancelled},
		match.StatusInProgress: {match.StatusFinished, match.StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			if from == to {
				continue
			}
			want := false
			for _, s := range allowed[from] {
				want = want || s == to
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				env := newTestEnv(t, from, nil)
				next := to
				got, err := env.matchSvc.UpdateMatch(context.Background(), testMatchID, UpdateMatchInput{Status: &next})
				if want {
					if err != nil {
						t.Fatalf("expected transition to succeed: %v", err)
					}
					if got.Status != to {
						t.Fatalf("expected status %s, got %s", to, got.Status)
					}
					return
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected invalid transition error, got %v", err)
				}
				if stored := env.match(t, testMatchID); stored.Status != from {
					t.Fatalf("rejected transition must not persist, got %s", stored.Status)
				}
			})
		}
	}
}

func TestMatchService_StartAndFinishStampTimes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusScheduled, nil)

	started, err := env.matchSvc.StartMatch(ctx, testMatchID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.StartTime == nil || !started.StartTime.Equal(testNow) {
		t.Fatalf("expected start time %v, got %v", testNow, started.StartTime)
	}

	finished, err := env.matchSvc.FinishMatch(ctx, testMatchID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.EndTime == nil || finished.Status != match.StatusFinished {
		t.Fatalf("expected finished match with end time, got %+v", finished)
	}
	if _, err := env.matchSvc.CancelMatch(ctx, testMatchID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("finished match must not be cancelled, got %v", err)
	}
}

func TestMatchService_StatusChangeIsNotified(t *testing.T) {
	notifier := realtimemock.NewNotifier(t)
	env := newTestEnv(t, match.StatusScheduled, notifier)

	notifier.
		On("MatchNotification", mock.Anything, testMatchID, mock.MatchedBy(func(n realtime.Notification) bool {
			return n.Type == realtime.NotificationStatusChanged &&
				n.Data["status"] == string(match.StatusInProgress) &&
				n.Data["previousStatus"] == string(match.StatusScheduled)
		})).
		Return().
		Once()

	if _, err := env.matchSvc.StartMatch(context.Background(), testMatchID); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestMatchService_CreateMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusScheduled, nil)
	future := testNow.Add(48 * time.Hour)

	created, err := env.matchSvc.CreateMatch(ctx, CreateMatchInput{
		TournamentID: testTournamentID, HomeTeamID: 30, AwayTeamID: 40, MatchDate: future, Location: " Main Field ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.MatchNumber != 2 || created.Status != match.StatusScheduled || created.Location != "Main Field" {
		t.Fatalf("unexpected match: %+v", created)
	}

	tests := []struct {
		name    string
		input   CreateMatchInput
		wantErr error
	}{
		{
			name:    "same teams",
			input:   CreateMatchInput{TournamentID: testTournamentID, HomeTeamID: 30, AwayTeamID: 30, MatchDate: future},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "past date",
			input:   CreateMatchInput{TournamentID: testTournamentID, HomeTeamID: 30, AwayTeamID: 40, MatchDate: testNow.Add(-time.Minute)},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "team not registered",
			input:   CreateMatchInput{TournamentID: 2, HomeTeamID: 10, AwayTeamID: 30, MatchDate: future},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown tournament",
			input:   CreateMatchInput{TournamentID: 9, HomeTeamID: 10, AwayTeamID: 20, MatchDate: future},
			wantErr: ErrNotFound,
		},
		{
			name:    "match number taken",
			input:   CreateMatchInput{TournamentID: testTournamentID, HomeTeamID: 30, AwayTeamID: 40, MatchDate: future, MatchNumber: 1},
			wantErr: ErrConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.matchSvc.CreateMatch(ctx, tc.input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMatchService_DeleteMatchCascades(t *testing.T) {
	ctx := context.Background()
	notifier := realtimemock.NewNotifier(t)
	env := newTestEnv(t, match.StatusInProgress, notifier)

	notifier.On("MatchEventSynced", mock.Anything, mock.Anything).Return().Once()
	if _, err := env.eventSvc.AddEvent(ctx, AddEventInput{
		MatchID: testMatchID, TeamID: testHomeTeamID, PlayerID: 101, Type: matchevent.TypeGoal, Minute: 5,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := env.matchSvc.DeleteMatch(ctx, testMatchID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("in-progress match must not be deleted, got %v", err)
	}

	notifier.On("MatchNotification", mock.Anything, testMatchID, mock.Anything).Return().Once()
	if _, err := env.matchSvc.CancelMatch(ctx, testMatchID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	notifier.On("MatchDataRemoved", mock.Anything, testMatchID).Return().Once()
	if err := env.matchSvc.DeleteMatch(ctx, testMatchID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.matchSvc.GetMatchByID(ctx, testMatchID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected match to be gone, got %v", err)
	}
	events, _ := env.events.List(ctx, matchevent.Filter{MatchID: testMatchID})
	rows, _ := env.stats.List(ctx, matchstats.Filter{MatchID: testMatchID})
	if len(events) != 0 || len(rows) != 0 {
		t.Fatalf("expected cascade delete, events=%d statistics=%d", len(events), len(rows))
	}
}

func TestMatchService_DeleteFinishedMatchRejected(t *testing.T) {
	env := newTestEnv(t, match.StatusFinished, nil)
	if err := env.matchSvc.DeleteMatch(context.Background(), testMatchID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestMatchService_UpdateMatchResult(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, match.StatusScheduled, nil)
	if _, err := env.matchSvc.UpdateMatchResult(ctx, testMatchID, 2, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("scheduled match result must be rejected, got %v", err)
	}

	notifier := realtimemock.NewNotifier(t)
	env = newTestEnv(t, match.StatusInProgress, notifier)
	notifier.On("MatchNotification", mock.Anything, testMatchID, mock.MatchedBy(func(n realtime.Notification) bool {
		return n.Type == realtime.NotificationStatusChanged
	})).Return().Once()
	notifier.On("MatchNotification", mock.Anything, testMatchID, mock.MatchedBy(func(n realtime.Notification) bool {
		return n.Type == realtime.NotificationResultUpdated && n.Data["homeScore"] == 2 && n.Data["awayScore"] == 1
	})).Return().Once()

	got, err := env.matchSvc.UpdateMatchResult(ctx, testMatchID, 2, 1)
	if err != nil {
		t.Fatalf("update result: %v", err)
	}
	if got.Status != match.StatusFinished || got.HomeScore != 2 || got.AwayScore != 1 || got.EndTime == nil {
		t.Fatalf("unexpected match after result: %+v", got)
	}
	if _, err := env.matchSvc.UpdateMatchResult(ctx, testMatchID, -1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative score must be rejected, got %v", err)
	}
}

func TestMatchService_CorrectingFinishedResultKeepsEndTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	first, err := env.matchSvc.UpdateMatchResult(ctx, testMatchID, 1, 0)
	if err != nil {
		t.Fatalf("final result: %v", err)
	}
	if first.EndTime == nil || !first.EndTime.Equal(testNow) {
		t.Fatalf("expected end time %v, got %v", testNow, first.EndTime)
	}

	env.matchSvc.now = func() time.Time { return testNow.Add(3 * time.Hour) }
	corrected, err := env.matchSvc.UpdateMatchResult(ctx, testMatchID, 2, 0)
	if err != nil {
		t.Fatalf("corrected result: %v", err)
	}
	if corrected.HomeScore != 2 || corrected.Status != match.StatusFinished {
		t.Fatalf("unexpected corrected match: %+v", corrected)
	}
	if corrected.EndTime == nil || !corrected.EndTime.Equal(testNow) {
		t.Fatalf("correction must keep end time %v, got %v", testNow, corrected.EndTime)
	}
}

func TestMatchService_EventReplayLogsReplacedManualResult(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)
	core, logs := observer.New(zap.WarnLevel)
	env.matchSvc.logger = logging.FromZap(zap.New(core))

	if _, err := env.matchSvc.UpdateMatchResult(ctx, testMatchID, 3, 0); err != nil {
		t.Fatalf("manual result: %v", err)
	}
	if _, err := env.eventSvc.AddEvent(ctx, AddEventInput{
		MatchID: testMatchID, TeamID: testHomeTeamID, PlayerID: 101, Type: matchevent.TypeGoal, Minute: 90,
	}); err != nil {
		t.Fatalf("late goal: %v", err)
	}

	got := env.match(t, testMatchID)
	if got.HomeScore != 1 || got.AwayScore != 0 {
		t.Fatalf("events must win over the manual result, got %d-%d", got.HomeScore, got.AwayScore)
	}
	entries := logs.FilterMessage("event replay replaced finished match result").All()
	if len(entries) != 1 {
		t.Fatalf("expected one replacement warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["stored_home"] != int64(3) || fields["replayed_home"] != int64(1) {
		t.Fatalf("unexpected warning fields: %v", fields)
	}
}

func TestMatchService_RecalculateScoreRepairsDrift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusInProgress, nil)

	for _, in := range []AddEventInput{
		{MatchID: testMatchID, TeamID: testHomeTeamID, PlayerID: 101, Type: matchevent.TypeGoal, Minute: 10},
		{MatchID: testMatchID, TeamID: testAwayTeamID, PlayerID: 201, Type: matchevent.TypePenaltyGoal, Minute: 20},
		{MatchID: testMatchID, TeamID: testAwayTeamID, PlayerID: 202, Type: matchevent.TypeOwnGoal, Minute: 30},
	} {
		if _, err := env.eventSvc.AddEvent(ctx, in); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := env.matches.UpdateScore(ctx, testMatchID, match.Score{Home: 7, Away: 7}); err != nil {
		t.Fatalf("force drift: %v", err)
	}

	got, err := env.matchSvc.RecalculateScore(ctx, testMatchID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.HomeScore != 2 || got.AwayScore != 1 {
		t.Fatalf("expected 2-1, got %d-%d", got.HomeScore, got.AwayScore)
	}
}

func TestScoreFromEvents(t *testing.T) {
	m := match.Match{ID: 1, HomeTeamID: 10, AwayTeamID: 20}
	cases := []struct {
		name   string
		events []matchevent.Event
		want   match.Score
	}{
		{name: "no events"},
		{
			name: "goals and penalties",
			events: []matchevent.Event{
				{TeamID: 10, Type: matchevent.TypeGoal},
				{TeamID: 10, Type: matchevent.TypePenaltyGoal},
				{TeamID: 20, Type: matchevent.TypeGoal},
			},
			want: match.Score{Home: 2, Away: 1},
		},
		{
			name: "own goals credit the opponent",
			events: []matchevent.Event{
				{TeamID: 10, Type: matchevent.TypeOwnGoal},
				{TeamID: 20, Type: matchevent.TypeOwnGoal},
				{TeamID: 20, Type: matchevent.TypeOwnGoal},
			},
			want: match.Score{Home: 2, Away: 1},
		},
		{
			name: "non scoring and foreign events ignored",
			events: []matchevent.Event{
				{TeamID: 10, Type: matchevent.TypePenaltyMiss},
				{TeamID: 20, Type: matchevent.TypeYellowCard},
				{TeamID: 30, Type: matchevent.TypeGoal},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ScoreFromEvents(m, tc.events)); diff != "" {
				t.Fatalf("unexpected score (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchService_AttendingPlayers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusScheduled, nil)

	if _, err := env.matchSvc.SetAttendingPlayers(ctx, testMatchID, match.AttendingPlayers{
		testHomeTeamID: {101, 102},
	}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := env.matchSvc.AddPlayerToMatch(ctx, testMatchID, testAwayTeamID, 201); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := env.matchSvc.AddPlayerToMatch(ctx, testMatchID, 30, 301); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("foreign team must be rejected, got %v", err)
	}
	if _, err := env.matchSvc.RemovePlayerFromMatch(ctx, testMatchID, testHomeTeamID, 102); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, err := env.matchSvc.GetAttendingPlayers(ctx, testMatchID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := match.AttendingPlayers{testHomeTeamID: {101}, testAwayTeamID: {201}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected roster (-want +got):\n%s", diff)
	}

	if _, err := env.matchSvc.SetAttendingPlayers(ctx, testMatchID, match.AttendingPlayers{
		testHomeTeamID: {101, 101},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("duplicate players must be rejected, got %v", err)
	}
}

func TestMatchService_GenerateRoundRobin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusScheduled, nil)
	start := testNow.Add(24 * time.Hour)

	created, err := env.matchSvc.GenerateFixture(ctx, testTournamentID, GenerateFixtureInput{
		StartDate:     start,
		MatchesPerDay: 2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 6 {
		t.Fatalf("expected 6 matches for 4 teams, got %d", len(created))
	}

	type pairing struct {
		Home, Away int64
		Number     int
		DayOffset  int
	}
	var got []pairing
	for _, m := range created {
		if m.Status != match.StatusScheduled || m.Location != defaultFixtureLocation || m.Round != defaultFixtureRound {
			t.Fatalf("unexpected defaults: %+v", m)
		}
		got = append(got, pairing{
			Home: m.HomeTeamID, Away: m.AwayTeamID, Number: m.MatchNumber,
			DayOffset: int(m.MatchDate.Sub(start).Hours() / 24),
		})
	}
	want := []pairing{
		{10, 20, 2, 0}, {10, 30, 3, 0}, {10, 40, 4, 1},
		{20, 30, 5, 1}, {20, 40, 6, 2}, {30, 40, 7, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fixture (-want +got):\n%s", diff)
	}
}

func TestMatchService_GeneratePredefinedFixtures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusScheduled, nil)

	created, err := env.matchSvc.GenerateFixture(ctx, testTournamentID, GenerateFixtureInput{
		StartDate: testNow.Add(time.Hour),
		Round:     "Final",
		Fixtures: []PredefinedFixture{
			{HomeTeamID: 30, AwayTeamID: 40, Date: "2026-10-05", Time: "15:30", Location: "Arena"},
			{HomeTeamID: 10, AwayTeamID: 20, Date: "2026-10-06", Time: "19:00:30"},
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(created))
	}
	if want := time.Date(2026, 10, 5, 15, 30, 0, 0, time.UTC); !created[0].MatchDate.Equal(want) {
		t.Fatalf("expected %v, got %v", want, created[0].MatchDate)
	}
	if created[0].Round != "Final" || created[0].Location != "Arena" || created[1].MatchNumber != 3 {
		t.Fatalf("unexpected matches: %+v", created)
	}

	_, err = env.matchSvc.GenerateFixture(ctx, testTournamentID, GenerateFixtureInput{
		StartDate: testNow.Add(time.Hour),
		Fixtures:  []PredefinedFixture{{HomeTeamID: 30, AwayTeamID: 40, Date: "05/10/2026"}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("malformed date must be rejected, got %v", err)
	}
}

func TestMatchService_GenerateFixtureRequiresConfiguredTournament(t *testing.T) {
	env := newTestEnv(t, match.StatusScheduled, nil)
	_, err := env.matchSvc.GenerateFixture(context.Background(), 2, GenerateFixtureInput{StartDate: testNow.Add(time.Hour)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	matches, _ := env.matchSvc.GetMatchesByTournament(context.Background(), 2)
	if len(matches) != 0 {
		t.Fatalf("no matches may be created, got %d", len(matches))
	}
}

func TestMatchService_Queries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, match.StatusScheduled, nil)

	for i, pair := range [][2]int64{{30, 40}, {10, 30}, {20, 40}} {
		if _, err := env.matchSvc.CreateMatch(ctx, CreateMatchInput{
			TournamentID: testTournamentID, HomeTeamID: pair[0], AwayTeamID: pair[1],
			MatchDate: testNow.Add(time.Duration(i+1) * 24 * time.Hour),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	upcoming, err := env.matchSvc.GetUpcomingMatches(ctx, 30, 0)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 2 || upcoming[0].AwayTeamID != 40 {
		t.Fatalf("unexpected upcoming matches: %+v", upcoming)
	}
	limited, _ := env.matchSvc.GetUpcomingMatches(ctx, 0, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	byTeam, _ := env.matchSvc.GetMatchesByTeam(ctx, testHomeTeamID, testTournamentID)
	if len(byTeam) != 2 {
		t.Fatalf("expected 2 matches for team 10, got %d", len(byTeam))
	}
	byStatus, _ := env.matchSvc.GetMatchesByStatus(ctx, match.StatusScheduled, testTournamentID)
	if len(byStatus) != 4 {
		t.Fatalf("expected 4 scheduled matches, got %d", len(byStatus))
	}
	ranged, err := env.matchSvc.GetMatchesByDateRange(ctx, testNow, testNow.Add(60*time.Hour), testTournamentID)
	if err != nil || len(ranged) != 2 {
		t.Fatalf("date range: len=%d err=%v", len(ranged), err)
	}
	if _, err := env.matchSvc.GetMatchesByDateRange(ctx, testNow, testNow, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty range must be rejected, got %v", err)
	}
}

func TestMatchService_GetMatchRepositoryFailure(t *testing.T) {
	repo := matchmock.NewRepository(t)
	repo.On("GetByID", mock.Anything, int64(5)).Return(match.Match{}, false, errors.New("connection reset")).Once()

	svc := NewMatchService(repo, nil, nil, nil, nil, nil, nil, nil)
	_, err := svc.GetMatchByID(context.Background(), 5)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}
