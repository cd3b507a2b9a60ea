package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped 23505", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
		if isUniqueViolation(fakeErr("pq: duplicate key")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("boom")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestExpectAffected(t *testing.T) {
	if err := expectAffected(fakeResult(1), "match", 1); err != nil {
		t.Fatalf("expected nil for one row, got %v", err)
	}
	err := expectAffected(fakeResult(0), "match", 7)
	if err == nil || !strings.Contains(err.Error(), "match=7 not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestNullableHelpers(t *testing.T) {
	if got := nullInt64Ptr(nullInt64(nil)); got != nil {
		t.Fatalf("expected nil int64, got %v", *got)
	}
	id := int64(9)
	if got := nullInt64Ptr(nullInt64(&id)); got == nil || *got != 9 {
		t.Fatalf("expected 9, got %v", got)
	}

	extra := 3
	if got := nullIntPtr(nullInt(&extra)); got == nil || *got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}

	local := time.Date(2026, 10, 1, 19, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	got := nullTimePtr(nullTime(&local))
	if got == nil || got.Location() != time.UTC || !got.Equal(local) {
		t.Fatalf("expected same instant in UTC, got %v", got)
	}
}

func TestAttendingPlayersJSON(t *testing.T) {
	raw, err := encodeAttendingPlayers(match.AttendingPlayers{10: {101, 102}, 20: {201}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(raw), `"10":[101,102]`) {
		t.Fatalf("expected team keyed object, got %s", raw)
	}

	decoded, err := decodeAttendingPlayers(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(match.AttendingPlayers{10: {101, 102}, 20: {201}}, decoded); diff != "" {
		t.Fatalf("decoded roster mismatch (-want +got):\n%s", diff)
	}

	empty, err := decodeAttendingPlayers([]byte("{}"))
	if err != nil || empty != nil {
		t.Fatalf("expected nil roster for empty object, got %v err=%v", empty, err)
	}
	if _, err := decodeAttendingPlayers([]byte(`{"home":[1]}`)); err == nil {
		t.Fatalf("expected error for non numeric team key")
	}
}

func TestMatchListQuery(t *testing.T) {
	query, args, err := matchListQuery(match.Filter{
		TournamentID: 1,
		TeamID:       10,
		Statuses:     []match.Status{match.StatusScheduled, match.StatusInProgress},
		Limit:        5,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := "SELECT * FROM matches WHERE tournament_id = $1 AND (home_team_id = $2 OR away_team_id = $3) AND status IN ($4, $5) ORDER BY match_date, match_number, id LIMIT 5"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if diff := cmp.Diff([]any{int64(1), int64(10), int64(10), "scheduled", "in_progress"}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchEventListQuery(t *testing.T) {
	minMinute, maxMinute := 40, 60
	query, args, err := matchEventListQuery(matchevent.Filter{
		TournamentID: 2,
		Types:        []matchevent.Type{matchevent.TypeGoal},
		MinMinute:    &minMinute,
		MaxMinute:    &maxMinute,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := "SELECT * FROM match_events WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1) AND event_type IN ($2) AND minute >= $3 AND minute <= $4 ORDER BY minute, COALESCE(extra_time, 0), id"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 4 || args[1] != "GOAL" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestUpsertStatisticsQuery(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	query, args, err := upsertStatisticsQuery(1, 101, 10, matchstats.Counters{Goals: -1, Assists: 2}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, fragment := range []string{
		"INSERT INTO match_statistics (match_id, player_id, team_id, minutes_played,",
		"ON CONFLICT (match_id, player_id) DO UPDATE SET minutes_played = GREATEST(match_statistics.minutes_played + $18, 0)",
		"goals = GREATEST(match_statistics.goals + $19, 0)",
		"saves = GREATEST(match_statistics.saves + $29, 0)",
		"updated_at = EXCLUDED.updated_at RETURNING *",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("query missing %q:\n%s", fragment, query)
		}
	}
	if strings.Contains(query, "team_id = ") {
		t.Fatalf("existing row team must not be overwritten:\n%s", query)
	}

	if len(args) != 29 {
		t.Fatalf("expected 29 args, got %d", len(args))
	}
	// Insert values are floored, conflict deltas are raw.
	if args[4] != 0 || args[5] != 2 {
		t.Fatalf("unexpected inserted counters goals=%v assists=%v", args[4], args[5])
	}
	if args[18] != -1 || args[19] != 2 {
		t.Fatalf("unexpected conflict deltas goals=%v assists=%v", args[18], args[19])
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

type fakeResult int64

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }
