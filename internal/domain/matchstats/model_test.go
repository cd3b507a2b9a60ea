package matchstats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
)

func TestCountersValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      Counters
		wantErr bool
	}{
		{name: "zero", in: Counters{}},
		{name: "limits", in: Counters{MinutesPlayed: 120, YellowCards: 2, RedCards: 1}},
		{name: "too many minutes", in: Counters{MinutesPlayed: 121}, wantErr: true},
		{name: "third yellow", in: Counters{YellowCards: 3}, wantErr: true},
		{name: "second red", in: Counters{RedCards: 2}, wantErr: true},
		{name: "negative saves", in: Counters{Saves: -1}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCountersApplyFloorsAtZero(t *testing.T) {
	got := Counters{Goals: 1}.Apply(Counters{Goals: -2, Assists: -1, Saves: 3})
	want := Counters{Saves: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected counters (-want +got):\n%s", diff)
	}
}

func TestDeltasForEvent(t *testing.T) {
	assist := int64(102)
	cases := []struct {
		name  string
		event matchevent.Event
		mult  int
		want  []PlayerDelta
	}{
		{
			name:  "goal with assist",
			event: matchevent.Event{PlayerID: 101, Type: matchevent.TypeGoal, AssistPlayerID: &assist},
			mult:  1,
			want: []PlayerDelta{
				{PlayerID: 101, Delta: Counters{Goals: 1}},
				{PlayerID: 102, Delta: Counters{Assists: 1}},
			},
		},
		{
			name:  "penalty goal reversed",
			event: matchevent.Event{PlayerID: 101, Type: matchevent.TypePenaltyGoal},
			mult:  -1,
			want:  []PlayerDelta{{PlayerID: 101, Delta: Counters{Goals: -1}}},
		},
		{
			name:  "yellow card",
			event: matchevent.Event{PlayerID: 7, Type: matchevent.TypeYellowCard},
			mult:  1,
			want:  []PlayerDelta{{PlayerID: 7, Delta: Counters{YellowCards: 1}}},
		},
		{
			name:  "red card",
			event: matchevent.Event{PlayerID: 7, Type: matchevent.TypeRedCard},
			mult:  1,
			want:  []PlayerDelta{{PlayerID: 7, Delta: Counters{RedCards: 1}}},
		},
		{
			name:  "own goal has no statistics effect",
			event: matchevent.Event{PlayerID: 7, Type: matchevent.TypeOwnGoal},
			mult:  1,
		},
		{
			name:  "substitution has no statistics effect",
			event: matchevent.Event{PlayerID: 7, Type: matchevent.TypeSubstitution},
			mult:  1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeltasForEvent(tc.event, tc.mult)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected deltas (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTeamRecordResult(t *testing.T) {
	var row TeamTournamentStats
	row.RecordResult(2, 1)
	row.RecordResult(0, 0)
	row.RecordResult(0, 3)

	want := TeamTournamentStats{
		MatchesPlayed:  3,
		Wins:           1,
		Draws:          1,
		Losses:         1,
		GoalsFor:       2,
		GoalsAgainst:   4,
		GoalDifference: -2,
		Points:         4,
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}
}
