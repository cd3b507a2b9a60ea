package matchstats

import (
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
)

const (
	MaxMinutesPlayed = 120
	MaxYellowCards   = 2
	MaxRedCards      = 1
)

// Counters holds every numeric statistic tracked per player per match.
// The same shape carries signed deltas when applied through Upsert.
type Counters struct {
	MinutesPlayed  int
	Goals          int
	Assists        int
	YellowCards    int
	RedCards       int
	ShotsOnTarget  int
	ShotsOffTarget int
	FoulsCommitted int
	FoulsReceived  int
	Corners        int
	Offsides       int
	Saves          int
}

func (c Counters) Validate() error {
	values := []struct {
		name  string
		value int
	}{
		{"minutesPlayed", c.MinutesPlayed},
		{"goals", c.Goals},
		{"assists", c.Assists},
		{"yellowCards", c.YellowCards},
		{"redCards", c.RedCards},
		{"shotsOnTarget", c.ShotsOnTarget},
		{"shotsOffTarget", c.ShotsOffTarget},
		{"foulsCommitted", c.FoulsCommitted},
		{"foulsReceived", c.FoulsReceived},
		{"corners", c.Corners},
		{"offsides", c.Offsides},
		{"saves", c.Saves},
	}
	for _, v := range values {
		if v.value < 0 {
			return fmt.Errorf("%s cannot be negative", v.name)
		}
	}
	if c.MinutesPlayed > MaxMinutesPlayed {
		return fmt.Errorf("minutesPlayed cannot exceed %d", MaxMinutesPlayed)
	}
	if c.YellowCards > MaxYellowCards {
		return fmt.Errorf("yellowCards cannot exceed %d", MaxYellowCards)
	}
	if c.RedCards > MaxRedCards {
		return fmt.Errorf("redCards cannot exceed %d", MaxRedCards)
	}
	return nil
}

func (c Counters) IsZero() bool {
	return c == Counters{}
}

// Apply adds delta field by field, flooring each result at zero.
func (c Counters) Apply(delta Counters) Counters {
	return Counters{
		MinutesPlayed:  floorZero(c.MinutesPlayed + delta.MinutesPlayed),
		Goals:          floorZero(c.Goals + delta.Goals),
		Assists:        floorZero(c.Assists + delta.Assists),
		YellowCards:    floorZero(c.YellowCards + delta.YellowCards),
		RedCards:       floorZero(c.RedCards + delta.RedCards),
		ShotsOnTarget:  floorZero(c.ShotsOnTarget + delta.ShotsOnTarget),
		ShotsOffTarget: floorZero(c.ShotsOffTarget + delta.ShotsOffTarget),
		FoulsCommitted: floorZero(c.FoulsCommitted + delta.FoulsCommitted),
		FoulsReceived:  floorZero(c.FoulsReceived + delta.FoulsReceived),
		Corners:        floorZero(c.Corners + delta.Corners),
		Offsides:       floorZero(c.Offsides + delta.Offsides),
		Saves:          floorZero(c.Saves + delta.Saves),
	}
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Statistics is the per-player counter row of one match.
type Statistics struct {
	ID       int64
	MatchID  int64
	PlayerID int64
	TeamID   int64
	Counters
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Statistics) Validate() error {
	if s.MatchID <= 0 {
		return fmt.Errorf("match id must be positive")
	}
	if s.PlayerID <= 0 {
		return fmt.Errorf("player id must be positive")
	}
	if s.TeamID <= 0 {
		return fmt.Errorf("team id must be positive")
	}
	return s.Counters.Validate()
}

// PlayerDelta is a statistics change for one player.
type PlayerDelta struct {
	PlayerID int64
	Delta    Counters
}

// DeltasForEvent returns the statistics effect of an event scaled by
// multiplier (+1 when the event is recorded, -1 when it is reversed).
func DeltasForEvent(e matchevent.Event, multiplier int) []PlayerDelta {
	switch e.Type {
	case matchevent.TypeGoal, matchevent.TypePenaltyGoal:
		out := []PlayerDelta{{PlayerID: e.PlayerID, Delta: Counters{Goals: multiplier}}}
		if e.AssistPlayerID != nil && *e.AssistPlayerID > 0 {
			out = append(out, PlayerDelta{PlayerID: *e.AssistPlayerID, Delta: Counters{Assists: multiplier}})
		}
		return out
	case matchevent.TypeYellowCard:
		return []PlayerDelta{{PlayerID: e.PlayerID, Delta: Counters{YellowCards: multiplier}}}
	case matchevent.TypeRedCard:
		return []PlayerDelta{{PlayerID: e.PlayerID, Delta: Counters{RedCards: multiplier}}}
	default:
		return nil
	}
}
