package matchevent

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeGoal         Type = "GOAL"
	TypePenaltyGoal  Type = "PENALTY_GOAL"
	TypeOwnGoal      Type = "OWN_GOAL"
	TypePenaltyMiss  Type = "PENALTY_MISS"
	TypeYellowCard   Type = "YELLOW_CARD"
	TypeRedCard      Type = "RED_CARD"
	TypeSubstitution Type = "SUBSTITUTION"
	TypeInjury       Type = "INJURY"
	TypeCorner       Type = "CORNER"
	TypeFoul         Type = "FOUL"
	TypeOffside      Type = "OFFSIDE"
	TypeSave         Type = "SAVE"
	TypeOther        Type = "OTHER"
)

const (
	MaxMinute    = 120
	MaxExtraTime = 30
)

var knownTypes = map[Type]struct{}{
	TypeGoal:         {},
	TypePenaltyGoal:  {},
	TypeOwnGoal:      {},
	TypePenaltyMiss:  {},
	TypeYellowCard:   {},
	TypeRedCard:      {},
	TypeSubstitution: {},
	TypeInjury:       {},
	TypeCorner:       {},
	TypeFoul:         {},
	TypeOffside:      {},
	TypeSave:         {},
	TypeOther:        {},
}

// ScoreAffectingTypes are replayed to derive a match score.
var ScoreAffectingTypes = []Type{TypeGoal, TypePenaltyGoal, TypeOwnGoal}

func ParseType(value string) (Type, error) {
	candidate := Type(strings.ToUpper(strings.TrimSpace(value)))
	if candidate == "" {
		return "", fmt.Errorf("event type is required")
	}
	if _, ok := knownTypes[candidate]; !ok {
		return "", fmt.Errorf("unknown event type %q", value)
	}
	return candidate, nil
}

func (t Type) IsScoreAffecting() bool {
	return t == TypeGoal || t == TypePenaltyGoal || t == TypeOwnGoal
}

// AllowsAssist reports whether an assisting player may be attached to the event.
func (t Type) AllowsAssist() bool {
	return t == TypeGoal || t == TypePenaltyGoal
}

// Event is one timestamped occurrence inside a match.
type Event struct {
	ID             int64
	MatchID        int64
	TeamID         int64
	PlayerID       int64
	Type           Type
	Minute         int
	ExtraTime      *int
	AssistPlayerID *int64
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e Event) Validate() error {
	if e.MatchID <= 0 {
		return fmt.Errorf("match id must be positive")
	}
	if e.PlayerID <= 0 {
		return fmt.Errorf("player id must be positive")
	}
	if e.TeamID <= 0 {
		return fmt.Errorf("team id must be positive")
	}
	if strings.TrimSpace(string(e.Type)) == "" {
		return fmt.Errorf("event type is required")
	}
	if _, ok := knownTypes[e.Type]; !ok {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Minute < 0 || e.Minute > MaxMinute {
		return fmt.Errorf("minute must be between 0 and %d", MaxMinute)
	}
	if e.ExtraTime != nil && (*e.ExtraTime < 0 || *e.ExtraTime > MaxExtraTime) {
		return fmt.Errorf("extra time must be between 0 and %d", MaxExtraTime)
	}
	if e.AssistPlayerID != nil {
		if !e.Type.AllowsAssist() {
			return fmt.Errorf("assist player can only be set for goal events")
		}
		if *e.AssistPlayerID <= 0 {
			return fmt.Errorf("assist player id must be positive")
		}
	}
	return nil
}

// Enriched is an event with display names resolved for real-time consumers.
type Enriched struct {
	Event
	PlayerName       string
	TeamName         string
	AssistPlayerName string
}
