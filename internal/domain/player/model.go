package player

import (
	"fmt"
	"strings"
)

// Position is the on-pitch role registered for a player.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// Player is a registered athlete. TeamID is the team the player currently plays for.
type Player struct {
	ID           int64
	TeamID       int64
	FirstName    string
	LastName     string
	JerseyNumber int
	Position     Position
}

func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be positive")
	}
	if p.TeamID <= 0 {
		return fmt.Errorf("player team id must be positive")
	}
	if strings.TrimSpace(p.FirstName) == "" && strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
