package team

import (
	"fmt"
	"strings"
)

// Team is a club entered in one or more tournaments.
type Team struct {
	ID       int64
	Name     string
	LogoPath string
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be positive")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
