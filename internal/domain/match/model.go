package match

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	StatusCancelled  Status = "cancelled"
)

var ErrInvalidStatusTransition = errors.New("invalid status transition")

var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusFinished, StatusCancelled},
	StatusFinished:   nil,
	StatusCancelled:  nil,
}

func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("invalid match status %q", value)
	}
	return status, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition reports ErrInvalidStatusTransition when next is not reachable from current.
func ValidateTransition(current, next Status) error {
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w from %s to %s", ErrInvalidStatusTransition, current, next)
	}
	return nil
}

// Score is the home/away tally persisted on a match.
type Score struct {
	Home int
	Away int
}

// Match is one fixture between two teams inside a tournament.
type Match struct {
	ID               int64
	TournamentID     int64
	GroupID          *int64
	HomeTeamID       int64
	AwayTeamID       int64
	MatchDate        time.Time
	Location         string
	Status           Status
	HomeScore        int
	AwayScore        int
	Round            string
	MatchNumber      int
	StartTime        *time.Time
	EndTime          *time.Time
	AttendingPlayers AttendingPlayers
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (m Match) Validate() error {
	if m.TournamentID <= 0 {
		return fmt.Errorf("tournament id must be positive")
	}
	if m.HomeTeamID <= 0 || m.AwayTeamID <= 0 {
		return fmt.Errorf("home and away team ids must be positive")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("home team and away team cannot be the same")
	}
	if m.MatchDate.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid match status %q", m.Status)
	}
	if m.HomeScore < 0 || m.AwayScore < 0 {
		return fmt.Errorf("scores cannot be negative")
	}
	if m.MatchNumber < 0 {
		return fmt.Errorf("match number cannot be negative")
	}
	return nil
}

func (m Match) HasTeam(teamID int64) bool {
	return teamID == m.HomeTeamID || teamID == m.AwayTeamID
}

func (m Match) Score() Score {
	return Score{Home: m.HomeScore, Away: m.AwayScore}
}

// AttendingPlayers maps a team id to the players present for that team.
type AttendingPlayers map[int64][]int64

// Validate rejects non-positive ids and duplicated players inside one team.
func (a AttendingPlayers) Validate() error {
	for teamID, playerIDs := range a {
		if teamID <= 0 {
			return fmt.Errorf("team id must be positive, got %d", teamID)
		}
		seen := make(map[int64]struct{}, len(playerIDs))
		for _, playerID := range playerIDs {
			if playerID <= 0 {
				return fmt.Errorf("player id must be positive, got %d for team %d", playerID, teamID)
			}
			if _, ok := seen[playerID]; ok {
				return fmt.Errorf("duplicate player %d for team %d", playerID, teamID)
			}
			seen[playerID] = struct{}{}
		}
	}
	return nil
}

func (a AttendingPlayers) Clone() AttendingPlayers {
	out := make(AttendingPlayers, len(a))
	for teamID, playerIDs := range a {
		out[teamID] = append([]int64(nil), playerIDs...)
	}
	return out
}

// Add appends playerID under teamID, creating the team entry when missing.
// It returns false when the player was already listed.
func (a AttendingPlayers) Add(teamID, playerID int64) bool {
	for _, existing := range a[teamID] {
		if existing == playerID {
			return false
		}
	}
	a[teamID] = append(a[teamID], playerID)
	return true
}

// Remove drops playerID from teamID and prunes the team when it is left empty.
func (a AttendingPlayers) Remove(teamID, playerID int64) bool {
	playerIDs, ok := a[teamID]
	if !ok {
		return false
	}
	kept := make([]int64, 0, len(playerIDs))
	for _, id := range playerIDs {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(playerIDs) {
		return false
	}
	if len(kept) == 0 {
		delete(a, teamID)
		return true
	}
	a[teamID] = kept
	return true
}

// TeamIDs returns the team keys in ascending order.
func (a AttendingPlayers) TeamIDs() []int64 {
	out := make([]int64, 0, len(a))
	for teamID := range a {
		out = append(out, teamID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
