package tournament

import "time"

// Tournament is the competition a match belongs to.
type Tournament struct {
	ID        int64
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

// Configuration captures the group layout chosen for a tournament.
// Fixtures can only be generated once IsConfigured is set.
type Configuration struct {
	TournamentID   int64
	NumberOfGroups int
	TeamsPerGroup  int
	IsConfigured   bool
}
