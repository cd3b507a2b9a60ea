package matchstats

// PlayerTotals sums a player's rows over the matches of one tournament.
type PlayerTotals struct {
	PlayerID      int64
	TeamID        int64
	Goals         int
	Assists       int
	YellowCards   int
	RedCards      int
	MatchesPlayed int
	TotalMinutes  int
}

type PlayerTournamentStats struct {
	PlayerID      int64
	FirstName     string
	LastName      string
	TeamName      string
	Goals         int
	Assists       int
	YellowCards   int
	RedCards      int
	MatchesPlayed int
	TotalMinutes  int
}

type TeamTournamentStats struct {
	TeamID         int64
	TeamName       string
	MatchesPlayed  int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

const (
	PointsWin  = 3
	PointsDraw = 1
)

// RecordResult folds one finished match into the team's running table row.
func (t *TeamTournamentStats) RecordResult(goalsFor, goalsAgainst int) {
	t.MatchesPlayed++
	t.GoalsFor += goalsFor
	t.GoalsAgainst += goalsAgainst
	t.GoalDifference = t.GoalsFor - t.GoalsAgainst
	switch {
	case goalsFor > goalsAgainst:
		t.Wins++
		t.Points += PointsWin
	case goalsFor == goalsAgainst:
		t.Draws++
		t.Points += PointsDraw
	default:
		t.Losses++
	}
}

type TournamentStatistics struct {
	TournamentID int64
	TotalMatches int
	TotalGoals   int
	TotalCards   int
	TopScorers   []PlayerTournamentStats
	TopAssists   []PlayerTournamentStats
	TeamStats    []TeamTournamentStats
}

// SeasonSummary aggregates every statistics row of a player.
type SeasonSummary struct {
	PlayerID        int64
	TournamentID    *int64
	MatchesPlayed   int
	Totals          Counters
	AverageMinutes  int
	ShotAccuracy    int
	GoalsPerMatch   float64
	AssistsPerMatch float64
}
