package httpapi

import (
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
)

type matchDTO struct {
	ID               int64              `json:"id"`
	TournamentID     int64              `json:"tournamentId"`
	GroupID          *int64             `json:"groupId,omitempty"`
	HomeTeamID       int64              `json:"homeTeamId"`
	AwayTeamID       int64              `json:"awayTeamId"`
	MatchDate        string             `json:"matchDate"`
	Location         string             `json:"location"`
	Status           string             `json:"status"`
	HomeScore        int                `json:"homeScore"`
	AwayScore        int                `json:"awayScore"`
	Round            string             `json:"round,omitempty"`
	MatchNumber      int                `json:"matchNumber"`
	StartTime        string             `json:"startTime,omitempty"`
	EndTime          string             `json:"endTime,omitempty"`
	AttendingPlayers map[string][]int64 `json:"attendingPlayers"`
	CreatedAt        string             `json:"createdAt"`
	UpdatedAt        string             `json:"updatedAt"`
}

type eventDTO struct {
	ID             int64  `json:"id"`
	MatchID        int64  `json:"matchId"`
	TeamID         int64  `json:"teamId"`
	PlayerID       int64  `json:"playerId"`
	EventType      string `json:"eventType"`
	Minute         int    `json:"minute"`
	ExtraTime      *int   `json:"extraTime,omitempty"`
	AssistPlayerID *int64 `json:"assistPlayerId,omitempty"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type timelineEntryDTO struct {
	eventDTO
	PlayerName       string `json:"playerName"`
	TeamName         string `json:"teamName"`
	AssistPlayerName string `json:"assistPlayerName,omitempty"`
}

type countersDTO struct {
	MinutesPlayed  int `json:"minutesPlayed"`
	Goals          int `json:"goals"`
	Assists        int `json:"assists"`
	YellowCards    int `json:"yellowCards"`
	RedCards       int `json:"redCards"`
	ShotsOnTarget  int `json:"shotsOnTarget"`
	ShotsOffTarget int `json:"shotsOffTarget"`
	FoulsCommitted int `json:"foulsCommitted"`
	FoulsReceived  int `json:"foulsReceived"`
	Corners        int `json:"corners"`
	Offsides       int `json:"offsides"`
	Saves          int `json:"saves"`
}

type statisticsDTO struct {
	ID       int64 `json:"id"`
	MatchID  int64 `json:"matchId"`
	PlayerID int64 `json:"playerId"`
	TeamID   int64 `json:"teamId"`
	countersDTO
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type seasonSummaryDTO struct {
	PlayerID        int64       `json:"playerId"`
	TournamentID    *int64      `json:"tournamentId,omitempty"`
	MatchesPlayed   int         `json:"matchesPlayed"`
	Totals          countersDTO `json:"totals"`
	AverageMinutes  int         `json:"averageMinutes"`
	ShotAccuracy    int         `json:"shotAccuracy"`
	GoalsPerMatch   float64     `json:"goalsPerMatch"`
	AssistsPerMatch float64     `json:"assistsPerMatch"`
}

type playerTournamentStatsDTO struct {
	PlayerID      int64  `json:"playerId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	TeamName      string `json:"teamName"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	YellowCards   int    `json:"yellowCards"`
	RedCards      int    `json:"redCards"`
	MatchesPlayed int    `json:"matchesPlayed"`
	TotalMinutes  int    `json:"totalMinutes"`
}

type teamTournamentStatsDTO struct {
	TeamID         int64  `json:"teamId"`
	TeamName       string `json:"teamName"`
	MatchesPlayed  int    `json:"matchesPlayed"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

type tournamentStatisticsDTO struct {
	TournamentID int64                      `json:"tournamentId"`
	TotalMatches int                        `json:"totalMatches"`
	TotalGoals   int                        `json:"totalGoals"`
	TotalCards   int                        `json:"totalCards"`
	TopScorers   []playerTournamentStatsDTO `json:"topScorers"`
	TopAssists   []playerTournamentStatsDTO `json:"topAssists"`
	TeamStats    []teamTournamentStatsDTO   `json:"teamStats"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func attendingPlayersToDTO(players match.AttendingPlayers) map[string][]int64 {
	out := make(map[string][]int64, len(players))
	for teamID, playerIDs := range players {
		ids := append([]int64(nil), playerIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[strconv.FormatInt(teamID, 10)] = ids
	}
	return out
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:               m.ID,
		TournamentID:     m.TournamentID,
		GroupID:          m.GroupID,
		HomeTeamID:       m.HomeTeamID,
		AwayTeamID:       m.AwayTeamID,
		MatchDate:        formatTime(m.MatchDate),
		Location:         m.Location,
		Status:           string(m.Status),
		HomeScore:        m.HomeScore,
		AwayScore:        m.AwayScore,
		Round:            m.Round,
		MatchNumber:      m.MatchNumber,
		StartTime:        formatOptionalTime(m.StartTime),
		EndTime:          formatOptionalTime(m.EndTime),
		AttendingPlayers: attendingPlayersToDTO(m.AttendingPlayers),
		CreatedAt:        formatTime(m.CreatedAt),
		UpdatedAt:        formatTime(m.UpdatedAt),
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	return out
}

func eventToDTO(e matchevent.Event) eventDTO {
	return eventDTO{
		ID:             e.ID,
		MatchID:        e.MatchID,
		TeamID:         e.TeamID,
		PlayerID:       e.PlayerID,
		EventType:      string(e.Type),
		Minute:         e.Minute,
		ExtraTime:      e.ExtraTime,
		AssistPlayerID: e.AssistPlayerID,
		Description:    e.Description,
		CreatedAt:      formatTime(e.CreatedAt),
		UpdatedAt:      formatTime(e.UpdatedAt),
	}
}

func eventsToDTO(items []matchevent.Event) []eventDTO {
	out := make([]eventDTO, 0, len(items))
	for _, e := range items {
		out = append(out, eventToDTO(e))
	}
	return out
}

func timelineToDTO(items []matchevent.Enriched) []timelineEntryDTO {
	out := make([]timelineEntryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, timelineEntryDTO{
			eventDTO:         eventToDTO(e.Event),
			PlayerName:       e.PlayerName,
			TeamName:         e.TeamName,
			AssistPlayerName: e.AssistPlayerName,
		})
	}
	return out
}

func countersToDTO(c matchstats.Counters) countersDTO {
	return countersDTO(c)
}

func statisticsToDTO(s matchstats.Statistics) statisticsDTO {
	return statisticsDTO{
		ID:          s.ID,
		MatchID:     s.MatchID,
		PlayerID:    s.PlayerID,
		TeamID:      s.TeamID,
		countersDTO: countersToDTO(s.Counters),
		CreatedAt:   formatTime(s.CreatedAt),
		UpdatedAt:   formatTime(s.UpdatedAt),
	}
}

func statisticsListToDTO(items []matchstats.Statistics) []statisticsDTO {
	out := make([]statisticsDTO, 0, len(items))
	for _, s := range items {
		out = append(out, statisticsToDTO(s))
	}
	return out
}

func seasonSummaryToDTO(s matchstats.SeasonSummary) seasonSummaryDTO {
	return seasonSummaryDTO{
		PlayerID:        s.PlayerID,
		TournamentID:    s.TournamentID,
		MatchesPlayed:   s.MatchesPlayed,
		Totals:          countersToDTO(s.Totals),
		AverageMinutes:  s.AverageMinutes,
		ShotAccuracy:    s.ShotAccuracy,
		GoalsPerMatch:   s.GoalsPerMatch,
		AssistsPerMatch: s.AssistsPerMatch,
	}
}

func playerStatsToDTO(items []matchstats.PlayerTournamentStats) []playerTournamentStatsDTO {
	out := make([]playerTournamentStatsDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerTournamentStatsDTO(p))
	}
	return out
}

func teamStatsToDTO(items []matchstats.TeamTournamentStats) []teamTournamentStatsDTO {
	out := make([]teamTournamentStatsDTO, 0, len(items))
	for _, t := range items {
		out = append(out, teamTournamentStatsDTO(t))
	}
	return out
}

func tournamentStatisticsToDTO(s matchstats.TournamentStatistics) tournamentStatisticsDTO {
	return tournamentStatisticsDTO{
		TournamentID: s.TournamentID,
		TotalMatches: s.TotalMatches,
		TotalGoals:   s.TotalGoals,
		TotalCards:   s.TotalCards,
		TopScorers:   playerStatsToDTO(s.TopScorers),
		TopAssists:   playerStatsToDTO(s.TopAssists),
		TeamStats:    teamStatsToDTO(s.TeamStats),
	}
}
