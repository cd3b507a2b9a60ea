package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
)

var matchInsertColumns = []string{
	"tournament_id",
	"group_id",
	"home_team_id",
	"away_team_id",
	"match_date",
	"location",
	"status",
	"home_score",
	"away_score",
	"round",
	"match_number",
	"start_time",
	"end_time",
	"attending_players",
	"created_at",
	"updated_at",
}

type matchTableModel struct {
	ID               int64         `db:"id"`
	TournamentID     int64         `db:"tournament_id"`
	GroupID          sql.NullInt64 `db:"group_id"`
	HomeTeamID       int64         `db:"home_team_id"`
	AwayTeamID       int64         `db:"away_team_id"`
	MatchDate        time.Time     `db:"match_date"`
	Location         string        `db:"location"`
	Status           string        `db:"status"`
	HomeScore        int           `db:"home_score"`
	AwayScore        int           `db:"away_score"`
	Round            string        `db:"round"`
	MatchNumber      int           `db:"match_number"`
	StartTime        sql.NullTime  `db:"start_time"`
	EndTime          sql.NullTime  `db:"end_time"`
	AttendingPlayers []byte        `db:"attending_players"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func newMatchTableModel(m match.Match) (matchTableModel, error) {
	roster, err := encodeAttendingPlayers(m.AttendingPlayers)
	if err != nil {
		return matchTableModel{}, err
	}
	return matchTableModel{
		ID:               m.ID,
		TournamentID:     m.TournamentID,
		GroupID:          nullInt64(m.GroupID),
		HomeTeamID:       m.HomeTeamID,
		AwayTeamID:       m.AwayTeamID,
		MatchDate:        m.MatchDate.UTC(),
		Location:         m.Location,
		Status:           string(m.Status),
		HomeScore:        m.HomeScore,
		AwayScore:        m.AwayScore,
		Round:            m.Round,
		MatchNumber:      m.MatchNumber,
		StartTime:        nullTime(m.StartTime),
		EndTime:          nullTime(m.EndTime),
		AttendingPlayers: roster,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}, nil
}

// values follows matchInsertColumns.
func (m matchTableModel) values() []any {
	return []any{
		m.TournamentID,
		m.GroupID,
		m.HomeTeamID,
		m.AwayTeamID,
		m.MatchDate,
		m.Location,
		m.Status,
		m.HomeScore,
		m.AwayScore,
		m.Round,
		m.MatchNumber,
		m.StartTime,
		m.EndTime,
		m.AttendingPlayers,
		m.CreatedAt,
		m.UpdatedAt,
	}
}

func (m matchTableModel) toDomain() (match.Match, error) {
	roster, err := decodeAttendingPlayers(m.AttendingPlayers)
	if err != nil {
		return match.Match{}, fmt.Errorf("decode attending players match=%d: %w", m.ID, err)
	}
	return match.Match{
		ID:               m.ID,
		TournamentID:     m.TournamentID,
		GroupID:          nullInt64Ptr(m.GroupID),
		HomeTeamID:       m.HomeTeamID,
		AwayTeamID:       m.AwayTeamID,
		MatchDate:        m.MatchDate.UTC(),
		Location:         m.Location,
		Status:           match.Status(m.Status),
		HomeScore:        m.HomeScore,
		AwayScore:        m.AwayScore,
		Round:            m.Round,
		MatchNumber:      m.MatchNumber,
		StartTime:        nullTimePtr(m.StartTime),
		EndTime:          nullTimePtr(m.EndTime),
		AttendingPlayers: roster,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}, nil
}

// The roster is stored as a JSON object keyed by team id.
func encodeAttendingPlayers(players match.AttendingPlayers) ([]byte, error) {
	doc := make(map[string][]int64, len(players))
	for teamID, ids := range players {
		doc[strconv.FormatInt(teamID, 10)] = ids
	}
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode attending players: %w", err)
	}
	return raw, nil
}

func decodeAttendingPlayers(raw []byte) (match.AttendingPlayers, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc map[string][]int64
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, nil
	}
	out := make(match.AttendingPlayers, len(doc))
	for key, ids := range doc {
		teamID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("team key %q: %w", key, err)
		}
		out[teamID] = ids
	}
	return out, nil
}
