package postgres

import (
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
)

// counterColumns follows the field order of matchstats.Counters.
var counterColumns = []string{
	"minutes_played",
	"goals",
	"assists",
	"yellow_cards",
	"red_cards",
	"shots_on_target",
	"shots_off_target",
	"fouls_committed",
	"fouls_received",
	"corners",
	"offsides",
	"saves",
}

var matchStatisticsInsertColumns = append(
	append([]string{"match_id", "player_id", "team_id"}, counterColumns...),
	"created_at", "updated_at",
)

type matchStatisticsTableModel struct {
	ID             int64     `db:"id"`
	MatchID        int64     `db:"match_id"`
	PlayerID       int64     `db:"player_id"`
	TeamID         int64     `db:"team_id"`
	MinutesPlayed  int       `db:"minutes_played"`
	Goals          int       `db:"goals"`
	Assists        int       `db:"assists"`
	YellowCards    int       `db:"yellow_cards"`
	RedCards       int       `db:"red_cards"`
	ShotsOnTarget  int       `db:"shots_on_target"`
	ShotsOffTarget int       `db:"shots_off_target"`
	FoulsCommitted int       `db:"fouls_committed"`
	FoulsReceived  int       `db:"fouls_received"`
	Corners        int       `db:"corners"`
	Offsides       int       `db:"offsides"`
	Saves          int       `db:"saves"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func counterValues(c matchstats.Counters) []any {
	return []any{
		c.MinutesPlayed,
		c.Goals,
		c.Assists,
		c.YellowCards,
		c.RedCards,
		c.ShotsOnTarget,
		c.ShotsOffTarget,
		c.FoulsCommitted,
		c.FoulsReceived,
		c.Corners,
		c.Offsides,
		c.Saves,
	}
}

func matchStatisticsValues(s matchstats.Statistics) []any {
	values := []any{s.MatchID, s.PlayerID, s.TeamID}
	values = append(values, counterValues(s.Counters)...)
	return append(values, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
}

func (m matchStatisticsTableModel) toDomain() matchstats.Statistics {
	return matchstats.Statistics{
		ID:       m.ID,
		MatchID:  m.MatchID,
		PlayerID: m.PlayerID,
		TeamID:   m.TeamID,
		Counters: matchstats.Counters{
			MinutesPlayed:  m.MinutesPlayed,
			Goals:          m.Goals,
			Assists:        m.Assists,
			YellowCards:    m.YellowCards,
			RedCards:       m.RedCards,
			ShotsOnTarget:  m.ShotsOnTarget,
			ShotsOffTarget: m.ShotsOffTarget,
			FoulsCommitted: m.FoulsCommitted,
			FoulsReceived:  m.FoulsReceived,
			Corners:        m.Corners,
			Offsides:       m.Offsides,
			Saves:          m.Saves,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type playerTotalsRow struct {
	PlayerID      int64 `db:"player_id"`
	TeamID        int64 `db:"team_id"`
	Goals         int   `db:"goals"`
	Assists       int   `db:"assists"`
	YellowCards   int   `db:"yellow_cards"`
	RedCards      int   `db:"red_cards"`
	MatchesPlayed int   `db:"matches_played"`
	TotalMinutes  int   `db:"total_minutes"`
}

func (r playerTotalsRow) toDomain() matchstats.PlayerTotals {
	return matchstats.PlayerTotals{
		PlayerID:      r.PlayerID,
		TeamID:        r.TeamID,
		Goals:         r.Goals,
		Assists:       r.Assists,
		YellowCards:   r.YellowCards,
		RedCards:      r.RedCards,
		MatchesPlayed: r.MatchesPlayed,
		TotalMinutes:  r.TotalMinutes,
	}
}
