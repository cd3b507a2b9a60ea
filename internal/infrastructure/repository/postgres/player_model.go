package postgres

import (
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/player"
)

type playerTableModel struct {
	ID           int64      `db:"id"`
	TeamID       int64      `db:"team_id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	JerseyNumber int        `db:"jersey_number"`
	Position     string     `db:"position"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:           m.ID,
		TeamID:       m.TeamID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		JerseyNumber: m.JerseyNumber,
		Position:     player.Position(m.Position),
	}
}
