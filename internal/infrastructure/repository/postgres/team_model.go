package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
)

type teamTableModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	LogoPath  string     `db:"logo_path"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{ID: m.ID, Name: m.Name, LogoPath: m.LogoPath}
}

type tournamentTableModel struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	StartDate sql.NullTime `db:"start_date"`
	EndDate   sql.NullTime `db:"end_date"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	DeletedAt *time.Time   `db:"deleted_at"`
}

func (m tournamentTableModel) toDomain() tournament.Tournament {
	return tournament.Tournament{
		ID:        m.ID,
		Name:      m.Name,
		StartDate: nullTimePtr(m.StartDate),
		EndDate:   nullTimePtr(m.EndDate),
	}
}

type tournamentConfigurationTableModel struct {
	TournamentID   int64     `db:"tournament_id"`
	NumberOfGroups int       `db:"number_of_groups"`
	TeamsPerGroup  int       `db:"teams_per_group"`
	IsConfigured   bool      `db:"is_configured"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m tournamentConfigurationTableModel) toDomain() tournament.Configuration {
	return tournament.Configuration{
		TournamentID:   m.TournamentID,
		NumberOfGroups: m.NumberOfGroups,
		TeamsPerGroup:  m.TeamsPerGroup,
		IsConfigured:   m.IsConfigured,
	}
}
