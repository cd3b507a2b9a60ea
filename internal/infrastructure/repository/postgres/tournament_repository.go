package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	qb "github.com/riskibarqy/tournament-api/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build select tournament by id query: %w", err)
	}

	var row tournamentTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *TournamentRepository) GetConfiguration(ctx context.Context, tournamentID int64) (tournament.Configuration, bool, error) {
	query, args, err := qb.Select("*").From("tournament_configurations").
		Where(qb.Eq("tournament_id", tournamentID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Configuration{}, false, fmt.Errorf("build select tournament configuration query: %w", err)
	}

	var row tournamentConfigurationTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Configuration{}, false, nil
		}
		return tournament.Configuration{}, false, fmt.Errorf("get tournament configuration: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *TournamentRepository) SaveConfiguration(ctx context.Context, cfg tournament.Configuration) (tournament.Configuration, error) {
	now := time.Now().UTC()
	query, args, err := qb.InsertInto("tournament_configurations").
		Columns("tournament_id", "number_of_groups", "teams_per_group", "is_configured", "created_at", "updated_at").
		Values(cfg.TournamentID, cfg.NumberOfGroups, cfg.TeamsPerGroup, cfg.IsConfigured, now, now).
		Suffix(`ON CONFLICT (tournament_id) DO UPDATE SET
	number_of_groups = EXCLUDED.number_of_groups,
	teams_per_group = EXCLUDED.teams_per_group,
	is_configured = EXCLUDED.is_configured,
	updated_at = EXCLUDED.updated_at
RETURNING *`).
		ToSQL()
	if err != nil {
		return tournament.Configuration{}, fmt.Errorf("build upsert tournament configuration query: %w", err)
	}

	var row tournamentConfigurationTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return tournament.Configuration{}, fmt.Errorf("upsert tournament configuration: %w", err)
	}
	return row.toDomain(), nil
}

func (r *TournamentRepository) DeleteConfiguration(ctx context.Context, tournamentID int64) error {
	query, args, err := qb.DeleteFrom("tournament_configurations").
		Where(qb.Eq("tournament_id", tournamentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete tournament configuration query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete tournament configuration: %w", err)
	}
	return expectAffected(res, "tournament configuration", tournamentID)
}

func (r *TournamentRepository) ListTeamIDs(ctx context.Context, tournamentID int64) ([]int64, error) {
	query, args, err := qb.Select("team_id").From("tournament_teams").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tournament teams query: %w", err)
	}

	ids := []int64{}
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select tournament teams: %w", err)
	}
	return ids, nil
}

func (r *TournamentRepository) RegisterTeams(ctx context.Context, tournamentID int64, teamIDs []int64) error {
	if len(teamIDs) == 0 {
		return nil
	}
	builder := qb.InsertInto("tournament_teams").Columns("tournament_id", "team_id")
	for _, teamID := range teamIDs {
		builder.Values(tournamentID, teamID)
	}
	query, args, err := builder.Suffix("ON CONFLICT (tournament_id, team_id) DO NOTHING").ToSQL()
	if err != nil {
		return fmt.Errorf("build insert tournament teams query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tournament teams: %w", err)
	}
	return nil
}
