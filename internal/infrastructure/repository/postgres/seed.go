package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-api/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo tournament into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM tournaments WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count tournaments for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	return NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		tx := conn(ctx, db)

		for _, t := range memory.SeedTournaments() {
			err := execNamed(ctx, db, tx, `
INSERT INTO tournaments (id, name, start_date, end_date)
VALUES (:id, :name, :start_date, :end_date)
ON CONFLICT (id) DO NOTHING`, map[string]any{
				"id":         t.ID,
				"name":       t.Name,
				"start_date": nullTime(t.StartDate),
				"end_date":   nullTime(t.EndDate),
			})
			if err != nil {
				return fmt.Errorf("seed tournament %d: %w", t.ID, err)
			}
		}

		for _, c := range memory.SeedConfigurations() {
			err := execNamed(ctx, db, tx, `
INSERT INTO tournament_configurations (tournament_id, number_of_groups, teams_per_group, is_configured)
VALUES (:tournament_id, :number_of_groups, :teams_per_group, :is_configured)
ON CONFLICT (tournament_id) DO NOTHING`, map[string]any{
				"tournament_id":    c.TournamentID,
				"number_of_groups": c.NumberOfGroups,
				"teams_per_group":  c.TeamsPerGroup,
				"is_configured":    c.IsConfigured,
			})
			if err != nil {
				return fmt.Errorf("seed configuration tournament=%d: %w", c.TournamentID, err)
			}
		}

		for _, t := range memory.SeedTeams() {
			err := execNamed(ctx, db, tx, `
INSERT INTO teams (id, name, logo_path)
VALUES (:id, :name, :logo_path)
ON CONFLICT (id) DO NOTHING`, map[string]any{
				"id":        t.ID,
				"name":      t.Name,
				"logo_path": t.LogoPath,
			})
			if err != nil {
				return fmt.Errorf("seed team %d: %w", t.ID, err)
			}
		}

		for tournamentID, teamIDs := range memory.SeedTournamentTeams() {
			for _, teamID := range teamIDs {
				err := execNamed(ctx, db, tx, `
INSERT INTO tournament_teams (tournament_id, team_id)
VALUES (:tournament_id, :team_id)
ON CONFLICT DO NOTHING`, map[string]any{
					"tournament_id": tournamentID,
					"team_id":       teamID,
				})
				if err != nil {
					return fmt.Errorf("seed tournament team %d/%d: %w", tournamentID, teamID, err)
				}
			}
		}

		for _, p := range memory.SeedPlayers() {
			err := execNamed(ctx, db, tx, `
INSERT INTO players (id, team_id, first_name, last_name, jersey_number, position)
VALUES (:id, :team_id, :first_name, :last_name, :jersey_number, :position)
ON CONFLICT (id) DO NOTHING`, map[string]any{
				"id":            p.ID,
				"team_id":       p.TeamID,
				"first_name":    p.FirstName,
				"last_name":     p.LastName,
				"jersey_number": p.JerseyNumber,
				"position":      string(p.Position),
			})
			if err != nil {
				return fmt.Errorf("seed player %d: %w", p.ID, err)
			}
		}

		// Explicit ids leave the serial sequences behind.
		for _, table := range []string{"tournaments", "teams", "players"} {
			stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`, table, table)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("reset %s id sequence: %w", table, err)
			}
		}
		return nil
	})
}

func execNamed(ctx context.Context, db *sqlx.DB, tx execer, query string, arg map[string]any) error {
	sqlQuery, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	_, err = tx.ExecContext(ctx, db.Rebind(sqlQuery), args...)
	return err
}
