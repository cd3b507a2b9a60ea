package tournament

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Tournament, bool, error)
	GetConfiguration(ctx context.Context, tournamentID int64) (Configuration, bool, error)
	// SaveConfiguration inserts or replaces the configuration of cfg.TournamentID.
	SaveConfiguration(ctx context.Context, cfg Configuration) (Configuration, error)
	DeleteConfiguration(ctx context.Context, tournamentID int64) error
	// ListTeamIDs returns the registered teams ordered by id.
	ListTeamIDs(ctx context.Context, tournamentID int64) ([]int64, error)
	// RegisterTeams adds teams to the tournament. Already registered ids are ignored.
	RegisterTeams(ctx context.Context, tournamentID int64, teamIDs []int64) error
}
