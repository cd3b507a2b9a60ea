package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

// maxGroups keeps group labels within A-Z.
const maxGroups = 26

type ConfigureTournamentInput struct {
	NumberOfGroups int
	TeamsPerGroup  int
	// TeamIDs are registered with the tournament alongside the configuration.
	TeamIDs []int64
}

// UpdateConfigurationInput carries the editable fields; nil fields are left untouched.
type UpdateConfigurationInput struct {
	NumberOfGroups *int
	TeamsPerGroup  *int
	IsConfigured   *bool
}

type TournamentConfigurationService struct {
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	tx             Transactor
	logger         *logging.Logger
}

func NewTournamentConfigurationService(
	tournamentRepo tournament.Repository,
	teamRepo team.Repository,
	tx Transactor,
	logger *logging.Logger,
) *TournamentConfigurationService {
	if logger == nil {
		logger = logging.Default()
	}
	if tx == nil {
		tx = NoopTransactor
	}

	return &TournamentConfigurationService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		tx:             tx,
		logger:         logger,
	}
}

// Configure stores the group layout of a tournament and marks it configured,
// registering any listed teams in the same unit of work. Configuring again
// replaces the previous layout.
func (s *TournamentConfigurationService) Configure(ctx context.Context, tournamentID int64, input ConfigureTournamentInput) (tournament.Configuration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentConfigurationService.Configure", tournamentAttr(tournamentID))
	defer span.End()

	if err := s.requireTournament(ctx, tournamentID); err != nil {
		return tournament.Configuration{}, err
	}
	cfg := tournament.Configuration{
		TournamentID:   tournamentID,
		NumberOfGroups: input.NumberOfGroups,
		TeamsPerGroup:  input.TeamsPerGroup,
		IsConfigured:   true,
	}
	if err := validateLayout(cfg); err != nil {
		return tournament.Configuration{}, err
	}
	teamIDs, err := s.resolveTeams(ctx, input.TeamIDs)
	if err != nil {
		return tournament.Configuration{}, err
	}

	var saved tournament.Configuration
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.tournamentRepo.SaveConfiguration(ctx, cfg)
		if err != nil {
			return fmt.Errorf("save tournament configuration: %w", err)
		}
		if err := s.tournamentRepo.RegisterTeams(ctx, tournamentID, teamIDs); err != nil {
			return fmt.Errorf("register tournament teams: %w", err)
		}
		return nil
	})
	if err != nil {
		return tournament.Configuration{}, err
	}

	s.logger.InfoContext(ctx, "tournament configured",
		"tournament_id", tournamentID,
		"groups", saved.NumberOfGroups,
		"teams_per_group", saved.TeamsPerGroup,
		"teams_registered", len(teamIDs),
	)
	return saved, nil
}

func (s *TournamentConfigurationService) GetConfiguration(ctx context.Context, tournamentID int64) (tournament.Configuration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentConfigurationService.GetConfiguration", tournamentAttr(tournamentID))
	defer span.End()

	return s.existing(ctx, tournamentID)
}

func (s *TournamentConfigurationService) UpdateConfiguration(ctx context.Context, tournamentID int64, input UpdateConfigurationInput) (tournament.Configuration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentConfigurationService.UpdateConfiguration", tournamentAttr(tournamentID))
	defer span.End()

	var saved tournament.Configuration
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cfg, err := s.existing(ctx, tournamentID)
		if err != nil {
			return err
		}
		if input.NumberOfGroups != nil {
			cfg.NumberOfGroups = *input.NumberOfGroups
		}
		if input.TeamsPerGroup != nil {
			cfg.TeamsPerGroup = *input.TeamsPerGroup
		}
		if input.IsConfigured != nil {
			cfg.IsConfigured = *input.IsConfigured
		}
		if err := validateLayout(cfg); err != nil {
			return err
		}
		saved, err = s.tournamentRepo.SaveConfiguration(ctx, cfg)
		if err != nil {
			return fmt.Errorf("save tournament configuration: %w", err)
		}
		return nil
	})
	if err != nil {
		return tournament.Configuration{}, err
	}
	return saved, nil
}

// DeleteConfiguration removes the layout. Registered teams and existing
// matches are kept; new fixtures are refused until the tournament is
// configured again.
func (s *TournamentConfigurationService) DeleteConfiguration(ctx context.Context, tournamentID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentConfigurationService.DeleteConfiguration", tournamentAttr(tournamentID))
	defer span.End()

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.existing(ctx, tournamentID); err != nil {
			return err
		}
		if err := s.tournamentRepo.DeleteConfiguration(ctx, tournamentID); err != nil {
			return fmt.Errorf("delete tournament configuration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "tournament configuration deleted", "tournament_id", tournamentID)
	return nil
}

func (s *TournamentConfigurationService) requireTournament(ctx context.Context, tournamentID int64) error {
	if tournamentID <= 0 {
		return fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	_, ok, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("get tournament: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: tournament=%d", ErrNotFound, tournamentID)
	}
	return nil
}

func (s *TournamentConfigurationService) existing(ctx context.Context, tournamentID int64) (tournament.Configuration, error) {
	if tournamentID <= 0 {
		return tournament.Configuration{}, fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	cfg, ok, err := s.tournamentRepo.GetConfiguration(ctx, tournamentID)
	if err != nil {
		return tournament.Configuration{}, fmt.Errorf("get tournament configuration: %w", err)
	}
	if !ok {
		return tournament.Configuration{}, fmt.Errorf("%w: configuration for tournament=%d", ErrNotFound, tournamentID)
	}
	return cfg, nil
}

// resolveTeams deduplicates ids and checks that every team exists.
func (s *TournamentConfigurationService) resolveTeams(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: team ids must be positive", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	teams, err := s.teamRepo.ListByIDs(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	found := make(map[int64]struct{}, len(teams))
	for _, item := range teams {
		found[item.ID] = struct{}{}
	}
	for _, id := range out {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: team=%d not found", ErrInvalidInput, id)
		}
	}
	return out, nil
}

func validateLayout(cfg tournament.Configuration) error {
	if cfg.NumberOfGroups <= 0 {
		return fmt.Errorf("%w: number of groups must be positive", ErrInvalidInput)
	}
	if cfg.NumberOfGroups > maxGroups {
		return fmt.Errorf("%w: maximum %d groups allowed", ErrInvalidInput, maxGroups)
	}
	if cfg.TeamsPerGroup < 2 {
		return fmt.Errorf("%w: teams per group must be at least 2", ErrInvalidInput)
	}
	return nil
}
