package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

const (
	defaultPlayerStatsLimit = 50
	maxPlayerStatsLimit     = 100
	defaultTopLimit         = 10
	maxTopLimit             = 50
)

// CreateStatisticsInput is the payload for an explicit statistics row.
type CreateStatisticsInput struct {
	MatchID  int64
	PlayerID int64
	TeamID   int64
	matchstats.Counters
}

// StatisticsPatch carries absolute values; nil fields are left untouched.
type StatisticsPatch struct {
	MinutesPlayed  *int
	Goals          *int
	Assists        *int
	YellowCards    *int
	RedCards       *int
	ShotsOnTarget  *int
	ShotsOffTarget *int
	FoulsCommitted *int
	FoulsReceived  *int
	Corners        *int
	Offsides       *int
	Saves          *int
}

func (p StatisticsPatch) applyTo(c matchstats.Counters) matchstats.Counters {
	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.MinutesPlayed, p.MinutesPlayed)
	set(&c.Goals, p.Goals)
	set(&c.Assists, p.Assists)
	set(&c.YellowCards, p.YellowCards)
	set(&c.RedCards, p.RedCards)
	set(&c.ShotsOnTarget, p.ShotsOnTarget)
	set(&c.ShotsOffTarget, p.ShotsOffTarget)
	set(&c.FoulsCommitted, p.FoulsCommitted)
	set(&c.FoulsReceived, p.FoulsReceived)
	set(&c.Corners, p.Corners)
	set(&c.Offsides, p.Offsides)
	set(&c.Saves, p.Saves)
	return c
}

// validate checks only the provided values, so rows already pushed past a
// cap by recorded events can still be corrected field by field.
func (p StatisticsPatch) validate() error {
	if err := p.applyTo(matchstats.Counters{}).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

type MatchStatisticsService struct {
	statsRepo      matchstats.Repository
	matchRepo      match.Repository
	playerRepo     player.Repository
	teamRepo       team.Repository
	tournamentRepo tournament.Repository
	tx             Transactor
	logger         *logging.Logger
	now            func() time.Time
}

func NewMatchStatisticsService(
	statsRepo matchstats.Repository,
	matchRepo match.Repository,
	playerRepo player.Repository,
	teamRepo team.Repository,
	tournamentRepo tournament.Repository,
	tx Transactor,
	logger *logging.Logger,
) *MatchStatisticsService {
	if logger == nil {
		logger = logging.Default()
	}
	if tx == nil {
		tx = NoopTransactor
	}

	return &MatchStatisticsService{
		statsRepo:      statsRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		tx:             tx,
		logger:         logger,
		now:            time.Now,
	}
}

// Upsert adds delta to the (match, player) row. A missing row is created for
// the player's current team.
func (s *MatchStatisticsService) Upsert(ctx context.Context, matchID, playerID int64, delta matchstats.Counters) (matchstats.Statistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.Upsert")
	defer span.End()

	if matchID <= 0 {
		return matchstats.Statistics{}, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	if playerID <= 0 {
		return matchstats.Statistics{}, fmt.Errorf("%w: valid player id is required", ErrInvalidInput)
	}

	teamID, err := s.resolveRowTeam(ctx, matchID, playerID)
	if err != nil {
		return matchstats.Statistics{}, err
	}

	item, err := s.statsRepo.Upsert(ctx, matchID, playerID, teamID, delta)
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("upsert statistics match=%d player=%d: %w", matchID, playerID, err)
	}
	return item, nil
}

// resolveRowTeam returns the team owning an existing row, falling back to the
// player's current team when the row still has to be created.
func (s *MatchStatisticsService) resolveRowTeam(ctx context.Context, matchID, playerID int64) (int64, error) {
	existing, ok, err := s.statsRepo.GetByMatchAndPlayer(ctx, matchID, playerID)
	if err != nil {
		return 0, fmt.Errorf("get statistics match=%d player=%d: %w", matchID, playerID, err)
	}
	if ok {
		return existing.TeamID, nil
	}

	p, ok, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("get player=%d: %w", playerID, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}
	return p.TeamID, nil
}

// InitializeMatchStatistics creates zeroed rows for players that have none
// yet. Rows are written one at a time and existing rows are never touched.
func (s *MatchStatisticsService) InitializeMatchStatistics(ctx context.Context, matchID int64, playerIDs []int64) ([]matchstats.Statistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.InitializeMatchStatistics", matchAttr(matchID))
	defer span.End()

	if matchID <= 0 {
		return nil, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one player id is required", ErrInvalidInput)
	}
	ids, err := uniquePositiveIDs(playerIDs, "player")
	if err != nil {
		return nil, err
	}
	if _, err := s.getMatch(ctx, matchID); err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	teamByPlayer := make(map[int64]int64, len(players))
	for _, p := range players {
		teamByPlayer[p.ID] = p.TeamID
	}
	for _, id := range ids {
		if _, ok := teamByPlayer[id]; !ok {
			return nil, fmt.Errorf("%w: player=%d", ErrNotFound, id)
		}
	}

	created := 0
	now := s.now().UTC()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			inserted, err := s.statsRepo.CreateIfAbsent(ctx, matchstats.Statistics{
				MatchID:   matchID,
				PlayerID:  id,
				TeamID:    teamByPlayer[id],
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("initialize statistics player=%d: %w", id, err)
			}
			if inserted {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.statsRepo.List(ctx, matchstats.Filter{MatchID: matchID})
	if err != nil {
		return nil, fmt.Errorf("list match statistics: %w", err)
	}
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]matchstats.Statistics, 0, len(ids))
	for _, row := range rows {
		if _, ok := wanted[row.PlayerID]; ok {
			out = append(out, row)
		}
	}

	s.logger.InfoContext(ctx, "match statistics initialized",
		"match_id", matchID,
		"requested", len(ids),
		"created", created,
	)
	return out, nil
}

func (s *MatchStatisticsService) CreateStatistics(ctx context.Context, input CreateStatisticsInput) (matchstats.Statistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.CreateStatistics")
	defer span.End()

	now := s.now().UTC()
	item := matchstats.Statistics{
		MatchID:   input.MatchID,
		PlayerID:  input.PlayerID,
		TeamID:    input.TeamID,
		Counters:  input.Counters,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return matchstats.Statistics{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.getMatch(ctx, item.MatchID); err != nil {
		return matchstats.Statistics{}, err
	}

	_, exists, err := s.statsRepo.GetByMatchAndPlayer(ctx, item.MatchID, item.PlayerID)
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("get statistics: %w", err)
	}
	if exists {
		return matchstats.Statistics{}, fmt.Errorf("%w: statistics already exist for match=%d player=%d", ErrConflict, item.MatchID, item.PlayerID)
	}

	created, err := s.statsRepo.Create(ctx, item)
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("create statistics: %w", err)
	}
	return created, nil
}

func (s *MatchStatisticsService) GetStatisticsByID(ctx context.Context, id int64) (matchstats.Statistics, error) {
	if id <= 0 {
		return matchstats.Statistics{}, fmt.Errorf("%w: valid statistics id is required", ErrInvalidInput)
	}
	item, ok, err := s.statsRepo.GetByID(ctx, id)
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("get statistics=%d: %w", id, err)
	}
	if !ok {
		return matchstats.Statistics{}, fmt.Errorf("%w: statistics=%d", ErrNotFound, id)
	}
	return item, nil
}

func (s *MatchStatisticsService) GetStatisticsByMatch(ctx context.Context, matchID int64) ([]matchstats.Statistics, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	return s.listStatistics(ctx, matchstats.Filter{MatchID: matchID})
}

// GetStatisticsByPlayer lists a player's rows, optionally scoped to one tournament.
func (s *MatchStatisticsService) GetStatisticsByPlayer(ctx context.Context, playerID, tournamentID int64) ([]matchstats.Statistics, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("%w: valid player id is required", ErrInvalidInput)
	}
	if tournamentID < 0 {
		return nil, fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	return s.listStatistics(ctx, matchstats.Filter{PlayerID: playerID, TournamentID: tournamentID})
}

func (s *MatchStatisticsService) GetStatisticsByTeam(ctx context.Context, teamID, tournamentID int64) ([]matchstats.Statistics, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: valid team id is required", ErrInvalidInput)
	}
	if tournamentID < 0 {
		return nil, fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	return s.listStatistics(ctx, matchstats.Filter{TeamID: teamID, TournamentID: tournamentID})
}

func (s *MatchStatisticsService) listStatistics(ctx context.Context, filter matchstats.Filter) ([]matchstats.Statistics, error) {
	items, err := s.statsRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	return items, nil
}

// UpdateStatistics overwrites the provided counters of one row. Edits on
// finished matches are allowed but logged.
func (s *MatchStatisticsService) UpdateStatistics(ctx context.Context, id int64, patch StatisticsPatch) (matchstats.Statistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.UpdateStatistics")
	defer span.End()

	if id <= 0 {
		return matchstats.Statistics{}, fmt.Errorf("%w: valid statistics id is required", ErrInvalidInput)
	}
	if err := patch.validate(); err != nil {
		return matchstats.Statistics{}, err
	}

	item, err := s.GetStatisticsByID(ctx, id)
	if err != nil {
		return matchstats.Statistics{}, err
	}
	m, err := s.getMatch(ctx, item.MatchID)
	if err != nil {
		return matchstats.Statistics{}, err
	}
	if m.Status == match.StatusFinished {
		s.logger.WarnContext(ctx, "updating statistics of finished match",
			"statistics_id", id,
			"match_id", m.ID,
		)
	}

	item.Counters = patch.applyTo(item.Counters)
	item.UpdatedAt = s.now().UTC()
	updated, err := s.statsRepo.Update(ctx, item)
	if err != nil {
		return matchstats.Statistics{}, fmt.Errorf("update statistics=%d: %w", id, err)
	}
	return updated, nil
}

// UpdatePlayerStatistics sets absolute values on the (match, player) row,
// creating the row first when needed.
func (s *MatchStatisticsService) UpdatePlayerStatistics(ctx context.Context, matchID, playerID int64, patch StatisticsPatch) (matchstats.Statistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.UpdatePlayerStatistics")
	defer span.End()

	if matchID <= 0 {
		return matchstats.Statistics{}, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	if playerID <= 0 {
		return matchstats.Statistics{}, fmt.Errorf("%w: valid player id is required", ErrInvalidInput)
	}
	if err := patch.validate(); err != nil {
		return matchstats.Statistics{}, err
	}
	if _, err := s.getMatch(ctx, matchID); err != nil {
		return matchstats.Statistics{}, err
	}

	var out matchstats.Statistics
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := s.Upsert(ctx, matchID, playerID, matchstats.Counters{})
		if err != nil {
			return err
		}
		row.Counters = patch.applyTo(row.Counters)
		row.UpdatedAt = s.now().UTC()
		out, err = s.statsRepo.Update(ctx, row)
		if err != nil {
			return fmt.Errorf("update statistics match=%d player=%d: %w", matchID, playerID, err)
		}
		return nil
	})
	if err != nil {
		return matchstats.Statistics{}, err
	}
	return out, nil
}

func (s *MatchStatisticsService) DeleteStatistics(ctx context.Context, id int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.DeleteStatistics")
	defer span.End()

	item, err := s.GetStatisticsByID(ctx, id)
	if err != nil {
		return err
	}
	m, err := s.getMatch(ctx, item.MatchID)
	if err != nil {
		return err
	}
	if m.Status == match.StatusFinished {
		return fmt.Errorf("%w: cannot delete statistics from finished matches", ErrInvalidInput)
	}

	if err := s.statsRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete statistics=%d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "statistics deleted", "statistics_id", id, "match_id", item.MatchID)
	return nil
}

// GetPlayerSeasonSummary folds every row of a player. tournamentID zero means
// all tournaments.
func (s *MatchStatisticsService) GetPlayerSeasonSummary(ctx context.Context, playerID, tournamentID int64) (matchstats.SeasonSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.GetPlayerSeasonSummary")
	defer span.End()

	rows, err := s.GetStatisticsByPlayer(ctx, playerID, tournamentID)
	if err != nil {
		return matchstats.SeasonSummary{}, err
	}

	summary := matchstats.SeasonSummary{PlayerID: playerID, MatchesPlayed: len(rows)}
	if tournamentID > 0 {
		summary.TournamentID = &tournamentID
	}
	for _, row := range rows {
		summary.Totals = addCounters(summary.Totals, row.Counters)
	}
	if summary.MatchesPlayed > 0 {
		matches := float64(summary.MatchesPlayed)
		summary.AverageMinutes = int(math.Round(float64(summary.Totals.MinutesPlayed) / matches))
		summary.GoalsPerMatch = roundTo2(float64(summary.Totals.Goals) / matches)
		summary.AssistsPerMatch = roundTo2(float64(summary.Totals.Assists) / matches)
	}
	if shots := summary.Totals.ShotsOnTarget + summary.Totals.ShotsOffTarget; shots > 0 {
		summary.ShotAccuracy = int(math.Round(float64(summary.Totals.ShotsOnTarget) / float64(shots) * 100))
	}
	return summary, nil
}

func (s *MatchStatisticsService) GetTournamentStatistics(ctx context.Context, tournamentID int64) (matchstats.TournamentStatistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.GetTournamentStatistics", tournamentAttr(tournamentID))
	defer span.End()

	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return matchstats.TournamentStatistics{}, err
	}

	var (
		players  []matchstats.PlayerTournamentStats
		teams    []matchstats.TeamTournamentStats
		finished []match.Match
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		players, err = s.playerTable(ctx, tournamentID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		teams, finished, err = s.teamTable(ctx, tournamentID)
		return err
	})
	if err := p.Wait(); err != nil {
		return matchstats.TournamentStatistics{}, err
	}

	out := matchstats.TournamentStatistics{
		TournamentID: tournamentID,
		TotalMatches: len(finished),
		TopScorers:   topPlayers(players, byGoals, defaultTopLimit),
		TopAssists:   topPlayers(players, byAssists, defaultTopLimit),
		TeamStats:    teams,
	}
	for _, m := range finished {
		out.TotalGoals += m.HomeScore + m.AwayScore
	}
	for _, row := range players {
		out.TotalCards += row.YellowCards + row.RedCards
	}
	return out, nil
}

func (s *MatchStatisticsService) GetPlayerTournamentStats(ctx context.Context, tournamentID int64, limit int) ([]matchstats.PlayerTournamentStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.GetPlayerTournamentStats", tournamentAttr(tournamentID))
	defer span.End()

	limit, err := normalizeLimit(limit, defaultPlayerStatsLimit, maxPlayerStatsLimit)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	players, err := s.playerTable(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

func (s *MatchStatisticsService) GetTeamTournamentStats(ctx context.Context, tournamentID int64) ([]matchstats.TeamTournamentStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatisticsService.GetTeamTournamentStats", tournamentAttr(tournamentID))
	defer span.End()

	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	teams, _, err := s.teamTable(ctx, tournamentID)
	return teams, err
}

func (s *MatchStatisticsService) GetTopScorers(ctx context.Context, tournamentID int64, limit int) ([]matchstats.PlayerTournamentStats, error) {
	return s.top(ctx, "usecase.MatchStatisticsService.GetTopScorers", tournamentID, limit, byGoals)
}

func (s *MatchStatisticsService) GetTopAssists(ctx context.Context, tournamentID int64, limit int) ([]matchstats.PlayerTournamentStats, error) {
	return s.top(ctx, "usecase.MatchStatisticsService.GetTopAssists", tournamentID, limit, byAssists)
}

func (s *MatchStatisticsService) top(ctx context.Context, spanName string, tournamentID int64, limit int, rank playerRanking) ([]matchstats.PlayerTournamentStats, error) {
	ctx, span := startUsecaseSpan(ctx, spanName)
	defer span.End()

	limit, err := normalizeLimit(limit, defaultTopLimit, maxTopLimit)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	players, err := s.playerTable(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return topPlayers(players, rank, limit), nil
}

// playerTable returns every player with statistics in the tournament, ranked
// by goals, assists, then player id.
func (s *MatchStatisticsService) playerTable(ctx context.Context, tournamentID int64) ([]matchstats.PlayerTournamentStats, error) {
	totals, err := s.statsRepo.PlayerTotals(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("aggregate player totals tournament=%d: %w", tournamentID, err)
	}
	if len(totals) == 0 {
		return []matchstats.PlayerTournamentStats{}, nil
	}

	playerIDs := make([]int64, 0, len(totals))
	teamIDs := make([]int64, 0, len(totals))
	for _, t := range totals {
		playerIDs = append(playerIDs, t.PlayerID)
		teamIDs = append(teamIDs, t.TeamID)
	}

	players, err := s.playerRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	teamNames, err := s.teamNames(ctx, teamIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	out := make([]matchstats.PlayerTournamentStats, 0, len(totals))
	for _, t := range totals {
		p := byID[t.PlayerID]
		out = append(out, matchstats.PlayerTournamentStats{
			PlayerID:      t.PlayerID,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			TeamName:      teamNames[t.TeamID],
			Goals:         t.Goals,
			Assists:       t.Assists,
			YellowCards:   t.YellowCards,
			RedCards:      t.RedCards,
			MatchesPlayed: t.MatchesPlayed,
			TotalMinutes:  t.TotalMinutes,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return byGoals.less(out[i], out[j]) })
	return out, nil
}

// teamTable builds the league table from finished matches. Registered teams
// without a finished match are listed with zero rows.
func (s *MatchStatisticsService) teamTable(ctx context.Context, tournamentID int64) ([]matchstats.TeamTournamentStats, []match.Match, error) {
	registered, err := s.tournamentRepo.ListTeamIDs(ctx, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("list tournament teams: %w", err)
	}
	finished, err := s.matchRepo.List(ctx, match.Filter{
		TournamentID: tournamentID,
		Statuses:     []match.Status{match.StatusFinished},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list finished matches: %w", err)
	}

	rows := make(map[int64]*matchstats.TeamTournamentStats, len(registered))
	row := func(teamID int64) *matchstats.TeamTournamentStats {
		r, ok := rows[teamID]
		if !ok {
			r = &matchstats.TeamTournamentStats{TeamID: teamID}
			rows[teamID] = r
		}
		return r
	}
	for _, teamID := range registered {
		row(teamID)
	}
	for _, m := range finished {
		row(m.HomeTeamID).RecordResult(m.HomeScore, m.AwayScore)
		row(m.AwayTeamID).RecordResult(m.AwayScore, m.HomeScore)
	}

	teamIDs := make([]int64, 0, len(rows))
	for teamID := range rows {
		teamIDs = append(teamIDs, teamID)
	}
	names, err := s.teamNames(ctx, teamIDs)
	if err != nil {
		return nil, nil, err
	}

	out := make([]matchstats.TeamTournamentStats, 0, len(rows))
	for _, r := range rows {
		r.TeamName = names[r.TeamID]
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
	return out, finished, nil
}

func (s *MatchStatisticsService) teamNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	teams, err := s.teamRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	out := make(map[int64]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out, nil
}

func (s *MatchStatisticsService) ensureTournament(ctx context.Context, tournamentID int64) error {
	if tournamentID <= 0 {
		return fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	_, ok, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("get tournament=%d: %w", tournamentID, err)
	}
	if !ok {
		return fmt.Errorf("%w: tournament=%d", ErrNotFound, tournamentID)
	}
	return nil
}

func (s *MatchStatisticsService) getMatch(ctx context.Context, matchID int64) (match.Match, error) {
	m, ok, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match=%d: %w", matchID, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	return m, nil
}

type playerRanking struct {
	stat func(matchstats.PlayerTournamentStats) int
	tie  func(matchstats.PlayerTournamentStats) int
}

var (
	byGoals = playerRanking{
		stat: func(p matchstats.PlayerTournamentStats) int { return p.Goals },
		tie:  func(p matchstats.PlayerTournamentStats) int { return p.Assists },
	}
	byAssists = playerRanking{
		stat: func(p matchstats.PlayerTournamentStats) int { return p.Assists },
		tie:  func(p matchstats.PlayerTournamentStats) int { return p.Goals },
	}
)

func (r playerRanking) less(a, b matchstats.PlayerTournamentStats) bool {
	if r.stat(a) != r.stat(b) {
		return r.stat(a) > r.stat(b)
	}
	if r.tie(a) != r.tie(b) {
		return r.tie(a) > r.tie(b)
	}
	return a.PlayerID < b.PlayerID
}

// topPlayers keeps players with a non-zero ranked stat, best first.
func topPlayers(players []matchstats.PlayerTournamentStats, rank playerRanking, limit int) []matchstats.PlayerTournamentStats {
	out := make([]matchstats.PlayerTournamentStats, 0, len(players))
	for _, p := range players {
		if rank.stat(p) > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rank.less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalizeLimit(limit, fallback, upper int) (int, error) {
	if limit == 0 {
		return fallback, nil
	}
	if limit < 1 || limit > upper {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, upper)
	}
	return limit, nil
}

func uniquePositiveIDs(ids []int64, kind string) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: %s id must be positive, got %d", ErrInvalidInput, kind, id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func addCounters(a, b matchstats.Counters) matchstats.Counters {
	return matchstats.Counters{
		MinutesPlayed:  a.MinutesPlayed + b.MinutesPlayed,
		Goals:          a.Goals + b.Goals,
		Assists:        a.Assists + b.Assists,
		YellowCards:    a.YellowCards + b.YellowCards,
		RedCards:       a.RedCards + b.RedCards,
		ShotsOnTarget:  a.ShotsOnTarget + b.ShotsOnTarget,
		ShotsOffTarget: a.ShotsOffTarget + b.ShotsOffTarget,
		FoulsCommitted: a.FoulsCommitted + b.FoulsCommitted,
		FoulsReceived:  a.FoulsReceived + b.FoulsReceived,
		Corners:        a.Corners + b.Corners,
		Offsides:       a.Offsides + b.Offsides,
		Saves:          a.Saves + b.Saves,
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
