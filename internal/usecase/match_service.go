package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/platform/resilience"
)

const (
	defaultUpcomingLimit   = 10
	defaultFixtureLocation = "TBD"
	defaultFixtureRound    = "Group stage"
)

// MatchLocks serializes every mutation of one match across services.
type MatchLocks = resilience.KeyedMutex[int64]

func lockMatch(ctx context.Context, locks *MatchLocks, matchID int64) (func(), error) {
	unlock, err := locks.Lock(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("lock match=%d: %w", matchID, err)
	}
	return unlock, nil
}

type CreateMatchInput struct {
	TournamentID int64
	GroupID      *int64
	HomeTeamID   int64
	AwayTeamID   int64
	MatchDate    time.Time
	Location     string
	Round        string
	// MatchNumber zero assigns the next free number of the tournament.
	MatchNumber int
}

// UpdateMatchInput carries the editable fields; nil fields are left untouched.
type UpdateMatchInput struct {
	GroupID   *int64
	MatchDate *time.Time
	Location  *string
	Round     *string
	Status    *match.Status
}

// PredefinedFixture is one caller supplied pairing. Date is YYYY-MM-DD and
// Time is HH:MM or HH:MM:SS, both read as UTC.
type PredefinedFixture struct {
	HomeTeamID int64
	AwayTeamID int64
	Date       string
	Time       string
	Location   string
	GroupID    *int64
	Status     match.Status
}

type GenerateFixtureInput struct {
	GroupID   *int64
	StartDate time.Time
	Location  string
	Round     string
	// MatchesPerDay and MatchIntervalDays spread round-robin matches over
	// several days. Zero MatchesPerDay schedules every match on StartDate.
	MatchesPerDay     int
	MatchIntervalDays int
	Fixtures          []PredefinedFixture
}

type MatchService struct {
	matchRepo      match.Repository
	eventRepo      matchevent.Repository
	statsRepo      matchstats.Repository
	tournamentRepo tournament.Repository
	tx             Transactor
	locks          *MatchLocks
	notifier       realtime.Notifier
	logger         *logging.Logger
	now            func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	statsRepo matchstats.Repository,
	tournamentRepo tournament.Repository,
	tx Transactor,
	locks *MatchLocks,
	notifier realtime.Notifier,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if tx == nil {
		tx = NoopTransactor
	}
	if locks == nil {
		locks = &MatchLocks{}
	}
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}

	return &MatchService{
		matchRepo:      matchRepo,
		eventRepo:      eventRepo,
		statsRepo:      statsRepo,
		tournamentRepo: tournamentRepo,
		tx:             tx,
		locks:          locks,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatch")
	defer span.End()

	now := s.now().UTC()
	item := match.Match{
		TournamentID: input.TournamentID,
		GroupID:      input.GroupID,
		HomeTeamID:   input.HomeTeamID,
		AwayTeamID:   input.AwayTeamID,
		MatchDate:    input.MatchDate.UTC(),
		Location:     strings.TrimSpace(input.Location),
		Round:        strings.TrimSpace(input.Round),
		Status:       match.StatusScheduled,
		MatchNumber:  input.MatchNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if item.MatchDate.Before(now) {
		return match.Match{}, fmt.Errorf("%w: match date cannot be in the past", ErrInvalidInput)
	}
	if err := s.ensureTeamsRegistered(ctx, item.TournamentID, item.HomeTeamID, item.AwayTeamID); err != nil {
		return match.Match{}, err
	}

	var created match.Match
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if item.MatchNumber == 0 {
			last, err := s.matchRepo.LastMatchNumber(ctx, item.TournamentID)
			if err != nil {
				return fmt.Errorf("get last match number: %w", err)
			}
			item.MatchNumber = last + 1
		} else if err := s.ensureMatchNumberFree(ctx, item.TournamentID, item.MatchNumber); err != nil {
			return err
		}

		var err error
		created, err = s.matchRepo.Create(ctx, item)
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		return nil
	})
	if err != nil {
		return match.Match{}, err
	}

	s.logger.InfoContext(ctx, "match created",
		"match_id", created.ID,
		"tournament_id", created.TournamentID,
		"match_number", created.MatchNumber,
	)
	return created, nil
}

func (s *MatchService) ensureTeamsRegistered(ctx context.Context, tournamentID int64, teamIDs ...int64) error {
	if _, ok, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return fmt.Errorf("get tournament=%d: %w", tournamentID, err)
	} else if !ok {
		return fmt.Errorf("%w: tournament=%d", ErrNotFound, tournamentID)
	}

	registered, err := s.tournamentRepo.ListTeamIDs(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament teams: %w", err)
	}
	set := make(map[int64]struct{}, len(registered))
	for _, id := range registered {
		set[id] = struct{}{}
	}
	for _, id := range teamIDs {
		if _, ok := set[id]; !ok {
			return fmt.Errorf("%w: team %d is not registered in tournament %d", ErrInvalidInput, id, tournamentID)
		}
	}
	return nil
}

func (s *MatchService) ensureMatchNumberFree(ctx context.Context, tournamentID int64, number int) error {
	items, err := s.matchRepo.List(ctx, match.Filter{TournamentID: tournamentID})
	if err != nil {
		return fmt.Errorf("list tournament matches: %w", err)
	}
	for _, m := range items {
		if m.MatchNumber == number {
			return fmt.Errorf("%w: match number %d already used in tournament %d", ErrConflict, number, tournamentID)
		}
	}
	return nil
}

func (s *MatchService) GetMatchByID(ctx context.Context, id int64) (match.Match, error) {
	if id <= 0 {
		return match.Match{}, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	m, ok, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match=%d: %w", id, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, id)
	}
	return m, nil
}

func (s *MatchService) GetMatchesByTournament(ctx context.Context, tournamentID int64) ([]match.Match, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	return s.list(ctx, match.Filter{TournamentID: tournamentID})
}

func (s *MatchService) GetMatchesByGroup(ctx context.Context, groupID int64) ([]match.Match, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: valid group id is required", ErrInvalidInput)
	}
	return s.list(ctx, match.Filter{GroupID: groupID})
}

// GetMatchesByTeam lists home and away matches of a team. tournamentID zero
// means every tournament.
func (s *MatchService) GetMatchesByTeam(ctx context.Context, teamID, tournamentID int64) ([]match.Match, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: valid team id is required", ErrInvalidInput)
	}
	return s.list(ctx, match.Filter{TeamID: teamID, TournamentID: tournamentID})
}

func (s *MatchService) GetMatchesByStatus(ctx context.Context, status match.Status, tournamentID int64) ([]match.Match, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid match status %q", ErrInvalidInput, status)
	}
	return s.list(ctx, match.Filter{Statuses: []match.Status{status}, TournamentID: tournamentID})
}

func (s *MatchService) GetMatchesByDateRange(ctx context.Context, start, end time.Time, tournamentID int64) ([]match.Match, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
	}
	return s.list(ctx, match.Filter{From: &start, To: &end, TournamentID: tournamentID})
}

// GetUpcomingMatches returns scheduled matches from now on, soonest first.
func (s *MatchService) GetUpcomingMatches(ctx context.Context, teamID int64, limit int) ([]match.Match, error) {
	if teamID < 0 {
		return nil, fmt.Errorf("%w: valid team id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	from := s.now().UTC()
	return s.list(ctx, match.Filter{
		TeamID:   teamID,
		Statuses: []match.Status{match.StatusScheduled},
		From:     &from,
		Limit:    limit,
	})
}

func (s *MatchService) list(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	items, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *MatchService) UpdateMatch(ctx context.Context, id int64, input UpdateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateMatch", matchAttr(id))
	defer span.End()

	return s.mutate(ctx, id, func(m *match.Match) error {
		if input.GroupID != nil {
			m.GroupID = input.GroupID
		}
		if input.MatchDate != nil {
			m.MatchDate = input.MatchDate.UTC()
		}
		if input.Location != nil {
			m.Location = strings.TrimSpace(*input.Location)
		}
		if input.Round != nil {
			m.Round = strings.TrimSpace(*input.Round)
		}
		if input.Status != nil && *input.Status != m.Status {
			return s.transition(m, *input.Status)
		}
		return nil
	})
}

// UpdateMatchResult records a final score by hand and closes the match.
// The stored score stays authoritative until the next event replay.
func (s *MatchService) UpdateMatchResult(ctx context.Context, id int64, homeScore, awayScore int) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateMatchResult", matchAttr(id))
	defer span.End()

	if homeScore < 0 || awayScore < 0 {
		return match.Match{}, fmt.Errorf("%w: scores must be non-negative", ErrInvalidInput)
	}

	updated, err := s.mutate(ctx, id, func(m *match.Match) error {
		if m.Status != match.StatusInProgress && m.Status != match.StatusFinished {
			return fmt.Errorf("%w: match must be in progress or finished to update result", ErrInvalidInput)
		}
		m.HomeScore = homeScore
		m.AwayScore = awayScore
		// A correction to a finished match keeps its original end time.
		if m.Status != match.StatusFinished {
			return s.transition(m, match.StatusFinished)
		}
		return nil
	})
	if err != nil {
		return match.Match{}, err
	}

	s.notifier.MatchNotification(ctx, updated.ID, realtime.Notification{
		Type:    realtime.NotificationResultUpdated,
		Message: fmt.Sprintf("Final result %d - %d", updated.HomeScore, updated.AwayScore),
		Data: map[string]any{
			"matchId":   updated.ID,
			"homeScore": updated.HomeScore,
			"awayScore": updated.AwayScore,
		},
		Timestamp: s.now().UTC(),
	})
	return updated, nil
}

func (s *MatchService) StartMatch(ctx context.Context, id int64) (match.Match, error) {
	return s.changeStatus(ctx, "usecase.MatchService.StartMatch", id, match.StatusInProgress)
}

func (s *MatchService) FinishMatch(ctx context.Context, id int64) (match.Match, error) {
	return s.changeStatus(ctx, "usecase.MatchService.FinishMatch", id, match.StatusFinished)
}

func (s *MatchService) CancelMatch(ctx context.Context, id int64) (match.Match, error) {
	return s.changeStatus(ctx, "usecase.MatchService.CancelMatch", id, match.StatusCancelled)
}

func (s *MatchService) changeStatus(ctx context.Context, spanName string, id int64, next match.Status) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, spanName)
	defer span.End()

	return s.mutate(ctx, id, func(m *match.Match) error {
		return s.transition(m, next)
	})
}

// transition validates and applies a status change, stamping start and end
// times on the way.
func (s *MatchService) transition(m *match.Match, next match.Status) error {
	if err := match.ValidateTransition(m.Status, next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	now := s.now().UTC()
	switch next {
	case match.StatusInProgress:
		m.StartTime = &now
	case match.StatusFinished:
		m.EndTime = &now
	}
	m.Status = next
	return nil
}

// mutate loads a match under its lock, applies fn and persists the result.
// A status change is announced to real-time subscribers after the write.
func (s *MatchService) mutate(ctx context.Context, id int64, fn func(m *match.Match) error) (match.Match, error) {
	if id <= 0 {
		return match.Match{}, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	unlock, err := lockMatch(ctx, s.locks, id)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	current, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return match.Match{}, err
	}
	next := current
	next.AttendingPlayers = current.AttendingPlayers.Clone()
	if err := fn(&next); err != nil {
		return match.Match{}, err
	}
	if err := next.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	next.UpdatedAt = s.now().UTC()

	updated, err := s.matchRepo.Update(ctx, next)
	if err != nil {
		return match.Match{}, fmt.Errorf("update match=%d: %w", id, err)
	}

	if updated.Status != current.Status {
		s.logger.InfoContext(ctx, "match status changed",
			"match_id", id,
			"from", string(current.Status),
			"to", string(updated.Status),
		)
		s.notifier.MatchNotification(ctx, id, realtime.Notification{
			Type:    realtime.NotificationStatusChanged,
			Message: fmt.Sprintf("Match status changed to %s", updated.Status),
			Data: map[string]any{
				"matchId":        id,
				"status":         string(updated.Status),
				"previousStatus": string(current.Status),
			},
			Timestamp: updated.UpdatedAt,
		})
	}
	return updated, nil
}

// DeleteMatch removes a match that has not been played, together with its
// events and statistics.
func (s *MatchService) DeleteMatch(ctx context.Context, id int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.DeleteMatch", matchAttr(id))
	defer span.End()

	if id <= 0 {
		return fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	unlock, err := lockMatch(ctx, s.locks, id)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == match.StatusInProgress || m.Status == match.StatusFinished {
		return fmt.Errorf("%w: cannot delete matches that have started or finished", ErrInvalidInput)
	}

	var removedEvents, removedStats int
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if removedEvents, err = s.eventRepo.DeleteByMatch(ctx, id); err != nil {
			return fmt.Errorf("delete match events: %w", err)
		}
		if removedStats, err = s.statsRepo.DeleteByMatch(ctx, id); err != nil {
			return fmt.Errorf("delete match statistics: %w", err)
		}
		if err := s.matchRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete match=%d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "match deleted",
		"match_id", id,
		"events_removed", removedEvents,
		"statistics_removed", removedStats,
	)
	s.notifier.MatchDataRemoved(ctx, id)
	return nil
}

// RecalculateScore replays the goal events of a match and stores the result.
func (s *MatchService) RecalculateScore(ctx context.Context, id int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RecalculateScore", matchAttr(id))
	defer span.End()

	if id <= 0 {
		return match.Match{}, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	unlock, err := lockMatch(ctx, s.locks, id)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	var out match.Match
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.ReplayScore(ctx, id)
		return err
	})
	if err != nil {
		return match.Match{}, err
	}

	s.notifier.MatchNotification(ctx, id, realtime.Notification{
		Type:    realtime.NotificationScoreUpdated,
		Message: fmt.Sprintf("Score recalculated %d - %d", out.HomeScore, out.AwayScore),
		Data: map[string]any{
			"matchId":   id,
			"homeScore": out.HomeScore,
			"awayScore": out.AwayScore,
		},
		Timestamp: s.now().UTC(),
	})
	return out, nil
}

// ReplayScore recomputes the score from every score-affecting event and
// persists it. It does not take the match lock; callers serialize.
// Events are authoritative: a manually entered result on a finished match is
// replaced and the replaced score is logged.
func (s *MatchService) ReplayScore(ctx context.Context, matchID int64) (match.Match, error) {
	m, err := s.GetMatchByID(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	events, err := s.eventRepo.List(ctx, matchevent.Filter{
		MatchID: matchID,
		Types:   matchevent.ScoreAffectingTypes,
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("list score events match=%d: %w", matchID, err)
	}

	score := ScoreFromEvents(m, events)
	if m.Status == match.StatusFinished && (score.Home != m.HomeScore || score.Away != m.AwayScore) {
		s.logger.WarnContext(ctx, "event replay replaced finished match result",
			"match_id", matchID,
			"stored_home", m.HomeScore,
			"stored_away", m.AwayScore,
			"replayed_home", score.Home,
			"replayed_away", score.Away,
		)
	}
	if err := s.matchRepo.UpdateScore(ctx, matchID, score); err != nil {
		return match.Match{}, fmt.Errorf("update score match=%d: %w", matchID, err)
	}
	m.HomeScore = score.Home
	m.AwayScore = score.Away
	return m, nil
}

// ScoreFromEvents credits goals to the scoring team and own goals to the
// opponent. Events of teams outside the match are ignored.
func ScoreFromEvents(m match.Match, events []matchevent.Event) match.Score {
	var score match.Score
	for _, e := range events {
		homeSide := e.TeamID == m.HomeTeamID
		if !homeSide && e.TeamID != m.AwayTeamID {
			continue
		}
		switch e.Type {
		case matchevent.TypeGoal, matchevent.TypePenaltyGoal:
		case matchevent.TypeOwnGoal:
			homeSide = !homeSide
		default:
			continue
		}
		if homeSide {
			score.Home++
		} else {
			score.Away++
		}
	}
	return score
}

func (s *MatchService) SetAttendingPlayers(ctx context.Context, id int64, players match.AttendingPlayers) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SetAttendingPlayers", matchAttr(id))
	defer span.End()

	if err := players.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.mutate(ctx, id, func(m *match.Match) error {
		for _, teamID := range players.TeamIDs() {
			if !m.HasTeam(teamID) {
				return fmt.Errorf("%w: team %d is not part of this match", ErrInvalidInput, teamID)
			}
		}
		m.AttendingPlayers = players.Clone()
		return nil
	})
}

func (s *MatchService) AddPlayerToMatch(ctx context.Context, id, teamID, playerID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.AddPlayerToMatch", matchAttr(id))
	defer span.End()

	if err := validateRosterIDs(teamID, playerID); err != nil {
		return match.Match{}, err
	}
	return s.mutate(ctx, id, func(m *match.Match) error {
		if !m.HasTeam(teamID) {
			return fmt.Errorf("%w: team %d is not part of this match", ErrInvalidInput, teamID)
		}
		if m.AttendingPlayers == nil {
			m.AttendingPlayers = match.AttendingPlayers{}
		}
		m.AttendingPlayers.Add(teamID, playerID)
		return nil
	})
}

func (s *MatchService) RemovePlayerFromMatch(ctx context.Context, id, teamID, playerID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RemovePlayerFromMatch", matchAttr(id))
	defer span.End()

	if err := validateRosterIDs(teamID, playerID); err != nil {
		return match.Match{}, err
	}
	return s.mutate(ctx, id, func(m *match.Match) error {
		m.AttendingPlayers.Remove(teamID, playerID)
		return nil
	})
}

func (s *MatchService) GetAttendingPlayers(ctx context.Context, id int64) (match.AttendingPlayers, error) {
	m, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.AttendingPlayers == nil {
		return match.AttendingPlayers{}, nil
	}
	return m.AttendingPlayers, nil
}

func validateRosterIDs(teamID, playerID int64) error {
	if teamID <= 0 {
		return fmt.Errorf("%w: valid team id is required", ErrInvalidInput)
	}
	if playerID <= 0 {
		return fmt.Errorf("%w: valid player id is required", ErrInvalidInput)
	}
	return nil
}

// GenerateFixture creates a batch of matches for a configured tournament,
// either from the supplied fixtures or as a single round robin.
func (s *MatchService) GenerateFixture(ctx context.Context, tournamentID int64, input GenerateFixtureInput) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GenerateFixture", tournamentAttr(tournamentID))
	defer span.End()

	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: valid tournament id is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	if input.StartDate.Before(now) {
		return nil, fmt.Errorf("%w: start date cannot be in the past", ErrInvalidInput)
	}
	if input.MatchesPerDay < 0 || input.MatchIntervalDays < 0 {
		return nil, fmt.Errorf("%w: matches per day and interval days cannot be negative", ErrInvalidInput)
	}

	cfg, ok, err := s.tournamentRepo.GetConfiguration(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("get tournament configuration: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: tournament configuration not found", ErrInvalidInput)
	}
	if !cfg.IsConfigured {
		return nil, fmt.Errorf("%w: tournament must be configured before generating fixture", ErrInvalidInput)
	}

	round := strings.TrimSpace(input.Round)
	if round == "" {
		round = defaultFixtureRound
	}

	var planned []match.Match
	if len(input.Fixtures) > 0 {
		planned, err = plannedFixtures(tournamentID, round, input.Fixtures)
	} else {
		planned, err = s.roundRobin(ctx, tournamentID, round, input)
	}
	if err != nil {
		return nil, err
	}

	var created []match.Match
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		last, err := s.matchRepo.LastMatchNumber(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("get last match number: %w", err)
		}
		for i := range planned {
			planned[i].MatchNumber = last + 1 + i
			planned[i].CreatedAt = now
			planned[i].UpdatedAt = now
		}
		created, err = s.matchRepo.CreateBatch(ctx, planned)
		if err != nil {
			return fmt.Errorf("create fixture matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixture generated",
		"tournament_id", tournamentID,
		"predefined", len(input.Fixtures) > 0,
		"matches", len(created),
	)
	return created, nil
}

func (s *MatchService) roundRobin(ctx context.Context, tournamentID int64, round string, input GenerateFixtureInput) ([]match.Match, error) {
	teamIDs, err := s.tournamentRepo.ListTeamIDs(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament teams: %w", err)
	}
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: tournament must have at least 2 teams to generate fixture", ErrInvalidInput)
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = defaultFixtureLocation
	}
	interval := input.MatchIntervalDays
	if interval == 0 {
		interval = 1
	}

	out := make([]match.Match, 0, len(teamIDs)*(len(teamIDs)-1)/2)
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			date := input.StartDate.UTC()
			if input.MatchesPerDay > 0 {
				date = date.AddDate(0, 0, len(out)/input.MatchesPerDay*interval)
			}
			out = append(out, match.Match{
				TournamentID: tournamentID,
				GroupID:      input.GroupID,
				HomeTeamID:   teamIDs[i],
				AwayTeamID:   teamIDs[j],
				MatchDate:    date,
				Location:     location,
				Round:        round,
				Status:       match.StatusScheduled,
			})
		}
	}
	return out, nil
}

func plannedFixtures(tournamentID int64, round string, fixtures []PredefinedFixture) ([]match.Match, error) {
	out := make([]match.Match, 0, len(fixtures))
	for i, f := range fixtures {
		date, err := parseFixtureDateTime(f.Date, f.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: fixture %d: %v", ErrInvalidInput, i, err)
		}
		status := f.Status
		if status == "" {
			status = match.StatusScheduled
		}
		item := match.Match{
			TournamentID: tournamentID,
			GroupID:      f.GroupID,
			HomeTeamID:   f.HomeTeamID,
			AwayTeamID:   f.AwayTeamID,
			MatchDate:    date,
			Location:     strings.TrimSpace(f.Location),
			Round:        round,
			Status:       status,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: fixture %d: %v", ErrInvalidInput, i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

var errFixtureDate = errors.New("date must be YYYY-MM-DD and time HH:MM")

func parseFixtureDateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, date+"T"+clock, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errFixtureDate
}
