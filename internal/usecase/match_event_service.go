package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/realtime"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

type statisticsUpserter interface {
	Upsert(ctx context.Context, matchID, playerID int64, delta matchstats.Counters) (matchstats.Statistics, error)
}

type scoreReplayer interface {
	ReplayScore(ctx context.Context, matchID int64) (match.Match, error)
}

type AddEventInput struct {
	MatchID        int64
	TeamID         int64
	PlayerID       int64
	Type           matchevent.Type
	Minute         int
	ExtraTime      *int
	AssistPlayerID *int64
	Description    string
}

// UpdateEventInput carries the fields to change; nil fields keep their value.
// ClearExtraTime and ClearAssist drop the optional values.
type UpdateEventInput struct {
	TeamID         *int64
	PlayerID       *int64
	Type           *matchevent.Type
	Minute         *int
	ExtraTime      *int
	ClearExtraTime bool
	AssistPlayerID *int64
	ClearAssist    bool
	Description    *string
}

func (in UpdateEventInput) merge(e matchevent.Event) matchevent.Event {
	if in.TeamID != nil {
		e.TeamID = *in.TeamID
	}
	if in.PlayerID != nil {
		e.PlayerID = *in.PlayerID
	}
	if in.Type != nil {
		e.Type = *in.Type
	}
	if in.Minute != nil {
		e.Minute = *in.Minute
	}
	if in.ClearExtraTime {
		e.ExtraTime = nil
	} else if in.ExtraTime != nil {
		v := *in.ExtraTime
		e.ExtraTime = &v
	}
	if in.ClearAssist {
		e.AssistPlayerID = nil
	} else if in.AssistPlayerID != nil {
		v := *in.AssistPlayerID
		e.AssistPlayerID = &v
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	return e
}

// EventQuery narrows match event listings. Zero values are ignored.
type EventQuery struct {
	PlayerID int64
	TeamID   int64
	Type     matchevent.Type
}

type MatchEventService struct {
	eventRepo  matchevent.Repository
	matchRepo  match.Repository
	playerRepo player.Repository
	teamRepo   team.Repository
	stats      statisticsUpserter
	scores     scoreReplayer
	tx         Transactor
	locks      *MatchLocks
	notifier   realtime.Notifier
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchEventService(
	eventRepo matchevent.Repository,
	matchRepo match.Repository,
	playerRepo player.Repository,
	teamRepo team.Repository,
	stats statisticsUpserter,
	scores scoreReplayer,
	tx Transactor,
	locks *MatchLocks,
	notifier realtime.Notifier,
	logger *logging.Logger,
) *MatchEventService {
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

	return &MatchEventService{
		eventRepo:  eventRepo,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		stats:      stats,
		scores:     scores,
		tx:         tx,
		locks:      locks,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// AddEvent records an event whatever the match status, then applies its
// statistics effect and replays the score when needed. The enriched event is
// mirrored after commit.
func (s *MatchEventService) AddEvent(ctx context.Context, input AddEventInput) (matchevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchEventService.AddEvent", matchAttr(input.MatchID))
	defer span.End()

	now := s.now().UTC()
	item := matchevent.Event{
		MatchID:        input.MatchID,
		TeamID:         input.TeamID,
		PlayerID:       input.PlayerID,
		Type:           input.Type,
		Minute:         input.Minute,
		ExtraTime:      input.ExtraTime,
		AssistPlayerID: input.AssistPlayerID,
		Description:    strings.TrimSpace(input.Description),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := item.Validate(); err != nil {
		return matchevent.Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	unlock, err := lockMatch(ctx, s.locks, item.MatchID)
	if err != nil {
		return matchevent.Event{}, err
	}
	defer unlock()

	m, err := s.getMatch(ctx, item.MatchID)
	if err != nil {
		return matchevent.Event{}, err
	}
	if err := validateEventTeam(m, item); err != nil {
		return matchevent.Event{}, err
	}

	var created matchevent.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.eventRepo.Create(ctx, item)
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := s.applyStatistics(ctx, created, 1); err != nil {
			return err
		}
		if created.Type.IsScoreAffecting() {
			if _, err := s.scores.ReplayScore(ctx, created.MatchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return matchevent.Event{}, err
	}

	s.logger.InfoContext(ctx, "match event added",
		"event_id", created.ID,
		"match_id", created.MatchID,
		"event_type", string(created.Type),
	)
	s.mirror(ctx, created)
	return created, nil
}

// UpdateEvent reverses the stored effect, persists the merged event and
// applies the new effect. Finished matches are read-only.
func (s *MatchEventService) UpdateEvent(ctx context.Context, id int64, input UpdateEventInput) (matchevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchEventService.UpdateEvent")
	defer span.End()

	existing, err := s.GetEventByID(ctx, id)
	if err != nil {
		return matchevent.Event{}, err
	}

	unlock, err := lockMatch(ctx, s.locks, existing.MatchID)
	if err != nil {
		return matchevent.Event{}, err
	}
	defer unlock()

	// Re-read under the lock so the reversal uses the latest stored state.
	existing, err = s.GetEventByID(ctx, id)
	if err != nil {
		return matchevent.Event{}, err
	}
	m, err := s.getMatch(ctx, existing.MatchID)
	if err != nil {
		return matchevent.Event{}, err
	}
	if m.Status == match.StatusFinished {
		return matchevent.Event{}, fmt.Errorf("%w: cannot modify events of finished matches", ErrInvalidInput)
	}

	merged := input.merge(existing)
	merged.UpdatedAt = s.now().UTC()
	if err := merged.Validate(); err != nil {
		return matchevent.Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateEventTeam(m, merged); err != nil {
		return matchevent.Event{}, err
	}

	var updated matchevent.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyStatistics(ctx, existing, -1); err != nil {
			return err
		}
		var err error
		updated, err = s.eventRepo.Update(ctx, merged)
		if err != nil {
			return fmt.Errorf("update event=%d: %w", id, err)
		}
		if err := s.applyStatistics(ctx, updated, 1); err != nil {
			return err
		}
		if existing.Type.IsScoreAffecting() || updated.Type.IsScoreAffecting() {
			if _, err := s.scores.ReplayScore(ctx, updated.MatchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return matchevent.Event{}, err
	}

	s.logger.InfoContext(ctx, "match event updated",
		"event_id", updated.ID,
		"match_id", updated.MatchID,
		"event_type", string(updated.Type),
	)
	s.mirror(ctx, updated)
	return updated, nil
}

// RemoveEvent reverses the event's effect and deletes it. Finished matches
// are read-only.
func (s *MatchEventService) RemoveEvent(ctx context.Context, id int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchEventService.RemoveEvent")
	defer span.End()

	existing, err := s.GetEventByID(ctx, id)
	if err != nil {
		return err
	}

	unlock, err := lockMatch(ctx, s.locks, existing.MatchID)
	if err != nil {
		return err
	}
	defer unlock()

	existing, err = s.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	m, err := s.getMatch(ctx, existing.MatchID)
	if err != nil {
		return err
	}
	if m.Status == match.StatusFinished {
		return fmt.Errorf("%w: cannot modify events of finished matches", ErrInvalidInput)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyStatistics(ctx, existing, -1); err != nil {
			return err
		}
		if err := s.eventRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete event=%d: %w", id, err)
		}
		if existing.Type.IsScoreAffecting() {
			if _, err := s.scores.ReplayScore(ctx, existing.MatchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "match event removed",
		"event_id", id,
		"match_id", existing.MatchID,
		"event_type", string(existing.Type),
	)
	s.notifier.MatchEventRemoved(ctx, existing.MatchID, id)
	return nil
}

func (s *MatchEventService) applyStatistics(ctx context.Context, e matchevent.Event, multiplier int) error {
	for _, d := range matchstats.DeltasForEvent(e, multiplier) {
		if _, err := s.stats.Upsert(ctx, e.MatchID, d.PlayerID, d.Delta); err != nil {
			return fmt.Errorf("apply statistics event=%d player=%d: %w", e.ID, d.PlayerID, err)
		}
	}
	return nil
}

// mirror hands the enriched event to the notifier. Lookup failures only cost
// display names.
func (s *MatchEventService) mirror(ctx context.Context, e matchevent.Event) {
	enriched, err := s.enrich(ctx, e)
	if err != nil {
		s.logger.WarnContext(ctx, "enrich mirrored event failed",
			"event_id", e.ID,
			"match_id", e.MatchID,
			"error", err,
		)
	}
	s.notifier.MatchEventSynced(ctx, enriched)
}

func (s *MatchEventService) enrich(ctx context.Context, e matchevent.Event) (matchevent.Enriched, error) {
	out := matchevent.Enriched{Event: e}

	ids := []int64{e.PlayerID}
	if e.AssistPlayerID != nil {
		ids = append(ids, *e.AssistPlayerID)
	}
	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("list players: %w", err)
	}
	for _, p := range players {
		if p.ID == e.PlayerID {
			out.PlayerName = p.FullName()
		}
		if e.AssistPlayerID != nil && p.ID == *e.AssistPlayerID {
			out.AssistPlayerName = p.FullName()
		}
	}

	t, ok, err := s.teamRepo.GetByID(ctx, e.TeamID)
	if err != nil {
		return out, fmt.Errorf("get team=%d: %w", e.TeamID, err)
	}
	if ok {
		out.TeamName = t.Name
	}
	return out, nil
}

func (s *MatchEventService) GetEventByID(ctx context.Context, id int64) (matchevent.Event, error) {
	if id <= 0 {
		return matchevent.Event{}, fmt.Errorf("%w: valid event id is required", ErrInvalidInput)
	}
	e, ok, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return matchevent.Event{}, fmt.Errorf("get event=%d: %w", id, err)
	}
	if !ok {
		return matchevent.Event{}, fmt.Errorf("%w: event=%d", ErrNotFound, id)
	}
	return e, nil
}

func (s *MatchEventService) GetEventsByMatch(ctx context.Context, matchID int64, query EventQuery) ([]matchevent.Event, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	filter := matchevent.Filter{MatchID: matchID, PlayerID: query.PlayerID, TeamID: query.TeamID}
	if query.Type != "" {
		filter.Types = []matchevent.Type{query.Type}
	}
	return s.list(ctx, filter)
}

// GetEventsByPlayer lists a player's events; tournamentID zero spans all tournaments.
func (s *MatchEventService) GetEventsByPlayer(ctx context.Context, playerID, tournamentID int64) ([]matchevent.Event, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("%w: valid player id is required", ErrInvalidInput)
	}
	return s.list(ctx, matchevent.Filter{PlayerID: playerID, TournamentID: tournamentID})
}

func (s *MatchEventService) GetEventsByTeam(ctx context.Context, teamID, tournamentID int64) ([]matchevent.Event, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: valid team id is required", ErrInvalidInput)
	}
	return s.list(ctx, matchevent.Filter{TeamID: teamID, TournamentID: tournamentID})
}

// GetEventsByType lists events of one type, optionally inside one match.
func (s *MatchEventService) GetEventsByType(ctx context.Context, eventType matchevent.Type, matchID int64) ([]matchevent.Event, error) {
	if _, err := matchevent.ParseType(string(eventType)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if matchID < 0 {
		return nil, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	return s.list(ctx, matchevent.Filter{MatchID: matchID, Types: []matchevent.Type{eventType}})
}

// GetEventsInTimeRange lists events whose minute falls in [start, end].
func (s *MatchEventService) GetEventsInTimeRange(ctx context.Context, matchID int64, start, end int) ([]matchevent.Event, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("%w: minutes must be non-negative", ErrInvalidInput)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start minute must be before end minute", ErrInvalidInput)
	}
	return s.list(ctx, matchevent.Filter{MatchID: matchID, MinMinute: &start, MaxMinute: &end})
}

// GetMatchTimeline returns the enriched events of a match in play order.
func (s *MatchEventService) GetMatchTimeline(ctx context.Context, matchID int64) ([]matchevent.Enriched, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchEventService.GetMatchTimeline", matchAttr(matchID))
	defer span.End()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	events, err := s.list(ctx, matchevent.Filter{MatchID: m.ID})
	if err != nil {
		return nil, err
	}

	playerIDs := make([]int64, 0, len(events))
	for _, e := range events {
		playerIDs = append(playerIDs, e.PlayerID)
		if e.AssistPlayerID != nil {
			playerIDs = append(playerIDs, *e.AssistPlayerID)
		}
	}
	players, err := s.playerRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	teams, err := s.teamRepo.ListByIDs(ctx, []int64{m.HomeTeamID, m.AwayTeamID})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	playerNames := make(map[int64]string, len(players))
	for _, p := range players {
		playerNames[p.ID] = p.FullName()
	}
	teamNames := make(map[int64]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}

	out := make([]matchevent.Enriched, 0, len(events))
	for _, e := range events {
		item := matchevent.Enriched{
			Event:      e,
			PlayerName: playerNames[e.PlayerID],
			TeamName:   teamNames[e.TeamID],
		}
		if e.AssistPlayerID != nil {
			item.AssistPlayerName = playerNames[*e.AssistPlayerID]
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MatchEventService) list(ctx context.Context, filter matchevent.Filter) ([]matchevent.Event, error) {
	items, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return items, nil
}

func (s *MatchEventService) getMatch(ctx context.Context, matchID int64) (match.Match, error) {
	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: valid match id is required", ErrInvalidInput)
	}
	m, ok, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match=%d: %w", matchID, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	return m, nil
}

func validateEventTeam(m match.Match, e matchevent.Event) error {
	if !m.HasTeam(e.TeamID) {
		return fmt.Errorf("%w: team %d is not part of match %d", ErrInvalidInput, e.TeamID, m.ID)
	}
	return nil
}
