package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/match"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

type createMatchRequest struct {
	TournamentID int64  `json:"tournamentId" validate:"required,gt=0"`
	GroupID      *int64 `json:"groupId" validate:"omitempty,gt=0"`
	HomeTeamID   int64  `json:"homeTeamId" validate:"required,gt=0"`
	AwayTeamID   int64  `json:"awayTeamId" validate:"required,gt=0,nefield=HomeTeamID"`
	MatchDate    string `json:"matchDate" validate:"required"`
	Location     string `json:"location" validate:"omitempty,max=255"`
	Round        string `json:"round" validate:"omitempty,max=100"`
	MatchNumber  int    `json:"matchNumber" validate:"gte=0"`
}

type updateMatchRequest struct {
	GroupID   *int64  `json:"groupId" validate:"omitempty,gt=0"`
	MatchDate *string `json:"matchDate"`
	Location  *string `json:"location" validate:"omitempty,max=255"`
	Round     *string `json:"round" validate:"omitempty,max=100"`
	Status    *string `json:"status"`
}

type matchResultRequest struct {
	HomeScore *int `json:"homeScore" validate:"required,gte=0"`
	AwayScore *int `json:"awayScore" validate:"required,gte=0"`
}

type attendingPlayerRequest struct {
	TeamID   int64 `json:"teamId" validate:"required,gt=0"`
	PlayerID int64 `json:"playerId" validate:"required,gt=0"`
}

type setAttendingPlayersRequest struct {
	// Keys are team ids; JSON objects only carry string keys.
	Players map[string][]int64 `json:"players" validate:"required"`
}

type predefinedFixtureRequest struct {
	HomeTeamID int64  `json:"homeTeamId" validate:"required,gt=0"`
	AwayTeamID int64  `json:"awayTeamId" validate:"required,gt=0,nefield=HomeTeamID"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time"`
	Location   string `json:"location" validate:"omitempty,max=255"`
	GroupID    *int64 `json:"groupId" validate:"omitempty,gt=0"`
	Status     string `json:"status"`
}

type generateFixtureRequest struct {
	GroupID           *int64                     `json:"groupId" validate:"omitempty,gt=0"`
	StartDate         string                     `json:"startDate"`
	Location          string                     `json:"location" validate:"omitempty,max=255"`
	Round             string                     `json:"round" validate:"omitempty,max=100"`
	MatchesPerDay     int                        `json:"matchesPerDay" validate:"gte=0"`
	MatchIntervalDays int                        `json:"matchIntervalDays" validate:"gte=0"`
	Fixtures          []predefinedFixtureRequest `json:"fixtures" validate:"omitempty,dive"`
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.CreateMatch")
	defer span.End()

	var req createMatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	matchDate, err := parseTimestamp("matchDate", req.MatchDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.CreateMatch(ctx, usecase.CreateMatchInput{
		TournamentID: req.TournamentID,
		GroupID:      req.GroupID,
		HomeTeamID:   req.HomeTeamID,
		AwayTeamID:   req.AwayTeamID,
		MatchDate:    matchDate,
		Location:     req.Location,
		Round:        req.Round,
		MatchNumber:  req.MatchNumber,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "tournament_id", req.TournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

// ListMatches picks one listing by the most specific query parameter:
// upcoming, date range, status, team, group, then tournament.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListMatches")
	defer span.End()

	query, err := parseMatchListQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var items []match.Match
	switch {
	case query.upcoming:
		items, err = h.matchService.GetUpcomingMatches(ctx, query.teamID, query.limit)
	case !query.from.IsZero() || !query.to.IsZero():
		items, err = h.matchService.GetMatchesByDateRange(ctx, query.from, query.to, query.tournamentID)
	case query.status != "":
		items, err = h.matchService.GetMatchesByStatus(ctx, query.status, query.tournamentID)
	case query.teamID > 0:
		items, err = h.matchService.GetMatchesByTeam(ctx, query.teamID, query.tournamentID)
	case query.groupID > 0:
		items, err = h.matchService.GetMatchesByGroup(ctx, query.groupID)
	case query.tournamentID > 0:
		items, err = h.matchService.GetMatchesByTournament(ctx, query.tournamentID)
	default:
		err = fmt.Errorf("%w: one of tournament_id, group_id, team_id, status, from/to or upcoming is required", usecase.ErrInvalidInput)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "query", r.URL.RawQuery, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

type matchListQuery struct {
	tournamentID int64
	groupID      int64
	teamID       int64
	status       match.Status
	upcoming     bool
	limit        int
	from         time.Time
	to           time.Time
}

func parseMatchListQuery(r *http.Request) (matchListQuery, error) {
	var (
		q   matchListQuery
		err error
	)
	if q.tournamentID, err = queryID(r, "tournament_id"); err != nil {
		return q, err
	}
	if q.groupID, err = queryID(r, "group_id"); err != nil {
		return q, err
	}
	if q.teamID, err = queryID(r, "team_id"); err != nil {
		return q, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		if q.status, err = match.ParseStatus(raw); err != nil {
			return q, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
		}
	}
	if q.upcoming, err = queryBool(r, "upcoming"); err != nil {
		return q, err
	}
	if q.limit, err = queryInt(r, "limit", 0); err != nil {
		return q, err
	}
	if q.from, err = queryTime(r, "from"); err != nil {
		return q, err
	}
	if q.to, err = queryTime(r, "to"); err != nil {
		return q, err
	}
	return q, nil
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.matchService.GetMatchByID(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdateMatch")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateMatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateMatchInput{
		GroupID:  req.GroupID,
		Location: req.Location,
		Round:    req.Round,
	}
	if req.MatchDate != nil {
		matchDate, err := parseTimestamp("matchDate", *req.MatchDate)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		input.MatchDate = &matchDate
	}
	if req.Status != nil {
		status, err := match.ParseStatus(*req.Status)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.Status = &status
	}

	item, err := h.matchService.UpdateMatch(ctx, matchID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.DeleteMatch")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.matchService.DeleteMatch(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "match deleted", "match_id", matchID, "actor", actorID(ctx))

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": matchID, "deleted": true})
}

func (h *Handler) UpdateMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdateMatchResult")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req matchResultRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.UpdateMatchResult(ctx, matchID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		h.logger.WarnContext(ctx, "update match result failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, "httpapi.Handler.StartMatch", h.matchService.StartMatch)
}

func (h *Handler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, "httpapi.Handler.FinishMatch", h.matchService.FinishMatch)
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, "httpapi.Handler.CancelMatch", h.matchService.CancelMatch)
}

func (h *Handler) RecalculateScore(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, "httpapi.Handler.RecalculateScore", h.matchService.RecalculateScore)
}

func (h *Handler) matchAction(w http.ResponseWriter, r *http.Request, spanName string, action func(ctx context.Context, id int64) (match.Match, error)) {
	ctx, span := startHandlerSpan(r, spanName)
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := action(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match action failed", "action", spanName, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "match action applied", "action", spanName, "match_id", matchID, "status", item.Status, "actor", actorID(ctx))

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) GetAttendingPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetAttendingPlayers")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	players, err := h.matchService.GetAttendingPlayers(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, attendingPlayersToDTO(players))
}

func (h *Handler) AddAttendingPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.AddAttendingPlayer")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req attendingPlayerRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.AddPlayerToMatch(ctx, matchID, req.TeamID, req.PlayerID)
	if err != nil {
		h.logger.WarnContext(ctx, "add attending player failed", "match_id", matchID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) SetAttendingPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.SetAttendingPlayers")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req setAttendingPlayersRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	players, err := attendingPlayersFromRequest(req.Players)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.SetAttendingPlayers(ctx, matchID, players)
	if err != nil {
		h.logger.WarnContext(ctx, "set attending players failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func attendingPlayersFromRequest(raw map[string][]int64) (match.AttendingPlayers, error) {
	out := make(match.AttendingPlayers, len(raw))
	for key, playerIDs := range raw {
		teamID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || teamID <= 0 {
			return nil, fmt.Errorf("%w: team id key %q must be a positive integer", usecase.ErrInvalidInput, key)
		}
		out[teamID] = append([]int64(nil), playerIDs...)
	}
	return out, nil
}

// RemoveAttendingPlayer takes team_id and player_id from the query string
// since DELETE bodies are often dropped by proxies.
func (h *Handler) RemoveAttendingPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.RemoveAttendingPlayer")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	teamID, err := queryID(r, "team_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playerID, err := queryID(r, "player_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.RemovePlayerFromMatch(ctx, matchID, teamID, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "remove attending player failed", "match_id", matchID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) GenerateFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GenerateFixture")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req generateFixtureRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.GenerateFixtureInput{
		GroupID:           req.GroupID,
		Location:          req.Location,
		Round:             req.Round,
		MatchesPerDay:     req.MatchesPerDay,
		MatchIntervalDays: req.MatchIntervalDays,
	}
	if strings.TrimSpace(req.StartDate) != "" {
		if input.StartDate, err = parseTimestamp("startDate", req.StartDate); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	for _, f := range req.Fixtures {
		fixture := usecase.PredefinedFixture{
			HomeTeamID: f.HomeTeamID,
			AwayTeamID: f.AwayTeamID,
			Date:       f.Date,
			Time:       f.Time,
			Location:   f.Location,
			GroupID:    f.GroupID,
		}
		if strings.TrimSpace(f.Status) != "" {
			status, err := match.ParseStatus(f.Status)
			if err != nil {
				writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
				return
			}
			fixture.Status = status
		}
		input.Fixtures = append(input.Fixtures, fixture)
	}

	items, err := h.matchService.GenerateFixture(ctx, tournamentID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "generate fixture failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchesToDTO(items))
}
