package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/tournament-api/internal/domain/matchstats"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

type countersRequest struct {
	MinutesPlayed  int `json:"minutesPlayed" validate:"gte=0,lte=150"`
	Goals          int `json:"goals" validate:"gte=0"`
	Assists        int `json:"assists" validate:"gte=0"`
	YellowCards    int `json:"yellowCards" validate:"gte=0,lte=2"`
	RedCards       int `json:"redCards" validate:"gte=0,lte=1"`
	ShotsOnTarget  int `json:"shotsOnTarget" validate:"gte=0"`
	ShotsOffTarget int `json:"shotsOffTarget" validate:"gte=0"`
	FoulsCommitted int `json:"foulsCommitted" validate:"gte=0"`
	FoulsReceived  int `json:"foulsReceived" validate:"gte=0"`
	Corners        int `json:"corners" validate:"gte=0"`
	Offsides       int `json:"offsides" validate:"gte=0"`
	Saves          int `json:"saves" validate:"gte=0"`
}

type createStatisticsRequest struct {
	MatchID  int64 `json:"matchId" validate:"required,gt=0"`
	PlayerID int64 `json:"playerId" validate:"required,gt=0"`
	TeamID   int64 `json:"teamId" validate:"required,gt=0"`
	countersRequest
}

// statisticsPatchRequest mirrors usecase.StatisticsPatch field for field.
type statisticsPatchRequest struct {
	MinutesPlayed  *int `json:"minutesPlayed" validate:"omitempty,gte=0,lte=150"`
	Goals          *int `json:"goals" validate:"omitempty,gte=0"`
	Assists        *int `json:"assists" validate:"omitempty,gte=0"`
	YellowCards    *int `json:"yellowCards" validate:"omitempty,gte=0,lte=2"`
	RedCards       *int `json:"redCards" validate:"omitempty,gte=0,lte=1"`
	ShotsOnTarget  *int `json:"shotsOnTarget" validate:"omitempty,gte=0"`
	ShotsOffTarget *int `json:"shotsOffTarget" validate:"omitempty,gte=0"`
	FoulsCommitted *int `json:"foulsCommitted" validate:"omitempty,gte=0"`
	FoulsReceived  *int `json:"foulsReceived" validate:"omitempty,gte=0"`
	Corners        *int `json:"corners" validate:"omitempty,gte=0"`
	Offsides       *int `json:"offsides" validate:"omitempty,gte=0"`
	Saves          *int `json:"saves" validate:"omitempty,gte=0"`
}

type initializeStatisticsRequest struct {
	PlayerIDs []int64 `json:"playerIds" validate:"required,min=1,dive,gt=0"`
}

func (h *Handler) CreateStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.CreateStatistics")
	defer span.End()

	var req createStatisticsRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.statisticsService.CreateStatistics(ctx, usecase.CreateStatisticsInput{
		MatchID:  req.MatchID,
		PlayerID: req.PlayerID,
		TeamID:   req.TeamID,
		Counters: matchstats.Counters(req.countersRequest),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create statistics failed", "match_id", req.MatchID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, statisticsToDTO(item))
}

// ListStatistics requires player_id or team_id; tournament_id is optional.
func (h *Handler) ListStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListStatistics")
	defer span.End()

	playerID, err := queryID(r, "player_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	teamID, err := queryID(r, "team_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID, err := queryID(r, "tournament_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var items []matchstats.Statistics
	switch {
	case playerID > 0:
		items, err = h.statisticsService.GetStatisticsByPlayer(ctx, playerID, tournamentID)
	case teamID > 0:
		items, err = h.statisticsService.GetStatisticsByTeam(ctx, teamID, tournamentID)
	default:
		err = fmt.Errorf("%w: player_id or team_id is required", usecase.ErrInvalidInput)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statisticsListToDTO(items))
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetStatistics")
	defer span.End()

	id, err := pathID(r, "statisticsID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.statisticsService.GetStatisticsByID(ctx, id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statisticsToDTO(item))
}

func (h *Handler) UpdateStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdateStatistics")
	defer span.End()

	id, err := pathID(r, "statisticsID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req statisticsPatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.statisticsService.UpdateStatistics(ctx, id, usecase.StatisticsPatch(req))
	if err != nil {
		h.logger.WarnContext(ctx, "update statistics failed", "statistics_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statisticsToDTO(item))
}

func (h *Handler) DeleteStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.DeleteStatistics")
	defer span.End()

	id, err := pathID(r, "statisticsID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.statisticsService.DeleteStatistics(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "delete statistics failed", "statistics_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (h *Handler) ListMatchStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListMatchStatistics")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items, err := h.statisticsService.GetStatisticsByMatch(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statisticsListToDTO(items))
}

func (h *Handler) InitializeMatchStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.InitializeMatchStatistics")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req initializeStatisticsRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.statisticsService.InitializeMatchStatistics(ctx, matchID, req.PlayerIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "initialize match statistics failed", "match_id", matchID, "players", len(req.PlayerIDs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, statisticsListToDTO(items))
}

func (h *Handler) UpdatePlayerStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdatePlayerStatistics")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req statisticsPatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.statisticsService.UpdatePlayerStatistics(ctx, matchID, playerID, usecase.StatisticsPatch(req))
	if err != nil {
		h.logger.WarnContext(ctx, "update player statistics failed", "match_id", matchID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statisticsToDTO(item))
}

func (h *Handler) GetPlayerSeasonSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetPlayerSeasonSummary")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID, err := queryID(r, "tournament_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.statisticsService.GetPlayerSeasonSummary(ctx, playerID, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonSummaryToDTO(summary))
}

func (h *Handler) GetTournamentStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetTournamentStatistics")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	stats, err := h.statisticsService.GetTournamentStatistics(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament statistics failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentStatisticsToDTO(stats))
}

func (h *Handler) GetTeamTournamentStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetTeamTournamentStats")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items, err := h.statisticsService.GetTeamTournamentStats(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamStatsToDTO(items))
}

func (h *Handler) GetPlayerTournamentStats(w http.ResponseWriter, r *http.Request) {
	h.playerLeaderboard(w, r, "httpapi.Handler.GetPlayerTournamentStats", h.statisticsService.GetPlayerTournamentStats)
}

func (h *Handler) GetTopScorers(w http.ResponseWriter, r *http.Request) {
	h.playerLeaderboard(w, r, "httpapi.Handler.GetTopScorers", h.statisticsService.GetTopScorers)
}

func (h *Handler) GetTopAssists(w http.ResponseWriter, r *http.Request) {
	h.playerLeaderboard(w, r, "httpapi.Handler.GetTopAssists", h.statisticsService.GetTopAssists)
}

// playerLeaderboard serves the ranked player tables. An absent limit lets the
// service pick its default.
func (h *Handler) playerLeaderboard(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	load func(ctx context.Context, tournamentID int64, limit int) ([]matchstats.PlayerTournamentStats, error),
) {
	ctx, span := startHandlerSpan(r, spanName)
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := load(ctx, tournamentID, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatsToDTO(items))
}
