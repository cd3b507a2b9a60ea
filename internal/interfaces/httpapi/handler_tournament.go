package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

type configureTournamentRequest struct {
	NumberOfGroups int     `json:"numberOfGroups" validate:"required,gt=0,lte=26"`
	TeamsPerGroup  int     `json:"teamsPerGroup" validate:"required,gte=2"`
	TeamIDs        []int64 `json:"teamIds" validate:"omitempty,dive,gt=0"`
}

type updateConfigurationRequest struct {
	NumberOfGroups *int  `json:"numberOfGroups" validate:"omitempty,gt=0,lte=26"`
	TeamsPerGroup  *int  `json:"teamsPerGroup" validate:"omitempty,gte=2"`
	IsConfigured   *bool `json:"isConfigured"`
}

type tournamentConfigurationDTO struct {
	TournamentID   int64 `json:"tournamentId"`
	NumberOfGroups int   `json:"numberOfGroups"`
	TeamsPerGroup  int   `json:"teamsPerGroup"`
	IsConfigured   bool  `json:"isConfigured"`
}

func configurationToDTO(cfg tournament.Configuration) tournamentConfigurationDTO {
	return tournamentConfigurationDTO{
		TournamentID:   cfg.TournamentID,
		NumberOfGroups: cfg.NumberOfGroups,
		TeamsPerGroup:  cfg.TeamsPerGroup,
		IsConfigured:   cfg.IsConfigured,
	}
}

func (h *Handler) ConfigureTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ConfigureTournament")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req configureTournamentRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	cfg, err := h.configurationService.Configure(ctx, tournamentID, usecase.ConfigureTournamentInput{
		NumberOfGroups: req.NumberOfGroups,
		TeamsPerGroup:  req.TeamsPerGroup,
		TeamIDs:        req.TeamIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "configure tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "tournament configuration saved", "tournament_id", tournamentID, "actor", actorID(ctx))

	writeSuccess(ctx, w, http.StatusOK, configurationToDTO(cfg))
}

func (h *Handler) GetTournamentConfiguration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetTournamentConfiguration")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	cfg, err := h.configurationService.GetConfiguration(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, configurationToDTO(cfg))
}

func (h *Handler) UpdateTournamentConfiguration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdateTournamentConfiguration")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateConfigurationRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	cfg, err := h.configurationService.UpdateConfiguration(ctx, tournamentID, usecase.UpdateConfigurationInput{
		NumberOfGroups: req.NumberOfGroups,
		TeamsPerGroup:  req.TeamsPerGroup,
		IsConfigured:   req.IsConfigured,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update tournament configuration failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, configurationToDTO(cfg))
}

func (h *Handler) DeleteTournamentConfiguration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.DeleteTournamentConfiguration")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.configurationService.DeleteConfiguration(ctx, tournamentID); err != nil {
		h.logger.WarnContext(ctx, "delete tournament configuration failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "tournament configuration removed", "tournament_id", tournamentID, "actor", actorID(ctx))

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"tournamentId": tournamentID, "deleted": true})
}
