package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

// LiveFeed upgrades a request into a websocket subscription for one match.
type LiveFeed interface {
	ServeMatch(w http.ResponseWriter, r *http.Request, matchID int64) error
}

type Handler struct {
	matchService         *usecase.MatchService
	eventService         *usecase.MatchEventService
	statisticsService    *usecase.MatchStatisticsService
	configurationService *usecase.TournamentConfigurationService
	liveFeed             LiveFeed
	logger               *logging.Logger
	validator            *validator.Validate
}

// NewHandler wires the HTTP handlers. liveFeed may be nil, in which case the
// websocket route answers 503.
func NewHandler(
	matchService *usecase.MatchService,
	eventService *usecase.MatchEventService,
	statisticsService *usecase.MatchStatisticsService,
	configurationService *usecase.TournamentConfigurationService,
	liveFeed LiveFeed,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:         matchService,
		eventService:         eventService,
		statisticsService:    statisticsService,
		configurationService: configurationService,
		liveFeed:             liveFeed,
		logger:               logger,
		validator:            validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body into dst and runs the struct tags.
func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return h.validateRequest(ctx, dst)
}
