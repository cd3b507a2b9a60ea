package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/tournament-api/internal/usecase"
)

// LiveMatch subscribes a websocket to the match room. The match must exist
// before the upgrade; afterwards errors can only be logged.
func (h *Handler) LiveMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.LiveMatch")
	defer span.End()

	if h.liveFeed == nil {
		writeError(ctx, w, fmt.Errorf("%w: live feed is disabled", usecase.ErrDependencyUnavailable))
		return
	}
	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if _, err := h.matchService.GetMatchByID(ctx, matchID); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.liveFeed.ServeMatch(w, r, matchID); err != nil {
		// The upgrader has already answered the client.
		h.logger.WarnContext(ctx, "live feed upgrade failed", "match_id", matchID, "error", err)
	}
}
