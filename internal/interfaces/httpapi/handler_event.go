package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/tournament-api/internal/domain/matchevent"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

type addEventRequest struct {
	TeamID         int64  `json:"teamId" validate:"required,gt=0"`
	PlayerID       int64  `json:"playerId" validate:"required,gt=0"`
	EventType      string `json:"eventType" validate:"required"`
	Minute         int    `json:"minute" validate:"gte=0,lte=120"`
	ExtraTime      *int   `json:"extraTime" validate:"omitempty,gte=0,lte=30"`
	AssistPlayerID *int64 `json:"assistPlayerId" validate:"omitempty,gt=0"`
	Description    string `json:"description" validate:"omitempty,max=500"`
}

type updateEventRequest struct {
	TeamID         *int64  `json:"teamId" validate:"omitempty,gt=0"`
	PlayerID       *int64  `json:"playerId" validate:"omitempty,gt=0"`
	EventType      *string `json:"eventType"`
	Minute         *int    `json:"minute" validate:"omitempty,gte=0,lte=120"`
	ExtraTime      *int    `json:"extraTime" validate:"omitempty,gte=0,lte=30"`
	ClearExtraTime bool    `json:"clearExtraTime"`
	AssistPlayerID *int64  `json:"assistPlayerId" validate:"omitempty,gt=0"`
	ClearAssist    bool    `json:"clearAssist"`
	Description    *string `json:"description" validate:"omitempty,max=500"`
}

func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.AddEvent")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req addEventRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	eventType, err := parseEventType(req.EventType)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.eventService.AddEvent(ctx, usecase.AddEventInput{
		MatchID:        matchID,
		TeamID:         req.TeamID,
		PlayerID:       req.PlayerID,
		Type:           eventType,
		Minute:         req.Minute,
		ExtraTime:      req.ExtraTime,
		AssistPlayerID: req.AssistPlayerID,
		Description:    req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add event failed", "match_id", matchID, "event_type", eventType, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "match event recorded", "event_id", item.ID, "match_id", matchID, "event_type", eventType, "actor", actorID(ctx))

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(item))
}

// ListMatchEvents filters by event_type, player_id and team_id, or by the
// start_minute/end_minute window when both are given.
func (h *Handler) ListMatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListMatchEvents")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	var items []matchevent.Event
	if query.Has("start_minute") || query.Has("end_minute") {
		start, err := queryInt(r, "start_minute", 0)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		end, err := queryInt(r, "end_minute", matchevent.MaxMinute)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		items, err = h.eventService.GetEventsInTimeRange(ctx, matchID, start, end)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
	} else {
		eq, err := parseEventQuery(r)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		items, err = h.eventService.GetEventsByMatch(ctx, matchID, eq)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTO(items))
}

func parseEventQuery(r *http.Request) (usecase.EventQuery, error) {
	var (
		q   usecase.EventQuery
		err error
	)
	if q.PlayerID, err = queryID(r, "player_id"); err != nil {
		return q, err
	}
	if q.TeamID, err = queryID(r, "team_id"); err != nil {
		return q, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("event_type")); raw != "" {
		if q.Type, err = parseEventType(raw); err != nil {
			return q, err
		}
	}
	return q, nil
}

func parseEventType(raw string) (matchevent.Type, error) {
	eventType, err := matchevent.ParseType(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return eventType, nil
}

func (h *Handler) GetMatchTimeline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetMatchTimeline")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items, err := h.eventService.GetMatchTimeline(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match timeline failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, timelineToDTO(items))
}

// ListEvents serves cross-match listings. One of player_id, team_id or
// event_type is required; tournament_id and match_id narrow the result.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListEvents")
	defer span.End()

	eq, err := parseEventQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID, err := queryID(r, "tournament_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID, err := queryID(r, "match_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var items []matchevent.Event
	switch {
	case eq.PlayerID > 0:
		items, err = h.eventService.GetEventsByPlayer(ctx, eq.PlayerID, tournamentID)
	case eq.TeamID > 0:
		items, err = h.eventService.GetEventsByTeam(ctx, eq.TeamID, tournamentID)
	case eq.Type != "":
		items, err = h.eventService.GetEventsByType(ctx, eq.Type, matchID)
	default:
		err = fmt.Errorf("%w: one of player_id, team_id or event_type is required", usecase.ErrInvalidInput)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventsToDTO(items))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetEvent")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.eventService.GetEventByID(ctx, eventID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(item))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdateEvent")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateEventRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateEventInput{
		TeamID:         req.TeamID,
		PlayerID:       req.PlayerID,
		Minute:         req.Minute,
		ExtraTime:      req.ExtraTime,
		ClearExtraTime: req.ClearExtraTime,
		AssistPlayerID: req.AssistPlayerID,
		ClearAssist:    req.ClearAssist,
		Description:    req.Description,
	}
	if req.EventType != nil {
		eventType, err := parseEventType(*req.EventType)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		input.Type = &eventType
	}

	item, err := h.eventService.UpdateEvent(ctx, eventID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(item))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.DeleteEvent")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.eventService.RemoveEvent(ctx, eventID); err != nil {
		h.logger.WarnContext(ctx, "remove event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "match event removed", "event_id", eventID, "actor", actorID(ctx))

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": eventID, "deleted": true})
}
