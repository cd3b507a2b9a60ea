package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-api/internal/infrastructure/account/jwtauth"
	"github.com/riskibarqy/tournament-api/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeHTTPMetrics struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (m *fakeHTTPMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, recordedRequest{method: method, route: route, status: status})
}

func (m *fakeHTTPMetrics) last() recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[len(m.seen)-1]
}

type routerEnv struct {
	router  http.Handler
	token   string
	metrics *fakeHTTPMetrics
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	logger := logging.NewNop()
	tournaments := memory.NewTournamentRepository(memory.SeedTournaments(), memory.SeedConfigurations(), memory.SeedTournamentTeams())
	teams := memory.NewTeamRepository(memory.SeedTeams())
	players := memory.NewPlayerRepository(memory.SeedPlayers())
	matches := memory.NewMatchRepository(nil)
	events := memory.NewMatchEventRepository(matches)
	stats := memory.NewMatchStatisticsRepository(matches)
	tx := memory.NewTransactor()
	locks := &usecase.MatchLocks{}

	matchSvc := usecase.NewMatchService(matches, events, stats, tournaments, tx, locks, nil, logger)
	statsSvc := usecase.NewMatchStatisticsService(stats, matches, players, teams, tournaments, tx, logger)
	eventSvc := usecase.NewMatchEventService(events, matches, players, teams, statsSvc, matchSvc, tx, locks, nil, logger)
	configSvc := usecase.NewTournamentConfigurationService(tournaments, teams, tx, logger)

	verifier, err := jwtauth.NewVerifier(jwtauth.Config{Secret: "router-secret", Logger: logger})
	require.NoError(t, err)
	now := time.Now()
	token, err := verifier.Sign(jwtauth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "organizer-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	require.NoError(t, err)

	metrics := &fakeHTTPMetrics{}
	handler := NewHandler(matchSvc, eventSvc, statsSvc, configSvc, nil, logger)
	router := NewRouter(handler, verifier, logger, RouterConfig{Metrics: metrics})
	return &routerEnv{router: router, token: token, metrics: metrics}
}

func (e *routerEnv) do(t *testing.T, method, path string, body any, authorized bool) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return rec.Code, envelope
}

func dataObject(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %v", envelope)
	return data
}

func dataList(t *testing.T, envelope map[string]any) []any {
	t.Helper()
	data, ok := envelope["data"].([]any)
	require.True(t, ok, "expected data list, got %v", envelope)
	return data
}

func (e *routerEnv) createLiveMatch(t *testing.T) int64 {
	t.Helper()

	status, body := e.do(t, http.MethodPost, "/v1/matches", map[string]any{
		"tournamentId": memory.TournamentIDCityCup,
		"homeTeamId":   10,
		"awayTeamId":   20,
		"matchDate":    time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"location":     "Gelora Bung Karno",
	}, true)
	require.Equal(t, http.StatusCreated, status, "create match: %v", body)
	id := int64(dataObject(t, body)["id"].(float64))

	status, body = e.do(t, http.MethodPost, fmt.Sprintf("/v1/matches/%d/start", id), nil, true)
	require.Equal(t, http.StatusOK, status, "start match: %v", body)
	require.Equal(t, "in_progress", dataObject(t, body)["status"])
	return id
}

func TestRouter_WritesRequireBearerToken(t *testing.T) {
	env := newRouterEnv(t)

	status, body := env.do(t, http.MethodPost, "/v1/matches", map[string]any{"tournamentId": 1}, false)
	require.Equal(t, http.StatusUnauthorized, status)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "UNAUTHENTICATED", errObj["status"])
}

func TestRouter_GoalFlowsIntoScoreStatisticsAndTimeline(t *testing.T) {
	env := newRouterEnv(t)
	matchID := env.createLiveMatch(t)

	status, body := env.do(t, http.MethodPost, fmt.Sprintf("/v1/matches/%d/events", matchID), map[string]any{
		"teamId":         10,
		"playerId":       104,
		"eventType":      "goal",
		"minute":         23,
		"assistPlayerId": 103,
	}, true)
	require.Equal(t, http.StatusCreated, status, "add event: %v", body)
	event := dataObject(t, body)
	require.Equal(t, "GOAL", event["eventType"])

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d", matchID), nil, false)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, dataObject(t, body)["homeScore"])
	require.EqualValues(t, 0, dataObject(t, body)["awayScore"])

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d/statistics", matchID), nil, false)
	require.Equal(t, http.StatusOK, status)
	rows := dataList(t, body)
	require.Len(t, rows, 2)
	byPlayer := map[int64]map[string]any{}
	for _, raw := range rows {
		row := raw.(map[string]any)
		byPlayer[int64(row["playerId"].(float64))] = row
	}
	require.EqualValues(t, 1, byPlayer[104]["goals"])
	require.EqualValues(t, 1, byPlayer[103]["assists"])

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d/timeline", matchID), nil, false)
	require.Equal(t, http.StatusOK, status)
	timeline := dataList(t, body)
	require.Len(t, timeline, 1)
	entry := timeline[0].(map[string]any)
	require.Equal(t, "Gustavo Almeida", entry["playerName"])
	require.Equal(t, "Persija Jakarta", entry["teamName"])

	eventID := int64(event["id"].(float64))
	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/v1/events/%d", eventID), nil, true)
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d", matchID), nil, false)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 0, dataObject(t, body)["homeScore"])
}

func TestRouter_ListMatchEventsFilters(t *testing.T) {
	env := newRouterEnv(t)
	matchID := env.createLiveMatch(t)

	for _, ev := range []map[string]any{
		{"teamId": 10, "playerId": 104, "eventType": "GOAL", "minute": 10},
		{"teamId": 20, "playerId": 202, "eventType": "YELLOW_CARD", "minute": 40},
		{"teamId": 20, "playerId": 204, "eventType": "GOAL", "minute": 75},
	} {
		status, body := env.do(t, http.MethodPost, fmt.Sprintf("/v1/matches/%d/events", matchID), ev, true)
		require.Equal(t, http.StatusCreated, status, "add event: %v", body)
	}

	status, body := env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d/events?event_type=goal", matchID), nil, false)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, dataList(t, body), 2)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d/events?start_minute=30&end_minute=80", matchID), nil, false)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, dataList(t, body), 2)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d/events?event_type=HANDBALL", matchID), nil, false)
	require.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/v1/events?team_id=20", nil, false)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, dataList(t, body), 2)

	status, _ = env.do(t, http.MethodGet, "/v1/events", nil, false)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_TournamentLeaderboards(t *testing.T) {
	env := newRouterEnv(t)
	matchID := env.createLiveMatch(t)

	for minute := 5; minute <= 15; minute += 5 {
		status, body := env.do(t, http.MethodPost, fmt.Sprintf("/v1/matches/%d/events", matchID), map[string]any{
			"teamId": 10, "playerId": 104, "eventType": "GOAL", "minute": minute,
		}, true)
		require.Equal(t, http.StatusCreated, status, "add event: %v", body)
	}

	path := fmt.Sprintf("/v1/tournaments/%d/statistics/top-scorers?limit=1", memory.TournamentIDCityCup)
	status, body := env.do(t, http.MethodGet, path, nil, false)
	require.Equal(t, http.StatusOK, status, "top scorers: %v", body)
	scorers := dataList(t, body)
	require.Len(t, scorers, 1)
	require.EqualValues(t, 104, scorers[0].(map[string]any)["playerId"])
	require.EqualValues(t, 3, scorers[0].(map[string]any)["goals"])

	status, _ = env.do(t, http.MethodGet, "/v1/tournaments/999/statistics", nil, false)
	require.Equal(t, http.StatusNotFound, status)
}

func TestRouter_DuplicateStatisticsConflict(t *testing.T) {
	env := newRouterEnv(t)
	matchID := env.createLiveMatch(t)

	payload := map[string]any{"matchId": matchID, "playerId": 104, "teamId": 10, "minutesPlayed": 90}
	status, body := env.do(t, http.MethodPost, "/v1/statistics", payload, true)
	require.Equal(t, http.StatusCreated, status, "create statistics: %v", body)

	status, body = env.do(t, http.MethodPost, "/v1/statistics", payload, true)
	require.Equal(t, http.StatusConflict, status, "duplicate statistics: %v", body)
}

func TestRouter_MetricsUseRoutePattern(t *testing.T) {
	env := newRouterEnv(t)

	status, _ := env.do(t, http.MethodGet, "/v1/matches/42", nil, false)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, recordedRequest{method: http.MethodGet, route: "GET /v1/matches/{matchID}", status: http.StatusNotFound}, env.metrics.last())

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	env.router.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "unmatched", env.metrics.last().route)
}

func TestRouter_LiveFeedDisabled(t *testing.T) {
	env := newRouterEnv(t)

	status, _ := env.do(t, http.MethodGet, "/v1/matches/1/live", nil, false)
	require.Equal(t, http.StatusServiceUnavailable, status)
}

func TestRouter_RejectsUnknownJSONFields(t *testing.T) {
	env := newRouterEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/statistics", strings.NewReader(`{"matchId":1,"playerId":2,"teamId":3,"rating":9}`))
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_TournamentConfigurationLifecycle(t *testing.T) {
	env := newRouterEnv(t)
	configPath := fmt.Sprintf("/v1/tournaments/%d/configuration", memory.TournamentIDYouthLeague)
	fixturesPath := fmt.Sprintf("/v1/tournaments/%d/fixtures", memory.TournamentIDYouthLeague)
	fixtureBody := map[string]any{"startDate": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)}

	status, body := env.do(t, http.MethodPost, fixturesPath, fixtureBody, true)
	require.Equal(t, http.StatusBadRequest, status, "fixture before configure: %v", body)

	status, _ = env.do(t, http.MethodPut, configPath, map[string]any{"numberOfGroups": 1, "teamsPerGroup": 3}, false)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = env.do(t, http.MethodPut, configPath, map[string]any{"numberOfGroups": 1, "teamsPerGroup": 1}, true)
	require.Equal(t, http.StatusBadRequest, status, "teams per group below 2: %v", body)

	status, body = env.do(t, http.MethodPut, configPath, map[string]any{
		"numberOfGroups": 1,
		"teamsPerGroup":  3,
		"teamIds":        []int64{20},
	}, true)
	require.Equal(t, http.StatusOK, status, "configure: %v", body)
	cfg := dataObject(t, body)
	require.Equal(t, true, cfg["isConfigured"])
	require.Equal(t, float64(3), cfg["teamsPerGroup"])

	status, body = env.do(t, http.MethodGet, configPath, nil, false)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), dataObject(t, body)["numberOfGroups"])

	status, body = env.do(t, http.MethodPost, fixturesPath, fixtureBody, true)
	require.Equal(t, http.StatusCreated, status, "fixture after configure: %v", body)
	require.Len(t, dataList(t, body), 3)

	status, body = env.do(t, http.MethodPatch, configPath, map[string]any{"isConfigured": false}, true)
	require.Equal(t, http.StatusOK, status, "update: %v", body)
	require.Equal(t, false, dataObject(t, body)["isConfigured"])

	status, _ = env.do(t, http.MethodDelete, configPath, nil, true)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, configPath, nil, false)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodDelete, configPath, nil, true)
	require.Equal(t, http.StatusNotFound, status)
}
