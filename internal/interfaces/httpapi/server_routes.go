package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func authorized(verifier TokenVerifier, fn http.HandlerFunc) http.Handler {
	return RequireAuth(verifier, fn)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/attending-players", handler.GetAttendingPlayers)
	mux.HandleFunc("GET /v1/matches/{matchID}/live", handler.LiveMatch)

	mux.Handle("POST /v1/matches", authorized(verifier, handler.CreateMatch))
	mux.Handle("PUT /v1/matches/{matchID}", authorized(verifier, handler.UpdateMatch))
	mux.Handle("DELETE /v1/matches/{matchID}", authorized(verifier, handler.DeleteMatch))
	mux.Handle("PUT /v1/matches/{matchID}/result", authorized(verifier, handler.UpdateMatchResult))
	mux.Handle("POST /v1/matches/{matchID}/start", authorized(verifier, handler.StartMatch))
	mux.Handle("POST /v1/matches/{matchID}/finish", authorized(verifier, handler.FinishMatch))
	mux.Handle("POST /v1/matches/{matchID}/cancel", authorized(verifier, handler.CancelMatch))
	mux.Handle("POST /v1/matches/{matchID}/recalculate-score", authorized(verifier, handler.RecalculateScore))
	mux.Handle("POST /v1/matches/{matchID}/attending-players", authorized(verifier, handler.AddAttendingPlayer))
	mux.Handle("PUT /v1/matches/{matchID}/attending-players", authorized(verifier, handler.SetAttendingPlayers))
	mux.Handle("DELETE /v1/matches/{matchID}/attending-players", authorized(verifier, handler.RemoveAttendingPlayer))
	mux.Handle("POST /v1/tournaments/{tournamentID}/fixtures", authorized(verifier, handler.GenerateFixture))
}

func registerEventRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("GET /v1/matches/{matchID}/events", handler.ListMatchEvents)
	mux.HandleFunc("GET /v1/matches/{matchID}/timeline", handler.GetMatchTimeline)
	mux.HandleFunc("GET /v1/events", handler.ListEvents)
	mux.HandleFunc("GET /v1/events/{eventID}", handler.GetEvent)

	mux.Handle("POST /v1/matches/{matchID}/events", authorized(verifier, handler.AddEvent))
	mux.Handle("PUT /v1/events/{eventID}", authorized(verifier, handler.UpdateEvent))
	mux.Handle("DELETE /v1/events/{eventID}", authorized(verifier, handler.DeleteEvent))
}

func registerStatisticsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("GET /v1/statistics", handler.ListStatistics)
	mux.HandleFunc("GET /v1/statistics/{statisticsID}", handler.GetStatistics)
	mux.HandleFunc("GET /v1/matches/{matchID}/statistics", handler.ListMatchStatistics)
	mux.HandleFunc("GET /v1/players/{playerID}/summary", handler.GetPlayerSeasonSummary)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/statistics", handler.GetTournamentStatistics)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/statistics/teams", handler.GetTeamTournamentStats)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/statistics/players", handler.GetPlayerTournamentStats)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/statistics/top-scorers", handler.GetTopScorers)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/statistics/top-assists", handler.GetTopAssists)

	mux.Handle("POST /v1/statistics", authorized(verifier, handler.CreateStatistics))
	mux.Handle("PUT /v1/statistics/{statisticsID}", authorized(verifier, handler.UpdateStatistics))
	mux.Handle("DELETE /v1/statistics/{statisticsID}", authorized(verifier, handler.DeleteStatistics))
	mux.Handle("POST /v1/matches/{matchID}/statistics/initialize", authorized(verifier, handler.InitializeMatchStatistics))
	mux.Handle("PUT /v1/matches/{matchID}/statistics/{playerID}", authorized(verifier, handler.UpdatePlayerStatistics))
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/configuration", handler.GetTournamentConfiguration)

	mux.Handle("PUT /v1/tournaments/{tournamentID}/configuration", authorized(verifier, handler.ConfigureTournament))
	mux.Handle("PATCH /v1/tournaments/{tournamentID}/configuration", authorized(verifier, handler.UpdateTournamentConfiguration))
	mux.Handle("DELETE /v1/tournaments/{tournamentID}/configuration", authorized(verifier, handler.DeleteTournamentConfiguration))
}
