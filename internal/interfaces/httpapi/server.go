package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

// RouterConfig carries the optional pieces of the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	Metrics            HTTPMetrics
	// MetricsHandler is mounted on GET /metrics when non-nil.
	MetricsHandler http.Handler
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	cfg RouterConfig,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.MetricsHandler)
	registerMatchRoutes(mux, handler, verifier)
	registerEventRoutes(mux, handler, verifier)
	registerStatisticsRoutes(mux, handler, verifier)
	registerTournamentRoutes(mux, handler, verifier)

	inner := RequestMetrics(cfg.Metrics, mux)
	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, inner))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
