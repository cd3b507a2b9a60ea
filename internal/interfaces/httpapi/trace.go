package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	apiInstrumentation = "tournament-api/internal/interfaces/httpapi"
	handlerSpanPrefix  = "httpapi.Handler."
)

// pathIDAttributes maps route wildcards to span attribute keys.
var pathIDAttributes = []struct{ param, key string }{
	{"matchID", "match.id"},
	{"eventID", "match_event.id"},
	{"statisticsID", "match_statistics.id"},
	{"tournamentID", "tournament.id"},
	{"playerID", "player.id"},
}

// startSpan opens a span for handler methods only. Middleware and response
// helpers stay inside the otelhttp or handler span, and untraced routes such
// as /healthz never start a root span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !strings.HasPrefix(name, handlerSpanPrefix) || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return otel.Tracer(apiInstrumentation).Start(ctx, name)
}

// startHandlerSpan is startSpan tagged with the matched route and the ids
// bound from the request path.
func startHandlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx, span := startSpan(r.Context(), name)
	if span.IsRecording() {
		span.SetAttributes(routeAttributes(r)...)
	}
	return ctx, span
}

func routeAttributes(r *http.Request) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	for _, p := range pathIDAttributes {
		raw := r.PathValue(p.param)
		if raw == "" {
			continue
		}
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			attrs = append(attrs, attribute.Int64(p.key, id))
		}
	}
	return attrs
}
