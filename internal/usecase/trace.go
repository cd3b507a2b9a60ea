package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const usecaseInstrumentation = "tournament-api/internal/usecase"

// startUsecaseSpan opens a child span for a service method. Calls outside a
// traced request, such as seeding or tests, get a no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return otel.Tracer(usecaseInstrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
}

func matchAttr(id int64) attribute.KeyValue {
	return attribute.Int64("match.id", id)
}

func tournamentAttr(id int64) attribute.KeyValue {
	return attribute.Int64("tournament.id", id)
}
