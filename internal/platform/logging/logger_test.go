package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Info("event recorded", "match_id", int64(7), "error", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if got, ok := fields["match_id"].(int64); !ok || got != 7 {
		t.Fatalf("unexpected match_id field: %#v", fields["match_id"])
	}
	if got, _ := fields["error"].(string); got != "boom" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
}

func TestLoggerOddArgsKeepsLastKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Warn("dangling", "only_key")

	fields := logs.All()[0].ContextMap()
	if _, ok := fields["only_key"]; !ok {
		t.Fatalf("expected dangling key to be kept, got %#v", fields)
	}
}

func TestMirrorReceivesEnabledRecordsOnly(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, _ ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.Debug("hidden")
	logger.ErrorContext(context.Background(), "visible")

	if len(got) != 1 || got[0] != "error:visible" {
		t.Fatalf("unexpected mirrored records: %v", got)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":     LevelDebug,
		" WARNING ": LevelWarn,
		"warn":      LevelWarn,
		"Error":     LevelError,
		"":          LevelInfo,
		"verbose":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestJSONRecordCarriesTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONTo(&buf, LevelInfo)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "goal recorded", "match_id", int64(12), "minute", 44)
	logger.DebugContext(ctx, "filtered")

	var record map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "goal recorded" || record["level"] != "INFO" {
		t.Fatalf("unexpected record header: %#v", record)
	}
	if record["trace_id"] != traceID.String() || record["span_id"] != spanID.String() {
		t.Fatalf("expected trace correlation fields, got %#v", record)
	}
	if record["match_id"] != float64(12) {
		t.Fatalf("unexpected match_id: %#v", record["match_id"])
	}
	if _, ok := record["caller"]; !ok {
		t.Fatalf("expected caller field")
	}
}

func TestSyncRunsOnce(t *testing.T) {
	logger := NewNop()
	if err := logger.Sync(); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if !logger.synced.Load() {
		t.Fatalf("expected logger to be marked synced")
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("second sync: %v", err)
	}
}
