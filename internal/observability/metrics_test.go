package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/riskibarqy/tournament-api/internal/platform/cache"
	"github.com/riskibarqy/tournament-api/internal/platform/resilience"
)

func TestMetricsRecordsRequestsAndDeliveries(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTPRequest("GET", "/v1/matches/{matchID}", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/v1/matches/{matchID}", 200, 5*time.Millisecond)
	m.ObserveRealtimeDelivery("firebase", "sync_event", "ok", time.Millisecond)
	m.ObserveRealtimeDelivery("firebase", "sync_event", "dropped", 0)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/v1/matches/{matchID}", "200")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.realtimeDeliveries.WithLabelValues("firebase", "sync_event", "dropped")); got != 1 {
		t.Fatalf("expected 1 dropped delivery, got %v", got)
	}
}

func TestMetricsTrackCircuitTransitions(t *testing.T) {
	m := NewMetrics()
	breaker := resilience.NewCircuitBreaker("firebase", resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		OnStateChange:    m.ObserveCircuitTransition,
	})

	breaker.RecordFailure()
	if got := testutil.ToFloat64(m.circuitState.WithLabelValues("firebase")); got != 2 {
		t.Fatalf("expected open gauge 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.circuitChanges.WithLabelValues("firebase", "open")); got != 1 {
		t.Fatalf("expected 1 open transition, got %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveCircuitTransition("firebase", resilience.CircuitStateOpen, resilience.CircuitStateClosed)
}

func TestMetricsHandlerExposesCacheStats(t *testing.T) {
	m := NewMetrics()
	m.RegisterCacheStats("players", func() cache.Stats { return cache.Stats{Hits: 7, Misses: 3, Entries: 2} })
	m.RegisterGauge("livefeed", "connections", "Open websocket connections.", func() float64 { return 4 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	raw, _ := io.ReadAll(rec.Body)
	body := string(raw)

	for _, want := range []string{
		`tournament_api_cache_hits_total{cache="players"} 7`,
		`tournament_api_cache_entries{cache="players"} 2`,
		`tournament_api_livefeed_connections 4`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.ObserveRealtimeDelivery("firebase", "sync_event", "ok", time.Millisecond)
	m.RegisterCacheStats("players", func() cache.Stats { return cache.Stats{} })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
