package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected scrape status %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_RecordsFetchOutcomes(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveAttempt("timeout")
	m.ObserveAttempt("timeout")
	m.ObserveTier("local_cache")
	m.ObserveCacheError("write")

	body := scrape(t, m)
	for _, want := range []string{
		`team_gamelog_fetch_attempts_total{outcome="timeout"} 2`,
		`team_gamelog_fetch_served_total{tier="local_cache"} 1`,
		`team_gamelog_cache_errors_total{op="write"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveRequest("/v1/teams", http.StatusServiceUnavailable, 20*time.Millisecond)
	m.SetBreakerOpen("nbastats", true)

	body := scrape(t, m)
	for _, want := range []string{
		`team_gamelog_http_requests_total{route="/v1/teams",status="5xx"} 1`,
		`team_gamelog_circuit_breaker_open{name="nbastats"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
