package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder.Body.String()
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	first := New()
	second := New()

	first.ObserveDocument("A", 100)
	first.ObserveDocument("A", 90)
	second.ObserveDocument("F", 0)

	firstBody := scrape(t, first)
	secondBody := scrape(t, second)

	assert.Contains(t, firstBody, `deungi_documents_analyzed_total{grade="A"} 2`)
	assert.NotContains(t, secondBody, `deungi_documents_analyzed_total{grade="A"}`)
	assert.Contains(t, secondBody, `deungi_documents_analyzed_total{grade="F"} 1`)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.IncrementIssue("context", "warning")
	m.IncrementIssue("context", "warning")
	m.IncrementRequest("/v1/analyze", "200")
	m.IncrementWatchReport("written")
	m.ObserveStage("parse", 2*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `deungi_validation_issues_total{severity="warning",tier="context"} 2`)
	assert.Contains(t, body, `deungi_http_requests_total{code="200",route="/v1/analyze"} 1`)
	assert.Contains(t, body, `deungi_watch_reports_total{outcome="written"} 1`)
	assert.Contains(t, body, `deungi_stage_duration_seconds_count{stage="parse"} 1`)
}

func TestMetrics_RuntimeCollectors(t *testing.T) {
	body := scrape(t, New())
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDocument("A", 90)
		m.ObserveStage("parse", time.Millisecond)
		m.IncrementIssue("format", "error")
		m.IncrementRequest("/healthz", "200")
		m.IncrementWatchReport("failed")
	})

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestMetrics_RiskScoreHistogram(t *testing.T) {
	m := New()
	m.ObserveDocument("B", 75)

	body := scrape(t, m)
	assert.Contains(t, body, `deungi_risk_score_bucket{le="85"} 1`)
	assert.Contains(t, body, `deungi_risk_score_bucket{le="70"} 0`)
}
