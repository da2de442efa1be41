// Package metrics exposes prometheus instrumentation for the analysis
// pipeline and its HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process. Every collector is
// registered on Registry rather than the global default registerer, so
// several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	// Documents analyzed by risk grade
	DocumentsAnalyzed *prometheus.CounterVec

	// Validation issues by tier and severity
	ValidationIssues *prometheus.CounterVec

	// Per-stage latency: parse, score, validate
	StageLatency *prometheus.HistogramVec

	// Risk score distribution
	RiskScore prometheus.Histogram

	// HTTP requests by route and status code
	HTTPRequests *prometheus.CounterVec

	// Reports written by the directory watcher, by outcome
	WatchReports *prometheus.CounterVec
}

// New creates a Metrics instance on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		DocumentsAnalyzed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deungi_documents_analyzed_total",
			Help: "Total registry documents analyzed by risk grade",
		}, []string{"grade"}),

		ValidationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deungi_validation_issues_total",
			Help: "Total validation issues by tier and severity",
		}, []string{"tier", "severity"}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deungi_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}, []string{"stage"}),

		RiskScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deungi_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: []float64{30, 50, 70, 85, 100},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deungi_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		}, []string{"route", "code"}),

		WatchReports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deungi_watch_reports_total",
			Help: "Reports produced by the directory watcher by outcome",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveDocument records an analyzed document and its score.
func (m *Metrics) ObserveDocument(grade string, score int) {
	if m != nil {
		m.DocumentsAnalyzed.WithLabelValues(grade).Inc()
		m.RiskScore.Observe(float64(score))
	}
}

// IncrementIssue records one validation issue.
func (m *Metrics) IncrementIssue(tier, severity string) {
	if m != nil {
		m.ValidationIssues.WithLabelValues(tier, severity).Inc()
	}
}

// IncrementRequest records a served HTTP request.
func (m *Metrics) IncrementRequest(route, code string) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, code).Inc()
	}
}

// IncrementWatchReport records a watcher outcome: written or failed.
func (m *Metrics) IncrementWatchReport(outcome string) {
	if m != nil {
		m.WatchReports.WithLabelValues(outcome).Inc()
	}
}
