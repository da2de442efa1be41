// Package server exposes the registry pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/metrics"
	"github.com/coolbeans/deungi/pkg/report"
	"github.com/coolbeans/deungi/pkg/risk"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 4 << 20

// Analyzer is the pipeline the handler serves.
type Analyzer interface {
	Taxonomy() *taxonomy.Taxonomy
	Parse(text string) *extract.Registry
	Score(text string, price int64) (*extract.Registry, *risk.Score)
	Analyze(ctx context.Context, request analysis.Request) (*analysis.Report, error)
}

// Handler wires the pipeline endpoints to an Analyzer.
type Handler struct {
	analyzer     Analyzer
	logger       *slog.Logger
	metrics      *metrics.Metrics
	maxBodyBytes int64
}

// New constructs a handler. A non-positive maxBodyBytes selects
// DefaultMaxBodyBytes.
func New(analyzer Analyzer, logger *slog.Logger, metrics *metrics.Metrics, maxBodyBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		analyzer:     analyzer,
		logger:       logger,
		metrics:      metrics,
		maxBodyBytes: maxBodyBytes,
	}
}

// Register mounts the pipeline endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.limitBody)
		r.Post("/parse", h.HandleParse)
		r.Post("/score", h.HandleScore)
		r.Post("/validate", h.HandleValidate)
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/taxonomy", h.HandleTaxonomy)
	})
}

// Router builds a chi router with request ids, panic recovery and request
// metrics in front of the handler's endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)
	h.Register(r)
	return r
}

// documentRequest is the body of every POST endpoint.
type documentRequest struct {
	Text           string `json:"text"`
	Source         string `json:"source,omitempty"`
	EstimatedPrice int64  `json:"estimated_price,omitempty"`
	Advisory       string `json:"advisory,omitempty"`
}

func (req documentRequest) toAnalysisRequest() analysis.Request {
	return analysis.Request{
		Source:         req.Source,
		Text:           req.Text,
		EstimatedPrice: req.EstimatedPrice,
		Advisory:       req.Advisory,
	}
}

// scoreResponse is returned by POST /v1/score.
type scoreResponse struct {
	Registry *extract.Registry `json:"registry"`
	Risk     *risk.Score       `json:"risk"`
}

// taxonomyResponse is returned by GET /v1/taxonomy.
type taxonomyResponse struct {
	Name        string          `json:"name"`
	Ownership   []taxonomy.Term `json:"ownership"`
	Encumbrance []taxonomy.Term `json:"encumbrance"`
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleParse handles POST /v1/parse requests.
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[documentRequest](w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.Parse(req.Text))
}

// HandleScore handles POST /v1/score requests.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[documentRequest](w, r, h.logger)
	if !ok {
		return
	}
	registry, score := h.analyzer.Score(req.Text, req.EstimatedPrice)
	writeJSON(w, http.StatusOK, scoreResponse{Registry: registry, Risk: score})
}

// HandleValidate handles POST /v1/validate requests. The validation result
// is returned with 200 even when the document is invalid.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[documentRequest](w, r, h.logger)
	if !ok {
		return
	}
	analysisReport, ok := h.analyze(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysisReport.Validation)
}

// HandleAnalyze handles POST /v1/analyze requests. The optional format
// query parameter selects a rendered report instead of JSON.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	format := report.FormatJSON
	if value := r.URL.Query().Get("format"); value != "" {
		parsed, err := report.ParseFormat(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		format = parsed
	}

	req, ok := decodeJSON[documentRequest](w, r, h.logger)
	if !ok {
		return
	}
	analysisReport, ok := h.analyze(w, r, req)
	if !ok {
		return
	}

	if format == report.FormatJSON {
		writeJSON(w, http.StatusOK, analysisReport)
		return
	}

	body, err := report.Render(analysisReport, format)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "report rendering failed",
			"request_id", middleware.GetReqID(r.Context()),
			"format", format,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, codeInternal, "")
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleTaxonomy handles GET /v1/taxonomy requests.
func (h *Handler) HandleTaxonomy(w http.ResponseWriter, r *http.Request) {
	current := h.analyzer.Taxonomy()
	if current == nil {
		current = taxonomy.Default()
	}
	writeJSON(w, http.StatusOK, taxonomyResponse{
		Name:        current.Name,
		Ownership:   current.Ownership.Terms(),
		Encumbrance: current.Encumbrance.Terms(),
	})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request, req documentRequest) (*analysis.Report, bool) {
	ctx := r.Context()
	start := time.Now()

	analysisReport, err := h.analyzer.Analyze(ctx, req.toAnalysisRequest())
	if err != nil {
		status, code := http.StatusInternalServerError, codeInternal
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status, code = http.StatusServiceUnavailable, codeUnavailable
		}
		h.logger.WarnContext(ctx, "analysis aborted",
			"request_id", middleware.GetReqID(ctx),
			"source", req.Source,
			"error", err,
		)
		writeError(w, status, code, "")
		return nil, false
	}

	h.logger.InfoContext(ctx, "registry analyzed",
		"request_id", middleware.GetReqID(ctx),
		"report_id", analysisReport.ID,
		"grade", analysisReport.Risk.Grade,
		"valid", analysisReport.Validation.IsValid,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return analysisReport, true
}

func contentTypeFor(format report.Format) string {
	switch format {
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case report.FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
