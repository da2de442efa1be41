package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/metrics"
)

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func newTestRouter(t *testing.T, maxBodyBytes int64) (http.Handler, *metrics.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	analyzer := analysis.NewAnalyzer(analysis.WithLogger(logger), analysis.WithMetrics(m))
	return New(analyzer, logger, m, maxBodyBytes).Router(), m
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])
}

func TestHandleParse(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rr := postJSON(t, router, "/v1/parse", map[string]any{"text": readTestdata(t, "registry_clean.txt")})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	body := decodeBody(t, rr)
	title := body["title"].(map[string]any)
	assert.Equal(t, "서울특별시 강남구 역삼동 123-45", title["address"])
	assert.Len(t, body["encumbrance"], 1)
}

func TestHandleScore(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rr := postJSON(t, router, "/v1/score", map[string]any{
		"text":            readTestdata(t, "registry_risky.txt"),
		"estimated_price": 500_000_000,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	riskScore := body["risk"].(map[string]any)
	assert.Equal(t, "F", riskScore["grade"])
	assert.NotNil(t, body["registry"])
}

func TestHandleValidate(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rr := postJSON(t, router, "/v1/validate", map[string]any{
		"text":            readTestdata(t, "registry_clean.txt"),
		"estimated_price": 100,
	})
	require.Equal(t, http.StatusOK, rr.Code, "invalid documents still return 200")

	body := decodeBody(t, rr)
	assert.Equal(t, false, body["is_valid"])
	assert.Contains(t, mustJSON(t, body["issues"]), "XCHK_PRICE_SANITY")
	assert.Len(t, body["tiers"], 4)
}

func TestHandleAnalyze(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	text := readTestdata(t, "registry_risky.txt")

	t.Run("json", func(t *testing.T) {
		rr := postJSON(t, router, "/v1/analyze", map[string]any{"text": text, "source": "risky.txt", "estimated_price": 500_000_000})
		require.Equal(t, http.StatusOK, rr.Code)

		var analysisReport analysis.Report
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&analysisReport))
		assert.NotEmpty(t, analysisReport.ID)
		assert.Equal(t, "risky.txt", analysisReport.Source)
		assert.NotEmpty(t, analysisReport.Validation.IssuesByID("CTX_POST_SEIZURE_MORTGAGE"))
	})

	t.Run("markdown", func(t *testing.T) {
		rr := postJSON(t, router, "/v1/analyze?format=md", map[string]any{"text": text, "source": "risky.txt"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/markdown; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rr.Body.String(), "# Registry Analysis: risky.txt"))
	})

	t.Run("html", func(t *testing.T) {
		rr := postJSON(t, router, "/v1/analyze?format=html", map[string]any{"text": text})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("unknown format", func(t *testing.T) {
		rr := postJSON(t, router, "/v1/analyze?format=pdf", map[string]any{"text": text})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, codeBadRequest, decodeBody(t, rr)["error"])
	})
}

func TestHandleTaxonomy(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/taxonomy", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, "default", body["name"])
	assert.NotEmpty(t, body["ownership"])
	assert.NotEmpty(t, body["encumbrance"])
}

func TestBadRequests(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"text":`},
		{"unknown field", `{"text":"x","price":1}`},
		{"empty body", ``},
		{"wrong type", `{"text": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, codeBadRequest, body["error"])
			assert.NotEmpty(t, body["error_description"])
		})
	}
}

func TestBodyLimit(t *testing.T) {
	router, _ := newTestRouter(t, 64)

	rr := postJSON(t, router, "/v1/parse", map[string]any{"text": strings.Repeat("가", 100)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, codeRequestTooLarge, decodeBody(t, rr)["error"])
}

type cancelledAnalyzer struct {
	*analysis.Analyzer
}

func (cancelledAnalyzer) Analyze(ctx context.Context, request analysis.Request) (*analysis.Report, error) {
	return nil, context.Canceled
}

func TestAnalyzeCancelled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := New(cancelledAnalyzer{analysis.NewAnalyzer()}, logger, nil, 0).Router()

	rr := postJSON(t, router, "/v1/analyze", map[string]any{"text": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, codeUnavailable, body["error"])
	_, hasDescription := body["error_description"]
	assert.False(t, hasDescription)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	postJSON(t, router, "/v1/analyze", map[string]any{"text": readTestdata(t, "registry_clean.txt")})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	output := rr.Body.String()
	assert.Contains(t, output, `deungi_http_requests_total{code="200",route="/v1/analyze"} 1`)
	assert.Contains(t, output, "deungi_documents_analyzed_total")
}

func TestNewHTTPServer(t *testing.T) {
	httpServer := NewHTTPServer(":0", http.NotFoundHandler())
	assert.Equal(t, ":0", httpServer.Addr)
	assert.NotZero(t, httpServer.ReadHeaderTimeout)
}

func mustJSON(t *testing.T, value any) string {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	return string(data)
}
