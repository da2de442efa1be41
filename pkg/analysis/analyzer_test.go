package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/deungi/pkg/metrics"
	"github.com/coolbeans/deungi/pkg/risk"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

var fixedClock = func() time.Time {
	return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func sequentialIDs() func() string {
	var counter atomic.Int64
	return func() string {
		return fmt.Sprintf("report-%d", counter.Add(1))
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	analyzer := NewAnalyzer(WithClock(fixedClock))

	report, err := analyzer.Analyze(context.Background(), Request{
		Source:         "risky.txt",
		Text:           readTestdata(t, "registry_risky.txt"),
		EstimatedPrice: 500_000_000,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err, "report id should be a uuid")
	assert.Equal(t, "risky.txt", report.Source)
	assert.Equal(t, int64(500_000_000), report.EstimatedPrice)
	assert.Equal(t, risk.GradeF, report.Risk.Grade)
	assert.Equal(t, 0, report.Risk.TotalScore)
	assert.NotEmpty(t, report.Validation.IssuesByID("CTX_POST_SEIZURE_MORTGAGE"))
	assert.True(t, report.GeneratedAt.Equal(fixedClock()))
}

func TestAnalyzer_DefaultPrice(t *testing.T) {
	analyzer := NewAnalyzer(WithDefaultPrice(1_000_000_000), WithClock(fixedClock))
	text := readTestdata(t, "registry_clean.txt")

	report, err := analyzer.Analyze(context.Background(), Request{Text: text})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), report.EstimatedPrice)
	assert.Equal(t, 48.0, report.Risk.MortgageRatio)

	report, err = analyzer.Analyze(context.Background(), Request{Text: text, EstimatedPrice: 600_000_000})
	require.NoError(t, err)
	assert.Equal(t, int64(600_000_000), report.EstimatedPrice)
	assert.Equal(t, 80.0, report.Risk.MortgageRatio)
}

func TestAnalyzer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer().Analyze(ctx, Request{Text: "anything"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_TaxonomySource(t *testing.T) {
	extended, err := taxonomy.Parse([]byte(`
name: public-sale
ownership:
  - term: 공매공고
    right: auction_order
    risk: danger
`))
	require.NoError(t, err)

	text := "【 갑 구 】\n1 소유권보존 2015년3월2일\n소유자 김철수\n2 공매공고 2020년1월2일\n권리자 한국자산관리공사\n"

	builtIn := NewAnalyzer()
	registry := builtIn.Parse(text)
	assert.False(t, registry.Summary.HasAuctionOrder)

	custom := NewAnalyzer(WithTaxonomySource(taxonomy.NewStatic(extended)))
	registry = custom.Parse(text)
	assert.True(t, registry.Summary.HasAuctionOrder)
	assert.Same(t, extended, custom.Taxonomy())
}

func TestAnalyzer_Score(t *testing.T) {
	analyzer := NewAnalyzer()
	registry, score := analyzer.Score(readTestdata(t, "registry_clean.txt"), 0)
	require.NotNil(t, registry)
	assert.Equal(t, "서울특별시 강남구 역삼동 123-45", registry.Title.Address)
	assert.Equal(t, risk.GradeA, score.Grade)
}

func TestAnalyzer_AnalyzeFile(t *testing.T) {
	analyzer := NewAnalyzer(WithClock(fixedClock))

	report, err := analyzer.AnalyzeFile(context.Background(), filepath.Join("..", "..", "testdata", "registry_clean.txt"), 0)
	require.NoError(t, err)
	assert.Equal(t, "registry_clean.txt", report.Source)

	_, err = analyzer.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), 0)
	assert.Error(t, err)
}

func TestAnalyzer_AnalyzeBatch(t *testing.T) {
	analyzer := NewAnalyzer(WithConcurrency(2), WithClock(fixedClock), WithIDGenerator(sequentialIDs()))
	clean := readTestdata(t, "registry_clean.txt")
	risky := readTestdata(t, "registry_risky.txt")

	requests := []Request{
		{Source: "a.txt", Text: clean},
		{Source: "b.txt", Text: risky, EstimatedPrice: 500_000_000},
		{Source: "c.txt", Text: ""},
		{Source: "d.txt", Text: clean},
	}

	reports, err := analyzer.AnalyzeBatch(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, reports, len(requests))

	for i, report := range reports {
		require.NotNil(t, report)
		assert.Equal(t, requests[i].Source, report.Source, "reports keep request order")
	}
	assert.Equal(t, risk.GradeF, reports[1].Risk.Grade)

	ids := make(map[string]bool)
	for _, report := range reports {
		ids[report.ID] = true
	}
	assert.Len(t, ids, len(reports), "report ids are unique")
}

func TestAnalyzer_AnalyzeBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := NewAnalyzer().AnalyzeBatch(ctx, []Request{{Source: "x.txt", Text: "x"}})
	assert.Nil(t, reports)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, strings.Contains(err.Error(), "x.txt"))
}

func TestAnalyzer_BatchMatchesSequential(t *testing.T) {
	clean := readTestdata(t, "registry_clean.txt")
	risky := readTestdata(t, "registry_risky.txt")
	requests := []Request{{Text: risky, EstimatedPrice: 700_000_000}, {Text: clean, EstimatedPrice: 500_000_000}}

	analyzer := NewAnalyzer(WithClock(fixedClock), WithIDGenerator(func() string { return "fixed" }))
	batch, err := analyzer.AnalyzeBatch(context.Background(), requests)
	require.NoError(t, err)

	for i, request := range requests {
		single, err := analyzer.Analyze(context.Background(), request)
		require.NoError(t, err)

		expected, err := single.ToJSON()
		require.NoError(t, err)
		actual, err := batch[i].ToJSON()
		require.NoError(t, err)
		assert.JSONEq(t, string(expected), string(actual))
	}
}

func TestAnalyzer_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	analyzer := NewAnalyzer(WithMetrics(m))

	_, err := analyzer.Analyze(context.Background(), Request{Text: readTestdata(t, "registry_risky.txt"), EstimatedPrice: 500_000_000})
	require.NoError(t, err)

	gathered, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, family := range gathered {
		names[family.GetName()] = true
	}
	assert.True(t, names["deungi_documents_analyzed_total"])
	assert.True(t, names["deungi_stage_duration_seconds"])
	assert.True(t, names["deungi_validation_issues_total"])
}
