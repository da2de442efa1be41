// Package analysis runs the full registry pipeline (parse, risk score,
// validation) for single documents and batches.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/metrics"
	"github.com/coolbeans/deungi/pkg/risk"
	"github.com/coolbeans/deungi/pkg/taxonomy"
	"github.com/coolbeans/deungi/pkg/validate"
)

// DefaultConcurrency bounds AnalyzeBatch when no limit is configured.
const DefaultConcurrency = 4

// Request is one document to analyze.
type Request struct {
	// Source names the document, usually a file path.
	Source string `json:"source,omitempty"`

	// Text is the raw registry text.
	Text string `json:"text"`

	// EstimatedPrice in won; 0 falls back to the analyzer default.
	EstimatedPrice int64 `json:"estimated_price,omitempty"`

	// Advisory is optional advice text to spot-check for relevance.
	Advisory string `json:"advisory,omitempty"`
}

// Report is the combined output of one analysis.
type Report struct {
	ID             string            `json:"id" yaml:"id"`
	Source         string            `json:"source,omitempty" yaml:"source,omitempty"`
	EstimatedPrice int64             `json:"estimated_price" yaml:"estimated_price"`
	Registry       *extract.Registry `json:"registry" yaml:"registry"`
	Risk           *risk.Score       `json:"risk" yaml:"risk"`
	Validation     *validate.Result  `json:"validation" yaml:"validation"`
	GeneratedAt    time.Time         `json:"generated_at" yaml:"generated_at"`
}

// ToJSON serializes the report as indented JSON.
func (report *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// Analyzer runs the pipeline. It is safe for concurrent use.
type Analyzer struct {
	taxonomySource taxonomy.Source
	metrics        *metrics.Metrics
	logger         *slog.Logger
	clock          func() time.Time
	newID          func() string
	concurrency    int
	defaultPrice   int64

	parserMu       sync.Mutex
	parser         *extract.Parser
	parserTaxonomy *taxonomy.Taxonomy
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTaxonomySource makes the analyzer classify with the source's current
// taxonomy, picking up reloads between documents.
func WithTaxonomySource(source taxonomy.Source) Option {
	return func(analyzer *Analyzer) {
		if source != nil {
			analyzer.taxonomySource = source
		}
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(analyzer *Analyzer) {
		analyzer.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(analyzer *Analyzer) {
		if logger != nil {
			analyzer.logger = logger
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(analyzer *Analyzer) {
		if clock != nil {
			analyzer.clock = clock
		}
	}
}

// WithIDGenerator overrides report id generation.
func WithIDGenerator(newID func() string) Option {
	return func(analyzer *Analyzer) {
		if newID != nil {
			analyzer.newID = newID
		}
	}
}

// WithConcurrency bounds the number of documents analyzed in parallel by
// AnalyzeBatch. Values below 1 are ignored.
func WithConcurrency(concurrency int) Option {
	return func(analyzer *Analyzer) {
		if concurrency >= 1 {
			analyzer.concurrency = concurrency
		}
	}
}

// WithDefaultPrice sets the price used for requests that carry none.
func WithDefaultPrice(price int64) Option {
	return func(analyzer *Analyzer) {
		if price > 0 {
			analyzer.defaultPrice = price
		}
	}
}

// NewAnalyzer creates an Analyzer using the built-in taxonomy unless a
// source is supplied.
func NewAnalyzer(opts ...Option) *Analyzer {
	analyzer := &Analyzer{
		taxonomySource: taxonomy.NewStatic(nil),
		logger:         slog.Default(),
		clock:          time.Now,
		newID:          uuid.NewString,
		concurrency:    DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(analyzer)
	}
	return analyzer
}

// Taxonomy returns the taxonomy the next document will be classified with.
func (analyzer *Analyzer) Taxonomy() *taxonomy.Taxonomy {
	return analyzer.taxonomySource.Current()
}

// currentParser returns a parser for the current taxonomy, rebuilding it
// only when the source has published a new one.
func (analyzer *Analyzer) currentParser() *extract.Parser {
	current := analyzer.taxonomySource.Current()

	analyzer.parserMu.Lock()
	defer analyzer.parserMu.Unlock()
	if analyzer.parser == nil || analyzer.parserTaxonomy != current {
		analyzer.parser = extract.NewParser(extract.WithTaxonomy(current))
		analyzer.parserTaxonomy = current
	}
	return analyzer.parser
}

// Parse parses text with the current taxonomy.
func (analyzer *Analyzer) Parse(text string) *extract.Registry {
	start := time.Now()
	registry := analyzer.currentParser().Parse(text)
	analyzer.metrics.ObserveStage("parse", time.Since(start))
	return registry
}

// Score parses text and scores it against price, or the default price
// when price is 0.
func (analyzer *Analyzer) Score(text string, price int64) (*extract.Registry, *risk.Score) {
	registry := analyzer.Parse(text)
	return registry, analyzer.score(registry, analyzer.priceFor(price))
}

func (analyzer *Analyzer) score(registry *extract.Registry, price int64) *risk.Score {
	start := time.Now()
	score := risk.Evaluate(registry, price)
	analyzer.metrics.ObserveStage("score", time.Since(start))
	return score
}

func (analyzer *Analyzer) priceFor(price int64) int64 {
	if price == 0 {
		return analyzer.defaultPrice
	}
	return price
}

// Analyze runs parse, score and validate for one request. The only error
// is ctx's.
func (analyzer *Analyzer) Analyze(ctx context.Context, request Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	price := analyzer.priceFor(request.EstimatedPrice)
	registry := analyzer.Parse(request.Text)
	score := analyzer.score(registry, price)

	validateStart := time.Now()
	validation := validate.Validate(registry,
		validate.WithPrice(price),
		validate.WithRiskScore(score),
		validate.WithAdvisory(request.Advisory),
		validate.WithClock(analyzer.clock),
	)
	analyzer.metrics.ObserveStage("validate", time.Since(validateStart))

	report := &Report{
		ID:             analyzer.newID(),
		Source:         request.Source,
		EstimatedPrice: price,
		Registry:       registry,
		Risk:           score,
		Validation:     validation,
		GeneratedAt:    validation.Timestamp,
	}

	analyzer.metrics.ObserveDocument(string(score.Grade), score.TotalScore)
	for _, issue := range validation.Issues {
		analyzer.metrics.IncrementIssue(string(issue.Category), string(issue.Severity))
	}

	analyzer.logger.DebugContext(ctx, "registry analyzed",
		"report_id", report.ID,
		"source", request.Source,
		"grade", score.Grade,
		"score", score.TotalScore,
		"valid", validation.IsValid,
		"issues", len(validation.Issues),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}

// AnalyzeFile reads path and analyzes its contents.
func (analyzer *Analyzer) AnalyzeFile(ctx context.Context, path string, price int64) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return analyzer.Analyze(ctx, Request{
		Source:         filepath.Base(path),
		Text:           string(data),
		EstimatedPrice: price,
	})
}

// AnalyzeBatch analyzes requests in parallel, bounded by the configured
// concurrency. Reports are returned in request order. Cancelling ctx stops
// documents that have not started.
func (analyzer *Analyzer) AnalyzeBatch(ctx context.Context, requests []Request) ([]*Report, error) {
	reports := make([]*Report, len(requests))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(analyzer.concurrency)

	for requestIndex, request := range requests {
		requestIndex, request := requestIndex, request
		group.Go(func() error {
			report, err := analyzer.Analyze(groupCtx, request)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", sourceName(request, requestIndex), err)
			}
			reports[requestIndex] = report
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	analyzer.logger.InfoContext(ctx, "batch analyzed", "documents", len(requests))
	return reports, nil
}

func sourceName(request Request, requestIndex int) string {
	if request.Source != "" {
		return request.Source
	}
	return fmt.Sprintf("document %d", requestIndex)
}
