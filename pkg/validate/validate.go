// Package validate certifies that a parsed registry and its risk score are
// internally consistent. Every statistic is recomputed here from the entry
// lists with code separate from the extract and risk packages.
package validate

import (
	"encoding/json"
	"math"
	"time"

	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/risk"
)

// Category names the tier that produced an issue.
type Category string

const (
	CategoryFormat     Category = "format"
	CategoryArithmetic Category = "arithmetic"
	CategoryContext    Category = "context"
	CategoryCrosscheck Category = "crosscheck"
)

// Severity ranks an issue. Only errors make a result invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding of a validation check.
type Issue struct {
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category" yaml:"category"`
	Severity Severity `json:"severity" yaml:"severity"`
	Field    string   `json:"field" yaml:"field"`
	Message  string   `json:"message" yaml:"message"`
	Expected string   `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty" yaml:"actual,omitempty"`
}

// Summary counts checks and issues of a validation run.
type Summary struct {
	TotalChecks int `json:"total_checks" yaml:"total_checks"`
	Passed      int `json:"passed" yaml:"passed"`
	Errors      int `json:"errors" yaml:"errors"`
	Warnings    int `json:"warnings" yaml:"warnings"`
	Infos       int `json:"infos" yaml:"infos"`
}

// TierSummary reports the checks and issue counts of a single tier.
type TierSummary struct {
	Tier     Category `json:"tier" yaml:"tier"`
	Checks   int      `json:"checks" yaml:"checks"`
	Errors   int      `json:"errors" yaml:"errors"`
	Warnings int      `json:"warnings" yaml:"warnings"`
	Infos    int      `json:"infos" yaml:"infos"`
}

// Result is the outcome of Validate.
//
// Score is the share of checks that raised no error or warning, so it is a
// coarse confidence signal rather than a per-field percentage.
type Result struct {
	IsValid   bool          `json:"is_valid" yaml:"is_valid"`
	Score     int           `json:"score" yaml:"score"`
	Issues    []Issue       `json:"issues" yaml:"issues"`
	Summary   Summary       `json:"summary" yaml:"summary"`
	Tiers     []TierSummary `json:"tiers" yaml:"tiers"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
}

// ToJSON serializes the result as indented JSON.
func (validationResult *Result) ToJSON() ([]byte, error) {
	return json.MarshalIndent(validationResult, "", "  ")
}

// IssuesByID returns the issues with the given id in report order.
func (validationResult *Result) IssuesByID(id string) []Issue {
	var matching []Issue
	for _, issue := range validationResult.Issues {
		if issue.ID == id {
			matching = append(matching, issue)
		}
	}
	return matching
}

// ValidationContext is the input every tier sees. Optional inputs are zero
// when not supplied and unlock additional checks when present.
type ValidationContext struct {
	Registry *extract.Registry

	// EstimatedPrice is the caller's price estimate in won; 0 means none.
	EstimatedPrice int64

	// RiskScore is a previously computed score for Registry.
	RiskScore *risk.Score

	// AdvisoryText is free-form advice whose relevance is spot-checked.
	AdvisoryText string

	// tally is the independent recount shared by all tiers of one run.
	tally *tally
}

// Option configures a Validate call.
type Option func(*options)

type options struct {
	estimatedPrice int64
	riskScore      *risk.Score
	advisoryText   string
	clock          func() time.Time
}

// WithPrice supplies a price estimate, enabling price sanity and ratio
// checks.
func WithPrice(estimatedPrice int64) Option {
	return func(opts *options) {
		opts.estimatedPrice = estimatedPrice
	}
}

// WithRiskScore supplies the risk score to cross-check.
func WithRiskScore(score *risk.Score) Option {
	return func(opts *options) {
		opts.riskScore = score
	}
}

// WithAdvisory supplies advisory text for the relevance check.
func WithAdvisory(advisoryText string) Option {
	return func(opts *options) {
		opts.advisoryText = advisoryText
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(opts *options) {
		if clock != nil {
			opts.clock = clock
		}
	}
}

var defaultPipeline = NewTierPipeline()

// Validate runs the four tiers against registry. It never fails; a nil
// registry is validated as an empty one.
func Validate(registry *extract.Registry, opts ...Option) *Result {
	return defaultPipeline.Validate(registry, opts...)
}

// buildResult aggregates tier results into a Result.
func buildResult(tierResults []*TierResult, timestamp time.Time) *Result {
	validationResult := &Result{
		Issues:    make([]Issue, 0),
		Tiers:     make([]TierSummary, 0, len(tierResults)),
		Timestamp: timestamp,
	}

	for _, tierResult := range tierResults {
		tierSummary := TierSummary{Tier: tierResult.Tier, Checks: tierResult.Checks}
		for _, issue := range tierResult.Issues {
			switch issue.Severity {
			case SeverityError:
				tierSummary.Errors++
			case SeverityWarning:
				tierSummary.Warnings++
			default:
				tierSummary.Infos++
			}
		}

		validationResult.Issues = append(validationResult.Issues, tierResult.Issues...)
		validationResult.Tiers = append(validationResult.Tiers, tierSummary)
		validationResult.Summary.TotalChecks += tierSummary.Checks
		validationResult.Summary.Errors += tierSummary.Errors
		validationResult.Summary.Warnings += tierSummary.Warnings
		validationResult.Summary.Infos += tierSummary.Infos
	}

	summary := &validationResult.Summary
	summary.Passed = max(0, summary.TotalChecks-summary.Errors-summary.Warnings)
	if summary.TotalChecks > 0 {
		validationResult.Score = int(math.Round(100 * float64(summary.Passed) / float64(summary.TotalChecks)))
	}
	validationResult.IsValid = summary.Errors == 0
	return validationResult
}
