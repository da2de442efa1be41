// Package risk scores a parsed registry from 0 to 100 by applying
// independent deduction rules.
package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/coolbeans/deungi/pkg/extract"
)

// Severity ranks a risk factor.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Grade is the letter grade of a score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// gradeThresholds lists the minimum score per grade, best grade first.
var gradeThresholds = []struct {
	minimum int
	grade   Grade
}{
	{85, GradeA},
	{70, GradeB},
	{50, GradeC},
	{30, GradeD},
}

// GradeFor returns the grade for a total score.
func GradeFor(totalScore int) Grade {
	for _, threshold := range gradeThresholds {
		if totalScore >= threshold.minimum {
			return threshold.grade
		}
	}
	return GradeF
}

// Factor is one itemized deduction.
type Factor struct {
	ID          string   `json:"id" yaml:"id"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	Deduction   int      `json:"deduction" yaml:"deduction"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Detail      string   `json:"detail" yaml:"detail"`
}

// Score is the result of scoring one registry.
type Score struct {
	TotalScore     int      `json:"total_score" yaml:"total_score"`
	Grade          Grade    `json:"grade" yaml:"grade"`
	Factors        []Factor `json:"factors" yaml:"factors"`
	MortgageRatio  float64  `json:"mortgage_ratio" yaml:"mortgage_ratio"`
	TotalDeduction int      `json:"total_deduction" yaml:"total_deduction"`
	Summary        string   `json:"summary" yaml:"summary"`
}

// ToJSON serializes the score as indented JSON.
func (score *Score) ToJSON() ([]byte, error) {
	return json.MarshalIndent(score, "", "  ")
}

// FactorIDs returns the ids of all factors in presentation order.
func (score *Score) FactorIDs() []string {
	factorIDs := make([]string, 0, len(score.Factors))
	for _, factor := range score.Factors {
		factorIDs = append(factorIDs, factor.ID)
	}
	return factorIDs
}

// Evaluate scores a registry. An estimatedPrice of 0 or less disables the
// price-relative rules only.
func Evaluate(registry *extract.Registry, estimatedPrice int64) *Score {
	if registry == nil {
		registry = &extract.Registry{}
	}
	if estimatedPrice < 0 {
		estimatedPrice = 0
	}

	input := newRuleInput(registry, estimatedPrice)

	factors := make([]Factor, 0)
	for _, rule := range defaultRules {
		factors = append(factors, rule(input)...)
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Deduction > factors[j].Deduction
	})

	totalDeduction := 0
	for _, factor := range factors {
		totalDeduction += factor.Deduction
	}

	totalScore := 100 - totalDeduction
	if totalScore < 0 {
		totalScore = 0
	}

	score := &Score{
		TotalScore:     totalScore,
		Grade:          GradeFor(totalScore),
		Factors:        factors,
		MortgageRatio:  roundRatio(input.mortgageRatio()),
		TotalDeduction: totalDeduction,
	}
	score.Summary = summarize(score, registry)
	return score
}

// roundRatio rounds a percentage to one decimal place.
func roundRatio(ratio float64) float64 {
	return math.Round(ratio*10) / 10
}

var gradeLabels = map[Grade]string{
	GradeA: "안전",
	GradeB: "양호",
	GradeC: "주의",
	GradeD: "위험",
	GradeF: "매우 위험",
}

func summarize(score *Score, registry *extract.Registry) string {
	criticalCount := 0
	highCount := 0
	for _, factor := range score.Factors {
		switch factor.Severity {
		case SeverityCritical:
			criticalCount++
		case SeverityHigh:
			highCount++
		}
	}

	return fmt.Sprintf("종합 %d점 %s등급(%s). 위험 요인 %d건(심각 %d건, 높음 %d건), 유효 갑구 %d건, 유효 을구 %d건.",
		score.TotalScore,
		score.Grade,
		gradeLabels[score.Grade],
		len(score.Factors),
		criticalCount,
		highCount,
		registry.Summary.ActiveOwnership,
		registry.Summary.ActiveEncumbrance,
	)
}
