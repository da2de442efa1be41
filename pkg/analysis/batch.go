package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/coolbeans/deungi/pkg/risk"
)

// FactorFrequency counts how many documents of a batch triggered a factor.
type FactorFrequency struct {
	FactorID  string `json:"factor_id" yaml:"factor_id"`
	Documents int    `json:"documents" yaml:"documents"`
	Deduction int    `json:"total_deduction" yaml:"total_deduction"`
}

// BatchSummary aggregates the reports of one batch.
type BatchSummary struct {
	Documents       int                `json:"documents" yaml:"documents"`
	Invalid         int                `json:"invalid" yaml:"invalid"`
	AverageScore    float64            `json:"average_score" yaml:"average_score"`
	Grades          map[risk.Grade]int `json:"grades" yaml:"grades"`
	CommonFactors   []FactorFrequency  `json:"common_factors" yaml:"common_factors"`
	LowestScoreID   string             `json:"lowest_score_id,omitempty" yaml:"lowest_score_id,omitempty"`
	LowestScoreFrom string             `json:"lowest_score_source,omitempty" yaml:"lowest_score_source,omitempty"`
}

var summaryGrades = []risk.Grade{risk.GradeA, risk.GradeB, risk.GradeC, risk.GradeD, risk.GradeF}

// Summarize aggregates reports. Nil reports are skipped.
func Summarize(reports []*Report) *BatchSummary {
	batchSummary := &BatchSummary{
		Grades:        make(map[risk.Grade]int, len(summaryGrades)),
		CommonFactors: make([]FactorFrequency, 0),
	}

	frequencies := make(map[string]*FactorFrequency)
	scoreSum := 0
	lowestScore := 101

	for _, report := range reports {
		if report == nil || report.Risk == nil {
			continue
		}
		batchSummary.Documents++
		batchSummary.Grades[report.Risk.Grade]++
		scoreSum += report.Risk.TotalScore
		if report.Validation != nil && !report.Validation.IsValid {
			batchSummary.Invalid++
		}
		if report.Risk.TotalScore < lowestScore {
			lowestScore = report.Risk.TotalScore
			batchSummary.LowestScoreID = report.ID
			batchSummary.LowestScoreFrom = report.Source
		}

		for _, factor := range report.Risk.Factors {
			frequency, ok := frequencies[factor.ID]
			if !ok {
				frequency = &FactorFrequency{FactorID: factor.ID}
				frequencies[factor.ID] = frequency
			}
			frequency.Documents++
			frequency.Deduction += factor.Deduction
		}
	}

	if batchSummary.Documents > 0 {
		batchSummary.AverageScore = float64(scoreSum) / float64(batchSummary.Documents)
	}

	for _, frequency := range frequencies {
		batchSummary.CommonFactors = append(batchSummary.CommonFactors, *frequency)
	}
	sort.Slice(batchSummary.CommonFactors, func(i, j int) bool {
		left, right := batchSummary.CommonFactors[i], batchSummary.CommonFactors[j]
		if left.Documents != right.Documents {
			return left.Documents > right.Documents
		}
		return left.FactorID < right.FactorID
	})

	return batchSummary
}

// ToJSON serializes the summary as indented JSON.
func (batchSummary *BatchSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(batchSummary, "", "  ")
}

// String returns a human-readable batch summary.
func (batchSummary *BatchSummary) String() string {
	var sb strings.Builder

	sb.WriteString("Batch Summary\n")
	sb.WriteString(strings.Repeat("═", 40) + "\n\n")
	sb.WriteString(fmt.Sprintf("Documents: %d (%d invalid)\n", batchSummary.Documents, batchSummary.Invalid))
	sb.WriteString(fmt.Sprintf("Average score: %.1f\n", batchSummary.AverageScore))

	sb.WriteString("Grades:")
	for _, grade := range summaryGrades {
		sb.WriteString(fmt.Sprintf(" %s=%d", grade, batchSummary.Grades[grade]))
	}
	sb.WriteString("\n")

	if len(batchSummary.CommonFactors) > 0 {
		sb.WriteString("\nMost common factors:\n")
		for i, frequency := range batchSummary.CommonFactors {
			if i >= 5 {
				break
			}
			sb.WriteString(fmt.Sprintf("  %s: %d documents (-%d total)\n",
				frequency.FactorID, frequency.Documents, frequency.Deduction))
		}
	}

	if batchSummary.LowestScoreFrom != "" {
		sb.WriteString(fmt.Sprintf("\nLowest score: %s\n", batchSummary.LowestScoreFrom))
	}

	return sb.String()
}

// ReportsToCSV renders one row per report: source, score, grade, mortgage
// ratio, validity and issue counts.
func ReportsToCSV(reports []*Report) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{"id", "source", "score", "grade", "mortgage_ratio", "valid", "errors", "warnings", "infos"})
	for _, report := range reports {
		if report == nil || report.Risk == nil || report.Validation == nil {
			continue
		}
		summary := report.Validation.Summary
		w.Write([]string{
			report.ID,
			report.Source,
			strconv.Itoa(report.Risk.TotalScore),
			string(report.Risk.Grade),
			strconv.FormatFloat(report.Risk.MortgageRatio, 'f', 1, 64),
			strconv.FormatBool(report.Validation.IsValid),
			strconv.Itoa(summary.Errors),
			strconv.Itoa(summary.Warnings),
			strconv.Itoa(summary.Infos),
		})
	}

	w.Flush()
	return sb.String()
}
