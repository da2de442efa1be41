package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coolbeans/deungi/pkg/risk"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

const (
	minimumSanePrice = 50_000_000
	maximumSanePrice = 50_000_000_000
)

// factorFlags pairs risk factor ids with the summary flag that must back
// them. Price-relative and count-based factors have no flag.
var factorFlags = []struct {
	factorID  string
	flagField string
}{
	{risk.FactorSeizure, "has_seizure"},
	{risk.FactorProvisionalSeizure, "has_provisional_seizure"},
	{risk.FactorProvisionalDisposition, "has_provisional_disposition"},
	{risk.FactorAuction, "has_auction_order"},
	{risk.FactorTrust, "has_trust"},
	{risk.FactorProvisionalRegistration, "has_provisional_registration"},
	{risk.FactorLeaseRegistration, "has_lease_registration"},
	{risk.FactorWarningRegistration, "has_warning_registration"},
	{risk.FactorRedemption, "has_redemption"},
}

// advisoryKeywords lists the critical conditions advisory text should
// mention when present.
var advisoryKeywords = []struct {
	rightType taxonomy.RightType
	keyword   string
}{
	{taxonomy.RightSeizure, "압류"},
	{taxonomy.RightAuctionOrder, "경매"},
	{taxonomy.RightTrust, "신탁"},
	{taxonomy.RightLeaseRegistration, "임차권"},
}

// gradeFloors is the grade table used to re-derive a score's grade.
var gradeFloors = []struct {
	floor int
	grade risk.Grade
}{
	{85, risk.GradeA},
	{70, risk.GradeB},
	{50, risk.GradeC},
	{30, risk.GradeD},
}

// CrosscheckTier compares the summary flags with the entries and the risk
// score with the summary.
type CrosscheckTier struct{}

// NewCrosscheckTier creates the cross-check tier.
func NewCrosscheckTier() *CrosscheckTier {
	return &CrosscheckTier{}
}

// Name returns CategoryCrosscheck.
func (crosscheckTier *CrosscheckTier) Name() Category { return CategoryCrosscheck }

// Run executes the flag checks always, the score checks when a risk score
// was supplied, the price check when a price was supplied, and the
// advisory check when advisory text was supplied.
func (crosscheckTier *CrosscheckTier) Run(validationContext *ValidationContext) *TierResult {
	tierResult := newTierResult(crosscheckTier.Name())
	summary := validationContext.registry().Summary
	recounted := validationContext.recounted()

	storedFlags := make(map[string]bool, len(summaryFlags))
	for _, flag := range summaryFlags {
		stored := flag.stored(summary)
		storedFlags[flag.field] = stored
		tierResult.check(compareFlag(flag.field, stored, recounted.has(flag.rightType))...)
	}

	if score := validationContext.RiskScore; score != nil {
		factorIDs := make(map[string]bool, len(score.Factors))
		for _, factor := range score.Factors {
			factorIDs[factor.ID] = true
		}
		for _, factorFlag := range factorFlags {
			tierResult.check(compareFactorWithFlag(factorFlag.factorID, factorFlag.flagField,
				factorIDs[factorFlag.factorID], storedFlags[factorFlag.flagField])...)
		}
		tierResult.check(checkDeduction(score)...)
		tierResult.check(checkScoreFormula(score)...)
		tierResult.check(checkGrade(score)...)
	}

	if validationContext.EstimatedPrice != 0 {
		tierResult.check(checkPriceSanity(validationContext.EstimatedPrice)...)
	}

	if validationContext.AdvisoryText != "" {
		tierResult.check(checkAdvisoryRelevance(validationContext.AdvisoryText, recounted)...)
	}

	return tierResult
}

func compareFlag(field string, stored, expected bool) []Issue {
	if stored == expected {
		return nil
	}
	return []Issue{{
		ID:       "XCHK_FLAG_MISMATCH",
		Severity: SeverityError,
		Field:    "summary." + field,
		Message:  "요약 플래그가 항목에서 다시 계산한 값과 다릅니다",
		Expected: strconv.FormatBool(expected),
		Actual:   strconv.FormatBool(stored),
	}}
}

func compareFactorWithFlag(factorID, flagField string, factorPresent, flagSet bool) []Issue {
	flagField = "summary." + flagField
	switch {
	case factorPresent && !flagSet:
		return []Issue{{
			ID:       "XCHK_FACTOR_WITHOUT_FLAG",
			Severity: SeverityError,
			Field:    flagField,
			Message:  fmt.Sprintf("위험 요인 %s이(가) 있으나 요약 플래그가 꺼져 있습니다", factorID),
			Expected: "true",
			Actual:   "false",
		}}
	case flagSet && !factorPresent:
		return []Issue{{
			ID:       "XCHK_FLAG_WITHOUT_FACTOR",
			Severity: SeverityInfo,
			Field:    "risk.factors",
			Message:  fmt.Sprintf("요약 플래그 %s에 대응하는 위험 요인 %s이(가) 없습니다", flagField, factorID),
			Expected: factorID,
		}}
	}
	return nil
}

func checkDeduction(score *risk.Score) []Issue {
	deductionSum := 0
	for _, factor := range score.Factors {
		deductionSum += factor.Deduction
	}
	if deductionSum == score.TotalDeduction {
		return nil
	}
	return []Issue{{
		ID:       "XCHK_DEDUCTION",
		Severity: SeverityError,
		Field:    "risk.total_deduction",
		Message:  "위험 요인 감점 합계가 총 감점과 다릅니다",
		Expected: strconv.Itoa(deductionSum),
		Actual:   strconv.Itoa(score.TotalDeduction),
	}}
}

func checkScoreFormula(score *risk.Score) []Issue {
	expectedScore := max(0, 100-score.TotalDeduction)
	if expectedScore == score.TotalScore {
		return nil
	}
	return []Issue{{
		ID:       "XCHK_SCORE",
		Severity: SeverityError,
		Field:    "risk.total_score",
		Message:  "총점이 100 - 총 감점과 다릅니다",
		Expected: strconv.Itoa(expectedScore),
		Actual:   strconv.Itoa(score.TotalScore),
	}}
}

func checkGrade(score *risk.Score) []Issue {
	expectedGrade := risk.GradeF
	for _, gradeFloor := range gradeFloors {
		if score.TotalScore >= gradeFloor.floor {
			expectedGrade = gradeFloor.grade
			break
		}
	}
	if expectedGrade == score.Grade {
		return nil
	}
	return []Issue{{
		ID:       "XCHK_GRADE",
		Severity: SeverityError,
		Field:    "risk.grade",
		Message:  "등급이 총점 기준과 다릅니다",
		Expected: string(expectedGrade),
		Actual:   string(score.Grade),
	}}
}

func checkPriceSanity(estimatedPrice int64) []Issue {
	switch {
	case estimatedPrice < minimumSanePrice:
		return []Issue{{
			ID:       "XCHK_PRICE_SANITY",
			Severity: SeverityError,
			Field:    "estimated_price",
			Message:  "추정 매매가가 비정상적으로 낮습니다",
			Expected: fmt.Sprintf(">= %d", minimumSanePrice),
			Actual:   strconv.FormatInt(estimatedPrice, 10),
		}}
	case estimatedPrice > maximumSanePrice:
		return []Issue{{
			ID:       "XCHK_PRICE_SANITY",
			Severity: SeverityWarning,
			Field:    "estimated_price",
			Message:  "추정 매매가가 비정상적으로 높습니다",
			Expected: fmt.Sprintf("<= %d", int64(maximumSanePrice)),
			Actual:   strconv.FormatInt(estimatedPrice, 10),
		}}
	}
	return nil
}

func checkAdvisoryRelevance(advisoryText string, recounted *tally) []Issue {
	var issues []Issue
	for _, advisoryKeyword := range advisoryKeywords {
		if !recounted.has(advisoryKeyword.rightType) || strings.Contains(advisoryText, advisoryKeyword.keyword) {
			continue
		}
		issues = append(issues, Issue{
			ID:       "XCHK_ADVISORY_RELEVANCE",
			Severity: SeverityInfo,
			Field:    "advisory",
			Message:  fmt.Sprintf("%s 등기가 있으나 안내문에 '%s' 언급이 없습니다", advisoryKeyword.rightType.Label(), advisoryKeyword.keyword),
			Expected: advisoryKeyword.keyword,
		})
	}
	return issues
}
