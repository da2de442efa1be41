package validate

import (
	"fmt"
	"math"
	"strconv"
)

// mortgageRatioTolerance is the allowed drift, in percentage points,
// between the stored and recomputed mortgage ratio.
const mortgageRatioTolerance = 0.1

// ArithmeticTier recomputes every summary statistic and compares it to the
// stored value.
type ArithmeticTier struct{}

// NewArithmeticTier creates the arithmetic tier.
func NewArithmeticTier() *ArithmeticTier {
	return &ArithmeticTier{}
}

// Name returns CategoryArithmetic.
func (arithmeticTier *ArithmeticTier) Name() Category { return CategoryArithmetic }

// Run compares sums and counts, and the mortgage ratio when both a price
// and a risk score were supplied.
func (arithmeticTier *ArithmeticTier) Run(validationContext *ValidationContext) *TierResult {
	tierResult := newTierResult(arithmeticTier.Name())
	summary := validationContext.registry().Summary
	recounted := validationContext.recounted()

	amountChecks := []struct {
		id       string
		field    string
		stored   int64
		expected int64
	}{
		{"ARITH_MORTGAGE_TOTAL", "summary.mortgage_total", summary.MortgageTotal, recounted.mortgageSum},
		{"ARITH_DEPOSIT_RIGHT_TOTAL", "summary.deposit_right_total", summary.DepositRightTotal, recounted.depositRightSum},
		{"ARITH_TOTAL_CLAIMS", "summary.total_claims", summary.TotalClaims, recounted.totalClaims()},
	}
	for _, amountCheck := range amountChecks {
		tierResult.check(compareAmount(amountCheck.id, amountCheck.field, amountCheck.stored, amountCheck.expected)...)
	}

	countChecks := []struct {
		id       string
		field    string
		stored   int
		expected int
	}{
		{"ARITH_OWNERSHIP_TOTAL", "summary.total_ownership", summary.TotalOwnership, recounted.ownershipTotal},
		{"ARITH_OWNERSHIP_ACTIVE", "summary.active_ownership", summary.ActiveOwnership, recounted.ownershipActive},
		{"ARITH_ENCUMBRANCE_TOTAL", "summary.total_encumbrance", summary.TotalEncumbrance, recounted.encumbranceTotal},
		{"ARITH_ENCUMBRANCE_ACTIVE", "summary.active_encumbrance", summary.ActiveEncumbrance, recounted.encumbranceActive},
		{"ARITH_CANCELLED_COUNT", "summary.cancelled_count", summary.CancelledCount, recounted.cancelled},
		{"ARITH_TRANSFER_COUNT", "summary.ownership_transfer_count", summary.OwnershipTransferCount, recounted.transfers},
	}
	for _, countCheck := range countChecks {
		tierResult.check(compareCount(countCheck.id, countCheck.field, countCheck.stored, countCheck.expected)...)
	}

	if validationContext.EstimatedPrice > 0 && validationContext.RiskScore != nil {
		tierResult.check(checkMortgageRatio(validationContext.RiskScore.MortgageRatio,
			recounted.mortgageSum, validationContext.EstimatedPrice)...)
	}

	return tierResult
}

func compareAmount(id, field string, stored, expected int64) []Issue {
	if stored == expected {
		return nil
	}
	return []Issue{{
		ID:       id,
		Severity: SeverityError,
		Field:    field,
		Message:  "저장된 합계가 항목 재계산 결과와 다릅니다",
		Expected: strconv.FormatInt(expected, 10),
		Actual:   strconv.FormatInt(stored, 10),
	}}
}

func compareCount(id, field string, stored, expected int) []Issue {
	if stored == expected {
		return nil
	}
	return []Issue{{
		ID:       id,
		Severity: SeverityError,
		Field:    field,
		Message:  "저장된 건수가 항목 재계산 결과와 다릅니다",
		Expected: strconv.Itoa(expected),
		Actual:   strconv.Itoa(stored),
	}}
}

func checkMortgageRatio(storedRatio float64, mortgageSum, estimatedPrice int64) []Issue {
	expectedRatio := math.Round(float64(mortgageSum)/float64(estimatedPrice)*1000) / 10
	if math.Abs(storedRatio-expectedRatio) <= mortgageRatioTolerance {
		return nil
	}
	return []Issue{{
		ID:       "ARITH_MORTGAGE_RATIO",
		Severity: SeverityWarning,
		Field:    "risk.mortgage_ratio",
		Message:  "근저당 비율이 재계산 결과와 다릅니다",
		Expected: fmt.Sprintf("%.1f", expectedRatio),
		Actual:   fmt.Sprintf("%.1f", storedRatio),
	}}
}
