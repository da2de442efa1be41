package risk

import (
	"fmt"

	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// Factor identifiers.
const (
	FactorMortgageRatio           = "MORTGAGE_RATIO"
	FactorSeizure                 = "SEIZURE"
	FactorProvisionalSeizure      = "PROVISIONAL_SEIZURE"
	FactorProvisionalDisposition  = "PROVISIONAL_DISPOSITION"
	FactorAuction                 = "AUCTION"
	FactorProvisionalRegistration = "PROVISIONAL_REGISTRATION"
	FactorTrust                   = "TRUST"
	FactorTransferFrequency       = "TRANSFER_FREQUENCY"
	FactorMultipleMortgages       = "MULTIPLE_MORTGAGES"
	FactorTotalClaimsRatio        = "TOTAL_CLAIMS_RATIO"
	FactorLeaseRegistration       = "LEASE_REGISTRATION"
	FactorWarningRegistration     = "WARNING_REGISTRATION"
	FactorRedemption              = "REDEMPTION"
)

// Rule inspects a registry and returns zero or more deductions. Rules do
// not see each other's output.
type Rule func(input *ruleInput) []Factor

// defaultRules is the fixed rule set applied by Evaluate.
var defaultRules = []Rule{
	mortgageRatioRule,
	perEntryRule(FactorSeizure, taxonomy.RightSeizure, 25, SeverityCritical,
		"압류", "유효한 압류 등기가 있습니다"),
	perEntryRule(FactorProvisionalSeizure, taxonomy.RightProvisionalSeizure, 20, SeverityCritical,
		"가압류", "유효한 가압류 등기가 있습니다"),
	perEntryRule(FactorProvisionalDisposition, taxonomy.RightProvisionalDisposition, 15, SeverityHigh,
		"가처분", "처분금지가처분 등기가 있어 소유권 분쟁 가능성이 있습니다"),
	flatRule(FactorAuction, taxonomy.RightAuctionOrder, 30, SeverityCritical,
		"경매", "경매개시결정 등기가 있습니다"),
	flatRule(FactorProvisionalRegistration, taxonomy.RightProvisionalRegistration, 10, SeverityMedium,
		"가등기", "가등기가 있어 본등기 시 권리를 잃을 수 있습니다"),
	flatRule(FactorTrust, taxonomy.RightTrust, 15, SeverityHigh,
		"신탁", "신탁 등기가 있어 수탁자 동의 없이 계약할 수 없습니다"),
	transferFrequencyRule,
	multipleMortgagesRule,
	totalClaimsRatioRule,
	flatRule(FactorLeaseRegistration, taxonomy.RightLeaseRegistration, 20, SeverityCritical,
		"임차권", "임차권등기가 있어 보증금 미반환 이력이 있습니다"),
	flatRule(FactorWarningRegistration, taxonomy.RightWarningRegistration, 12, SeverityHigh,
		"예고등기", "예고등기가 있어 등기 원인에 대한 소송이 진행 중입니다"),
	flatRule(FactorRedemption, taxonomy.RightRedemption, 10, SeverityMedium,
		"환매특약", "환매특약 등기가 있어 매도인이 다시 사들일 수 있습니다"),
}

// ruleInput is the read-only view every rule receives.
type ruleInput struct {
	registry       *extract.Registry
	estimatedPrice int64
	activeCounts   map[taxonomy.RightType]int
}

func newRuleInput(registry *extract.Registry, estimatedPrice int64) *ruleInput {
	activeCounts := make(map[taxonomy.RightType]int)
	for _, section := range [][]extract.Entry{registry.Ownership, registry.Encumbrance} {
		for _, entry := range section {
			if entry.Active() {
				activeCounts[entry.Purpose]++
			}
		}
	}
	return &ruleInput{
		registry:       registry,
		estimatedPrice: estimatedPrice,
		activeCounts:   activeCounts,
	}
}

// mortgageRatio is the mortgage total as a percentage of the price, or 0
// when no price is known.
func (input *ruleInput) mortgageRatio() float64 {
	return percentOf(input.registry.Summary.MortgageTotal, input.estimatedPrice)
}

func (input *ruleInput) totalClaimsRatio() float64 {
	return percentOf(input.registry.Summary.TotalClaims, input.estimatedPrice)
}

func percentOf(amount, price int64) float64 {
	if price <= 0 {
		return 0
	}
	return float64(amount) / float64(price) * 100
}

// ratioTier is one step of a price-relative rule. Tiers are listed from
// the highest threshold down and only the first exceeded tier applies.
type ratioTier struct {
	above     float64
	deduction int
	severity  Severity
}

var mortgageRatioTiers = []ratioTier{
	{120, 30, SeverityCritical},
	{100, 25, SeverityCritical},
	{80, 20, SeverityHigh},
	{70, 10, SeverityMedium},
	{50, 5, SeverityLow},
}

var totalClaimsRatioTiers = []ratioTier{
	{100, 25, SeverityCritical},
	{80, 15, SeverityHigh},
	{60, 8, SeverityMedium},
}

func highestTier(tiers []ratioTier, ratio float64) (ratioTier, bool) {
	for _, tier := range tiers {
		if ratio > tier.above {
			return tier, true
		}
	}
	return ratioTier{}, false
}

func mortgageRatioRule(input *ruleInput) []Factor {
	if input.estimatedPrice <= 0 {
		return nil
	}
	ratio := input.mortgageRatio()
	tier, ok := highestTier(mortgageRatioTiers, ratio)
	if !ok {
		return nil
	}
	return []Factor{{
		ID:          FactorMortgageRatio,
		Category:    "근저당",
		Description: "근저당 채권최고액이 매매가 대비 높습니다",
		Deduction:   tier.deduction,
		Severity:    tier.severity,
		Detail: fmt.Sprintf("채권최고액 합계 %d원, 매매가 %d원 대비 %.1f%%",
			input.registry.Summary.MortgageTotal, input.estimatedPrice, roundRatio(ratio)),
	}}
}

func totalClaimsRatioRule(input *ruleInput) []Factor {
	if input.estimatedPrice <= 0 {
		return nil
	}
	ratio := input.totalClaimsRatio()
	tier, ok := highestTier(totalClaimsRatioTiers, ratio)
	if !ok {
		return nil
	}
	return []Factor{{
		ID:          FactorTotalClaimsRatio,
		Category:    "선순위 채권",
		Description: "근저당과 전세권을 합한 선순위 채권이 매매가 대비 높습니다",
		Deduction:   tier.deduction,
		Severity:    tier.severity,
		Detail: fmt.Sprintf("선순위 채권 합계 %d원, 매매가 %d원 대비 %.1f%%",
			input.registry.Summary.TotalClaims, input.estimatedPrice, roundRatio(ratio)),
	}}
}

// perEntryRule deducts deduction for every active entry of rightType.
func perEntryRule(id string, rightType taxonomy.RightType, deduction int, severity Severity, category, description string) Rule {
	return func(input *ruleInput) []Factor {
		count := input.activeCounts[rightType]
		if count == 0 {
			return nil
		}
		return []Factor{{
			ID:          id,
			Category:    category,
			Description: description,
			Deduction:   deduction * count,
			Severity:    severity,
			Detail:      fmt.Sprintf("%s %d건", rightType.Label(), count),
		}}
	}
}

// flatRule deducts deduction once when any active entry of rightType
// exists. The count only appears in the detail text.
func flatRule(id string, rightType taxonomy.RightType, deduction int, severity Severity, category, description string) Rule {
	return func(input *ruleInput) []Factor {
		count := input.activeCounts[rightType]
		if count == 0 {
			return nil
		}
		return []Factor{{
			ID:          id,
			Category:    category,
			Description: description,
			Deduction:   deduction,
			Severity:    severity,
			Detail:      fmt.Sprintf("%s %d건", rightType.Label(), count),
		}}
	}
}

func transferFrequencyRule(input *ruleInput) []Factor {
	transfers := input.registry.Summary.OwnershipTransferCount
	var deduction int
	var severity Severity
	switch {
	case transfers >= 4:
		deduction, severity = 15, SeverityHigh
	case transfers == 3:
		deduction, severity = 10, SeverityMedium
	default:
		return nil
	}
	return []Factor{{
		ID:          FactorTransferFrequency,
		Category:    "소유권 이전",
		Description: "소유권 이전이 잦아 투기 또는 분쟁 이력이 의심됩니다",
		Deduction:   deduction,
		Severity:    severity,
		Detail:      fmt.Sprintf("유효한 소유권이전 %d건", transfers),
	}}
}

func multipleMortgagesRule(input *ruleInput) []Factor {
	mortgages := input.activeCounts[taxonomy.RightMortgage]
	if mortgages < 3 {
		return nil
	}
	return []Factor{{
		ID:          FactorMultipleMortgages,
		Category:    "근저당",
		Description: "근저당권이 여러 건 설정되어 있습니다",
		Deduction:   10,
		Severity:    SeverityMedium,
		Detail:      fmt.Sprintf("유효한 근저당권 %d건", mortgages),
	}}
}
