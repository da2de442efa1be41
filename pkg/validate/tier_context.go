package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// cancelReferencePattern finds "N번 ... 말소" lines in entry detail.
var cancelReferencePattern = regexp.MustCompile(`(\d+)\s*번.*말소`)

// ContextTier checks relationships between entries: ordering, references
// and legally implausible combinations.
type ContextTier struct{}

// NewContextTier creates the context tier.
func NewContextTier() *ContextTier {
	return &ContextTier{}
}

// Name returns CategoryContext.
func (contextTier *ContextTier) Name() Category { return CategoryContext }

// Run executes the context checks.
func (contextTier *ContextTier) Run(validationContext *ValidationContext) *TierResult {
	tierResult := newTierResult(contextTier.Name())
	registry := validationContext.registry()
	recounted := validationContext.recounted()

	tierResult.check(checkChronology("ownership", registry.Ownership)...)
	tierResult.check(checkChronology("encumbrance", registry.Encumbrance)...)

	tierResult.check(checkCancelReferences("ownership", registry.Ownership, SeverityInfo)...)
	tierResult.check(checkCancelReferences("encumbrance", registry.Encumbrance, SeverityWarning)...)

	tierResult.check(checkActiveOwner(registry.Ownership, recounted)...)
	tierResult.check(checkPostSeizureMortgages(registry)...)
	tierResult.check(checkFirstOwnershipEntry(registry.Ownership)...)
	tierResult.check(checkOrphanEncumbrance(registry.Encumbrance, recounted)...)

	return tierResult
}

// checkChronology warns for every well-formed date earlier than the latest
// date seen before it in the same section.
func checkChronology(sectionName string, entries []extract.Entry) []Issue {
	var issues []Issue
	latestDate := ""
	latestOrder := 0

	for entryIndex, entry := range entries {
		if !normalizedDatePattern.MatchString(entry.Date) {
			continue
		}
		if latestDate != "" && entry.Date < latestDate {
			issues = append(issues, Issue{
				ID:       "CTX_DATE_ORDER",
				Severity: SeverityWarning,
				Field:    fmt.Sprintf("%s[%d].date", sectionName, entryIndex),
				Message:  fmt.Sprintf("순위 %d의 접수일자가 순위 %d보다 앞섭니다", entry.Order, latestOrder),
				Expected: ">= " + latestDate,
				Actual:   entry.Date,
			})
			continue
		}
		latestDate = entry.Date
		latestOrder = entry.Order
	}
	return issues
}

// checkCancelReferences reports "N번 ... 말소" lines whose N is not an
// order number of the same section.
func checkCancelReferences(sectionName string, entries []extract.Entry, severity Severity) []Issue {
	knownOrders := make(map[int]bool, len(entries))
	for _, entry := range entries {
		knownOrders[entry.Order] = true
	}

	var issues []Issue
	for entryIndex, entry := range entries {
		for _, line := range strings.Split(entry.Detail, "\n") {
			m := cancelReferencePattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			referencedOrder, err := strconv.Atoi(m[1])
			if err != nil || knownOrders[referencedOrder] {
				continue
			}
			issues = append(issues, Issue{
				ID:       "CTX_CANCEL_REF",
				Severity: severity,
				Field:    fmt.Sprintf("%s[%d].detail", sectionName, entryIndex),
				Message:  fmt.Sprintf("말소 대상 순위 %d번이 존재하지 않습니다", referencedOrder),
				Actual:   m[1],
			})
		}
	}
	return issues
}

func checkActiveOwner(ownership []extract.Entry, recounted *tally) []Issue {
	if len(ownership) == 0 || recounted.ownershipActive > 0 {
		return nil
	}
	return []Issue{{
		ID:       "CTX_NO_OWNER",
		Severity: SeverityError,
		Field:    "ownership",
		Message:  "유효한 갑구 항목이 없어 현재 소유자를 확인할 수 없습니다",
		Expected: ">= 1",
		Actual:   "0",
	}}
}

// checkPostSeizureMortgages warns for active mortgages dated after the
// earliest active seizure, provisional seizure or trust.
func checkPostSeizureMortgages(registry *extract.Registry) []Issue {
	earliestDate := ""
	for _, section := range [][]extract.Entry{registry.Ownership, registry.Encumbrance} {
		for _, entry := range section {
			if entry.Cancelled || !normalizedDatePattern.MatchString(entry.Date) {
				continue
			}
			switch entry.Purpose {
			case taxonomy.RightSeizure, taxonomy.RightProvisionalSeizure, taxonomy.RightTrust:
				if earliestDate == "" || entry.Date < earliestDate {
					earliestDate = entry.Date
				}
			}
		}
	}
	if earliestDate == "" {
		return nil
	}

	var issues []Issue
	for entryIndex, entry := range registry.Encumbrance {
		if entry.Cancelled || entry.Purpose != taxonomy.RightMortgage {
			continue
		}
		if normalizedDatePattern.MatchString(entry.Date) && entry.Date > earliestDate {
			issues = append(issues, Issue{
				ID:       "CTX_POST_SEIZURE_MORTGAGE",
				Severity: SeverityWarning,
				Field:    fmt.Sprintf("encumbrance[%d].date", entryIndex),
				Message:  "압류 또는 신탁 이후에 설정된 근저당권입니다",
				Expected: "<= " + earliestDate,
				Actual:   entry.Date,
			})
		}
	}
	return issues
}

func checkFirstOwnershipEntry(ownership []extract.Entry) []Issue {
	if len(ownership) == 0 {
		return nil
	}
	first := ownership[0]
	if first.Purpose == taxonomy.RightOwnershipPreservation || first.Purpose == taxonomy.RightOwnershipTransfer {
		return nil
	}
	return []Issue{{
		ID:       "CTX_FIRST_ENTRY",
		Severity: SeverityWarning,
		Field:    "ownership[0].purpose",
		Message:  "첫 갑구 항목이 소유권보존 또는 소유권이전이 아닙니다",
		Expected: fmt.Sprintf("%s|%s", taxonomy.RightOwnershipPreservation, taxonomy.RightOwnershipTransfer),
		Actual:   string(first.Purpose),
	}}
}

func checkOrphanEncumbrance(encumbrance []extract.Entry, recounted *tally) []Issue {
	if len(encumbrance) == 0 || recounted.ownershipActive > 0 {
		return nil
	}
	return []Issue{{
		ID:       "CTX_ORPHAN_ENCUMBRANCE",
		Severity: SeverityError,
		Field:    "encumbrance",
		Message:  "유효한 소유자 없이 을구 항목만 존재합니다",
		Expected: ">= 1 active ownership entry",
		Actual:   "0",
	}}
}
