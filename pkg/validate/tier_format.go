package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/coolbeans/deungi/pkg/extract"
)

const (
	minimumYear = 1900
	maximumYear = 2035

	lowAmountBound  = 1_000_000
	highAmountBound = 50_000_000_000

	minimumHolderRunes = 2
	maximumHolderRunes = 30
)

// normalizedDatePattern is the only date shape the parser emits.
var normalizedDatePattern = regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})$`)

// FormatTier checks the shape of individual fields.
type FormatTier struct{}

// NewFormatTier creates the format tier.
func NewFormatTier() *FormatTier {
	return &FormatTier{}
}

// Name returns CategoryFormat.
func (formatTier *FormatTier) Name() Category { return CategoryFormat }

// Run checks dates, amounts, order numbers, holders and risk levels of
// every entry, plus title and ownership completeness.
func (formatTier *FormatTier) Run(validationContext *ValidationContext) *TierResult {
	tierResult := newTierResult(formatTier.Name())
	registry := validationContext.registry()

	sections := []struct {
		name       string
		entries    []extract.Entry
		hasAmounts bool
	}{
		{"ownership", registry.Ownership, false},
		{"encumbrance", registry.Encumbrance, true},
	}

	for _, section := range sections {
		for entryIndex, entry := range section.entries {
			fieldPrefix := fmt.Sprintf("%s[%d]", section.name, entryIndex)

			tierResult.check(checkDate(fieldPrefix+".date", entry.Date)...)
			if section.hasAmounts {
				tierResult.check(checkAmount(fieldPrefix+".amount", entry.Amount)...)
			}
			tierResult.check(checkHolder(fieldPrefix+".holder", entry.Holder)...)
			tierResult.check(checkRiskLevel(fieldPrefix+".risk_level", entry)...)
		}
		tierResult.check(checkOrders(section.name, section.entries)...)
	}

	tierResult.check(checkTitleAddress(registry.Title)...)
	tierResult.check(checkOwnershipPresent(registry.Ownership)...)

	return tierResult
}

func checkDate(field, date string) []Issue {
	if date == "" {
		return []Issue{{
			ID:       "FMT_DATE_MISSING",
			Severity: SeverityWarning,
			Field:    field,
			Message:  "접수일자가 없습니다",
		}}
	}

	m := normalizedDatePattern.FindStringSubmatch(date)
	if m == nil {
		return []Issue{{
			ID:       "FMT_DATE_PATTERN",
			Severity: SeverityError,
			Field:    field,
			Message:  "날짜 형식이 YYYY.MM.DD가 아닙니다",
			Expected: "YYYY.MM.DD",
			Actual:   date,
		}}
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if year < minimumYear || year > maximumYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return []Issue{{
			ID:       "FMT_DATE_RANGE",
			Severity: SeverityError,
			Field:    field,
			Message:  "날짜 값이 허용 범위를 벗어났습니다",
			Expected: fmt.Sprintf("%d-%d년, 1-12월, 1-31일", minimumYear, maximumYear),
			Actual:   date,
		}}
	}
	return nil
}

func checkAmount(field string, amount int64) []Issue {
	switch {
	case amount < 0:
		return []Issue{{
			ID:       "FMT_AMOUNT_NEGATIVE",
			Severity: SeverityError,
			Field:    field,
			Message:  "금액이 음수입니다",
			Actual:   strconv.FormatInt(amount, 10),
		}}
	case amount > 0 && amount < lowAmountBound:
		return []Issue{{
			ID:       "FMT_AMOUNT_LOW",
			Severity: SeverityWarning,
			Field:    field,
			Message:  "금액이 비정상적으로 작습니다",
			Expected: fmt.Sprintf(">= %d", lowAmountBound),
			Actual:   strconv.FormatInt(amount, 10),
		}}
	case amount > highAmountBound:
		return []Issue{{
			ID:       "FMT_AMOUNT_HIGH",
			Severity: SeverityWarning,
			Field:    field,
			Message:  "금액이 비정상적으로 큽니다",
			Expected: fmt.Sprintf("<= %d", int64(highAmountBound)),
			Actual:   strconv.FormatInt(amount, 10),
		}}
	}
	return nil
}

func checkHolder(field, holder string) []Issue {
	holderRunes := utf8.RuneCountInString(holder)
	switch {
	case holderRunes == 0:
		return []Issue{{
			ID:       "FMT_HOLDER_EMPTY",
			Severity: SeverityInfo,
			Field:    field,
			Message:  "권리자를 추출하지 못했습니다",
		}}
	case holderRunes < minimumHolderRunes:
		return []Issue{{
			ID:       "FMT_HOLDER_SHORT",
			Severity: SeverityWarning,
			Field:    field,
			Message:  "권리자 이름이 너무 짧습니다",
			Actual:   holder,
		}}
	case holderRunes > maximumHolderRunes:
		return []Issue{{
			ID:       "FMT_HOLDER_LONG",
			Severity: SeverityWarning,
			Field:    field,
			Message:  "권리자 이름이 너무 깁니다",
			Actual:   holder,
		}}
	}
	return nil
}

func checkRiskLevel(field string, entry extract.Entry) []Issue {
	if entry.RiskLevel.Valid() {
		return nil
	}
	return []Issue{{
		ID:       "FMT_RISK_LEVEL",
		Severity: SeverityError,
		Field:    field,
		Message:  "알 수 없는 위험 등급입니다",
		Expected: "danger|warning|safe|info",
		Actual:   string(entry.RiskLevel),
	}}
}

// checkOrders flags non-positive order numbers per entry and each repeated
// order number once.
func checkOrders(sectionName string, entries []extract.Entry) []Issue {
	var issues []Issue
	seenOrders := make(map[int]int, len(entries))

	for entryIndex, entry := range entries {
		field := fmt.Sprintf("%s[%d].order", sectionName, entryIndex)
		if entry.Order <= 0 {
			issues = append(issues, Issue{
				ID:       "FMT_ORDER_INVALID",
				Severity: SeverityError,
				Field:    field,
				Message:  "순위번호가 양수가 아닙니다",
				Actual:   strconv.Itoa(entry.Order),
			})
			continue
		}
		seenOrders[entry.Order]++
		if seenOrders[entry.Order] == 2 {
			issues = append(issues, Issue{
				ID:       "FMT_ORDER_DUPLICATE",
				Severity: SeverityWarning,
				Field:    field,
				Message:  fmt.Sprintf("순위번호 %d이(가) 중복됩니다", entry.Order),
				Actual:   strconv.Itoa(entry.Order),
			})
		}
	}
	return issues
}

func checkTitleAddress(title extract.TitleSection) []Issue {
	if title.Address != "" {
		return nil
	}
	return []Issue{{
		ID:       "FMT_TITLE_ADDRESS",
		Severity: SeverityWarning,
		Field:    "title.address",
		Message:  "표제부에서 소재지를 찾지 못했습니다",
	}}
}

func checkOwnershipPresent(ownership []extract.Entry) []Issue {
	if len(ownership) > 0 {
		return nil
	}
	return []Issue{{
		ID:       "FMT_OWNERSHIP_EMPTY",
		Severity: SeverityWarning,
		Field:    "ownership",
		Message:  "갑구 항목이 없습니다",
	}}
}
