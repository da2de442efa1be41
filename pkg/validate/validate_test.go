package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/risk"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

var fixedClock = func() time.Time {
	return time.Date(2026, 10, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*60*60))
}

func parseTestdata(t *testing.T, name string) *extract.Registry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatalf("Failed to read testdata %s: %v", name, err)
	}
	return extract.Parse(string(data))
}

func registryWith(ownership, encumbrance []extract.Entry) *extract.Registry {
	return &extract.Registry{
		Title:       extract.TitleSection{Address: "서울특별시 종로구 청운동 1"},
		Ownership:   ownership,
		Encumbrance: encumbrance,
		Summary:     extract.Summarize(ownership, encumbrance),
	}
}

func entry(order int, date string, purpose taxonomy.RightType, holder string) extract.Entry {
	return extract.Entry{
		Order:     order,
		Date:      date,
		Purpose:   purpose,
		Holder:    holder,
		RiskLevel: taxonomy.RiskSafe,
	}
}

func assertResultInvariants(t *testing.T, result *Result) {
	t.Helper()

	summary := result.Summary
	if got := summary.Errors + summary.Warnings + summary.Infos; got != len(result.Issues) {
		t.Errorf("errors+warnings+infos = %d, want %d", got, len(result.Issues))
	}
	if summary.Passed < 0 || summary.Passed > summary.TotalChecks {
		t.Errorf("Passed = %d, want within [0, %d]", summary.Passed, summary.TotalChecks)
	}
	if result.Score < 0 || result.Score > 100 {
		t.Errorf("Score = %d, want within [0, 100]", result.Score)
	}
	if result.IsValid != (summary.Errors == 0) {
		t.Errorf("IsValid = %v with %d errors", result.IsValid, summary.Errors)
	}

	tierChecks := 0
	for _, tierSummary := range result.Tiers {
		tierChecks += tierSummary.Checks
	}
	if tierChecks != summary.TotalChecks {
		t.Errorf("sum of tier checks = %d, want %d", tierChecks, summary.TotalChecks)
	}

	for _, issue := range result.Issues {
		if issue.ID == "" || issue.Category == "" || issue.Field == "" {
			t.Errorf("Incomplete issue: %+v", issue)
		}
	}
}

func TestValidate_CleanRegistry(t *testing.T) {
	registry := parseTestdata(t, "registry_clean.txt")
	score := risk.Evaluate(registry, 1_000_000_000)

	result := Validate(registry, WithPrice(1_000_000_000), WithRiskScore(score), WithClock(fixedClock))
	assertResultInvariants(t, result)

	if !result.IsValid {
		t.Fatalf("Expected clean registry to be valid, got issues: %+v", result.Issues)
	}
	if result.Summary.Errors != 0 {
		t.Errorf("Errors = %d, want 0", result.Summary.Errors)
	}
	if len(result.IssuesByID("CTX_POST_SEIZURE_MORTGAGE")) != 0 {
		t.Error("Expected no post-seizure mortgage warning on a clean registry")
	}
}

func TestValidate_RiskyRegistry(t *testing.T) {
	registry := parseTestdata(t, "registry_risky.txt")
	score := risk.Evaluate(registry, 500_000_000)

	result := Validate(registry, WithPrice(500_000_000), WithRiskScore(score), WithClock(fixedClock))
	assertResultInvariants(t, result)

	postSeizure := result.IssuesByID("CTX_POST_SEIZURE_MORTGAGE")
	if len(postSeizure) != 1 {
		t.Fatalf("Expected 1 CTX_POST_SEIZURE_MORTGAGE, got %d", len(postSeizure))
	}
	if postSeizure[0].Severity != SeverityWarning {
		t.Errorf("Severity = %s, want warning", postSeizure[0].Severity)
	}
	if postSeizure[0].Actual != "2020.05.06" {
		t.Errorf("Actual = %q, want 2020.05.06", postSeizure[0].Actual)
	}

	for _, issue := range result.Issues {
		if issue.Severity != SeverityError {
			continue
		}
		if issue.Category == CategoryArithmetic || issue.Category == CategoryCrosscheck {
			t.Errorf("Unexpected %s error on untampered registry: %+v", issue.Category, issue)
		}
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	for name, registry := range map[string]*extract.Registry{
		"nil":    nil,
		"empty":  {},
		"parsed": extract.Parse(""),
	} {
		t.Run(name, func(t *testing.T) {
			result := Validate(registry, WithClock(fixedClock))
			assertResultInvariants(t, result)

			if result.Summary.TotalChecks == 0 {
				t.Error("Expected checks to run on empty input")
			}
			if len(result.Tiers) != 4 {
				t.Errorf("Expected 4 tiers, got %d", len(result.Tiers))
			}
			if len(result.IssuesByID("FMT_OWNERSHIP_EMPTY")) != 1 {
				t.Error("Expected FMT_OWNERSHIP_EMPTY on empty input")
			}
			if !result.IsValid {
				t.Errorf("Expected empty input without errors, got %+v", result.Issues)
			}
		})
	}
}

func TestValidate_TamperedSummary(t *testing.T) {
	tests := []struct {
		name     string
		tamper   func(summary *extract.Summary)
		expectID string
	}{
		{"mortgage total", func(s *extract.Summary) { s.MortgageTotal++ }, "ARITH_MORTGAGE_TOTAL"},
		{"deposit total", func(s *extract.Summary) { s.DepositRightTotal = 5 }, "ARITH_DEPOSIT_RIGHT_TOTAL"},
		{"total claims", func(s *extract.Summary) { s.TotalClaims = 0 }, "ARITH_TOTAL_CLAIMS"},
		{"ownership total", func(s *extract.Summary) { s.TotalOwnership = 99 }, "ARITH_OWNERSHIP_TOTAL"},
		{"active ownership", func(s *extract.Summary) { s.ActiveOwnership = 0 }, "ARITH_OWNERSHIP_ACTIVE"},
		{"encumbrance total", func(s *extract.Summary) { s.TotalEncumbrance = 0 }, "ARITH_ENCUMBRANCE_TOTAL"},
		{"active encumbrance", func(s *extract.Summary) { s.ActiveEncumbrance = 7 }, "ARITH_ENCUMBRANCE_ACTIVE"},
		{"cancelled", func(s *extract.Summary) { s.CancelledCount = 3 }, "ARITH_CANCELLED_COUNT"},
		{"transfers", func(s *extract.Summary) { s.OwnershipTransferCount = 4 }, "ARITH_TRANSFER_COUNT"},
		{"seizure flag", func(s *extract.Summary) { s.HasSeizure = true }, "XCHK_FLAG_MISMATCH"},
		{"trust flag", func(s *extract.Summary) { s.HasTrust = true }, "XCHK_FLAG_MISMATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := parseTestdata(t, "registry_clean.txt")
			tt.tamper(&registry.Summary)

			result := Validate(registry, WithClock(fixedClock))
			assertResultInvariants(t, result)

			issues := result.IssuesByID(tt.expectID)
			if len(issues) != 1 {
				t.Fatalf("Expected 1 %s issue, got %d (%+v)", tt.expectID, len(issues), result.Issues)
			}
			if issues[0].Severity != SeverityError {
				t.Errorf("Severity = %s, want error", issues[0].Severity)
			}
			if result.IsValid {
				t.Error("Expected tampered registry to be invalid")
			}
		})
	}
}

func TestValidate_PriceSanity(t *testing.T) {
	registry := parseTestdata(t, "registry_clean.txt")

	tests := []struct {
		name          string
		price         int64
		expectIssues  int
		expectSevere  Severity
		expectInvalid bool
	}{
		{"too low", 100, 1, SeverityError, true},
		{"negative", -1, 1, SeverityError, true},
		{"sane", 800_000_000, 0, "", false},
		{"too high", 60_000_000_000, 1, SeverityWarning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(registry, WithPrice(tt.price), WithClock(fixedClock))
			issues := result.IssuesByID("XCHK_PRICE_SANITY")
			if len(issues) != tt.expectIssues {
				t.Fatalf("Expected %d XCHK_PRICE_SANITY, got %d", tt.expectIssues, len(issues))
			}
			if tt.expectIssues > 0 && issues[0].Severity != tt.expectSevere {
				t.Errorf("Severity = %s, want %s", issues[0].Severity, tt.expectSevere)
			}
			if result.IsValid == tt.expectInvalid {
				t.Errorf("IsValid = %v, want %v", result.IsValid, !tt.expectInvalid)
			}
		})
	}
}

func TestValidate_PriceCheckSkippedWithoutPrice(t *testing.T) {
	registry := parseTestdata(t, "registry_clean.txt")
	result := Validate(registry, WithClock(fixedClock))
	if len(result.IssuesByID("XCHK_PRICE_SANITY")) != 0 {
		t.Error("Expected no price check without a price")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	registry := parseTestdata(t, "registry_risky.txt")
	score := risk.Evaluate(registry, 500_000_000)
	opts := []Option{WithPrice(500_000_000), WithRiskScore(score), WithAdvisory("근저당 비율 주의"), WithClock(fixedClock)}

	first, err := Validate(registry, opts...).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	second, err := Validate(registry, opts...).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Expected identical JSON for identical inputs")
	}
}

func TestValidate_TimestampIsUTC(t *testing.T) {
	result := Validate(nil, WithClock(fixedClock))
	if result.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", result.Timestamp.Location())
	}
	if !result.Timestamp.Equal(fixedClock()) {
		t.Errorf("Timestamp = %v, want %v", result.Timestamp, fixedClock())
	}
}

func TestValidate_NilClockIgnored(t *testing.T) {
	result := Validate(nil, WithClock(nil))
	if result.Timestamp.IsZero() {
		t.Error("Expected the default clock when a nil clock is supplied")
	}
}

func TestBuildResult_ScoreAndPassed(t *testing.T) {
	tierResults := []*TierResult{
		{Tier: CategoryFormat, Checks: 3, Issues: []Issue{{ID: "A", Severity: SeverityError}}},
		{Tier: CategoryContext, Checks: 1, Issues: []Issue{{ID: "B", Severity: SeverityInfo}}},
	}

	result := buildResult(tierResults, fixedClock())
	if result.Summary.TotalChecks != 4 {
		t.Errorf("TotalChecks = %d, want 4", result.Summary.TotalChecks)
	}
	if result.Summary.Passed != 3 {
		t.Errorf("Passed = %d, want 3", result.Summary.Passed)
	}
	if result.Score != 75 {
		t.Errorf("Score = %d, want 75", result.Score)
	}
	if result.IsValid {
		t.Error("Expected invalid result with an error")
	}
}

func TestBuildResult_PassedNeverNegative(t *testing.T) {
	issues := []Issue{
		{ID: "A", Severity: SeverityError},
		{ID: "B", Severity: SeverityWarning},
		{ID: "C", Severity: SeverityWarning},
	}
	result := buildResult([]*TierResult{{Tier: CategoryFormat, Checks: 1, Issues: issues}}, fixedClock())
	if result.Summary.Passed != 0 {
		t.Errorf("Passed = %d, want 0", result.Summary.Passed)
	}
	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
}

func TestTierPipeline_Tiers(t *testing.T) {
	pipeline := NewTierPipeline()
	expected := []Category{CategoryFormat, CategoryArithmetic, CategoryContext, CategoryCrosscheck}

	tiers := pipeline.Tiers()
	if len(tiers) != len(expected) {
		t.Fatalf("Expected %d tiers, got %d", len(expected), len(tiers))
	}
	for i, tier := range tiers {
		if tier != expected[i] {
			t.Errorf("tier[%d] = %s, want %s", i, tier, expected[i])
		}
	}
}

func TestTierPipeline_CustomTiers(t *testing.T) {
	pipeline := &TierPipeline{}
	pipeline.RegisterTier(NewContextTier())

	result := pipeline.Validate(registryWith(nil, []extract.Entry{
		entry(1, "2020.01.01", taxonomy.RightMortgage, "주식회사국민은행"),
	}), WithClock(fixedClock))

	if len(result.Tiers) != 1 || result.Tiers[0].Tier != CategoryContext {
		t.Fatalf("Expected only the context tier, got %+v", result.Tiers)
	}
	for _, issue := range result.Issues {
		if issue.Category != CategoryContext {
			t.Errorf("Issue %s has category %s, want context", issue.ID, issue.Category)
		}
	}
}

func TestResult_Reports(t *testing.T) {
	registry := parseTestdata(t, "registry_risky.txt")
	registry.Summary.MortgageTotal = 1
	result := Validate(registry, WithClock(fixedClock))

	text := result.String()
	for _, want := range []string{"Validation Report", "[arithmetic]", "ARITH_MORTGAGE_TOTAL", "Status: FAIL"} {
		if !strings.Contains(text, want) {
			t.Errorf("String() missing %q", want)
		}
	}

	markdown := result.ToMarkdown()
	for _, want := range []string{"# Validation Report `FAIL`", "## Tiers", "## Issues", "`ERROR`"} {
		if !strings.Contains(markdown, want) {
			t.Errorf("ToMarkdown() missing %q", want)
		}
	}
}

func TestEscapeMarkdownTableCell(t *testing.T) {
	if got := escapeMarkdownTableCell("a|b"); got != `a\|b` {
		t.Errorf("escapeMarkdownTableCell = %q, want %q", got, `a\|b`)
	}
}
