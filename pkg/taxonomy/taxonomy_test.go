package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestClassifyOwnership(t *testing.T) {
	ownership := Default().Ownership

	tests := []struct {
		name      string
		text      string
		wantRight RightType
		wantRisk  RiskLevel
	}{
		{"preservation", "1 소유권보존 2015년3월2일 제1234호", RightOwnershipPreservation, RiskSafe},
		{"transfer", "소유권이전 매매", RightOwnershipTransfer, RiskSafe},
		{"provisional seizure beats seizure", "가압류 2020년1월2일", RightProvisionalSeizure, RiskDanger},
		{"seizure", "압류 국민건강보험공단", RightSeizure, RiskDanger},
		{"compound provisional registration beats transfer", "소유권이전청구권가등기", RightProvisionalRegistration, RiskWarning},
		{"voluntary auction", "임의경매개시결정", RightAuctionOrder, RiskDanger},
		{"trust", "신탁 수탁자 한국토지신탁", RightTrust, RiskWarning},
		{"redemption", "환매특약등기", RightRedemption, RiskWarning},
		{"warning registration", "예고등기", RightWarningRegistration, RiskWarning},
		{"no match", "등기원인 매매", RightOther, RiskInfo},
		{"empty", "", RightOther, RiskInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRight, gotRisk := ownership.Classify(tt.text)
			if gotRight != tt.wantRight {
				t.Errorf("Classify(%q) right = %q, want %q", tt.text, gotRight, tt.wantRight)
			}
			if gotRisk != tt.wantRisk {
				t.Errorf("Classify(%q) risk = %q, want %q", tt.text, gotRisk, tt.wantRisk)
			}
		})
	}
}

func TestClassifyEncumbrance(t *testing.T) {
	encumbrance := Default().Encumbrance

	tests := []struct {
		text      string
		wantRight RightType
	}{
		{"근저당권설정 채권최고액 금480,000,000원", RightMortgage},
		{"근저당권이전", RightMortgageTransfer},
		{"근저당권변경", RightMortgageModification},
		{"전세권설정 전세금 금300,000,000원", RightDepositRight},
		{"지상권설정", RightSurfaceRight},
		{"주택임차권", RightLeaseRegistration},
		{"임차권등기명령", RightLeaseRegistration},
		{"담보가등기", RightProvisionalRegistration},
		{"소유권보존", RightOther},
	}

	for _, tt := range tests {
		gotRight, _ := encumbrance.Classify(tt.text)
		if gotRight != tt.wantRight {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, gotRight, tt.wantRight)
		}
	}
}

func TestNewTableOrdersLongestFirst(t *testing.T) {
	table := NewTable("test", []Term{
		{Text: "가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
		{Text: "", Right: RightSeizure, Risk: RiskDanger},
		{Text: "소유권이전청구권가등기", Right: RightProvisionalRegistration, Risk: RiskWarning},
		{Text: "압류", Right: RightSeizure, Risk: RiskDanger},
	})

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (empty term dropped)", table.Len())
	}
	terms := table.Terms()
	if terms[0].Text != "소유권이전청구권가등기" {
		t.Errorf("first term = %q, want longest term", terms[0].Text)
	}
	if terms[2].Text != "압류" {
		t.Errorf("last term = %q, want shortest term", terms[2].Text)
	}
}

func TestTableExtend(t *testing.T) {
	base := Default().Ownership
	extended := base.Extend([]Term{
		{Text: "신탁", Right: RightTrust, Risk: RiskDanger},
		{Text: "소유권이전(신탁)", Right: RightTrust, Risk: RiskWarning},
	})

	if extended.Len() != base.Len()+1 {
		t.Errorf("Len() = %d, want %d", extended.Len(), base.Len()+1)
	}
	if right, risk := extended.Classify("신탁"); right != RightTrust || risk != RiskDanger {
		t.Errorf("override not applied: got (%q, %q)", right, risk)
	}
	if right, _ := extended.Classify("소유권이전(신탁) 수탁자"); right != RightTrust {
		t.Errorf("longer added term should beat 소유권이전, got %q", right)
	}
	if right, risk := base.Classify("신탁"); right != RightTrust || risk != RiskWarning {
		t.Errorf("base table was mutated: got (%q, %q)", right, risk)
	}
}

func TestParseRightTypeAndRiskLevel(t *testing.T) {
	if got, err := ParseRightType("mortgage"); err != nil || got != RightMortgage {
		t.Errorf("ParseRightType(mortgage) = %q, %v", got, err)
	}
	if _, err := ParseRightType("lien"); !errors.Is(err, ErrUnknownRightType) {
		t.Errorf("ParseRightType(lien) error = %v, want ErrUnknownRightType", err)
	}
	if got, err := ParseRiskLevel("danger"); err != nil || got != RiskDanger {
		t.Errorf("ParseRiskLevel(danger) = %q, %v", got, err)
	}
	if _, err := ParseRiskLevel("severe"); !errors.Is(err, ErrUnknownRiskLevel) {
		t.Errorf("ParseRiskLevel(severe) error = %v, want ErrUnknownRiskLevel", err)
	}
	if RightMortgage.Label() != "근저당권" {
		t.Errorf("Label() = %q", RightMortgage.Label())
	}
}

func TestParseOverride(t *testing.T) {
	data := []byte(`
name: trust-aware
ownership:
  - term: 소유권이전(신탁)
    right: trust
    risk: warning
encumbrance:
  - term: 질권
    right: mortgage_transfer
    risk: warning
`)

	taxonomy, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if taxonomy.Name != "trust-aware" {
		t.Errorf("Name = %q", taxonomy.Name)
	}
	if right, _ := taxonomy.Ownership.Classify("2 소유권이전(신탁) 2021년1월1일"); right != RightTrust {
		t.Errorf("ownership override = %q, want trust", right)
	}
	if right, _ := taxonomy.Encumbrance.Classify("질권 설정"); right != RightMortgageTransfer {
		t.Errorf("encumbrance override = %q, want mortgage_transfer", right)
	}
}

func TestParseOverrideRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"unknown right", "ownership:\n  - term: 유치권\n    right: lien\n    risk: danger\n", ErrUnknownRightType},
		{"other right", "ownership:\n  - term: 유치권\n    right: other\n    risk: danger\n", ErrUnknownRightType},
		{"unknown risk", "encumbrance:\n  - term: 유치권\n    right: mortgage\n    risk: severe\n", ErrUnknownRiskLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Parse([]byte("ownership: [")); err == nil {
		t.Error("Parse() malformed YAML should return error")
	}
}

func TestToYAMLRoundTripsThroughParse(t *testing.T) {
	data, err := Default().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	if !strings.Contains(string(data), "소유권보존") {
		t.Errorf("ToYAML() missing built-in term:\n%s", data)
	}

	reparsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(ToYAML()) error = %v", err)
	}
	if reparsed.Ownership.Len() != Default().Ownership.Len() {
		t.Errorf("ownership Len() = %d, want %d", reparsed.Ownership.Len(), Default().Ownership.Len())
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	writeFile(t, path, "name: v1\n")

	taxonomyWatcher, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer taxonomyWatcher.Stop()

	if taxonomyWatcher.Current().Name != "v1" {
		t.Fatalf("Current().Name = %q, want v1", taxonomyWatcher.Current().Name)
	}

	reloaded := make(chan string, 4)
	taxonomyWatcher.SetOnChange(func(taxonomy *Taxonomy, err error) {
		if err != nil {
			return
		}
		select {
		case reloaded <- taxonomy.Name:
		default:
		}
	})

	if err := taxonomyWatcher.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	writeFile(t, path, "name: v2\n")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case name := <-reloaded:
			if name == "v2" {
				if taxonomyWatcher.Current().Name != "v2" {
					t.Errorf("Current().Name = %q after reload", taxonomyWatcher.Current().Name)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcherKeepsPreviousOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	writeFile(t, path, "name: good\n")

	taxonomyWatcher, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	writeFile(t, path, "ownership:\n  - term: x\n    right: nope\n    risk: info\n")
	if err := taxonomyWatcher.Reload(); err == nil {
		t.Fatal("Reload() should fail for invalid file")
	}
	if taxonomyWatcher.Current().Name != "good" {
		t.Errorf("Current().Name = %q, want previous taxonomy", taxonomyWatcher.Current().Name)
	}
}

func TestNewWatcherMissingFile(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("NewWatcher() on missing file should return error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestWatcherSetOnChangeWhileReloading(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	writeFile(t, path, "name: v1\n")

	taxonomyWatcher, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	var calls atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			taxonomyWatcher.SetOnChange(func(*Taxonomy, error) { calls.Add(1) })
		}()
		go func() {
			defer wg.Done()
			_ = taxonomyWatcher.Reload()
		}()
	}
	wg.Wait()

	before := calls.Load()
	if err := taxonomyWatcher.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := calls.Load(); got != before+1 {
		t.Errorf("callback calls = %d, want %d", got, before+1)
	}
}
