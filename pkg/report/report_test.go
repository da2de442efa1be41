package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

func analyzeTestdata(t *testing.T, name string, price int64) *analysis.Report {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatalf("Failed to read testdata: %v", err)
	}

	analyzer := analysis.NewAnalyzer(
		analysis.WithClock(func() time.Time { return time.Date(2026, 10, 1, 1, 0, 0, 0, time.UTC) }),
		analysis.WithIDGenerator(func() string { return "report-1" }),
	)
	analysisReport, err := analyzer.Analyze(context.Background(), analysis.Request{
		Source:         name,
		Text:           string(data),
		EstimatedPrice: price,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return analysisReport
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"txt", FormatText},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"yaml", FormatYAML},
		{"md", FormatMarkdown},
		{" markdown ", FormatMarkdown},
		{"htm", FormatHTML},
		{"html", FormatHTML},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(pdf) error = %v, want ErrUnknownFormat", err)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out/report.json", FormatJSON},
		{"report.md", FormatMarkdown},
		{"report.HTML", FormatHTML},
		{"report.yml", FormatYAML},
		{"report.txt", FormatText},
		{"report", FormatJSON},
		{"report.pdf", FormatJSON},
	}

	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFormatWon(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "-"},
		{5, "5원"},
		{1000, "1,000원"},
		{480_000_000, "480,000,000원"},
		{-1_500, "-1,500원"},
	}

	for _, tt := range tests {
		if got := formatWon(tt.amount); got != tt.want {
			t.Errorf("formatWon(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestRender_Text(t *testing.T) {
	analysisReport := analyzeTestdata(t, "registry_clean.txt", 1_000_000_000)

	data, err := Render(analysisReport, FormatText)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	output := string(data)

	for _, expected := range []string{
		"Registry Analysis Report",
		"Source: registry_clean.txt",
		"Report: report-1",
		"서울특별시 강남구 역삼동 123-45",
		"Ownership (갑구): 1 entries",
		"Encumbrance (을구): 1 entries",
		"480,000,000원",
		"Risk Score:",
		"mortgage ratio: 48.0%",
		"Validation Report",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Text output should contain %q", expected)
		}
	}
}

func TestRender_Markdown(t *testing.T) {
	analysisReport := analyzeTestdata(t, "registry_risky.txt", 500_000_000)

	data, err := Render(analysisReport, FormatMarkdown)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	output := string(data)

	for _, expected := range []string{
		"# Registry Analysis: registry_risky.txt",
		"## Risk",
		"| **Grade** | `F` |",
		"## Ownership (갑구)",
		"## Encumbrance (을구)",
		"## Validation",
		"CTX_POST_SEIZURE_MORTGAGE",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Markdown output should contain %q", expected)
		}
	}
	if strings.Contains(output, "# Validation Report") {
		t.Error("Validation heading should be demoted to a level-two section")
	}
}

func TestRender_HTML(t *testing.T) {
	analysisReport := analyzeTestdata(t, "registry_risky.txt", 500_000_000)

	data, err := Render(analysisReport, FormatHTML)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	output := string(data)

	for _, expected := range []string{
		"<!DOCTYPE html>",
		"<style>",
		"Risk Score",
		"Title (표제부)",
		`<div class="factor-row">`,
		`<div class="price-note">`,
		`<div class="tier-card">`,
		`<div class="alert alert-warning">[CTX_POST_SEIZURE_MORTGAGE]`,
		`<tr class="cancelled">`,
		"</html>",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("HTML output should contain %q", expected)
		}
	}
	for _, unexpected := range []string{"gate-", "component-", "threshold-"} {
		if strings.Contains(output, unexpected) {
			t.Errorf("HTML output should not contain %q", unexpected)
		}
	}
}

func TestHTML_EscapesContent(t *testing.T) {
	analysisReport := &analysis.Report{
		ID:     "report-1",
		Source: "<script>alert(1)</script>",
		Registry: &extract.Registry{
			Title: extract.TitleSection{Address: "A & B"},
			Ownership: []extract.Entry{
				{Order: 1, Purpose: taxonomy.RightOwnershipPreservation, Holder: "<b>홍길동</b>", RiskLevel: taxonomy.RiskSafe},
			},
		},
	}

	output := HTML(analysisReport)
	if strings.Contains(output, "<script>alert(1)</script>") {
		t.Error("Source should be escaped")
	}
	if !strings.Contains(output, "&lt;script&gt;") {
		t.Error("Escaped source should be present")
	}
	if !strings.Contains(output, "A &amp; B") {
		t.Error("Address should be escaped")
	}
	if !strings.Contains(output, "&lt;b&gt;홍길동&lt;/b&gt;") {
		t.Error("Holder should be escaped")
	}
}

func TestRender_JSON(t *testing.T) {
	analysisReport := analyzeTestdata(t, "registry_clean.txt", 0)

	data, err := Render(analysisReport, FormatJSON)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("JSON output should end with a newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded["id"] != "report-1" {
		t.Errorf("id = %v, want report-1", decoded["id"])
	}
	for _, key := range []string{"registry", "risk", "validation"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON output missing %q", key)
		}
	}
}

func TestRender_YAML(t *testing.T) {
	analysisReport := analyzeTestdata(t, "registry_clean.txt", 0)

	data, err := Render(analysisReport, FormatYAML)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if decoded["source"] != "registry_clean.txt" {
		t.Errorf("source = %v, want registry_clean.txt", decoded["source"])
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	if _, err := Encode(map[string]int{"a": 1}, FormatHTML); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(html) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := Render(&analysis.Report{}, Format("pdf")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render(pdf) error = %v, want ErrUnknownFormat", err)
	}
}

func TestWrite(t *testing.T) {
	analysisReport := analyzeTestdata(t, "registry_clean.txt", 0)

	var buf bytes.Buffer
	if err := Write(&buf, analysisReport, FormatMarkdown); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# Registry Analysis") {
		t.Errorf("Write output = %q, want Markdown heading", buf.String()[:20])
	}
}
