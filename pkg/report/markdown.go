package report

import (
	"fmt"
	"strings"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/extract"
)

// Markdown renders a Markdown report suitable for tickets and
// documentation.
func Markdown(analysisReport *analysis.Report) string {
	var md strings.Builder

	heading := "Registry Analysis"
	if analysisReport.Source != "" {
		heading += ": " + analysisReport.Source
	}
	md.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdownTableCell(heading)))
	md.WriteString(fmt.Sprintf("Report `%s`, generated %s.\n\n", analysisReport.ID,
		analysisReport.GeneratedAt.Format("2006-01-02 15:04:05 MST")))

	if score := analysisReport.Risk; score != nil {
		md.WriteString("## Risk\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| **Score** | %d/100 |\n", score.TotalScore))
		md.WriteString(fmt.Sprintf("| **Grade** | `%s` |\n", score.Grade))
		md.WriteString(fmt.Sprintf("| **Deduction** | %d |\n", score.TotalDeduction))
		if analysisReport.EstimatedPrice > 0 {
			md.WriteString(fmt.Sprintf("| **Estimated price** | %s |\n", formatWon(analysisReport.EstimatedPrice)))
			md.WriteString(fmt.Sprintf("| **Mortgage ratio** | %.1f%% |\n", score.MortgageRatio))
		}
		md.WriteString("\n")
		md.WriteString(fmt.Sprintf("> %s\n\n", score.Summary))

		if len(score.Factors) > 0 {
			md.WriteString("| Factor | Severity | Deduction | Detail |\n")
			md.WriteString("|--------|----------|-----------|--------|\n")
			for _, factor := range score.Factors {
				md.WriteString(fmt.Sprintf("| %s | %s | -%d | %s |\n",
					escapeMarkdownTableCell(factor.Description), factor.Severity, factor.Deduction,
					escapeMarkdownTableCell(factor.Detail)))
			}
			md.WriteString("\n")
		}
	}

	if registry := analysisReport.Registry; registry != nil {
		title := registry.Title
		md.WriteString("## Title (표제부)\n\n")
		md.WriteString("| Field | Value |\n")
		md.WriteString("|-------|-------|\n")
		for _, field := range []struct{ name, value string }{
			{"Address", title.Address},
			{"Building", title.BuildingDetail},
			{"Structure", title.Structure},
			{"Area", title.Area},
			{"Purpose", title.Purpose},
			{"Land right ratio", title.LandRightRatio},
		} {
			md.WriteString(fmt.Sprintf("| %s | %s |\n", field.name, escapeMarkdownTableCell(valueOrDash(field.value))))
		}
		md.WriteString("\n")

		writeMarkdownEntries(&md, "Ownership (갑구)", registry.Ownership, false)
		writeMarkdownEntries(&md, "Encumbrance (을구)", registry.Encumbrance, true)
	}

	if analysisReport.Validation != nil {
		validationMarkdown := analysisReport.Validation.ToMarkdown()
		md.WriteString(strings.Replace(validationMarkdown, "# Validation Report", "## Validation", 1))
	}

	return md.String()
}

func writeMarkdownEntries(md *strings.Builder, heading string, entries []extract.Entry, showAmount bool) {
	md.WriteString(fmt.Sprintf("## %s\n\n", heading))
	if len(entries) == 0 {
		md.WriteString("_No entries._\n\n")
		return
	}

	if showAmount {
		md.WriteString("| # | Date | Purpose | Holder | Amount | Status |\n")
		md.WriteString("|---|------|---------|--------|--------|--------|\n")
	} else {
		md.WriteString("| # | Date | Purpose | Holder | Status |\n")
		md.WriteString("|---|------|---------|--------|--------|\n")
	}

	for _, entry := range entries {
		status := string(entry.RiskLevel)
		if entry.Cancelled {
			status = "~~cancelled~~"
		}
		columns := []string{
			fmt.Sprintf("%d", entry.Order),
			valueOrDash(entry.Date),
			entry.Purpose.Label(),
			escapeMarkdownTableCell(valueOrDash(entry.Holder)),
		}
		if showAmount {
			columns = append(columns, formatWon(entry.Amount))
		}
		columns = append(columns, status)
		md.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	}
	md.WriteString("\n")
}

// escapeMarkdownTableCell escapes pipe characters in table cell content.
func escapeMarkdownTableCell(content string) string {
	return strings.ReplaceAll(content, "|", "\\|")
}
