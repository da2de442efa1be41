package validate

import (
	"fmt"
	"strings"
)

// StatusLabel returns PASS for a valid result and FAIL otherwise.
func (validationResult *Result) StatusLabel() string {
	if validationResult.IsValid {
		return "PASS"
	}
	return "FAIL"
}

// String returns a human-readable validation report.
func (validationResult *Result) String() string {
	var reportBuilder strings.Builder

	reportBuilder.WriteString("Validation Report\n")
	reportBuilder.WriteString("=================\n\n")

	for _, tierSummary := range validationResult.Tiers {
		reportBuilder.WriteString(fmt.Sprintf("[%s] %d checks, %d errors, %d warnings, %d infos\n",
			tierSummary.Tier, tierSummary.Checks, tierSummary.Errors, tierSummary.Warnings, tierSummary.Infos))

		for _, issue := range validationResult.Issues {
			if issue.Category != tierSummary.Tier {
				continue
			}
			reportBuilder.WriteString(fmt.Sprintf("  %s [%s] %s: %s", strings.ToUpper(string(issue.Severity)), issue.ID, issue.Field, issue.Message))
			if issue.Expected != "" || issue.Actual != "" {
				reportBuilder.WriteString(fmt.Sprintf(" (expected %s, got %s)", valueOrDash(issue.Expected), valueOrDash(issue.Actual)))
			}
			reportBuilder.WriteString("\n")
		}
		reportBuilder.WriteString("\n")
	}

	summary := validationResult.Summary
	reportBuilder.WriteString(fmt.Sprintf("Checks: %d passed of %d\n", summary.Passed, summary.TotalChecks))
	reportBuilder.WriteString(fmt.Sprintf("Issues: %d errors, %d warnings, %d infos\n", summary.Errors, summary.Warnings, summary.Infos))
	reportBuilder.WriteString(fmt.Sprintf("Score: %d%%\n", validationResult.Score))
	reportBuilder.WriteString(fmt.Sprintf("Status: %s\n", validationResult.StatusLabel()))

	return reportBuilder.String()
}

// ToMarkdown generates a Markdown validation report suitable for PR
// comments and documentation.
func (validationResult *Result) ToMarkdown() string {
	var markdownBuilder strings.Builder

	markdownBuilder.WriteString(fmt.Sprintf("# Validation Report `%s`\n\n", validationResult.StatusLabel()))

	summary := validationResult.Summary
	markdownBuilder.WriteString("## Summary\n\n")
	markdownBuilder.WriteString("| Metric | Value |\n")
	markdownBuilder.WriteString("|--------|-------|\n")
	markdownBuilder.WriteString(fmt.Sprintf("| **Score** | %d%% |\n", validationResult.Score))
	markdownBuilder.WriteString(fmt.Sprintf("| **Checks** | %d |\n", summary.TotalChecks))
	markdownBuilder.WriteString(fmt.Sprintf("| **Passed** | %d |\n", summary.Passed))
	markdownBuilder.WriteString(fmt.Sprintf("| **Errors** | %d |\n", summary.Errors))
	markdownBuilder.WriteString(fmt.Sprintf("| **Warnings** | %d |\n", summary.Warnings))
	markdownBuilder.WriteString(fmt.Sprintf("| **Infos** | %d |\n", summary.Infos))
	markdownBuilder.WriteString("\n")

	markdownBuilder.WriteString("## Tiers\n\n")
	markdownBuilder.WriteString("| Tier | Checks | Errors | Warnings | Infos |\n")
	markdownBuilder.WriteString("|------|--------|--------|----------|-------|\n")
	for _, tierSummary := range validationResult.Tiers {
		markdownBuilder.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
			tierSummary.Tier, tierSummary.Checks, tierSummary.Errors, tierSummary.Warnings, tierSummary.Infos))
	}
	markdownBuilder.WriteString("\n")

	if len(validationResult.Issues) > 0 {
		markdownBuilder.WriteString("## Issues\n\n")
		markdownBuilder.WriteString("| Severity | ID | Field | Message | Expected | Actual |\n")
		markdownBuilder.WriteString("|----------|----|-------|---------|----------|--------|\n")
		for _, issue := range validationResult.Issues {
			markdownBuilder.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				severityToMarkdownBadge(issue.Severity),
				issue.ID,
				escapeMarkdownTableCell(issue.Field),
				escapeMarkdownTableCell(issue.Message),
				escapeMarkdownTableCell(valueOrDash(issue.Expected)),
				escapeMarkdownTableCell(valueOrDash(issue.Actual))))
		}
		markdownBuilder.WriteString("\n")
	}

	return markdownBuilder.String()
}

// severityToMarkdownBadge converts a severity to a text badge for Markdown.
func severityToMarkdownBadge(severity Severity) string {
	switch severity {
	case SeverityError:
		return "`ERROR`"
	case SeverityWarning:
		return "`WARN`"
	case SeverityInfo:
		return "`INFO`"
	default:
		return fmt.Sprintf("`%s`", severity)
	}
}

// escapeMarkdownTableCell escapes pipe characters in table cell content.
func escapeMarkdownTableCell(content string) string {
	return strings.ReplaceAll(content, "|", "\\|")
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
