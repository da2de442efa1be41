package report

import (
	"fmt"
	"strings"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/extract"
)

// Text renders a plain-text report for terminals.
func Text(analysisReport *analysis.Report) string {
	var sb strings.Builder

	sb.WriteString("Registry Analysis Report\n")
	sb.WriteString(strings.Repeat("═", 60) + "\n")
	if analysisReport.Source != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n", analysisReport.Source))
	}
	sb.WriteString(fmt.Sprintf("Report: %s\n", analysisReport.ID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", analysisReport.GeneratedAt.Format("2006-01-02 15:04:05 MST")))

	if registry := analysisReport.Registry; registry != nil {
		title := registry.Title
		sb.WriteString("Title (표제부)\n")
		sb.WriteString(fmt.Sprintf("  Address:    %s\n", valueOrDash(title.Address)))
		sb.WriteString(fmt.Sprintf("  Building:   %s\n", valueOrDash(title.BuildingDetail)))
		sb.WriteString(fmt.Sprintf("  Structure:  %s\n", valueOrDash(title.Structure)))
		sb.WriteString(fmt.Sprintf("  Area:       %s\n", valueOrDash(title.Area)))
		sb.WriteString(fmt.Sprintf("  Purpose:    %s\n", valueOrDash(title.Purpose)))
		sb.WriteString(fmt.Sprintf("  Land ratio: %s\n\n", valueOrDash(title.LandRightRatio)))

		writeTextEntries(&sb, "Ownership (갑구)", registry.Ownership, false)
		writeTextEntries(&sb, "Encumbrance (을구)", registry.Encumbrance, true)

		summary := registry.Summary
		sb.WriteString("Summary\n")
		sb.WriteString(fmt.Sprintf("  Entries: %d ownership (%d active), %d encumbrance (%d active), %d cancelled\n",
			summary.TotalOwnership, summary.ActiveOwnership,
			summary.TotalEncumbrance, summary.ActiveEncumbrance, summary.CancelledCount))
		sb.WriteString(fmt.Sprintf("  Mortgages: %s, deposit rights: %s, total claims: %s\n",
			formatWon(summary.MortgageTotal), formatWon(summary.DepositRightTotal), formatWon(summary.TotalClaims)))
		sb.WriteString(fmt.Sprintf("  Ownership transfers: %d\n\n", summary.OwnershipTransferCount))
	}

	if score := analysisReport.Risk; score != nil {
		sb.WriteString(fmt.Sprintf("Risk Score: %d/100 (grade %s)\n", score.TotalScore, score.Grade))
		if analysisReport.EstimatedPrice > 0 {
			sb.WriteString(fmt.Sprintf("  Estimated price: %s, mortgage ratio: %.1f%%\n",
				formatWon(analysisReport.EstimatedPrice), score.MortgageRatio))
		}
		for _, factor := range score.Factors {
			sb.WriteString(fmt.Sprintf("  -%-3d %-8s %s (%s)\n", factor.Deduction, factor.Severity, factor.Description, factor.Detail))
		}
		sb.WriteString(fmt.Sprintf("  %s\n\n", score.Summary))
	}

	if analysisReport.Validation != nil {
		sb.WriteString(analysisReport.Validation.String())
	}

	return sb.String()
}

func writeTextEntries(sb *strings.Builder, heading string, entries []extract.Entry, showAmount bool) {
	sb.WriteString(fmt.Sprintf("%s: %d entries\n", heading, len(entries)))
	for _, entry := range entries {
		status := " "
		if entry.Cancelled {
			status = "x"
		}
		line := fmt.Sprintf("  [%s] %2d %-10s %-12s %s", status, entry.Order, valueOrDash(entry.Date),
			entry.Purpose.Label(), valueOrDash(entry.Holder))
		if showAmount && entry.Amount > 0 {
			line += "  " + formatWon(entry.Amount)
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	sb.WriteString("\n")
}
