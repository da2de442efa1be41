package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/risk"
	"github.com/coolbeans/deungi/pkg/validate"
)

// HTML renders a self-contained HTML report with inline CSS.
func HTML(analysisReport *analysis.Report) string {
	var htmlBuilder strings.Builder

	htmlBuilder.WriteString("<!DOCTYPE html>\n<html lang=\"ko\">\n<head>\n")
	htmlBuilder.WriteString("<meta charset=\"UTF-8\">\n")
	htmlBuilder.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	htmlBuilder.WriteString("<title>Registry Analysis Report</title>\n")
	htmlBuilder.WriteString(reportHTMLStyles())
	htmlBuilder.WriteString("</head>\n<body>\n")

	htmlBuilder.WriteString("<div class=\"container\">\n")
	htmlBuilder.WriteString("<div class=\"header\">\n")
	htmlBuilder.WriteString("<h1>Registry Analysis Report</h1>\n")
	if analysisReport.Source != "" {
		htmlBuilder.WriteString(fmt.Sprintf("<span class=\"badge\">%s</span>\n", html.EscapeString(analysisReport.Source)))
	}
	if validation := analysisReport.Validation; validation != nil {
		htmlBuilder.WriteString(fmt.Sprintf("<span class=\"status-badge\" style=\"background-color:%s\">%s</span>\n",
			validityToHTMLColor(validation.IsValid), validation.StatusLabel()))
	}
	htmlBuilder.WriteString("</div>\n\n")

	if score := analysisReport.Risk; score != nil {
		gradeColor := gradeToHTMLColor(score.Grade)
		htmlBuilder.WriteString("<div class=\"score-section\">\n")
		htmlBuilder.WriteString("<h2>Risk Score</h2>\n")
		htmlBuilder.WriteString(fmt.Sprintf("<div class=\"score-value\">%d <span class=\"grade\" style=\"color:%s\">%s</span></div>\n",
			score.TotalScore, gradeColor, score.Grade))
		htmlBuilder.WriteString("<div class=\"score-bar-container\">\n")
		htmlBuilder.WriteString(fmt.Sprintf("<div class=\"score-bar\" style=\"width:%d%%;background-color:%s\"></div>\n",
			score.TotalScore, gradeColor))
		htmlBuilder.WriteString("</div>\n")
		htmlBuilder.WriteString(fmt.Sprintf("<p class=\"score-summary\">%s</p>\n", html.EscapeString(score.Summary)))
		if analysisReport.EstimatedPrice > 0 {
			htmlBuilder.WriteString(fmt.Sprintf("<div class=\"price-note\">Estimated price %s, mortgage ratio %.1f%%</div>\n",
				formatWon(analysisReport.EstimatedPrice), score.MortgageRatio))
		}
		htmlBuilder.WriteString("</div>\n\n")

		if len(score.Factors) > 0 {
			htmlBuilder.WriteString("<div class=\"section\">\n")
			htmlBuilder.WriteString("<h2>Risk Factors</h2>\n")
			for _, factor := range score.Factors {
				htmlBuilder.WriteString("<div class=\"factor-row\">\n")
				htmlBuilder.WriteString(fmt.Sprintf("<span class=\"factor-name\">%s</span>\n", html.EscapeString(factor.Description)))
				htmlBuilder.WriteString(fmt.Sprintf("<span class=\"factor-severity\">%s</span>\n", factor.Severity))
				htmlBuilder.WriteString("<div class=\"factor-bar-container\">\n")
				htmlBuilder.WriteString(fmt.Sprintf("<div class=\"factor-bar\" style=\"width:%d%%;background-color:%s\"></div>\n",
					min(100, factor.Deduction*100/30), severityToHTMLColor(factor.Severity)))
				htmlBuilder.WriteString("</div>\n")
				htmlBuilder.WriteString(fmt.Sprintf("<span class=\"factor-deduction\">-%d</span>\n", factor.Deduction))
				htmlBuilder.WriteString("</div>\n")
			}
			htmlBuilder.WriteString("</div>\n\n")
		}
	}

	if registry := analysisReport.Registry; registry != nil {
		title := registry.Title
		htmlBuilder.WriteString("<details class=\"section\" open>\n")
		htmlBuilder.WriteString("<summary><h2>Title (표제부)</h2></summary>\n")
		htmlBuilder.WriteString("<table>\n")
		htmlBuilder.WriteString("<tr><th>Field</th><th>Value</th></tr>\n")
		for _, field := range []struct{ name, value string }{
			{"Address", title.Address},
			{"Building", title.BuildingDetail},
			{"Structure", title.Structure},
			{"Area", title.Area},
			{"Purpose", title.Purpose},
			{"Land right ratio", title.LandRightRatio},
		} {
			htmlBuilder.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>\n", field.name, html.EscapeString(valueOrDash(field.value))))
		}
		htmlBuilder.WriteString("</table>\n")
		htmlBuilder.WriteString("</details>\n\n")

		writeHTMLEntries(&htmlBuilder, "Ownership (갑구)", registry.Ownership, false)
		writeHTMLEntries(&htmlBuilder, "Encumbrance (을구)", registry.Encumbrance, true)
	}

	if validation := analysisReport.Validation; validation != nil {
		writeHTMLValidation(&htmlBuilder, validation)
	}

	htmlBuilder.WriteString("</div>\n")
	htmlBuilder.WriteString("</body>\n</html>\n")

	return htmlBuilder.String()
}

func writeHTMLEntries(htmlBuilder *strings.Builder, heading string, entries []extract.Entry, showAmount bool) {
	htmlBuilder.WriteString("<details class=\"section\" open>\n")
	htmlBuilder.WriteString(fmt.Sprintf("<summary><h2>%s</h2></summary>\n", html.EscapeString(heading)))
	htmlBuilder.WriteString("<table>\n")
	if showAmount {
		htmlBuilder.WriteString("<tr><th>#</th><th>Date</th><th>Purpose</th><th>Holder</th><th>Amount</th><th>Risk</th></tr>\n")
	} else {
		htmlBuilder.WriteString("<tr><th>#</th><th>Date</th><th>Purpose</th><th>Holder</th><th>Risk</th></tr>\n")
	}

	for _, entry := range entries {
		rowClass := ""
		if entry.Cancelled {
			rowClass = " class=\"cancelled\""
		}
		htmlBuilder.WriteString(fmt.Sprintf("<tr%s><td>%d</td><td>%s</td><td>%s</td><td>%s</td>",
			rowClass, entry.Order, html.EscapeString(valueOrDash(entry.Date)),
			html.EscapeString(entry.Purpose.Label()), html.EscapeString(valueOrDash(entry.Holder))))
		if showAmount {
			htmlBuilder.WriteString(fmt.Sprintf("<td>%s</td>", formatWon(entry.Amount)))
		}
		htmlBuilder.WriteString(fmt.Sprintf("<td>%s</td></tr>\n", entry.RiskLevel))
	}

	htmlBuilder.WriteString("</table>\n")
	htmlBuilder.WriteString("</details>\n\n")
}

func writeHTMLValidation(htmlBuilder *strings.Builder, validation *validate.Result) {
	htmlBuilder.WriteString("<div class=\"section\">\n")
	htmlBuilder.WriteString(fmt.Sprintf("<h2>Validation (%d%%)</h2>\n", validation.Score))

	for _, tierSummary := range validation.Tiers {
		htmlBuilder.WriteString("<div class=\"tier-card\">\n")
		htmlBuilder.WriteString("<div class=\"tier-header\">\n")
		htmlBuilder.WriteString(fmt.Sprintf("<h3>%s</h3>\n", tierSummary.Tier))
		htmlBuilder.WriteString(fmt.Sprintf("<span class=\"tier-checks\">%d checks</span>\n", tierSummary.Checks))
		htmlBuilder.WriteString("</div>\n")

		for _, issue := range validation.Issues {
			if issue.Category != tierSummary.Tier {
				continue
			}
			htmlBuilder.WriteString(fmt.Sprintf("<div class=\"alert %s\">[%s] %s: %s</div>\n",
				severityToAlertClass(issue.Severity),
				html.EscapeString(issue.ID),
				html.EscapeString(issue.Field),
				html.EscapeString(issue.Message)))
		}

		htmlBuilder.WriteString("</div>\n")
	}

	htmlBuilder.WriteString("</div>\n\n")
}

// reportHTMLStyles returns the inline CSS <style> block used by HTML reports.
func reportHTMLStyles() string {
	return `<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, "Apple SD Gothic Neo", "Malgun Gothic", sans-serif; background: #f5f5f5; color: #333; line-height: 1.6; }
.container { max-width: 960px; margin: 20px auto; padding: 20px; }
.header { display: flex; align-items: center; gap: 12px; margin-bottom: 24px; flex-wrap: wrap; }
.header h1 { font-size: 24px; }
.badge { background: #e3f2fd; color: #1565c0; padding: 4px 12px; border-radius: 4px; font-size: 14px; font-weight: 600; }
.status-badge { color: white; padding: 4px 12px; border-radius: 4px; font-size: 14px; font-weight: 700; text-transform: uppercase; }
.score-section { background: white; border-radius: 8px; padding: 20px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
.score-value { font-size: 36px; font-weight: 700; margin-bottom: 8px; }
.score-value .grade { font-size: 28px; margin-left: 8px; }
.score-summary { margin: 8px 0; }
.score-bar-container { background: #e0e0e0; border-radius: 4px; height: 12px; overflow: hidden; margin-bottom: 8px; }
.score-bar { height: 100%; border-radius: 4px; }
.price-note { color: #757575; font-size: 14px; }
.section { background: white; border-radius: 8px; padding: 20px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
.section h2 { font-size: 18px; margin-bottom: 16px; display: inline; }
.section summary { cursor: pointer; padding: 4px 0; }
.factor-row { display: flex; align-items: center; gap: 8px; margin: 8px 0; }
.factor-name { width: 220px; font-weight: 600; font-size: 14px; }
.factor-severity { width: 64px; color: #757575; font-size: 12px; }
.factor-bar-container { flex: 1; background: #e0e0e0; border-radius: 4px; height: 8px; overflow: hidden; }
.factor-bar { height: 100%; border-radius: 4px; }
.factor-deduction { width: 40px; text-align: right; font-size: 14px; font-weight: 600; }
table { width: 100%; border-collapse: collapse; margin: 12px 0; }
th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #e0e0e0; }
th { background: #fafafa; font-weight: 600; font-size: 13px; text-transform: uppercase; color: #757575; }
td { font-size: 14px; }
tr.cancelled td { color: #9e9e9e; text-decoration: line-through; }
.alert { padding: 10px 14px; border-radius: 4px; margin: 8px 0; font-size: 14px; }
.alert-error { background: #ffebee; color: #c62828; border-left: 4px solid #f44336; }
.alert-warning { background: #fff8e1; color: #f57f17; border-left: 4px solid #ff9800; }
.alert-info { background: #e3f2fd; color: #1565c0; border-left: 4px solid #2196f3; }
.tier-card { background: #fafafa; border: 1px solid #e0e0e0; border-radius: 8px; padding: 16px; margin-top: 12px; }
.tier-header { display: flex; align-items: center; gap: 12px; }
.tier-header h3 { font-size: 16px; text-transform: capitalize; }
.tier-checks { font-size: 14px; color: #757575; margin-left: auto; }
details { border: none; }
details summary { list-style: none; }
details summary::-webkit-details-marker { display: none; }
details[open] summary h2::after { content: " -"; }
details:not([open]) summary h2::after { content: " +"; }
</style>
`
}

// gradeToHTMLColor maps a risk grade to an HTML color.
func gradeToHTMLColor(grade risk.Grade) string {
	switch grade {
	case risk.GradeA, risk.GradeB:
		return "#4caf50"
	case risk.GradeC:
		return "#ff9800"
	default:
		return "#f44336"
	}
}

// severityToHTMLColor maps a factor severity to an HTML color.
func severityToHTMLColor(severity risk.Severity) string {
	switch severity {
	case risk.SeverityCritical:
		return "#c62828"
	case risk.SeverityHigh:
		return "#f44336"
	case risk.SeverityMedium:
		return "#ff9800"
	default:
		return "#9e9e9e"
	}
}

func validityToHTMLColor(valid bool) string {
	if valid {
		return "#4caf50"
	}
	return "#f44336"
}

func severityToAlertClass(severity validate.Severity) string {
	switch severity {
	case validate.SeverityError:
		return "alert-error"
	case validate.SeverityWarning:
		return "alert-warning"
	default:
		return "alert-info"
	}
}
