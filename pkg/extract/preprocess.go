package extract

import (
	"regexp"
	"strings"
)

var (
	// pageMarkerPattern matches page footers such as "- 3 -" left behind by
	// PDF text extraction.
	pageMarkerPattern = regexp.MustCompile(`^-\s*\d+\s*-$`)

	// issuanceFooterPattern matches the per-page issuance stamp lines.
	issuanceFooterPattern = regexp.MustCompile(`^(?:\[?\s*열람용\s*\]?|발행번호\s*\S+|열람일시\s*:.*)$`)

	spaceReplacer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u00a0", " ",
		"\u3000", " ",
		"\t", " ",
	)
)

// NormalizeText prepares extracted registry text for section splitting:
// line endings are unified, exotic spaces become ASCII spaces, and page
// footers repeated by the extractor are removed. Line order is preserved.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(spaceReplacer.Replace(text), "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		if pageMarkerPattern.MatchString(trimmedLine) {
			continue
		}
		if issuanceFooterPattern.MatchString(trimmedLine) {
			continue
		}

		cleanedLines = append(cleanedLines, line)
	}

	return strings.Join(cleanedLines, "\n")
}

// splitLines returns the trimmed, non-empty lines of text.
func splitLines(text string) []string {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, rawLine := range rawLines {
		if trimmedLine := strings.TrimSpace(rawLine); trimmedLine != "" {
			lines = append(lines, trimmedLine)
		}
	}
	return lines
}
