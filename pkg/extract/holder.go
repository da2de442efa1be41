package extract

import (
	"regexp"
	"strings"
)

// Corporate patterns are tried before personal-name patterns. Both are
// heuristics; the holder field is informational only.
var (
	corporatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`주식회사\s*[가-힣A-Za-z0-9]+`),
		regexp.MustCompile(`[가-힣A-Za-z0-9]+\s*주식회사`),
		regexp.MustCompile(`\(주\)\s*[가-힣A-Za-z0-9]+`),
		regexp.MustCompile(`[가-힣A-Za-z0-9]+\s*\(주\)`),
		regexp.MustCompile(`[가-힣]+(?:저축은행|은행|캐피탈|새마을금고|금고|신용협동조합|협동조합|조합|공단|공사|보험|카드|신탁|대부)`),
	}

	// holderRolePattern captures the name following a registry role label.
	holderRolePattern = regexp.MustCompile(`(?:소유자|공유자|근저당권자|저당권자|전세권자|채권자|권리자|가등기권자|수탁자|지상권자|임차권자|가처분권자)\s*[:：]?\s*([가-힣]{2,5})`)

	// residentNamePattern captures "홍길동 800101-*******" style lines.
	residentNamePattern = regexp.MustCompile(`^([가-힣]{2,5})\s+\d{6}-`)

	// holderStopPrefixes reject candidates that are really registry terms.
	holderStopPrefixes = []string{"소유권", "근저당", "저당권", "전세권", "가압류", "압류", "가처분", "가등기", "등기", "신탁등기"}
)

// extractHolder returns the best-effort holder name in line, or "".
func extractHolder(line string) string {
	for _, corporatePattern := range corporatePatterns {
		for _, candidate := range corporatePattern.FindAllString(line, -1) {
			candidate = strings.TrimSpace(candidate)
			if isHolderCandidate(candidate) {
				return candidate
			}
		}
	}

	if m := holderRolePattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}

	if m := residentNamePattern.FindStringSubmatch(line); m != nil && isHolderCandidate(m[1]) {
		return m[1]
	}

	return ""
}

func isHolderCandidate(candidate string) bool {
	if candidate == "" {
		return false
	}
	for _, stopPrefix := range holderStopPrefixes {
		if strings.HasPrefix(candidate, stopPrefix) {
			return false
		}
	}
	return true
}
