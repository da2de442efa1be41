package extract

import (
	"regexp"
	"strings"
)

var (
	// addressPattern anchors on a province/metropolitan city followed by a
	// 시/군/구 district; the address runs to the end of the line.
	addressPattern = regexp.MustCompile(`(?:서울|부산|대구|인천|광주|대전|울산|세종|경기|강원|충청|충북|충남|전라|전북|전남|경상|경북|경남|제주)[가-힣]*\s+[가-힣0-9]+(?:시|군|구)(?:\s|$)`)

	areaPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:㎡|m²|m2|제곱미터)`)

	structurePattern = regexp.MustCompile(`(철골철근콘크리트|철근콘크리트|철골콘크리트|철골|벽돌|블록)\s*조`)

	buildingPurposePattern = regexp.MustCompile(`다세대주택|연립주택|단독주택|아파트|오피스텔|근린생활시설|업무시설`)

	landRightFractionPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*분의\s*(\d+(?:\.\d+)?)`)

	landRightSlashPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)`)

	buildingDetailPattern = regexp.MustCompile(`(?:제?\d+동\s*)?(?:제?\d+층\s*)?제?\d+호`)
)

// ParseTitle extracts title fields line by line. Each field keeps the first
// value found; lines that match nothing are ignored.
func ParseTitle(section string) TitleSection {
	var title TitleSection

	for _, line := range splitLines(section) {
		if title.Address == "" {
			if loc := addressPattern.FindStringIndex(line); loc != nil {
				title.Address = strings.TrimSpace(line[loc[0]:])
			}
		}

		if title.BuildingDetail == "" {
			if match := buildingDetailPattern.FindString(line); match != "" {
				title.BuildingDetail = strings.TrimSpace(match)
			}
		}

		if title.Area == "" {
			if m := areaPattern.FindStringSubmatch(line); m != nil {
				title.Area = m[1] + "㎡"
			}
		}

		if title.Structure == "" {
			if m := structurePattern.FindStringSubmatch(line); m != nil {
				title.Structure = m[1] + "조"
			}
		}

		if title.Purpose == "" {
			if match := buildingPurposePattern.FindString(line); match != "" {
				title.Purpose = match
			}
		}

		if title.LandRightRatio == "" {
			title.LandRightRatio = extractLandRightRatio(line)
		}
	}

	return title
}

// extractLandRightRatio returns "A분의 B" for either notation. Slash
// fractions on dated lines are skipped since they are usually dates.
func extractLandRightRatio(line string) string {
	if m := landRightFractionPattern.FindStringSubmatch(line); m != nil {
		return m[1] + "분의 " + m[2]
	}
	if ExtractDate(line) != "" {
		return ""
	}
	if m := landRightSlashPattern.FindStringSubmatch(line); m != nil {
		return m[2] + "분의 " + m[1]
	}
	return ""
}
