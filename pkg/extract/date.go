package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	// koreanDatePattern matches "2021년 3월 15일" with optional spacing.
	koreanDatePattern = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)

	// numericDatePattern matches "2021.3.15", "2021-03-15" and "2021/3/15".
	numericDatePattern = regexp.MustCompile(`(\d{4})\s*[./-]\s*(\d{1,2})\s*[./-]\s*(\d{1,2})`)
)

// ExtractDate returns the first date in line as "YYYY.MM.DD", or "" when
// no date is present. Values are not checked against the calendar.
func ExtractDate(line string) string {
	if m := koreanDatePattern.FindStringSubmatch(line); m != nil {
		return formatDate(m[1], m[2], m[3])
	}
	if m := numericDatePattern.FindStringSubmatch(line); m != nil {
		return formatDate(m[1], m[2], m[3])
	}
	return ""
}

func formatDate(year, month, day string) string {
	monthNumber, _ := strconv.Atoi(month)
	dayNumber, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s.%02d.%02d", year, monthNumber, dayNumber)
}
