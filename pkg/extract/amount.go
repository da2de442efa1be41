package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	unitEok = 100_000_000 // 억
	unitMan = 10_000      // 만
)

var (
	// prefixedWonPattern matches "금 480,000,000원".
	prefixedWonPattern = regexp.MustCompile(`금\s*(\d{1,3}(?:,\d{3})+|\d+)\s*원`)

	// bareWonPattern matches a digit group directly followed by 원.
	bareWonPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)원`)

	// eokManPattern matches compounds such as "3억5,000만원".
	eokManPattern = regexp.MustCompile(`(\d+)\s*억\s*(\d{1,3}(?:,\d{3})+|\d+)\s*만`)

	eokPattern = regexp.MustCompile(`(\d+)\s*억`)

	manPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)\s*만\s*원`)

	// longNumberPattern is the last resort: a bare run of 7+ digits that is
	// not part of a hyphenated registration number.
	longNumberPattern = regexp.MustCompile(`(?:^|[^\d,\-])(\d{7,})(?:[^\d,\-]|$)`)
)

// ExtractAmount returns the first Korean currency amount found in line, in
// won. Patterns are tried from most to least specific; 0 means no amount.
func ExtractAmount(line string) int64 {
	if line == "" {
		return 0
	}

	if m := prefixedWonPattern.FindStringSubmatch(line); m != nil {
		if amount := parseDigits(m[1]); amount > 0 {
			return amount
		}
	}

	if m := bareWonPattern.FindStringSubmatch(line); m != nil {
		if amount := parseDigits(m[1]); amount > 0 {
			return amount
		}
	}

	if m := eokManPattern.FindStringSubmatch(line); m != nil {
		eok, eokOK := scaleAmount(parseDigits(m[1]), unitEok)
		man, manOK := scaleAmount(parseDigits(m[2]), unitMan)
		if !eokOK || !manOK || eok > math.MaxInt64-man {
			return 0
		}
		if amount := eok + man; amount > 0 {
			return amount
		}
	}

	if m := eokPattern.FindStringSubmatch(line); m != nil {
		amount, ok := scaleAmount(parseDigits(m[1]), unitEok)
		if !ok {
			return 0
		}
		if amount > 0 {
			return amount
		}
	}

	if m := manPattern.FindStringSubmatch(line); m != nil {
		amount, ok := scaleAmount(parseDigits(m[1]), unitMan)
		if !ok {
			return 0
		}
		if amount > 0 {
			return amount
		}
	}

	if m := longNumberPattern.FindStringSubmatch(line); m != nil {
		return parseDigits(m[1])
	}

	return 0
}

// parseDigits converts a comma-grouped digit string, returning 0 on
// overflow or malformed input.
func parseDigits(digits string) int64 {
	value, err := strconv.ParseInt(strings.ReplaceAll(digits, ",", ""), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// scaleAmount multiplies value by unit; ok is false when the product does
// not fit in an int64.
func scaleAmount(value, unit int64) (int64, bool) {
	if value > math.MaxInt64/unit {
		return 0, false
	}
	return value * unit, true
}

// addAmounts adds two amounts, saturating at the int64 bounds.
func addAmounts(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}
