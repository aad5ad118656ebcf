// Package gradescale reconciles numeric grades expressed on different
// scales into a common 0-20 value.
package gradescale

import (
	"strconv"
	"strings"
)

const (
	maxCommon = 20.0
	maxLarge  = 200.0
)

// Normalize parses a raw grade literal and converts it to the common 0-20
// scale. Values in (20, 200] are treated as 0-200 and divided by 10.
// Unparsable, negative, or out-of-range values report ok=false.
//
// Known limitation: a 0-200-scale grade that happens to be <= 20 (e.g.
// "15" meaning 15/200) is indistinguishable from a 0-20 grade of 15. The
// source formats carry no declared scale, so the value is kept as-is.
func Normalize(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	// French exports write decimals with a comma.
	trimmed = strings.ReplaceAll(trimmed, ",", ".")

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value < 0 {
		return 0, false
	}

	if value > maxCommon {
		if value > maxLarge {
			return 0, false
		}
		return value / 10, true
	}
	return value, true
}
