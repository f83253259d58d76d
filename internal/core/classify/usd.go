package classify

import (
	"strconv"
	"strings"
)

var suffixes = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
}

// ParseUSD returns the first dollar amount in content, e.g. "$250K" -> 250000
// and "$1.2M" -> 1200000. Thousands separators are ignored. ok is false
// when no "$<number>" appears.
func ParseUSD(content string) (amount float64, ok bool) {
	for i := 0; i < len(content); i++ {
		if content[i] != '$' {
			continue
		}
		j := i + 1
		var num strings.Builder
		seenDot := false
	scan:
		for ; j < len(content); j++ {
			c := content[j]
			switch {
			case c >= '0' && c <= '9':
				num.WriteByte(c)
			case c == ',' && num.Len() > 0:
			case c == '.' && !seenDot && num.Len() > 0:
				seenDot = true
				num.WriteByte(c)
			default:
				break scan
			}
		}
		digits := strings.TrimSuffix(num.String(), ".")
		if digits == "" {
			continue
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if j < len(content) {
			if mul, hit := suffixes[content[j]|0x20]; hit {
				v *= mul
			}
		}
		return v, true
	}
	return 0, false
}
