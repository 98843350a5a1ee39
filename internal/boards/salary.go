package boards

import (
	"regexp"
	"strconv"
	"strings"
)

// amount is a comma-grouped or plain figure with optional cents and "k".
const amount = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?)(k?)\b`

var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$` + amount + `\s*(?:-|–|to)\s*\$?` + amount),
	regexp.MustCompile(amount + `\s*(?:-|–|to)\s*` + amount + `\s*(?:usd|dollars?)`),
	regexp.MustCompile(`\$` + amount),
}

// ExtractSalary finds the first salary range in text. A single figure is
// returned as both bounds; 0, 0 means nothing was found.
func ExtractSalary(text string) (int, int) {
	text = strings.ToLower(text)

	for _, re := range salaryPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		low, ok := parseAmount(m[1], m[2])
		if !ok {
			continue
		}
		if len(m) == 3 {
			return low, low
		}

		high, ok := parseAmount(m[3], m[4])
		if !ok {
			continue
		}
		if high < low {
			low, high = high, low
		}
		return low, high
	}

	return 0, 0
}

func parseAmount(digits, suffix string) (int, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if suffix == "k" {
		v *= 1000
	}
	return int(v), true
}

// FormatSalary renders a range the way listings usually show it.
func FormatSalary(low, high int) string {
	switch {
	case low == 0 && high == 0:
		return "Not specified"
	case low == high || high == 0:
		return "$" + groupThousands(low)
	default:
		return "$" + groupThousands(low) + " - $" + groupThousands(high)
	}
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
