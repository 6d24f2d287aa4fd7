package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reAmountToken    = regexp.MustCompile(`\d[\d.,\s]*`)
	reThousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d+)?$`)
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
)

// ParseAmount reads the first number out of display money text such as
// "$ 1.500" or "$ 12,50". Unlike CoerceNumber, dots followed by three digits
// are treated as thousands separators.
func ParseAmount(text string) (float64, bool) {
	token := strings.TrimSpace(reAmountToken.FindString(strings.ReplaceAll(text, "\u00a0", " ")))
	if token == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(normalizeNumericToken(token), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// ShowsPrice reports whether a display price is worth rendering: free text is
// always shown, numbers only when positive.
func ShowsPrice(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if HasLetter(t) {
		return true
	}
	n, ok := ParseAmount(t)
	return !ok || n > 0
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if reThousandsDot.MatchString(compact) {
		compact = strings.ReplaceAll(compact, ".", "")
		return strings.ReplaceAll(compact, ",", ".")
	}
	if reThousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
