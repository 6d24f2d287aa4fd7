package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"menuboard/internal"
)

var affirmative = map[string]struct{}{
	"si": {}, "sí": {}, "s": {}, "yes": {}, "y": {}, "1": {}, "true": {},
}

// CoerceYesNo accepts the localized spellings of "yes"; anything else is false.
func CoerceYesNo(raw string) bool {
	_, ok := affirmative[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// CoerceNumber parses a cell that may use a decimal comma. Blank, non-numeric
// and non-finite values yield fallback.
func CoerceNumber(raw string, fallback float64) float64 {
	t := strings.TrimSpace(raw)
	if t == "" {
		return fallback
	}
	t = strings.Replace(t, ",", ".", 1)
	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return n
}

func CoercePromotionFlag(raw string, rule internal.PromoRule) bool {
	switch rule {
	case internal.PromoNonEmptyNonZero:
		t := strings.TrimSpace(raw)
		return t != "" && t != "0"
	default:
		return CoerceYesNo(raw)
	}
}

type MoneyFormatter struct {
	Prefix  string
	printer *message.Printer
}

func NewMoneyFormatter(locale, prefix string) MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return MoneyFormatter{Prefix: prefix, printer: message.NewPrinter(tag)}
}

var defaultMoney = NewMoneyFormatter("es-AR", "$ ")

// CoerceMoneyText formats with the default es-AR formatter.
func CoerceMoneyText(raw string) string {
	return defaultMoney.Text(raw)
}

var reAmountOnly = regexp.MustCompile(`^-?\d[\d.,]*$`)

// Text keeps free-form promotional text ("2x1", "DESDE") as written and
// renders numeric cells as a locale-formatted amount with the prefix.
func (f MoneyFormatter) Text(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}
	if HasLetter(t) {
		return t
	}
	body := strings.TrimSpace(strings.TrimPrefix(t, "$"))
	if !reAmountOnly.MatchString(body) {
		return t
	}
	n, ok := ParseAmount(body)
	if !ok {
		return t
	}
	if strings.HasPrefix(body, "-") {
		n = -n
	}
	return f.Prefix + f.Format(n)
}

func (f MoneyFormatter) Format(n float64) string {
	p := f.printer
	if p == nil {
		p = defaultMoney.printer
	}
	return p.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
}
