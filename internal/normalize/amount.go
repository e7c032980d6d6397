package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned for blank amount or date input.
var ErrEmpty = errors.New("empty value")

// Amount converts bank amount text to a signed token. A value wrapped in
// parentheses becomes negative: "(12.34)" -> "-12.34". Anything else is
// returned trimmed but otherwise unchanged, currency symbols included.
func Amount(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}

	open := strings.HasPrefix(s, "(")
	closed := strings.HasSuffix(s, ")")
	switch {
	case open && closed:
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return "", fmt.Errorf("parsing amount %q: %w", raw, ErrEmpty)
		}
		return "-" + inner, nil
	case open || closed:
		return "", fmt.Errorf("parsing amount %q: unbalanced parentheses", raw)
	}
	return s, nil
}

// Negate flips the sign of an amount token without parsing it.
func Negate(amount string) string {
	if rest, ok := strings.CutPrefix(amount, "-"); ok {
		return rest
	}
	return "-" + strings.TrimPrefix(amount, "+")
}

var currencySymbols = []string{"$", "£", "€"}

// Decimal parses an amount token as a fixed-point value, ignoring a single
// currency symbol after the optional sign. The ledger text never goes
// through this; it is used for run totals only.
func Decimal(amount string) (decimal.Decimal, error) {
	s := strings.TrimSpace(amount)
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	for _, sym := range currencySymbols {
		if rest, ok := strings.CutPrefix(s, sym); ok {
			s = rest
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(sign + s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	return d, nil
}
