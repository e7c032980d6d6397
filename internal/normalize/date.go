package normalize

import (
	"fmt"
	"strings"
)

// Date converts "month/day/year" to "year/month/day". Month and day are
// zero-padded to two digits; the year keeps whatever width the source used.
func Date(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("parsing date %q: expected month/day/year", raw)
	}
	for _, p := range parts {
		if !isDigits(p) {
			return "", fmt.Errorf("parsing date %q: component %q is not a number", raw, p)
		}
	}

	month, day, year := pad2(parts[0]), pad2(parts[1]), parts[2]
	if len(month) > 2 || len(day) > 2 {
		return "", fmt.Errorf("parsing date %q: month and day must have at most two digits", raw)
	}
	return year + "/" + month + "/" + day, nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
