package wallet

import (
	"fmt"
	"strconv"
	"strings"
)

// Base is the number of smallest units in one whole coin.
const Base uint64 = 1_000_000_000

// maxFractionDigits is the precision of the smallest unit.
const maxFractionDigits = 9

// InvalidAmountError reports an amount string that cannot be converted
// to smallest units.
type InvalidAmountError struct {
	Raw string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Raw)
}

// ParseAmount converts a human-readable amount like "5" or "0.25" into
// smallest units. At most nine fractional digits are accepted.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, &InvalidAmountError{Raw: s}
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, &InvalidAmountError{Raw: s}
	}
	if len(frac) > maxFractionDigits {
		return 0, &InvalidAmountError{Raw: s}
	}

	var wholeUnits uint64
	if whole != "" {
		n, err := strconv.ParseUint(whole, 10, 64)
		if err != nil {
			return 0, &InvalidAmountError{Raw: s}
		}
		wholeUnits = n
	}

	var fracUnits uint64
	if frac != "" {
		n, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, &InvalidAmountError{Raw: s}
		}
		for i := len(frac); i < maxFractionDigits; i++ {
			n *= 10
		}
		fracUnits = n
	}

	if wholeUnits > (1<<64-1-fracUnits)/Base {
		return 0, &InvalidAmountError{Raw: s}
	}
	return wholeUnits*Base + fracUnits, nil
}

// FormatAmount renders smallest units back as a whole-coin string with
// trailing zeros trimmed and at least one fractional digit.
func FormatAmount(units uint64) string {
	whole := units / Base
	frac := units % Base
	s := fmt.Sprintf("%d.%09d", whole, frac)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
