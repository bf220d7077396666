package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the single currency of the ledger. Amounts are kept in its
// minor unit (pence).
const Currency = money.GBP

var (
	maxPence = decimal.NewFromInt(math.MaxInt64)
	minPence = decimal.NewFromInt(math.MinInt64)
)

// FormatAmount renders pence as a grouped decimal, e.g. 125000 -> "1,250.00"
// and -5000 -> "-50.00".
func FormatAmount(pence int64) string {
	cur := money.New(0, Currency).Currency()
	f := money.NewFormatter(cur.Fraction, cur.Decimal, cur.Thousand, "", "1")
	return f.Format(pence)
}

// FormatSigned renders pence with an explicit sign for income.
func FormatSigned(pence int64) string {
	if pence > 0 {
		return "+" + FormatAmount(pence)
	}
	return FormatAmount(pence)
}

// ParseAmount converts a decimal string such as "12.50" or "-3" to pence.
// Thousands separators and a leading currency symbol are ignored. More than
// two decimal places, or more pence than an int64 holds, is an error.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.Replace(clean, "£", "", 1)
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	pence := d.Shift(2)
	if !pence.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	if pence.GreaterThan(maxPence) || pence.LessThan(minPence) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return pence.IntPart(), nil
}
