package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in minor units (cents).
type Money = int64

var hundred = decimal.NewFromInt(100)

// Parse converts a decimal string such as "12.95" into minor units. Values with
// more than two fractional digits are rounded half-up.
func Parse(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", value, err)
	}
	return FromDecimal(d), nil
}

// FromDecimal converts a major-unit decimal into minor units, rounding half-up.
func FromDecimal(d decimal.Decimal) Money {
	return d.Mul(hundred).Round(0).IntPart()
}

// Decimal returns the major-unit representation of m.
func Decimal(m Money) decimal.Decimal {
	return decimal.New(m, -2)
}

// Format renders m with two decimal places, e.g. 71295 -> "712.95".
func Format(m Money) string {
	return Decimal(m).StringFixed(2)
}
