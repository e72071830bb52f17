package currency_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/currency"
	"github.com/noah-isme/backend-headunit/internal/money"
)

func newConverter() *currency.Converter {
	return currency.NewConverter("AUD", map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("0.66"),
		"eur": decimal.RequireFromString("0.61"),
		"NZD": decimal.RequireFromString("1.09"),
		"BAD": decimal.Zero,
	})
}

func TestConvertZeroIsZero(t *testing.T) {
	c := newConverter()
	for _, code := range []string{"AUD", "USD", "EUR", "NZD", "XYZ", ""} {
		require.Equal(t, money.Money(0), c.Convert(0, code), code)
	}
}

func TestConvertUnknownCurrencyUsesUnitMultiplier(t *testing.T) {
	c := newConverter()
	require.Equal(t, money.Money(71295), c.Convert(71295, "XYZ"))
	require.Equal(t, money.Money(71295), c.Convert(71295, ""))
	require.Equal(t, money.Money(71295), c.Convert(71295, "BAD"))
	require.Equal(t, "AUD", c.Resolve("xyz"))
	require.Equal(t, "EUR", c.Resolve(" eur "))
}

func TestConvertRoundsHalfUpPerFigure(t *testing.T) {
	c := newConverter()
	// 12.95 AUD * 0.66 = 8.547 USD -> 8.55
	require.Equal(t, money.Money(855), c.Convert(1295, "USD"))
	// 0.25 AUD * 0.66 = 0.165 USD -> 0.17
	require.Equal(t, money.Money(17), c.Convert(25, "usd"))
	// rounding is applied per figure, sums are not re-rounded
	a, b := money.Money(25), money.Money(25)
	require.Equal(t, money.Money(34), c.Convert(a, "USD")+c.Convert(b, "USD"))
	require.Equal(t, money.Money(33), c.Convert(a+b, "USD"))
}

func TestConvertIsMonotonic(t *testing.T) {
	c := newConverter()
	for _, code := range []string{"AUD", "USD", "EUR", "NZD"} {
		prev := c.Convert(0, code)
		for amount := money.Money(1); amount <= 5000; amount += 7 {
			next := c.Convert(amount, code)
			require.GreaterOrEqual(t, next, prev, code)
			prev = next
		}
	}
}

func TestRatesIncludeBase(t *testing.T) {
	c := newConverter()
	rates := c.Rates()
	codes := make([]string, 0, len(rates))
	for _, r := range rates {
		codes = append(codes, r.Code)
	}
	require.Equal(t, []string{"AUD", "EUR", "NZD", "USD"}, codes)
	require.True(t, c.Multiplier("AUD").Equal(decimal.NewFromInt(1)))
}
