package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-headunit/internal/money"
)

// Rate describes a display currency and its multiplier against the base currency.
type Rate struct {
	Code       string          `json:"code"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Converter converts base-currency amounts using a static multiplier table.
type Converter struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewConverter builds a Converter. The base currency always has multiplier 1
// regardless of what the table says.
func NewConverter(base string, rates map[string]decimal.Decimal) *Converter {
	base = normalize(base)
	table := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		code = normalize(code)
		if code == "" || !rate.IsPositive() {
			continue
		}
		table[code] = rate
	}
	if base != "" {
		table[base] = decimal.NewFromInt(1)
	}
	return &Converter{base: base, rates: table}
}

// Base returns the base currency code.
func (c *Converter) Base() string { return c.base }

// Resolve returns the canonical code for the requested currency. Unknown or
// empty codes resolve to the base currency.
func (c *Converter) Resolve(code string) string {
	code = normalize(code)
	if _, ok := c.rates[code]; ok {
		return code
	}
	return c.base
}

// Multiplier returns the multiplier for code, falling back to 1.
func (c *Converter) Multiplier(code string) decimal.Decimal {
	if rate, ok := c.rates[normalize(code)]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// Convert converts amount (minor units of the base currency) into minor units
// of the target currency, rounding half-up to whole cents.
func (c *Converter) Convert(amount money.Money, code string) money.Money {
	if amount == 0 {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(c.Multiplier(code)).Round(0).IntPart()
}

// Rates lists configured currencies sorted by code.
func (c *Converter) Rates() []Rate {
	out := make([]Rate, 0, len(c.rates))
	for code, rate := range c.rates {
		out = append(out, Rate{Code: code, Multiplier: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
