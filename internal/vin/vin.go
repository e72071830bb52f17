package vin

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidVIN indicates input that cannot be a 17-character VIN.
	ErrInvalidVIN = errors.New("vin: invalid vin")
	// ErrLookupFailed wraps any failure of the upstream decoder.
	ErrLookupFailed = errors.New("vin: lookup failed")
)

// Length is the fixed length of a modern VIN.
const Length = 17

// Normalize upper-cases and trims raw, then checks length and alphabet.
// I, O and Q never appear in a VIN.
func Normalize(raw string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if len(v) != Length {
		return "", ErrInvalidVIN
	}
	for _, r := range v {
		switch {
		case r == 'I' || r == 'O' || r == 'Q':
			return "", ErrInvalidVIN
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return "", ErrInvalidVIN
		}
	}
	return v, nil
}

// Vehicle is the flat attribute view of a decoded VIN.
type Vehicle struct {
	VIN          string            `json:"vin"`
	Year         int               `json:"year,omitempty"`
	Make         string            `json:"make"`
	Model        string            `json:"model"`
	Trim         string            `json:"trim,omitempty"`
	Series       string            `json:"series,omitempty"`
	PremiumAudio string            `json:"premiumAudio,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// FreeText joins the descriptive fields searched for premium-audio keywords.
func (v Vehicle) FreeText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{v.Model, v.Trim, v.Series} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
