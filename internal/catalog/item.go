package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/backend-headunit/internal/money"
)

// Item is an immutable catalog record for a head-unit installation kit.
type Item struct {
	ID        int         `json:"id" yaml:"id"`
	Brand     string      `json:"brand" yaml:"brand"`
	Model     string      `json:"model" yaml:"model"`
	YearFrom  int         `json:"yearFrom" yaml:"year_from"`
	YearTo    int         `json:"yearTo" yaml:"year_to"`
	Size      string      `json:"size" yaml:"size"`
	Luxury    Truthy      `json:"luxury" yaml:"luxury"`
	Price     money.Money `json:"price" yaml:"-"`
	PriceText string      `json:"-" yaml:"price"`
}

// Years renders the compatible year range, e.g. "2013–2018".
func (i Item) Years() string {
	if i.YearFrom == 0 && i.YearTo == 0 {
		return ""
	}
	if i.YearFrom == i.YearTo {
		return fmt.Sprintf("%d", i.YearFrom)
	}
	return fmt.Sprintf("%d–%d", i.YearFrom, i.YearTo)
}

// Fits reports whether the kit is compatible with the given vehicle make and
// model year. A zero year matches any year.
func (i Item) Fits(brand string, year int) bool {
	if !strings.EqualFold(strings.TrimSpace(i.Brand), strings.TrimSpace(brand)) {
		return false
	}
	if year == 0 {
		return true
	}
	return i.FitsYear(year)
}

// FitsYear reports whether year lies inside the inclusive compatible range.
func (i Item) FitsYear(year int) bool {
	if i.YearFrom != 0 && year < i.YearFrom {
		return false
	}
	if i.YearTo != 0 && year > i.YearTo {
		return false
	}
	return true
}

// Truthy is a boolean that also accepts the loose spellings found in seed
// files and form posts ("yes", "y", "1", "on").
type Truthy bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Truthy) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("catalog: luxury must be a scalar, got kind %d", node.Kind)
	}
	*t = Truthy(ParseTruthy(node.Value))
	return nil
}

// ParseTruthy interprets loose boolean spellings; anything unrecognised is false.
func ParseTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
