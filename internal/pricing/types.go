package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/geo"
	"github.com/noah-isme/backend-headunit/internal/money"
)

// Options are the per-line selections. Zero values mean "not selected".
type Options struct {
	CustomSound  bool   `json:"customSound"`
	PremiumBrand string `json:"premiumBrand,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Install      bool   `json:"install"`
	Callout      bool   `json:"callout"`
	GPS          bool   `json:"gps"`
	Dashcam      bool   `json:"dashcam"`
}

// Form field names understood by OptionsFromMap.
const (
	FieldCustomSound  = "custom_sound"
	FieldPremiumBrand = "premium_brand"
	FieldPostcode     = "postcode"
	FieldInstall      = "install"
	FieldCallout      = "callout"
	FieldGPS          = "gps"
	FieldDashcam      = "dashcam"
)

// OptionsFromMap builds Options from a form-style map such as a posted
// checkbox set. Missing keys default to false/empty.
func OptionsFromMap(values map[string]string) Options {
	return Options{
		CustomSound:  catalog.ParseTruthy(values[FieldCustomSound]),
		PremiumBrand: strings.TrimSpace(values[FieldPremiumBrand]),
		Postcode:     strings.TrimSpace(values[FieldPostcode]),
		Install:      catalog.ParseTruthy(values[FieldInstall]),
		Callout:      catalog.ParseTruthy(values[FieldCallout]),
		GPS:          catalog.ParseTruthy(values[FieldGPS]),
		Dashcam:      catalog.ParseTruthy(values[FieldDashcam]),
	}
}

var optionAliases = map[string]string{
	"customsound":  FieldCustomSound,
	"premiumbrand": FieldPremiumBrand,
	"postcode":     FieldPostcode,
	"install":      FieldInstall,
	"callout":      FieldCallout,
	"gps":          FieldGPS,
	"dashcam":      FieldDashcam,
}

// UnmarshalJSON accepts either the typed object form
// ({"install":true,"premiumBrand":"JBL"}) or a form-style map
// ({"install":"on","premium_brand":"JBL"}). Unknown keys are ignored.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	values := make(map[string]string, len(raw))
	for key, v := range raw {
		field, ok := optionAliases[strings.ToLower(strings.ReplaceAll(key, "_", ""))]
		if !ok {
			continue
		}
		values[field] = optionValue(v)
	}
	*o = OptionsFromMap(values)
	return nil
}

func optionValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Line pairs a catalog id with the options chosen for it.
type Line struct {
	CatalogID int     `json:"catalogId"`
	Options   Options `json:"options"`
}

// Context carries the order-level pricing inputs.
type Context struct {
	Postcode string `json:"postcode"`
	Currency string `json:"currency"`
}

// Totals groups the six order figures in one currency.
type Totals struct {
	Subtotal     money.Money `json:"subtotal"`
	AddOns       money.Money `json:"addOns"`
	Installation money.Money `json:"installation"`
	Callout      money.Money `json:"callout"`
	Shipping     money.Money `json:"shipping"`
	Grand        money.Money `json:"grand"`
}

// LineSummary is the per-line breakdown in the base currency.
type LineSummary struct {
	Index        int          `json:"index"`
	Item         catalog.Item `json:"item"`
	Options      Options      `json:"options"`
	AddOns       money.Money  `json:"addOns"`
	Installation money.Money  `json:"installation"`
}

// OrderSummary is the derived pricing result for one cart and context.
type OrderSummary struct {
	Lines        []LineSummary `json:"lines"`
	ItemCount    int           `json:"itemCount"`
	Postcode     string        `json:"postcode"`
	Zone         geo.Zone      `json:"zone"`
	Local        bool          `json:"local"`
	Area         string        `json:"area,omitempty"`
	BaseCurrency string        `json:"baseCurrency"`
	Currency     string        `json:"currency"`
	Base         Totals        `json:"base"`
	Display      Totals        `json:"display"`
}
