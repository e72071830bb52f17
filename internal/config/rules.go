package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/backend-headunit/internal/currency"
	"github.com/noah-isme/backend-headunit/internal/geo"
	"github.com/noah-isme/backend-headunit/internal/money"
	"github.com/noah-isme/backend-headunit/internal/pricing"
	"github.com/noah-isme/backend-headunit/internal/shipping"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the decoded rule file. Amounts are decimal strings in the base
// currency so the file never carries floating point prices.
type Rules struct {
	BaseCurrency string             `yaml:"base_currency" validate:"required,len=3,alpha"`
	FallbackZone string             `yaml:"fallback_zone" validate:"required"`
	Zones        []ZoneRange        `yaml:"zones" validate:"required,min=1,dive"`
	ServiceAreas []AreaRange        `yaml:"service_areas" validate:"dive"`
	Fees         FeeRules           `yaml:"fees"`
	Shipping     ShippingRules      `yaml:"shipping"`
	Currencies   map[string]string  `yaml:"currencies" validate:"dive,keys,len=3,alpha,endkeys,required"`
	PremiumAudio []PremiumAudioRule `yaml:"premium_audio" validate:"dive"`

	compiled compiledRules
}

// ZoneRange is one ordered zone rule.
type ZoneRange struct {
	Zone string `yaml:"zone" validate:"required"`
	From int    `yaml:"from" validate:"gte=0"`
	To   int    `yaml:"to" validate:"gtefield=From"`
}

// AreaRange is one named installer service area.
type AreaRange struct {
	Name string `yaml:"name" validate:"required"`
	From int    `yaml:"from" validate:"gte=0"`
	To   int    `yaml:"to" validate:"gtefield=From"`
}

// FeeRules lists the flat fee amounts.
type FeeRules struct {
	InstallStandard string `yaml:"install_standard" validate:"required"`
	InstallLuxury   string `yaml:"install_luxury" validate:"required"`
	Callout         string `yaml:"callout" validate:"required"`
	GPS             string `yaml:"gps" validate:"required"`
	Dashcam         string `yaml:"dashcam" validate:"required"`
}

// ShippingRules lists the per-zone shipping table.
type ShippingRules struct {
	Base         map[string]string `yaml:"base" validate:"required,min=1,dive,keys,required,endkeys,required"`
	Fallback     string            `yaml:"fallback" validate:"required"`
	PerExtraItem string            `yaml:"per_extra_item" validate:"required"`
}

// PremiumAudioRule maps a vehicle make to the audio brands it ships with.
// Keywords are matched in order against decoded trim text.
type PremiumAudioRule struct {
	Make     string   `yaml:"make" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

type compiledRules struct {
	fees     pricing.FeeSchedule
	shipping shipping.Rates
	rates    map[string]decimal.Decimal
}

var rulesValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadRules reads the rule file at path, or the embedded defaults when path is
// empty.
func LoadRules(path string) (*Rules, error) {
	data := defaultRules
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		data = raw
	}
	return ParseRules(data)
}

// DefaultRules returns the embedded rule tables. It panics if they are invalid.
func DefaultRules() *Rules {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		panic(err)
	}
	return rules
}

// ParseRules decodes and validates a YAML rule document.
func ParseRules(data []byte) (*Rules, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var rules Rules
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := rulesValidator.Struct(&rules); err != nil {
		return nil, fmt.Errorf("validate rules: %w", err)
	}
	if err := rules.compile(); err != nil {
		return nil, fmt.Errorf("validate rules: %w", err)
	}
	return &rules, nil
}

func (r *Rules) compile() error {
	var errs []error
	amount := func(field, value string) money.Money {
		m, err := money.Parse(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return 0
		}
		if m < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative", field))
			return 0
		}
		return m
	}

	r.BaseCurrency = strings.ToUpper(r.BaseCurrency)
	r.compiled.fees = pricing.FeeSchedule{
		InstallStandard: amount("fees.install_standard", r.Fees.InstallStandard),
		InstallLuxury:   amount("fees.install_luxury", r.Fees.InstallLuxury),
		Callout:         amount("fees.callout", r.Fees.Callout),
		GPS:             amount("fees.gps", r.Fees.GPS),
		Dashcam:         amount("fees.dashcam", r.Fees.Dashcam),
	}

	base := make(map[geo.Zone]money.Money, len(r.Shipping.Base))
	for zone, rate := range r.Shipping.Base {
		base[geo.Zone(strings.ToUpper(zone))] = amount("shipping.base."+zone, rate)
	}
	r.compiled.shipping = shipping.Rates{
		Base:         base,
		Fallback:     amount("shipping.fallback", r.Shipping.Fallback),
		PerExtraItem: amount("shipping.per_extra_item", r.Shipping.PerExtraItem),
	}

	r.compiled.rates = make(map[string]decimal.Decimal, len(r.Currencies))
	for code, value := range r.Currencies {
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, fmt.Errorf("currencies.%s: %w", code, err))
			continue
		}
		if !rate.IsPositive() {
			errs = append(errs, fmt.Errorf("currencies.%s: multiplier must be positive", code))
			continue
		}
		r.compiled.rates[strings.ToUpper(code)] = rate
	}
	return errors.Join(errs...)
}

// Classifier builds the postcode classifier from the zone and area tables.
func (r *Rules) Classifier() *geo.Classifier {
	zones := make([]geo.ZoneRule, 0, len(r.Zones))
	for _, z := range r.Zones {
		zones = append(zones, geo.ZoneRule{Zone: geo.Zone(strings.ToUpper(z.Zone)), From: z.From, To: z.To})
	}
	areas := make([]geo.ServiceArea, 0, len(r.ServiceAreas))
	for _, a := range r.ServiceAreas {
		areas = append(areas, geo.ServiceArea{Name: a.Name, From: a.From, To: a.To})
	}
	return geo.NewClassifier(zones, areas, geo.Zone(strings.ToUpper(r.FallbackZone)))
}

// FeeSchedule returns the parsed fee amounts.
func (r *Rules) FeeSchedule() pricing.FeeSchedule { return r.compiled.fees }

// Estimator builds the shipping estimator.
func (r *Rules) Estimator() *shipping.Estimator { return shipping.NewEstimator(r.compiled.shipping) }

// Converter builds the display currency converter.
func (r *Rules) Converter() *currency.Converter {
	return currency.NewConverter(r.BaseCurrency, r.compiled.rates)
}
