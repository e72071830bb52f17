package shipping

import (
	"strings"

	"github.com/noah-isme/backend-headunit/internal/geo"
	"github.com/noah-isme/backend-headunit/internal/money"
)

// Rates holds the shipping rate table.
type Rates struct {
	// Base maps a zone to its base rate for the first item.
	Base map[geo.Zone]money.Money
	// Fallback applies to zones missing from Base.
	Fallback money.Money
	// PerExtraItem is charged for every item beyond the first.
	PerExtraItem money.Money
}

// Estimator computes shipping charges from a zone and an item count.
type Estimator struct {
	rates Rates
}

// NewEstimator constructs an Estimator over a copy of the provided rates.
func NewEstimator(r Rates) *Estimator {
	base := make(map[geo.Zone]money.Money, len(r.Base))
	for zone, rate := range r.Base {
		base[zone] = rate
	}
	r.Base = base
	return &Estimator{rates: r}
}

// BaseRate returns the base rate for zone, using the fallback for unknown zones.
func (e *Estimator) BaseRate(zone geo.Zone) money.Money {
	if rate, ok := e.rates.Base[zone]; ok {
		return rate
	}
	return e.rates.Fallback
}

// Estimate returns baseRate(zone) + max(0, itemCount-1) * perExtraItem. An
// empty shipment costs nothing.
func (e *Estimator) Estimate(zone geo.Zone, itemCount int) money.Money {
	if itemCount <= 0 {
		return 0
	}
	return e.BaseRate(zone) + money.Money(itemCount-1)*e.rates.PerExtraItem
}

// Quote is Estimate gated on a postcode having been supplied: a blank
// postcode means there is nowhere to ship to yet and yields zero.
func (e *Estimator) Quote(postcode string, zone geo.Zone, itemCount int) money.Money {
	if strings.TrimSpace(postcode) == "" {
		return 0
	}
	return e.Estimate(zone, itemCount)
}
