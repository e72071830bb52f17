package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/geo"
	"github.com/noah-isme/backend-headunit/internal/money"
	"github.com/noah-isme/backend-headunit/internal/shipping"
)

func newEstimator() *shipping.Estimator {
	return shipping.NewEstimator(shipping.Rates{
		Base: map[geo.Zone]money.Money{
			geo.ZoneQLD: 1295,
			geo.ZoneGC:  1295,
			geo.ZoneAUS: 1495,
		},
		Fallback:     1495,
		PerExtraItem: 500,
	})
}

func TestEstimateBaseRates(t *testing.T) {
	e := newEstimator()
	require.Equal(t, money.Money(1295), e.Estimate(geo.ZoneQLD, 1))
	require.Equal(t, money.Money(1295), e.Estimate(geo.ZoneGC, 1))
	require.Equal(t, money.Money(1495), e.Estimate(geo.ZoneAUS, 1))
	require.Equal(t, money.Money(1495), e.Estimate(geo.Zone("NT"), 1))
}

func TestEstimateExtraItems(t *testing.T) {
	e := newEstimator()
	require.Equal(t, money.Money(1295+2*500), e.Estimate(geo.ZoneQLD, 3))
	require.Equal(t, money.Money(1495+2*500), e.Estimate(geo.ZoneAUS, 3))
}

func TestEstimateEmptyShipment(t *testing.T) {
	e := newEstimator()
	require.Equal(t, money.Money(0), e.Estimate(geo.ZoneQLD, 0))
	require.Equal(t, money.Money(0), e.Estimate(geo.ZoneQLD, -2))
}

func TestQuoteRequiresPostcode(t *testing.T) {
	e := newEstimator()
	require.Equal(t, money.Money(0), e.Quote("", geo.ZoneAUS, 0))
	require.Equal(t, money.Money(0), e.Quote("  ", geo.ZoneAUS, 3))
	require.Equal(t, money.Money(1295+2*500), e.Quote("4000", geo.ZoneQLD, 3))
}

func TestQuoteEmptyOrderShipsFree(t *testing.T) {
	e := newEstimator()
	require.Equal(t, money.Money(0), e.Quote("4000", geo.ZoneQLD, 0))
	require.Equal(t, money.Money(0), e.Quote("9999", geo.ZoneAUS, 0))
}

func TestNewEstimatorCopiesRates(t *testing.T) {
	base := map[geo.Zone]money.Money{geo.ZoneQLD: 1295}
	e := shipping.NewEstimator(shipping.Rates{Base: base, Fallback: 1495})
	base[geo.ZoneQLD] = 1
	require.Equal(t, money.Money(1295), e.BaseRate(geo.ZoneQLD))
}
