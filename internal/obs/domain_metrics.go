package obs

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingQuotesTotal counts priced orders by zone and locality.
	PricingQuotesTotal *prometheus.CounterVec
	// PricingGrandTotal records grand totals in base-currency major units.
	PricingGrandTotal prometheus.Histogram
	// VINDecodeTotal counts VIN decode outcomes.
	VINDecodeTotal *prometheus.CounterVec
	// CartMutationsTotal counts cart writes by operation.
	CartMutationsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingQuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quotes_total",
			Help:      "Count of priced orders by shipping zone and installer locality.",
		}, []string{"zone", "local"})
		PricingGrandTotal = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_grand_total",
			Help:      "Distribution of order grand totals in the base currency.",
			Buckets:   []float64{50, 100, 250, 500, 750, 1000, 1500, 2500, 5000},
		})
		VINDecodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vin_decode_total",
			Help:      "Count of VIN decode requests by outcome.",
		}, []string{"result"})
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of session cart mutations by operation.",
		}, []string{"op"})

		PricingQuotesTotal = register(reg, PricingQuotesTotal)
		PricingGrandTotal = register(reg, PricingGrandTotal)
		VINDecodeTotal = register(reg, VINDecodeTotal)
		CartMutationsTotal = register(reg, CartMutationsTotal)
	})
}

// ObserveQuote records one priced order. grandCents is in base-currency
// minor units. Safe to call before registration.
func ObserveQuote(zone string, local bool, grandCents int64) {
	if PricingQuotesTotal != nil {
		PricingQuotesTotal.WithLabelValues(zone, strconv.FormatBool(local)).Inc()
	}
	if PricingGrandTotal != nil {
		PricingGrandTotal.Observe(float64(grandCents) / 100)
	}
}

// VIN decode outcomes recorded by ObserveVINDecode.
const (
	VINResultOK      = "ok"
	VINResultCached  = "cached"
	VINResultInvalid = "invalid"
	VINResultFailed  = "failed"
)

// ObserveVINDecode records a VIN decode outcome, one of the VINResult values.
func ObserveVINDecode(result string) {
	if VINDecodeTotal != nil {
		VINDecodeTotal.WithLabelValues(result).Inc()
	}
}

// ObserveCartMutation records a cart write.
func ObserveCartMutation(op string) {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(op).Inc()
	}
}
