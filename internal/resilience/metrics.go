package resilience

import "github.com/prometheus/client_golang/prometheus"

// Outbound call collectors. They are created unregistered; RegisterMetrics
// exposes them.
var (
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "upstream",
		Name:      "breaker_state",
		Help:      "Circuit breaker state per dependency (0 closed, 1 open, 2 half-open).",
	}, []string{"target"})
	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "upstream",
		Name:      "breaker_transitions_total",
		Help:      "Circuit breaker state changes per dependency.",
	}, []string{"target", "from", "to"})
	HTTPAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "upstream",
		Name:      "http_attempts_total",
		Help:      "Outbound HTTP attempts by dependency and outcome.",
	}, []string{"target", "outcome"})
)

// RegisterMetrics adds the outbound collectors to reg, or the default
// registerer when reg is nil. Collectors already present are left in place.
func RegisterMetrics(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{BreakerState, BreakerTransitions, HTTPAttempts} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

func recordTransition(target string, from, to State) {
	BreakerTransitions.WithLabelValues(target, from.String(), to.String()).Inc()
}
