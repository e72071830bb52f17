package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/resilience"
)

func TestBreakerPublishesStateAndTransitions(t *testing.T) {
	resilience.BreakerState.Reset()
	resilience.BreakerTransitions.Reset()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := resilience.NewBreaker(1, 0.5, time.Second).WithClock(clock.now).WithTarget("vpic")
	ctx := context.Background()
	state := func() float64 { return testutil.ToFloat64(resilience.BreakerState.WithLabelValues("vpic")) }

	require.Zero(t, state())
	b.Report(ctx, false)
	require.Equal(t, 1.0, state())

	clock.advance(time.Second)
	require.True(t, b.Allow(ctx))
	require.Equal(t, 2.0, state())
	b.Report(ctx, true)
	require.Zero(t, state())

	for _, hop := range [][2]string{{"closed", "open"}, {"open", "half_open"}, {"half_open", "closed"}} {
		require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("vpic", hop[0], hop[1])), hop)
	}
}

func TestRegisterMetricsIsRepeatable(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, resilience.RegisterMetrics(reg))
	require.NoError(t, resilience.RegisterMetrics(reg))
}
