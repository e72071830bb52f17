package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/obs"
)

func TestHTTPMetricsLabelsUseRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("headunit", []float64{10, 1}, registry)

	r := chi.NewRouter()
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/api/v1/units/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/api/v1/units/1", "/api/v1/units/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "/api/v1/units/{id}", "204")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
	require.Equal(t, 2, testutil.CollectAndCount(metrics.Latency))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestNewHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("headunit", nil, registry)
	second := obs.NewHTTPMetrics("headunit", nil, registry)
	require.Same(t, first.Requests, second.Requests)
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := obs.NewStatusRecorder(httptest.NewRecorder())
	_, err := rec.Write([]byte("ok"))
	require.NoError(t, err)
	rec.WriteHeader(http.StatusInternalServerError)
	require.Equal(t, http.StatusOK, rec.Status())
	require.EqualValues(t, 2, rec.BytesWritten())
}

func TestParseBucketsCSV(t *testing.T) {
	require.Equal(t, []float64{5, 12.5, 100}, obs.ParseBucketsCSV("5, 12.5,,x,-1,100"))
	require.Nil(t, obs.ParseBucketsCSV(" "))
}

func TestDomainMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("headunit_test", registry)

	obs.ObserveQuote("QLD", true, 71295)
	obs.ObserveVINDecode(obs.VINResultOK)
	obs.ObserveCartMutation("add")
	obs.ObserveCartMutation("add")

	require.Equal(t, 1.0, testutil.ToFloat64(obs.PricingQuotesTotal.WithLabelValues("QLD", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.VINDecodeTotal.WithLabelValues("ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(obs.CartMutationsTotal.WithLabelValues("add")))
	require.Equal(t, 1, testutil.CollectAndCount(obs.PricingGrandTotal))
}
