package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)

	metrics.Observe("GET", "/api/v1/products", "200", 120*time.Millisecond)
	metrics.Observe("GET", "/api/v1/products", "200", 80*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	counter := findMetricFamily(mfs, "http_requests_total")
	require.NotNil(t, counter)
	require.Len(t, counter.GetMetric(), 1)
	assert.EqualValues(t, 2, counter.GetMetric()[0].GetCounter().GetValue())

	histogram := findMetricFamily(mfs, "http_request_duration_seconds")
	require.NotNil(t, histogram)
	assert.InDelta(t, 0.2, histogram.GetMetric()[0].GetHistogram().GetSampleSum(), 0.001)
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var metrics *HTTPMetrics
	metrics.Observe("GET", "/", "200", time.Millisecond)

	unregistered := NewHTTPMetrics(nil)
	unregistered.Observe("GET", "", "", time.Millisecond)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
