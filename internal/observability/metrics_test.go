package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_Dispatch(t *testing.T) {
	m := NewPrometheusMetrics()
	before := testutil.ToFloat64(DispatchCount.WithLabelValues("deleteReport", "dispatched"))

	m.IncrementDispatch("deleteReport", "dispatched")

	after := testutil.ToFloat64(DispatchCount.WithLabelValues("deleteReport", "dispatched"))
	assert.Equal(t, before+1, after)
}

func TestPrometheusMetrics_Pending(t *testing.T) {
	m := NewPrometheusMetrics()
	m.SetPending(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(PendingGauge))
	m.SetPending(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(PendingGauge))
}

func TestNopMetricsSatisfiesInterface(t *testing.T) {
	var m Metrics = NopMetrics{}
	m.RecordRefreshLatency(time.Second)
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, "debug", getLogLevel().String())

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", getLogLevel().String())

	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, "info", getLogLevel().String())
}

func TestPrometheusMetrics_Discrepancies(t *testing.T) {
	m := NewPrometheusMetrics()
	m.SetDiscrepancies(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(DiscrepancyGauge))
}
