package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector(t *testing.T) {
	t.Parallel()

	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)

	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableProcessMetrics: true, EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	out := scrape(t, c)
	assert.Contains(t, out, "go_goroutines")
}

func TestRegister_Idempotent(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	a := c.RegisterCounter("hits_total", "help", "route")
	b := c.RegisterCounter("hits_total", "help", "route")
	a.WithLabelValues("x").Inc()
	b.WithLabelValues("x").Add(2)

	assert.Contains(t, scrape(t, c), `test_unit_hits_total{route="x"} 3`)
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	c.RegisterCounter("thing", "help")
	g := c.RegisterGauge("thing", "help")
	assert.NotPanics(t, func() { g.WithLabelValues().Set(4) })

	h := c.RegisterHistogram("thing", "help", nil)
	assert.NotPanics(t, func() { h.WithLabelValues().Observe(1) })
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	c.RegisterGauge("inflight", "help").WithLabelValues().Set(7)
	c.RegisterHistogram("latency_seconds", "help", []float64{0.1, 1}).WithLabelValues().Observe(0.5)

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_inflight 7")
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{le="1"} 1`)

	n, err := testutil.GatherAndCount(c.Registry(), "test_unit_inflight")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTimer(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	timer := NewTimer(c.RegisterHistogram("op_seconds", "help", nil).WithLabelValues())
	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Duration(0))
	assert.Contains(t, scrape(t, c), "test_unit_op_seconds_count 1")

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}
