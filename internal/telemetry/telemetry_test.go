package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveTick(0.8, 2, 0.3)
	m.ObserveTick(0.9, 2.5, 0.4)
	m.ObserveDecision("commit")
	m.ObserveDecision("commit")
	m.ObserveDecision("reject")
	m.ObserveSolver(12)
	m.ObserveValidator("partition", 0.01, 4, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 0.9, testutil.ToFloat64(m.Coherence))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.Coupling))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("reject")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Claims.WithLabelValues("partition", "passed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SolverIterations))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTick(1, 1, 1)
		m.ObserveDecision("commit")
		m.ObserveSolver(1)
		m.ObserveValidator("x", 1, 1, 1)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg).ObserveTick(0.5, 1, 0.1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "catnav_engine_ticks_total 1"))
}

func TestTracerIsUsable(t *testing.T) {
	_, span := Tracer().Start(t.Context(), "span-check")
	defer span.End()
	assert.NotNil(t, span)
}
