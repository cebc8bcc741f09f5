// Package telemetry holds the prometheus collectors and the otel tracer
// shared by the engine and the validator suite.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the otel tracer of this module.
const TracerName = "catnav"

// Tracer returns the module tracer from the global provider. Spans are
// no-ops unless the host installs a provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// #region metrics
// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Ticks             prometheus.Counter
	Decisions         *prometheus.CounterVec
	Coherence         prometheus.Gauge
	Coupling          prometheus.Gauge
	Consciousness     prometheus.Gauge
	SolverIterations  prometheus.Histogram
	ValidatorDuration *prometheus.HistogramVec
	Claims            *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "catnav",
			Name:      "engine_ticks_total",
			Help:      "Oscillator integration steps taken by engines.",
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catnav",
			Name:      "transition_decisions_total",
			Help:      "Persisted transition outcomes by action.",
		}, []string{"action"}),
		Coherence: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "catnav",
			Name:      "population_coherence",
			Help:      "Kuramoto order parameter R after the last tick.",
		}),
		Coupling: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "catnav",
			Name:      "population_coupling",
			Help:      "Coupling strength after the last tick.",
		}),
		Consciousness: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "catnav",
			Name:      "consciousness_score",
			Help:      "Consciousness score of the last trajectory state.",
		}),
		SolverIterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catnav",
			Name:      "solver_iterations",
			Help:      "Iterations spent per constraint completion.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		ValidatorDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catnav",
			Name:      "validator_duration_seconds",
			Help:      "Wall time per validator run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"validator"}),
		Claims: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catnav",
			Name:      "validator_claims_total",
			Help:      "Validator claims by outcome.",
		}, []string{"validator", "outcome"}),
	}
}

// ObserveTick records one integration step.
func (m *Metrics) ObserveTick(r, coupling, score float64) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.Coherence.Set(r)
	m.Coupling.Set(coupling)
	m.Consciousness.Set(score)
}

// ObserveDecision counts a persisted transition outcome.
func (m *Metrics) ObserveDecision(action string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(action).Inc()
}

// ObserveSolver records the iterations one completion took.
func (m *Metrics) ObserveSolver(iterations int) {
	if m == nil {
		return
	}
	m.SolverIterations.Observe(float64(iterations))
}

// ObserveValidator records a validator's wall time and claim outcomes.
func (m *Metrics) ObserveValidator(name string, seconds float64, passed, failed int) {
	if m == nil {
		return
	}
	m.ValidatorDuration.WithLabelValues(name).Observe(seconds)
	m.Claims.WithLabelValues(name, "passed").Add(float64(passed))
	m.Claims.WithLabelValues(name, "failed").Add(float64(failed))
}

// #endregion metrics

// Handler serves reg in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
