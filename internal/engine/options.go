package engine

import (
	"log/slog"
	"math/rand/v2"

	"github.com/danielpatrickdp/catnav/internal/telemetry"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// Option configures an Engine.
type Option func(*Engine)

// WithRandSource draws phases and natural frequencies from src instead of
// a PCG seeded from the config. src must not be shared across engines.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithLogger routes engine logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records ticks, decisions and solver work on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithStore persists every state change through the gate and eval stages
// into s under runID. An empty runID gets a fresh one for every run. A pinned
// runID is reused, each run starting a new root version under it.
func WithStore(s *trajectory.Store, runID string) Option {
	return func(e *Engine) {
		e.store = s
		e.runID = runID
		e.pinned = runID
	}
}
