package gate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region gate
// Gate evaluates whether a proposed trajectory transition should be committed or rejected.
type Gate struct {
	config Config
}

// New creates a gate with the given configuration.
func New(config Config) *Gate {
	return &Gate{config: config}
}

// Config returns the thresholds the gate was built with.
func (g *Gate) Config() Config { return g.config }

// Evaluate checks hard vetoes first, then scores soft signals.
func (g *Gate) Evaluate(old, proposed trajectory.State, m Metrics) Decision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	// 1. Caller cancelled the run mid-step
	if m.Cancelled {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoCancelled,
			Reason: "run cancelled before commit",
		})
	}

	// 2. Non-finite values anywhere in the proposal
	if !finite(proposed) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoNumeric,
			Reason: "proposed state carries NaN or Inf",
		})
	}

	// 3. Unit-interval fields out of range
	if err := trajectory.Validate(proposed); err != nil && finite(proposed) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoBounds,
			Reason: err.Error(),
		})
	}

	// 4. Coordinate jump exceeds cap
	if m.Distance > g.config.MaxStep {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoStep,
			Reason: fmt.Sprintf("step %.4f exceeds cap %.4f", m.Distance, g.config.MaxStep),
		})
	}

	// 5. Memory integral ran away
	if math.Abs(proposed.Memory) > g.config.MaxMemory {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoBounds,
			Reason: fmt.Sprintf("memory %.4g exceeds cap %.4g", proposed.Memory, g.config.MaxMemory),
		})
	}

	// 6. Coupling steering ran away
	if m.Coupling > g.config.MaxCoupling {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoCoupling,
			Reason: fmt.Sprintf("coupling %.4f exceeds cap %.4f", m.Coupling, g.config.MaxCoupling),
		})
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      ActionReject,
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	// --- Soft scoring ---
	softScore := computeSoftScore(old, proposed, m, g.config.MaxStep)
	reason := fmt.Sprintf("passed gate: soft_score=%.4f", softScore)
	if softScore < g.config.MinScore {
		reason = fmt.Sprintf("passed gate (low soft_score=%.4f)", softScore)
	}

	return Decision{
		Action:    ActionCommit,
		Reason:    reason,
		SoftScore: softScore,
	}
}

// #endregion gate

// #region helpers
func finite(s trajectory.State) bool {
	for _, v := range []float64{
		s.Coherence, s.FrequencyCoherence, s.Memory, s.PerceptionLevel, s.ThoughtLevel,
		s.Timestamp, s.Coordinate.Sk, s.Coordinate.St, s.Coordinate.Se,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// computeSoftScore produces a 0-1 composite from coherence gain, step
// stability, and consciousness retained. Logged but never blocks.
func computeSoftScore(old, proposed trajectory.State, m Metrics, maxStep float64) float64 {
	var score float64

	// Coherence component: reward synchrony gains (weight 0.4)
	switch {
	case m.CoherenceDelta >= 0:
		score += 0.4
	case m.CoherenceDelta > -1:
		score += 0.4 * (1 + m.CoherenceDelta)
	}

	// Step stability component: shorter moves are more stable (weight 0.3)
	if m.Distance <= 0 {
		score += 0.3
	} else if m.Distance < maxStep {
		score += 0.3 * (1 - m.Distance/maxStep)
	}

	// Consciousness component: penalise collapses (weight 0.3)
	before := old.ConsciousnessScore()
	after := proposed.ConsciousnessScore()
	switch {
	case before == 0 || after >= before:
		score += 0.3
	default:
		score += 0.3 * after / before
	}

	return score
}

// #endregion helpers
