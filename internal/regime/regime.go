package regime

import (
	"math"
	"math/cmplx"
)

const (
	hierarchicalDepth  = 0.6
	phaseLockCoherence = 0.8
	oscillatoryCoh     = 0.5
	chaoticVariance    = 1.0
	bistableBand       = 0.1
	stableVariance     = 0.1
	oscillatingCoh     = 0.3
	zeroFlow           = 1e-12
)

// NewState builds a state with the three driving scalars set and the rest zero.
func NewState(primary, secondary, flowIndex float64) State {
	return State{PrimaryLevel: primary, SecondaryLevel: secondary, FlowIndex: flowIndex}
}

// #region classify
// Classify applies the default thresholds.
func Classify(s State) Regime {
	return ClassifyWith(s, DefaultThresholds())
}

// ClassifyWith maps s to a regime. The result depends only on the fields of s.
func ClassifyWith(s State, th Thresholds) Regime {
	if s.Depth >= hierarchicalDepth {
		return Hierarchical
	}
	if s.Coherence > phaseLockCoherence {
		return PhaseLocked
	}
	switch {
	case s.FlowIndex < th.LowFlow:
		if s.Coherence > oscillatoryCoh {
			return Oscillatory
		}
		return Laminar
	case s.FlowIndex > th.HighFlow:
		if s.Variance > chaoticVariance {
			return Chaotic
		}
		return Turbulent
	default:
		if math.Abs(s.Coherence-0.5) < bistableBand {
			return Bistable
		}
		return Transitional
	}
}

// Regime classifies s with the default thresholds.
func (s State) Regime() Regime { return Classify(s) }

// #endregion classify

// #region step
// Step integrates one forward-Euler step. Phase advances by 2π·f·dt and is
// wrapped into [0, 2π); coherence is clamped to [0, 1].
func (s State) Step(dPrimary, dSecondary, dCoherence, dt float64) State {
	next := s
	next.PrimaryLevel += dPrimary * dt
	next.SecondaryLevel += dSecondary * dt
	next.Phase = wrapPhase(s.Phase + 2*math.Pi*s.Frequency*dt)
	next.Coherence = clamp01(s.Coherence + dCoherence*dt)
	return next
}

// #endregion step

// #region derived
func (s State) Power() float64 {
	return s.PrimaryLevel * s.SecondaryLevel
}

// Resistance is primary/secondary, or +Inf when the secondary level vanishes.
func (s State) Resistance() float64 {
	if math.Abs(s.SecondaryLevel) < zeroFlow {
		return math.Inf(1)
	}
	return s.PrimaryLevel / s.SecondaryLevel
}

// Impedance is the resistance rotated by the current phase.
func (s State) Impedance() complex128 {
	if math.Abs(s.SecondaryLevel) < zeroFlow {
		return complex(math.Inf(1), 0)
	}
	return complex(s.PrimaryLevel/s.SecondaryLevel, 0) * cmplx.Rect(1, s.Phase)
}

func (s State) Reactance() float64 {
	return imag(s.Impedance())
}

// IsStable holds for laminar, bistable and phase-locked states with low variance.
func (s State) IsStable() bool {
	switch s.Regime() {
	case Laminar, Bistable, PhaseLocked:
		return s.Variance < stableVariance
	}
	return false
}

func (s State) IsOscillating() bool {
	return s.Coherence > oscillatingCoh && s.Frequency > 0
}

// #endregion derived

// #region with
func (s State) WithCoherence(c float64) State {
	s.Coherence = clamp01(c)
	return s
}

func (s State) WithVariance(v float64) State {
	s.Variance = v
	return s
}

func (s State) WithFrequency(f float64) State {
	s.Frequency = f
	return s
}

func (s State) WithDepth(d float64) State {
	s.Depth = d
	return s
}

// WithFlowIndex recomputes the flow index as velocity·length/viscosity.
func (s State) WithFlowIndex(velocity, length, viscosity float64) State {
	s.FlowIndex = velocity * length / viscosity
	return s
}

// #endregion with

func wrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return p
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
