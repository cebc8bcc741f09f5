package oscillator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultGearRatios is the frequency reduction chain used by Cascade when no
// ratios are given.
var DefaultGearRatios = []float64{1e-3, 1e-3, 1e-3, 1e-3, 0.1, 1e-6, 0.1, 1.0}

// CriticalCoupling estimates the synchronization threshold Kc ≈ 2σ/π from the
// standard deviation of the angular natural frequencies. Diagnostic only.
func CriticalCoupling(sigma float64) float64 {
	return 2 * sigma / math.Pi
}

// FrequencySpread is the population standard deviation of freqs.
func FrequencySpread(freqs []float64) float64 {
	if len(freqs) == 0 {
		return 0
	}
	return stat.PopStdDev(freqs, nil)
}

// CriticalCoupling of the population's own frequency spread.
func (p Population) CriticalCoupling() float64 {
	return CriticalCoupling(FrequencySpread(p.frequencies))
}

// Variance is the population variance of values; 0 for an empty slice.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// PhaseVelocity is the propagation speed √(K·D) of a phase wave.
func PhaseVelocity(coupling, diffusion float64) float64 {
	return math.Sqrt(coupling * diffusion)
}

// Cascade multiplies input through each ratio in turn, returning input
// followed by every intermediate frequency. Nil ratios use DefaultGearRatios.
func Cascade(input float64, ratios []float64) []float64 {
	if ratios == nil {
		ratios = DefaultGearRatios
	}
	out := make([]float64, 1, len(ratios)+1)
	out[0] = input
	for _, g := range ratios {
		out = append(out, out[len(out)-1]*g)
	}
	return out
}

// #region simulate
// Series is the sampled order parameter of a simulation.
type Series struct {
	Times []float64  `json:"times"`
	R     []float64  `json:"r"`
	Psi   []float64  `json:"psi"`
	Final Population `json:"-"`
}

// Simulate records (R, ψ) before each of ⌊duration/dt⌋ steps.
func Simulate(initial Population, duration, dt float64) Series {
	steps := 0
	if dt > 0 && duration > 0 {
		steps = int(duration / dt)
	}
	s := Series{
		Times: make([]float64, steps),
		R:     make([]float64, steps),
		Psi:   make([]float64, steps),
	}
	pop := initial
	for i := 0; i < steps; i++ {
		s.Times[i] = float64(i) * dt
		s.R[i], s.Psi[i] = pop.OrderParameter()
		pop = pop.Evolve(dt)
	}
	s.Final = pop
	return s
}

// #endregion simulate
