package oscillator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDimensionMismatch is returned when phase and frequency counts differ or are zero.
var ErrDimensionMismatch = errors.New("oscillator: phases and frequencies must have equal non-zero length")

const twoPi = 2 * math.Pi

// #region population
// Population is a set of N phase oscillators under one global coupling.
// Evolution is functional: every step returns a new Population.
type Population struct {
	phases      []float64
	frequencies []float64
	coupling    float64
}

// New copies phases and frequencies into a population. Phases are wrapped into [0, 2π).
func New(phases, frequencies []float64, coupling float64) (Population, error) {
	if len(phases) == 0 || len(phases) != len(frequencies) {
		return Population{}, fmt.Errorf("%w: %d phases, %d frequencies",
			ErrDimensionMismatch, len(phases), len(frequencies))
	}
	p := Population{
		phases:      make([]float64, len(phases)),
		frequencies: make([]float64, len(frequencies)),
		coupling:    coupling,
	}
	for i, th := range phases {
		p.phases[i] = wrap(th)
	}
	copy(p.frequencies, frequencies)
	return p, nil
}

// Random draws phases uniformly on [0, 2π) and natural frequencies from
// Normal(2π·meanFreq, 2π·freqStd). A non-positive freqStd falls back to a
// unit standard deviation in angular units.
func Random(n int, meanFreq, freqStd, coupling float64, src rand.Source) (Population, error) {
	if n <= 0 {
		return Population{}, fmt.Errorf("%w: n=%d", ErrDimensionMismatch, n)
	}
	rng := rand.New(src)
	sigma := twoPi * freqStd
	if !(sigma > 0) {
		sigma = 1
	}
	dist := distuv.Normal{Mu: twoPi * meanFreq, Sigma: sigma, Src: rng}

	phases := make([]float64, n)
	freqs := make([]float64, n)
	for i := range phases {
		phases[i] = rng.Float64() * twoPi
	}
	for i := range freqs {
		freqs[i] = dist.Rand()
	}
	return Population{phases: phases, frequencies: freqs, coupling: coupling}, nil
}

func (p Population) N() int            { return len(p.phases) }
func (p Population) Coupling() float64 { return p.coupling }

// Phases returns a copy of the current phases.
func (p Population) Phases() []float64 { return append([]float64(nil), p.phases...) }

// Frequencies returns a copy of the natural frequencies.
func (p Population) Frequencies() []float64 { return append([]float64(nil), p.frequencies...) }

// WithCoupling returns the population under a new coupling strength.
func (p Population) WithCoupling(k float64) Population {
	p.coupling = k
	return p
}

// #endregion population

// #region evolve
// Evolve advances every phase by one explicit Euler step of
// dθᵢ/dt = ωᵢ + (K/N)·Σⱼ sin(θⱼ − θᵢ) using the exact all-pairs sum.
func (p Population) Evolve(dt float64) Population {
	n := len(p.phases)
	scale := p.coupling / float64(n)
	next := make([]float64, n)
	for i, thi := range p.phases {
		var sum float64
		for _, thj := range p.phases {
			sum += math.Sin(thj - thi)
		}
		next[i] = wrap(thi + (p.frequencies[i]+scale*sum)*dt)
	}
	return Population{phases: next, frequencies: p.frequencies, coupling: p.coupling}
}

// WithPerturbation scales coupling by (1 + concentration·aggregation),
// flooring the result at zero.
func (p Population) WithPerturbation(concentration, aggregation float64) Population {
	p.coupling = math.Max(0, p.coupling*(1+concentration*aggregation))
	return p
}

// EvolvePerturbed takes one step under the perturbed coupling. The returned
// population keeps the original coupling.
func (p Population) EvolvePerturbed(concentration, aggregation, dt float64) Population {
	next := p.WithPerturbation(concentration, aggregation).Evolve(dt)
	next.coupling = p.coupling
	return next
}

// #endregion evolve

// #region order-parameter
// OrderParameter returns R = |mean(e^{iθ})| and ψ = arg(mean(e^{iθ})).
// An empty slice yields (0, 0).
func OrderParameter(phases []float64) (r, psi float64) {
	if len(phases) == 0 {
		return 0, 0
	}
	var re, im float64
	for _, th := range phases {
		s, c := math.Sincos(th)
		re += c
		im += s
	}
	n := float64(len(phases))
	re /= n
	im /= n
	return math.Min(1, math.Hypot(re, im)), math.Atan2(im, re)
}

// Coherence is the R component of OrderParameter.
func Coherence(phases []float64) float64 {
	r, _ := OrderParameter(phases)
	return r
}

// OrderParameter of the current phases.
func (p Population) OrderParameter() (r, psi float64) { return OrderParameter(p.phases) }

// Coherence of the current phases.
func (p Population) Coherence() float64 { return Coherence(p.phases) }

// #endregion order-parameter

func wrap(th float64) float64 {
	th = math.Mod(th, twoPi)
	if th < 0 {
		th += twoPi
	}
	if th >= twoPi {
		th = 0
	}
	return th
}
