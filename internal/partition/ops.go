package partition

import (
	"math"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

// #region neighbours
// Adjacent returns every valid coordinate at distance exactly 1 from c.
// Candidates are single-field moves: n±1, l±1, m±1 and the spin flip.
func Adjacent(c Coord) []Coord {
	candidates := []Coord{
		{n: c.n - 1, l: c.l, m: c.m, s: c.s},
		{n: c.n + 1, l: c.l, m: c.m, s: c.s},
		{n: c.n, l: c.l - 1, m: c.m, s: c.s},
		{n: c.n, l: c.l + 1, m: c.m, s: c.s},
		{n: c.n, l: c.l, m: c.m - 1, s: c.s},
		{n: c.n, l: c.l, m: c.m + 1, s: c.s},
		{n: c.n, l: c.l, m: c.m, s: c.s.Flip()},
	}
	out := make([]Coord, 0, len(candidates))
	for _, cand := range candidates {
		valid, err := New(cand.n, cand.l, cand.m, cand.s)
		if err != nil {
			continue
		}
		if c.IsAdjacent(valid) {
			out = append(out, valid)
		}
	}
	return out
}

// #endregion neighbours

// #region entropy-mapping
// ToEntropy places c in the entropy cube: sk tracks depth, st tracks sub-level
// and se combines orientation with spin.
func ToEntropy(c Coord, nMax int) sentropy.Coord {
	sk := float64(c.n) / float64(nMax)

	st := 0.0
	if c.n > 1 {
		st = float64(c.l) / float64(c.n-1)
	}

	mNorm := 0.5
	if c.l > 0 {
		mNorm = float64(c.m+c.l) / float64(2*c.l)
	}
	spin := 0.0
	if c.s == SpinUp {
		spin = 0.5
	}
	se := (mNorm + spin) / 1.5

	return sentropy.Clamped(sk, st, se)
}

// FromEntropy returns the lattice coordinate nearest to s. The mapping is an
// approximate inverse of ToEntropy.
func FromEntropy(s sentropy.Coord, nMax int) (Coord, error) {
	n := int(math.Round(s.Sk * float64(nMax)))
	if n < 1 {
		n = 1
	}

	l := 0
	if n > 1 {
		l = clampInt(int(math.Round(s.St*float64(n-1))), 0, n-1)
	}

	m := 0
	if l > 0 {
		frac := s.Se*1.5 - 0.25
		m = clampInt(int(math.Round(frac*2*float64(l)-float64(l))), -l, l)
	}

	spin := SpinDown
	if s.Se > 0.5 {
		spin = SpinUp
	}
	return New(n, l, m, spin)
}

// #endregion entropy-mapping

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
