package sentropy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// #region constructors
// New validates each component against [0, 1].
func New(sk, st, se float64) (Coord, error) {
	for _, v := range []struct {
		name string
		val  float64
	}{{"sk", sk}, {"st", st}, {"se", se}} {
		if math.IsNaN(v.val) || v.val < 0 || v.val > 1 {
			return Coord{}, fmt.Errorf("%w: %s=%g", ErrOutOfBounds, v.name, v.val)
		}
	}
	return Coord{Sk: sk, St: st, Se: se}, nil
}

// Clamped builds a coordinate, clamping each component into [0, 1].
// NaN components become 0.
func Clamped(sk, st, se float64) Coord {
	return Coord{Sk: clamp01(sk), St: clamp01(st), Se: clamp01(se)}
}

// Origin is (0, 0, 0).
func Origin() Coord { return Coord{} }

// Equilibrium is the maximum-entropy corner (1, 1, 1).
func Equilibrium() Coord { return Coord{Sk: 1, St: 1, Se: 1} }

// FromArray builds a validated coordinate from exactly three values.
func FromArray(v []float64) (Coord, error) {
	if len(v) != 3 {
		return Coord{}, fmt.Errorf("%w: got %d", ErrDimensionMismatch, len(v))
	}
	return New(v[0], v[1], v[2])
}

// scalarScales sets where each axis reaches one half: sk at x=1, st at x=10,
// se at x=100.
var scalarScales = [3]float64{1, 10, 100}

// FromScalar maps a non-negative input into the cube with x/(x+k) per axis.
// The mapping is monotone non-decreasing in x and stays in [0, 1).
// Negative, NaN and -Inf inputs map to the origin; +Inf maps to Equilibrium.
func FromScalar(x float64) Coord {
	if math.IsNaN(x) || x <= 0 {
		return Origin()
	}
	if math.IsInf(x, 1) {
		return Equilibrium()
	}
	return Coord{
		Sk: x / (x + scalarScales[0]),
		St: x / (x + scalarScales[1]),
		Se: x / (x + scalarScales[2]),
	}
}

// #endregion constructors

// #region geometry
// Array returns the components as a fixed-size array.
func (c Coord) Array() [3]float64 {
	return [3]float64{c.Sk, c.St, c.Se}
}

// Distance is the Euclidean distance to other.
func (c Coord) Distance(other Coord) float64 {
	a, b := c.Array(), other.Array()
	return floats.Distance(a[:], b[:], 2)
}

// Magnitude is the Euclidean norm of the coordinate.
func (c Coord) Magnitude() float64 {
	a := c.Array()
	return floats.Norm(a[:], 2)
}

// GradientToward returns the unit direction from c to target.
// When c == target the result is the zero vector.
func (c Coord) GradientToward(target Coord) [3]float64 {
	d := [3]float64{target.Sk - c.Sk, target.St - c.St, target.Se - c.Se}
	norm := floats.Norm(d[:], 2) + Epsilon
	floats.Scale(1/norm, d[:])
	return d
}

// Update shifts each component by its delta and clamps into [0, 1].
func (c Coord) Update(dsk, dst, dse float64) Coord {
	return Clamped(c.Sk+dsk, c.St+dst, c.Se+dse)
}

// Interpolate returns the linear blend c + t·(other − c) for t in [0, 1].
func (c Coord) Interpolate(other Coord, t float64) (Coord, error) {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return Coord{}, fmt.Errorf("%w: got %g", ErrInvalidInterpolation, t)
	}
	return Coord{
		Sk: c.Sk + t*(other.Sk-c.Sk),
		St: c.St + t*(other.St-c.St),
		Se: c.Se + t*(other.Se-c.Se),
	}, nil
}

// #endregion geometry

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
