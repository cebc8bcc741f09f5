package partition

import (
	"errors"
	"fmt"
	"math"
)

// #region errors
var (
	// ErrInvalidDepth is returned when n < 1.
	ErrInvalidDepth = errors.New("partition: depth n must be >= 1")

	// ErrInvalidSubLevel is returned when l is outside [0, n).
	ErrInvalidSubLevel = errors.New("partition: sub-level l must be in [0, n)")

	// ErrInvalidOrientation is returned when m is outside [-l, l].
	ErrInvalidOrientation = errors.New("partition: orientation m must be in [-l, l]")

	// ErrInvalidSpin is returned when a spin value is neither -0.5 nor +0.5.
	ErrInvalidSpin = errors.New("partition: spin must be -0.5 or +0.5")

	// ErrIndexOutOfRange is returned for negative or over-capacity linear indices.
	ErrIndexOutOfRange = errors.New("partition: linear index out of range")
)

// #endregion errors

// #region spin
// Spin is the binary flag of a coordinate.
type Spin int8

const (
	SpinDown Spin = iota // -0.5
	SpinUp               // +0.5
)

const spinTolerance = 1e-10

// Value returns the numeric value of the spin.
func (s Spin) Value() float64 {
	if s == SpinUp {
		return 0.5
	}
	return -0.5
}

// Flip returns the opposite spin.
func (s Spin) Flip() Spin {
	if s == SpinUp {
		return SpinDown
	}
	return SpinUp
}

func (s Spin) String() string {
	if s == SpinUp {
		return "+1/2"
	}
	return "-1/2"
}

// SpinFromValue parses a numeric spin value.
func SpinFromValue(v float64) (Spin, error) {
	switch {
	case math.Abs(v+0.5) < spinTolerance:
		return SpinDown, nil
	case math.Abs(v-0.5) < spinTolerance:
		return SpinUp, nil
	}
	return SpinDown, fmt.Errorf("%w: got %g", ErrInvalidSpin, v)
}

// #endregion spin

// #region coord
// Coord is an immutable hierarchical address (n, l, m, s).
//
// The zero value is not valid; use New or FromLinearIndex.
type Coord struct {
	n int
	l int
	m int
	s Spin
}

func (c Coord) N() int          { return c.n }
func (c Coord) L() int          { return c.l }
func (c Coord) M() int          { return c.m }
func (c Coord) S() Spin         { return c.s }
func (c Coord) SValue() float64 { return c.s.Value() }

func (c Coord) String() string {
	return fmt.Sprintf("(n=%d, l=%d, m=%d, s=%s)", c.n, c.l, c.m, c.s)
}

// #endregion coord
