package sentropy

import (
	"errors"
	"fmt"
)

// Epsilon guards divisions by a vanishing norm.
const Epsilon = 1e-10

// #region errors
var (
	// ErrOutOfBounds is returned when a component is outside [0, 1].
	ErrOutOfBounds = errors.New("sentropy: component out of [0, 1]")

	// ErrDimensionMismatch is returned when a slice does not hold exactly three values.
	ErrDimensionMismatch = errors.New("sentropy: expected 3 components")

	// ErrInvalidInterpolation is returned for an interpolation parameter outside [0, 1].
	ErrInvalidInterpolation = errors.New("sentropy: interpolation parameter must be in [0, 1]")
)

// #endregion errors

// #region coord
// Coord is a point (sk, st, se) in the unit cube.
//
// Sk is the knowledge axis, St the temporal axis and Se the evolution axis.
// Values produced by this package always lie in [0, 1].
type Coord struct {
	Sk float64 `json:"sk"`
	St float64 `json:"st"`
	Se float64 `json:"se"`
}

// Field is a scalar function over the cube.
type Field func(Coord) float64

func (c Coord) String() string {
	return fmt.Sprintf("S(%.4f, %.4f, %.4f)", c.Sk, c.St, c.Se)
}

// #endregion coord
