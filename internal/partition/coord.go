package partition

import (
	"fmt"
	"math"
)

// adjacencyTolerance bounds |D_cat - 1| for two coordinates to count as adjacent.
const adjacencyTolerance = 1e-10

// MaxDepth is the largest n whose TotalCapacity fits in an int64. Every
// linear index of a valid coordinate is below TotalCapacity(MaxDepth).
const MaxDepth = 2400639

// #region constructor
// New validates (n, l, m, s) and returns the coordinate.
func New(n, l, m int, s Spin) (Coord, error) {
	if n < 1 || n > MaxDepth {
		return Coord{}, fmt.Errorf("%w: got n=%d", ErrInvalidDepth, n)
	}
	if l < 0 || l >= n {
		return Coord{}, fmt.Errorf("%w: got l=%d, n=%d", ErrInvalidSubLevel, l, n)
	}
	if m < -l || m > l {
		return Coord{}, fmt.Errorf("%w: got m=%d, l=%d", ErrInvalidOrientation, m, l)
	}
	return Coord{n: n, l: l, m: m, s: s}, nil
}

// FromComponents builds a coordinate from a numeric spin value (-0.5 or +0.5).
func FromComponents(n, l, m int, sValue float64) (Coord, error) {
	s, err := SpinFromValue(sValue)
	if err != nil {
		return Coord{}, err
	}
	return New(n, l, m, s)
}

// Ground returns the first coordinate of the lattice, (1, 0, 0, -1/2).
func Ground() Coord {
	return Coord{n: 1}
}

// #endregion constructor

// #region capacity
// Capacity returns the number of coordinates at depth n: C(n) = 2n².
func Capacity(n int) (int, error) {
	if n < 1 || n > MaxDepth {
		return 0, fmt.Errorf("%w: got n=%d", ErrInvalidDepth, n)
	}
	return 2 * n * n, nil
}

// TotalCapacity returns Σ_{i=1..nMax} 2i² = nMax(nMax+1)(2nMax+1)/3.
// Returns 0 for nMax < 1 and saturates at math.MaxInt64 past MaxDepth.
func TotalCapacity(nMax int) int64 {
	if nMax < 1 {
		return 0
	}
	if nMax > MaxDepth {
		return math.MaxInt64
	}
	a, b, c := int64(nMax), int64(nMax)+1, 2*int64(nMax)+1
	// exactly one factor is a multiple of 3; divide it first
	switch a % 3 {
	case 0:
		a /= 3
	case 1:
		c /= 3
	default:
		b /= 3
	}
	return a * b * c
}

// DensityOfStates returns dC/dn = 4n.
func DensityOfStates(n int) int {
	return 4 * n
}

// EnergyLevel returns eMax·(n/nMax)².
func (c Coord) EnergyLevel(eMax float64, nMax int) float64 {
	r := float64(c.n) / float64(nMax)
	return eMax * r * r
}

// #endregion capacity

// #region linear-index
// LinearIndex maps the coordinate to its position in the enumeration ordered
// by n, then l, then m, then spin (down before up).
func (c Coord) LinearIndex() int64 {
	offset := TotalCapacity(c.n - 1)

	// Each sub-level l holds 2(2l+1) coordinates, so the l offset is 2l².
	lOffset := 2 * int64(c.l) * int64(c.l)
	mOffset := int64(c.m + c.l)
	sOffset := int64(0)
	if c.s == SpinUp {
		sOffset = 1
	}
	return offset + lOffset + 2*mOffset + sOffset
}

// FromLinearIndex is the inverse of LinearIndex. Indices at or past
// TotalCapacity(MaxDepth) have no coordinate.
func FromLinearIndex(index int64) (Coord, error) {
	if index < 0 || index >= TotalCapacity(MaxDepth) {
		return Coord{}, fmt.Errorf("%w: got %d", ErrIndexOutOfRange, index)
	}

	// Closed-form estimate of n from the cubic n³·2/3 ≈ index, then correct.
	n := int(math.Cbrt(1.5 * float64(index)))
	n = min(max(n, 1), MaxDepth)
	for n > 1 && TotalCapacity(n-1) > index {
		n--
	}
	for TotalCapacity(n) <= index {
		n++
	}

	remaining := index - TotalCapacity(n-1)

	l := int(math.Sqrt(float64(remaining) / 2))
	for l > 0 && 2*int64(l)*int64(l) > remaining {
		l--
	}
	for l+1 < n && 2*int64(l+1)*int64(l+1) <= remaining {
		l++
	}
	remaining -= 2 * int64(l) * int64(l)

	m := int(remaining/2) - l
	s := SpinDown
	if remaining%2 == 1 {
		s = SpinUp
	}
	return New(n, l, m, s)
}

// Partition maps a state id to its coordinate, rejecting ids outside
// [0, TotalCapacity(nMax)).
func Partition(stateID int64, nMax int) (Coord, error) {
	total := TotalCapacity(nMax)
	if stateID < 0 || stateID >= total {
		return Coord{}, fmt.Errorf("%w: id %d not in [0, %d)", ErrIndexOutOfRange, stateID, total)
	}
	return FromLinearIndex(stateID)
}

// #endregion linear-index

// #region distance
// Distance is the categorical distance D_cat, Euclidean over (n, l, m, s).
func (c Coord) Distance(other Coord) float64 {
	dn := float64(c.n - other.n)
	dl := float64(c.l - other.l)
	dm := float64(c.m - other.m)
	ds := c.s.Value() - other.s.Value()
	return math.Sqrt(dn*dn + dl*dl + dm*dm + ds*ds)
}

// IsAdjacent reports whether D_cat equals 1.
func (c Coord) IsAdjacent(other Coord) bool {
	return math.Abs(c.Distance(other)-1) < adjacencyTolerance
}

// #endregion distance

// #region enumeration
// AllAtLevel returns every coordinate at depth n in LinearIndex order.
func AllAtLevel(n int) ([]Coord, error) {
	size, err := Capacity(n)
	if err != nil {
		return nil, err
	}
	coords := make([]Coord, 0, size)
	for l := 0; l < n; l++ {
		for m := -l; m <= l; m++ {
			coords = append(coords,
				Coord{n: n, l: l, m: m, s: SpinDown},
				Coord{n: n, l: l, m: m, s: SpinUp},
			)
		}
	}
	return coords, nil
}

// IterAll returns every coordinate with depth 1..nMax in LinearIndex order.
func IterAll(nMax int) []Coord {
	if nMax < 1 {
		return nil
	}
	out := make([]Coord, 0, TotalCapacity(nMax))
	for n := 1; n <= nMax; n++ {
		level, _ := AllAtLevel(n)
		out = append(out, level...)
	}
	return out
}

// #endregion enumeration
