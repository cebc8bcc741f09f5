package ternary

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// #region errors
var (
	ErrInvalidDigit     = errors.New("ternary: digit must be 0, 1 or 2")
	ErrInvalidDirection = errors.New("ternary: direction must be 0, 1 or 2")
	ErrInvalidDepth     = errors.New("ternary: depth must be >= 0")
	ErrCapacityExceeded = errors.New("ternary: value exceeds capacity at depth")
	ErrValueOutOfBounds = errors.New("ternary: value must be in [0, 1]")
	ErrInvalidPrefix    = errors.New("ternary: address string must start with 'T'")
)

// #endregion errors

// maxExactDepth is the deepest address whose capacity 3^depth fits in a uint64.
const maxExactDepth = 40

// #region address
// Address is a path through the base-3 tree over [0, 1], most significant
// digit first. The empty address is the root and covers the whole interval.
//
// Addresses are values: every operation returns a fresh digit slice.
type Address struct {
	digits []uint8
}

// New validates digits and copies them into an address.
func New(digits []uint8) (Address, error) {
	for i, d := range digits {
		if d > 2 {
			return Address{}, fmt.Errorf("%w: %d at position %d", ErrInvalidDigit, d, i)
		}
	}
	return Address{digits: clone(digits)}, nil
}

// Root is the empty address.
func Root() Address { return Address{} }

// Digits returns a copy of the digit sequence.
func (a Address) Digits() []uint8 { return clone(a.digits) }

func (a Address) Depth() int { return len(a.digits) }

// Resolution is the width of the addressed interval, 3^-depth.
func (a Address) Resolution() float64 {
	return math.Pow(3, -float64(len(a.digits)))
}

// Equal reports whether both addresses have the same digits.
func (a Address) Equal(b Address) bool {
	if len(a.digits) != len(b.digits) {
		return false
	}
	for i := range a.digits {
		if a.digits[i] != b.digits[i] {
			return false
		}
	}
	return true
}

// #endregion address

// #region integer-codec
// Capacity returns 3^depth, saturating at math.MaxUint64 once depth exceeds
// what a uint64 can hold.
func Capacity(depth int) uint64 {
	if depth > maxExactDepth {
		return math.MaxUint64
	}
	c := uint64(1)
	for i := 0; i < depth; i++ {
		c *= 3
	}
	return c
}

// Encode writes value as a depth-digit base-3 number.
func Encode(value uint64, depth int) (Address, error) {
	if depth < 0 {
		return Address{}, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	if depth <= maxExactDepth && value >= Capacity(depth) {
		return Address{}, fmt.Errorf("%w: %d >= 3^%d", ErrCapacityExceeded, value, depth)
	}
	digits := make([]uint8, depth)
	for i := depth - 1; i >= 0; i-- {
		digits[i] = uint8(value % 3)
		value /= 3
	}
	return Address{digits: digits}, nil
}

// Decode is the inverse of Encode. Addresses deeper than 40 digits with
// non-zero leading digits overflow and wrap.
func (a Address) Decode() uint64 {
	var v uint64
	for _, d := range a.digits {
		v = v*3 + uint64(d)
	}
	return v
}

// #endregion integer-codec

// #region float-codec
// EncodeFloat trisects [0, 1] depth times, recording the third that holds value.
func EncodeFloat(value float64, depth int) (Address, error) {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return Address{}, fmt.Errorf("%w: got %g", ErrValueOutOfBounds, value)
	}
	if depth < 0 {
		return Address{}, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	digits := make([]uint8, depth)
	low, high := 0.0, 1.0
	for i := range digits {
		third := (high - low) / 3
		switch {
		case value < low+third:
			digits[i] = 0
			high = low + third
		case value < low+2*third:
			digits[i] = 1
			low += third
			high = low + third
		default:
			digits[i] = 2
			low += 2 * third
		}
	}
	return Address{digits: digits}, nil
}

// Interval returns the [low, high] sub-interval identified by a.
func (a Address) Interval() (low, high float64) {
	low, high = 0, 1
	for _, d := range a.digits {
		third := (high - low) / 3
		switch d {
		case 0:
			high = low + third
		case 1:
			low += third
			high = low + third
		default:
			low += 2 * third
		}
	}
	return low, high
}

// DecodeFloat returns the midpoint of the addressed interval.
func (a Address) DecodeFloat() float64 {
	low, high := a.Interval()
	return (low + high) / 2
}

// #endregion float-codec

// #region navigation
// Trisect returns the three children of a.
func (a Address) Trisect() (left, middle, right Address) {
	return a.child(0), a.child(1), a.child(2)
}

// Child descends one level in direction dir.
func (a Address) Child(dir uint8) (Address, error) {
	if dir > 2 {
		return Address{}, fmt.Errorf("%w: got %d", ErrInvalidDirection, dir)
	}
	return a.child(dir), nil
}

func (a Address) child(dir uint8) Address {
	digits := make([]uint8, len(a.digits)+1)
	copy(digits, a.digits)
	digits[len(a.digits)] = dir
	return Address{digits: digits}
}

// Parent drops the last digit. The root has no parent.
func (a Address) Parent() (Address, bool) {
	if len(a.digits) == 0 {
		return Address{}, false
	}
	return Address{digits: clone(a.digits[:len(a.digits)-1])}, true
}

// CommonAncestor is the longest shared prefix of a and b.
func (a Address) CommonAncestor(b Address) Address {
	n := 0
	for n < len(a.digits) && n < len(b.digits) && a.digits[n] == b.digits[n] {
		n++
	}
	return Address{digits: clone(a.digits[:n])}
}

// NavigationDistance counts the edges on the tree path between a and b.
func (a Address) NavigationDistance(b Address) int {
	return a.Depth() + b.Depth() - 2*a.CommonAncestor(b).Depth()
}

// PathTo lists every node from a up to the common ancestor and back down to
// b, both endpoints included.
func (a Address) PathTo(b Address) []Address {
	anc := a.CommonAncestor(b).Depth()
	path := make([]Address, 0, a.NavigationDistance(b)+1)
	for d := a.Depth(); d > anc; d-- {
		path = append(path, Address{digits: clone(a.digits[:d])})
	}
	for d := anc; d <= b.Depth(); d++ {
		path = append(path, Address{digits: clone(b.digits[:d])})
	}
	return path
}

// #endregion navigation

// #region text
// String renders the address as "T" followed by its digits, e.g. "T012".
func (a Address) String() string {
	var sb strings.Builder
	sb.Grow(len(a.digits) + 1)
	sb.WriteByte('T')
	for _, d := range a.digits {
		sb.WriteByte('0' + d)
	}
	return sb.String()
}

// Parse reads the String form.
func Parse(s string) (Address, error) {
	if !strings.HasPrefix(s, "T") {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, s)
	}
	body := s[1:]
	digits := make([]uint8, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c < '0' || c > '2' {
			return Address{}, fmt.Errorf("%w: %q in %q", ErrInvalidDigit, c, s)
		}
		digits[i] = c - '0'
	}
	return Address{digits: digits}, nil
}

// #endregion text

func clone(d []uint8) []uint8 {
	if len(d) == 0 {
		return nil
	}
	out := make([]uint8, len(d))
	copy(out, d)
	return out
}
