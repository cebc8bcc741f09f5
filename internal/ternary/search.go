package ternary

import (
	"math"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

// Search descends depth levels, at each level keeping the child whose
// midpoint evaluates closest to target. Ties go to the lower child.
func Search(target float64, evaluate func(float64) float64, depth int) Address {
	addr := Root()
	for i := 0; i < depth; i++ {
		left, mid, right := addr.Trisect()
		le := math.Abs(evaluate(left.DecodeFloat()) - target)
		me := math.Abs(evaluate(mid.DecodeFloat()) - target)
		re := math.Abs(evaluate(right.DecodeFloat()) - target)
		switch {
		case le <= me && le <= re:
			addr = left
		case me <= re:
			addr = mid
		default:
			addr = right
		}
	}
	return addr
}

// EncodeCoord encodes each axis of s as its own address of the given depth,
// ordered sk, st, se.
func EncodeCoord(s sentropy.Coord, depth int) ([3]Address, error) {
	var out [3]Address
	for i, v := range s.Array() {
		a, err := EncodeFloat(v, depth)
		if err != nil {
			return out, err
		}
		out[i] = a
	}
	return out, nil
}

// DecodeCoord is the inverse of EncodeCoord up to each address's resolution.
func DecodeCoord(axes [3]Address) sentropy.Coord {
	return sentropy.Clamped(axes[0].DecodeFloat(), axes[1].DecodeFloat(), axes[2].DecodeFloat())
}

// Efficiency is the number of binary steps one ternary step replaces, log₂3.
func Efficiency() float64 {
	return math.Log2(3)
}
