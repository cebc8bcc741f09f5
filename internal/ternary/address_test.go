package ternary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for depth := 0; depth <= 6; depth++ {
		capacity := Capacity(depth)
		for v := uint64(0); v < capacity; v++ {
			a, err := Encode(v, depth)
			require.NoError(t, err)
			require.Equal(t, depth, a.Depth())
			require.Equal(t, v, a.Decode())
		}
		_, err := Encode(capacity, depth)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	}
}

func TestEncodeScenario(t *testing.T) {
	a, err := Encode(5, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2}, a.Digits())
	assert.Equal(t, uint64(5), a.Decode())
	assert.Equal(t, "T12", a.String())
}

func TestEncodeLargeDepth(t *testing.T) {
	a, err := Encode(math.MaxUint64, 41)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), a.Decode())

	_, err = Encode(1, -1)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestFloatRoundTrip(t *testing.T) {
	for depth := 1; depth <= 12; depth++ {
		for _, x := range []float64{0, 0.1, 1.0 / 3, 0.5, 2.0 / 3, 0.75, 0.999, 1} {
			a, err := EncodeFloat(x, depth)
			require.NoError(t, err)
			assert.LessOrEqual(t, math.Abs(a.DecodeFloat()-x), a.Resolution(), "x=%g depth=%d", x, depth)
			low, high := a.Interval()
			assert.InDelta(t, a.Resolution(), high-low, 1e-12)
		}
	}
	_, err := EncodeFloat(1.5, 3)
	assert.ErrorIs(t, err, ErrValueOutOfBounds)
}

func TestNewRejectsDigit(t *testing.T) {
	_, err := New([]uint8{0, 3})
	assert.ErrorIs(t, err, ErrInvalidDigit)

	src := []uint8{0, 1}
	a, err := New(src)
	require.NoError(t, err)
	src[0] = 2
	assert.Equal(t, []uint8{0, 1}, a.Digits())
}

func TestTrisectAndParent(t *testing.T) {
	l, m, r := Root().Trisect()
	assert.Equal(t, "T0", l.String())
	assert.Equal(t, "T1", m.String())
	assert.Equal(t, "T2", r.String())

	p, ok := m.Parent()
	require.True(t, ok)
	assert.True(t, p.Equal(Root()))

	_, ok = Root().Parent()
	assert.False(t, ok)

	_, err := Root().Child(3)
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestTrisectDoesNotAlias(t *testing.T) {
	base, _ := New(make([]uint8, 3))
	l, _, r := base.Trisect()
	assert.Equal(t, uint8(0), l.Digits()[3])
	assert.Equal(t, uint8(2), r.Digits()[3])
	assert.Equal(t, 3, base.Depth())
}

func TestNavigation(t *testing.T) {
	a, _ := New([]uint8{0, 1})
	b, _ := New([]uint8{0, 2})

	assert.Equal(t, "T0", a.CommonAncestor(b).String())
	assert.Equal(t, 2, a.NavigationDistance(b))

	path := a.PathTo(b)
	require.Len(t, path, 3)
	assert.Equal(t, "T01", path[0].String())
	assert.Equal(t, "T0", path[1].String())
	assert.Equal(t, "T02", path[2].String())

	self := a.PathTo(a)
	require.Len(t, self, 1)
	assert.True(t, self[0].Equal(a))

	deep, _ := New([]uint8{2, 2, 1, 0})
	assert.Equal(t, 6, a.NavigationDistance(deep))
	assert.Len(t, a.PathTo(deep), 7)
}

func TestParse(t *testing.T) {
	a, err := Parse("T012")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2}, a.Digits())

	r, err := Parse("T")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Depth())

	_, err = Parse("012")
	assert.ErrorIs(t, err, ErrInvalidPrefix)
	_, err = Parse("T013")
	assert.ErrorIs(t, err, ErrInvalidDigit)
}

func TestSearch(t *testing.T) {
	square := func(x float64) float64 { return x * x }
	a := Search(0.25, square, 10)
	assert.Equal(t, 10, a.Depth())
	assert.InDelta(t, 0.5, a.DecodeFloat(), 1e-3)
}

func TestEncodeCoord(t *testing.T) {
	s := sentropy.Coord{Sk: 0.2, St: 0.55, Se: 0.9}
	axes, err := EncodeCoord(s, 8)
	require.NoError(t, err)
	back := DecodeCoord(axes)
	assert.LessOrEqual(t, back.Distance(s), math.Sqrt(3)*axes[0].Resolution())
}

func TestEfficiency(t *testing.T) {
	assert.InDelta(t, 1.585, Efficiency(), 1e-3)
}
