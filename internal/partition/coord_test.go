package partition

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

func TestCapacity(t *testing.T) {
	for n := 1; n <= 10; n++ {
		c, err := Capacity(n)
		require.NoError(t, err)
		assert.Equal(t, 2*n*n, c, "n=%d", n)
	}

	_, err := Capacity(0)
	assert.True(t, errors.Is(err, ErrInvalidDepth))

	c3, _ := Capacity(3)
	assert.Equal(t, 18, c3)
}

func TestTotalCapacityMatchesSum(t *testing.T) {
	var sum int64
	for n := 1; n <= 25; n++ {
		c, _ := Capacity(n)
		sum += int64(c)
		assert.Equal(t, sum, TotalCapacity(n), "n=%d", n)
	}
	assert.Equal(t, int64(0), TotalCapacity(0))
	assert.Equal(t, int64(0), TotalCapacity(-4))
}

func TestNewRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		n, l, m int
		want    error
	}{
		{"zero depth", 0, 0, 0, ErrInvalidDepth},
		{"l equals n", 2, 2, 0, ErrInvalidSubLevel},
		{"negative l", 2, -1, 0, ErrInvalidSubLevel},
		{"m above l", 3, 1, 2, ErrInvalidOrientation},
		{"m below -l", 3, 1, -2, ErrInvalidOrientation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.n, tc.l, tc.m, SpinUp)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFromComponentsSpin(t *testing.T) {
	c, err := FromComponents(3, 1, 0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, SpinUp, c.S())
	assert.Equal(t, 0.5, c.SValue())

	_, err = FromComponents(3, 1, 0, 0.25)
	assert.ErrorIs(t, err, ErrInvalidSpin)
}

func TestLinearIndexBijection(t *testing.T) {
	const nMax = 8
	total := TotalCapacity(nMax)
	seen := make(map[int64]bool, total)

	for idx := int64(0); idx < total; idx++ {
		c, err := FromLinearIndex(idx)
		require.NoError(t, err, "idx=%d", idx)
		require.Equal(t, idx, c.LinearIndex(), "coord %s", c)
		require.LessOrEqual(t, c.N(), nMax)
		seen[idx] = true
	}
	assert.Len(t, seen, int(total))

	// Enumeration order agrees with the index.
	for i, c := range IterAll(nMax) {
		require.Equal(t, int64(i), c.LinearIndex())
	}
}

func TestLinearIndexScenario(t *testing.T) {
	c, err := FromComponents(3, 1, 0, 0.5)
	require.NoError(t, err)

	// Offset 10 for n<3, 2 for l<1, then m+l=1 → 2, spin up → 1.
	assert.Equal(t, int64(15), c.LinearIndex())

	back, err := FromLinearIndex(c.LinearIndex())
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestFromLinearIndexNegative(t *testing.T) {
	_, err := FromLinearIndex(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLinearIndexAtMaxDepth(t *testing.T) {
	total := TotalCapacity(MaxDepth)
	assert.Equal(t, int64(9223369003183153280), total)
	assert.Equal(t, int64(math.MaxInt64), TotalCapacity(MaxDepth+1))
	assert.Equal(t, int64(math.MaxInt64), TotalCapacity(3_000_000))

	last, err := New(MaxDepth, MaxDepth-1, MaxDepth-1, SpinUp)
	require.NoError(t, err)
	assert.Equal(t, total-1, last.LinearIndex())
	back, err := FromLinearIndex(total - 1)
	require.NoError(t, err)
	assert.Equal(t, last, back)

	first, err := New(MaxDepth, 0, 0, SpinDown)
	require.NoError(t, err)
	assert.Equal(t, TotalCapacity(MaxDepth-1), first.LinearIndex())

	mid, err := FromLinearIndex(4e18)
	require.NoError(t, err)
	assert.Equal(t, int64(4e18), mid.LinearIndex())

	for _, idx := range []int64{total, math.MaxInt64} {
		_, err := FromLinearIndex(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}

	_, err = New(MaxDepth+1, 0, 0, SpinDown)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	_, err = New(3_000_000, 0, 0, SpinDown)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	_, err = Capacity(MaxDepth + 1)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestPartitionRange(t *testing.T) {
	c, err := Partition(0, 3)
	require.NoError(t, err)
	assert.Equal(t, Ground(), c)

	_, err = Partition(TotalCapacity(3), 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAllAtLevel(t *testing.T) {
	for n := 1; n <= 6; n++ {
		coords, err := AllAtLevel(n)
		require.NoError(t, err)
		want, _ := Capacity(n)
		assert.Len(t, coords, want)
		for _, c := range coords {
			assert.Equal(t, n, c.N())
		}
	}
	_, err := AllAtLevel(0)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestDistanceSymmetry(t *testing.T) {
	coords := IterAll(4)
	for i := 0; i < len(coords); i += 3 {
		a := coords[i]
		assert.Zero(t, a.Distance(a))
		for j := 0; j < len(coords); j += 5 {
			b := coords[j]
			d := a.Distance(b)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.Equal(t, d, b.Distance(a))
		}
	}
}

func TestAdjacency(t *testing.T) {
	a, _ := New(3, 1, 0, SpinDown)
	b, _ := New(3, 1, 0, SpinUp)
	far, _ := New(3, 2, 2, SpinUp)

	assert.True(t, a.IsAdjacent(b))
	assert.False(t, a.IsAdjacent(a))
	assert.False(t, a.IsAdjacent(far))

	neigh := Adjacent(a)
	assert.NotEmpty(t, neigh)
	for _, c := range neigh {
		assert.True(t, a.IsAdjacent(c), "%s not adjacent to %s", c, a)
	}
	assert.Contains(t, neigh, b)
}

func TestEntropyMappingStaysInCube(t *testing.T) {
	const nMax = 5
	for _, c := range IterAll(nMax) {
		s := ToEntropy(c, nMax)
		for _, v := range s.Array() {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		back, err := FromEntropy(s, nMax)
		require.NoError(t, err)
		assert.Equal(t, c.N(), back.N())
		assert.Equal(t, c.L(), back.L())
	}

	g, err := FromEntropy(sentropy.Origin(), nMax)
	require.NoError(t, err)
	assert.Equal(t, 1, g.N())
}

func TestDensityAndEnergy(t *testing.T) {
	assert.Equal(t, 12, DensityOfStates(3))
	c, _ := New(2, 0, 0, SpinDown)
	assert.InDelta(t, 0.25, c.EnergyLevel(1.0, 4), 1e-12)
}
