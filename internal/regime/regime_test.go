package regime

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDecisionTree(t *testing.T) {
	cases := []struct {
		name string
		s    State
		want Regime
	}{
		{"depth wins", State{Depth: 0.6, Coherence: 0.95, FlowIndex: 9000}, Hierarchical},
		{"phase locked", State{Coherence: 0.81, FlowIndex: 9000}, PhaseLocked},
		{"laminar", State{FlowIndex: 1000}, Laminar},
		{"oscillatory", State{FlowIndex: 1000, Coherence: 0.6}, Oscillatory},
		{"turbulent", State{FlowIndex: 5000}, Turbulent},
		{"chaotic", State{FlowIndex: 5000, Variance: 1.5}, Chaotic},
		{"transitional", State{FlowIndex: 3000}, Transitional},
		{"bistable", State{FlowIndex: 3000, Coherence: 0.55}, Bistable},
		{"low edge is middle band", State{FlowIndex: 2300}, Transitional},
		{"high edge is middle band", State{FlowIndex: 4000}, Transitional},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.s))
			// idempotent
			assert.Equal(t, Classify(tc.s), tc.s.Regime())
		})
	}
}

func TestClassifyWithCustomThresholds(t *testing.T) {
	s := State{FlowIndex: 50}
	assert.Equal(t, Laminar, Classify(s))
	assert.Equal(t, Turbulent, ClassifyWith(s, Thresholds{LowFlow: 10, HighFlow: 20}))
}

func TestStep(t *testing.T) {
	s := State{PrimaryLevel: 1, SecondaryLevel: 2, Frequency: 1, Phase: 0, Coherence: 0.95}
	next := s.Step(10, -4, 1, 0.1)

	assert.InDelta(t, 2.0, next.PrimaryLevel, 1e-12)
	assert.InDelta(t, 1.6, next.SecondaryLevel, 1e-12)
	assert.InDelta(t, 2*math.Pi*0.1, next.Phase, 1e-12)
	assert.Equal(t, 1.0, next.Coherence)

	// receiver untouched
	assert.Equal(t, 1.0, s.PrimaryLevel)

	wrapped := State{Frequency: 1, Phase: 6}.Step(0, 0, 0, 0.5)
	assert.GreaterOrEqual(t, wrapped.Phase, 0.0)
	assert.Less(t, wrapped.Phase, 2*math.Pi)

	low := State{Coherence: 0.05}.Step(0, 0, -1, 1)
	assert.Equal(t, 0.0, low.Coherence)
}

func TestDerivedQuantities(t *testing.T) {
	s := NewState(10, 2, 1000)
	assert.InDelta(t, 20, s.Power(), 1e-12)
	assert.InDelta(t, 5, s.Resistance(), 1e-12)
	assert.InDelta(t, 0, s.Reactance(), 1e-12)

	s.Phase = math.Pi / 2
	assert.InDelta(t, 5, s.Reactance(), 1e-12)

	open := NewState(1, 0, 1000)
	assert.True(t, math.IsInf(open.Resistance(), 1))
	assert.True(t, math.IsInf(real(open.Impedance()), 1))
}

func TestPredicates(t *testing.T) {
	assert.True(t, NewState(1, 1, 1000).IsStable())
	assert.False(t, NewState(1, 1, 1000).WithVariance(0.5).IsStable())
	assert.False(t, NewState(1, 1, 5000).IsStable())

	osc := NewState(1, 1, 1000).WithCoherence(0.4).WithFrequency(10)
	assert.True(t, osc.IsOscillating())
	assert.False(t, osc.WithFrequency(0).IsOscillating())

	assert.Equal(t, 1.0, osc.WithCoherence(3).Coherence)
	assert.InDelta(t, 2000, osc.WithFlowIndex(2, 1000, 1).FlowIndex, 1e-9)
	assert.Equal(t, Hierarchical, osc.WithDepth(0.7).Regime())
}

func TestRegimeText(t *testing.T) {
	for _, r := range All() {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		var back Regime
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, r, back)
	}
	assert.Equal(t, "phase_locked", PhaseLocked.String())

	var r Regime
	assert.Error(t, r.UnmarshalText([]byte("vortex")))
}
