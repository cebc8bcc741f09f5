package trajectory

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

// #region constructors
// New validates coherence and frequency coherence against [0, 1] and starts
// at the origin with full perception and thought.
func New(coherence, freqCoherence, memory float64) (State, error) {
	if err := checkUnit("coherence", coherence); err != nil {
		return State{}, err
	}
	if err := checkUnit("frequency_coherence", freqCoherence); err != nil {
		return State{}, err
	}
	if math.IsNaN(memory) || math.IsInf(memory, 0) {
		return State{}, fmt.Errorf("%w: memory=%g is not finite", ErrOutOfBounds, memory)
	}
	return State{
		Coherence:          coherence,
		FrequencyCoherence: freqCoherence,
		Memory:             memory,
		PerceptionLevel:    1,
		ThoughtLevel:       1,
	}, nil
}

// Initial is the default starting state at coord: both coherences at 0.5,
// no memory, full perception and thought.
func Initial(coord sentropy.Coord) State {
	return State{
		Coherence:          0.5,
		FrequencyCoherence: 0.5,
		Coordinate:         coord,
		PerceptionLevel:    1,
		ThoughtLevel:       1,
	}
}

func checkUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s=%g", ErrOutOfBounds, name, v)
	}
	return nil
}

// #endregion constructors

// #region dynamics
// Decay integrates one step of a leaky level:
// clamp(level + (−level/τ + inputRate)·dt, 0, 1). A non-positive τ disables
// the leak term.
func Decay(level, tau, dt, inputRate float64) float64 {
	leak := 0.0
	if tau > 0 {
		leak = -level / tau
	}
	return clamp01(level + (leak+inputRate)*dt)
}

// UpdateMemory integrates the memory by dHdt over dt.
func (s State) UpdateMemory(dHdt, dt float64) State {
	next := s.clone()
	next.Memory = s.Memory + dHdt*dt
	return next
}

// ConsciousnessScore is perception × thought × coherence × frequency
// coherence, computed from the current fields on every call.
func (s State) ConsciousnessScore() float64 {
	return clamp01(s.PerceptionLevel * s.ThoughtLevel * s.Coherence * s.FrequencyCoherence)
}

// IsDreaming holds when perception is gated off while thought and frequency
// coherence stay high.
func (s State) IsDreaming() bool {
	return s.PerceptionLevel < 0.1 && s.ThoughtLevel > 0.5 && s.FrequencyCoherence > 0.5
}

func (s State) IsAwake() bool {
	return s.PerceptionLevel > 0.7 && s.Coherence > 0.5
}

func (s State) IsConscious() bool {
	return s.ConsciousnessScore() > 0.5
}

// Evolve advances perception, thought, memory and timestamp by in.Dt.
func (s State) Evolve(in Input) State {
	tauP := in.TauPerception
	if tauP == 0 {
		tauP = TauPerception
	}
	tauT := in.TauThought
	if tauT == 0 {
		tauT = TauThought
	}
	next := s.clone()
	next.PerceptionLevel = Decay(s.PerceptionLevel, tauP, in.Dt, in.PerceptionInput)
	next.ThoughtLevel = Decay(s.ThoughtLevel, tauT, in.Dt, in.ThoughtInput)
	next.Memory = s.Memory + in.DHdt*in.Dt
	next.Timestamp = s.Timestamp + in.Dt
	return next
}

// #endregion dynamics

// #region transitions
// TransitionTo moves to coord, appending the previous coordinate to History.
func (s State) TransitionTo(coord sentropy.Coord) State {
	next := s
	next.History = make([]sentropy.Coord, len(s.History), len(s.History)+1)
	copy(next.History, s.History)
	next.History = append(next.History, s.Coordinate)
	next.Coordinate = coord
	return next
}

func (s State) WithCoherence(c float64) State {
	next := s.clone()
	next.Coherence = clamp01(c)
	return next
}

func (s State) WithFrequencyCoherence(c float64) State {
	next := s.clone()
	next.FrequencyCoherence = clamp01(c)
	return next
}

func (s State) WithPerception(level float64) State {
	next := s.clone()
	next.PerceptionLevel = clamp01(level)
	return next
}

func (s State) WithThought(level float64) State {
	next := s.clone()
	next.ThoughtLevel = clamp01(level)
	return next
}

func (s State) WithMemory(m float64) State {
	next := s.clone()
	next.Memory = m
	return next
}

func (s State) WithTimestamp(t float64) State {
	next := s.clone()
	next.Timestamp = t
	return next
}

// EnterDream gates perception off.
func (s State) EnterDream() State {
	return s.WithPerception(0)
}

// Wake restores perception to level.
func (s State) Wake(level float64) State {
	return s.WithPerception(level)
}

// RollbackTo returns the state whose coordinate was History[k], with History
// truncated to the entries before k. Scalar fields are kept.
func (s State) RollbackTo(k int) (State, error) {
	if k < 0 || k >= len(s.History) {
		return State{}, fmt.Errorf("%w: %d not in [0, %d)", ErrHistoryIndex, k, len(s.History))
	}
	next := s
	next.Coordinate = s.History[k]
	next.History = append([]sentropy.Coord(nil), s.History[:k]...)
	return next, nil
}

// #endregion transitions

func (s State) clone() State {
	next := s
	if s.History != nil {
		next.History = append([]sentropy.Coord(nil), s.History...)
	}
	return next
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
