package trajectory

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

// DefaultMaxHistory bounds a Manager's history when none is given.
const DefaultMaxHistory = 1000

// #region manager
// Manager keeps the current State of one run and a bounded history of past
// States, evicting the oldest once MaxHistory is reached.
//
// A Manager is not safe for concurrent use; each run owns its own.
type Manager struct {
	current    State
	history    []State
	maxHistory int
}

// NewManager creates a manager at Initial(origin).
func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	m := &Manager{maxHistory: maxHistory}
	m.Initialize(Initial(sentropy.Origin()))
	return m
}

// Initialize resets the manager to start.
func (m *Manager) Initialize(start State) {
	m.current = start
	m.history = []State{start}
}

func (m *Manager) Current() State { return m.current }

// History returns a copy of the recorded states, oldest first.
func (m *Manager) History() []State {
	return append([]State(nil), m.history...)
}

func (m *Manager) push(s State) {
	m.current = s
	m.history = append(m.history, s)
	if over := len(m.history) - m.maxHistory; over > 0 {
		m.history = append([]State(nil), m.history[over:]...)
	}
}

// #endregion manager

// #region manager-transitions
// Apply records fn(current) as the new current state.
func (m *Manager) Apply(fn func(State) State) State {
	m.push(fn(m.current))
	return m.current
}

// Transition moves the current state to target. Optional modifiers run on
// the transitioned state before it is recorded.
func (m *Manager) Transition(target sentropy.Coord, mods ...func(State) State) TransitionResult {
	from := m.current.Coordinate
	next := m.current.TransitionTo(target)
	for _, mod := range mods {
		next = mod(next)
	}
	m.push(next)
	return TransitionResult{
		Success:  true,
		From:     from,
		To:       target,
		Distance: from.Distance(target),
	}
}

// EnterDream gates perception off and records the result.
func (m *Manager) EnterDream() TransitionResult {
	return m.mode("dream", State.EnterDream)
}

// Wake restores perception to level and records the result.
func (m *Manager) Wake(level float64) TransitionResult {
	return m.mode("awake", func(s State) State { return s.Wake(level) })
}

func (m *Manager) mode(name string, fn func(State) State) TransitionResult {
	from := m.current.Coordinate
	m.push(fn(m.current))
	return TransitionResult{
		Success:  true,
		From:     from,
		To:       m.current.Coordinate,
		Metadata: map[string]string{"mode": name},
	}
}

// ClearHistory drops every recorded state except the current one.
func (m *Manager) ClearHistory() {
	m.history = []State{m.current}
}

// #endregion manager-transitions

// #region manager-queries
// Validate reports whether every bounded field of the current state is in range.
func (m *Manager) Validate() bool {
	return Validate(m.current) == nil
}

// Trajectory lists the coordinate of every recorded state.
func (m *Manager) Trajectory() []sentropy.Coord {
	out := make([]sentropy.Coord, len(m.history))
	for i, s := range m.history {
		out[i] = s.Coordinate
	}
	return out
}

func (m *Manager) ConsciousnessHistory() []float64 {
	out := make([]float64, len(m.history))
	for i, s := range m.history {
		out[i] = s.ConsciousnessScore()
	}
	return out
}

func (m *Manager) MemoryHistory() []float64 {
	out := make([]float64, len(m.history))
	for i, s := range m.history {
		out[i] = s.Memory
	}
	return out
}

// FindAt returns the recorded state whose timestamp is closest to t, the
// earliest one on ties. ok is false only when nothing is recorded.
func (m *Manager) FindAt(t float64) (State, bool) {
	if len(m.history) == 0 {
		return State{}, false
	}
	best := m.history[0]
	for _, s := range m.history[1:] {
		if math.Abs(s.Timestamp-t) < math.Abs(best.Timestamp-t) {
			best = s
		}
	}
	return best, true
}

// MemoryDifferential is the memory rate between the last two recorded states.
func (m *Manager) MemoryDifferential() float64 {
	n := len(m.history)
	if n < 2 {
		return 0
	}
	dt := m.history[n-1].Timestamp - m.history[n-2].Timestamp
	if math.Abs(dt) < 1e-12 {
		return 0
	}
	return (m.history[n-1].Memory - m.history[n-2].Memory) / dt
}

func (m *Manager) Summary() Summary {
	s := Summary{
		CurrentConsciousness: m.current.ConsciousnessScore(),
		CurrentCoherence:     m.current.Coherence,
		CurrentFreqCoherence: m.current.FrequencyCoherence,
		CurrentMemory:        m.current.Memory,
		HistoryLength:        len(m.history),
	}
	if mean, err := stats.Mean(m.ConsciousnessHistory()); err == nil {
		s.MeanConsciousness = mean
	}
	return s
}

// #endregion manager-queries

// #region validate
// Validate checks every bounded field of s, returning the first violation.
func Validate(s State) error {
	checks := []struct {
		name string
		v    float64
	}{
		{"coherence", s.Coherence},
		{"frequency_coherence", s.FrequencyCoherence},
		{"perception_level", s.PerceptionLevel},
		{"thought_level", s.ThoughtLevel},
		{"coordinate.sk", s.Coordinate.Sk},
		{"coordinate.st", s.Coordinate.St},
		{"coordinate.se", s.Coordinate.Se},
	}
	for _, c := range checks {
		if err := checkUnit(c.name, c.v); err != nil {
			return err
		}
	}
	if math.IsNaN(s.Memory) || math.IsInf(s.Memory, 0) {
		return fmt.Errorf("%w: memory=%g is not finite", ErrOutOfBounds, s.Memory)
	}
	return nil
}

// #endregion validate
