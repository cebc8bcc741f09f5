package trajectory

import (
	"errors"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
)

// #region errors
var (
	// ErrOutOfBounds is returned when a level or coherence is outside [0, 1].
	ErrOutOfBounds = errors.New("trajectory: value out of [0, 1]")

	// ErrHistoryIndex is returned when rolling back to a history entry that does not exist.
	ErrHistoryIndex = errors.New("trajectory: history index out of range")

	// ErrNotFound is returned by the store when a version or run has no rows.
	ErrNotFound = errors.New("trajectory: version not found")
)

// #endregion errors

// #region time-constants
const (
	// TauPerception is the default perception decay time constant in seconds.
	TauPerception = 0.05
	// TauThought is the default thought decay time constant in seconds.
	TauThought = 0.1
)

// #endregion time-constants

// #region state
// State is one immutable snapshot of a run: coherence scalars, the memory
// integral, the carried entropy coordinate and the perception/thought levels.
//
// History holds previously visited coordinates, oldest first. Transitions
// always build a fresh History slice, so earlier States never observe later
// changes.
type State struct {
	Coherence          float64          `json:"coherence"`
	FrequencyCoherence float64          `json:"frequency_coherence"`
	Memory             float64          `json:"memory"`
	Coordinate         sentropy.Coord   `json:"coordinate"`
	Timestamp          float64          `json:"timestamp"`
	PerceptionLevel    float64          `json:"perception_level"`
	ThoughtLevel       float64          `json:"thought_level"`
	History            []sentropy.Coord `json:"history,omitempty"`
}

// #endregion state

// #region input
// Input drives one Evolve step.
type Input struct {
	Dt              float64 `json:"dt"`
	PerceptionInput float64 `json:"perception_input"`
	ThoughtInput    float64 `json:"thought_input"`
	DHdt            float64 `json:"dh_dt"`

	// Zero values fall back to TauPerception and TauThought.
	TauPerception float64 `json:"tau_perception,omitempty"`
	TauThought    float64 `json:"tau_thought,omitempty"`
}

// #endregion input

// #region transition-result
// TransitionResult describes one Manager transition.
type TransitionResult struct {
	Success  bool              `json:"success"`
	From     sentropy.Coord    `json:"from"`
	To       sentropy.Coord    `json:"to"`
	Distance float64           `json:"distance"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Summary is a snapshot of a Manager's current state and history.
type Summary struct {
	CurrentConsciousness float64 `json:"current_consciousness"`
	CurrentCoherence     float64 `json:"current_coherence"`
	CurrentFreqCoherence float64 `json:"current_frequency_coherence"`
	CurrentMemory        float64 `json:"current_memory"`
	HistoryLength        int     `json:"history_length"`
	MeanConsciousness    float64 `json:"mean_consciousness"`
}

// #endregion transition-result
