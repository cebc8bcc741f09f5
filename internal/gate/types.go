package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoBounds    VetoType = "bounds_violation"
	VetoStep      VetoType = "step_too_large"
	VetoNumeric   VetoType = "numeric_instability"
	VetoCoupling  VetoType = "coupling_runaway"
	VetoCancelled VetoType = "run_cancelled"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType `json:"type"`
	Reason string   `json:"reason"`
}

// #endregion veto-signal

// #region metrics
// Metrics describe the step that produced a proposed state.
type Metrics struct {
	Distance       float64 `json:"distance"`        // entropy-coordinate distance moved
	Coupling       float64 `json:"coupling"`        // population coupling after the step
	CoherenceDelta float64 `json:"coherence_delta"` // proposed minus previous coherence
	Cancelled      bool    `json:"cancelled"`
}

// #endregion metrics

// #region gate-config
// Config holds thresholds for gate decisions.
type Config struct {
	MaxStep     float64 `json:"max_step" yaml:"max_step" validate:"gt=0"`         // max entropy-coordinate move per transition
	MaxMemory   float64 `json:"max_memory" yaml:"max_memory" validate:"gt=0"`     // max |memory| accumulated
	MaxCoupling float64 `json:"max_coupling" yaml:"max_coupling" validate:"gt=0"` // hard cap on steered coupling
	// MinScore is soft: transitions below it are committed but flagged in the reason.
	MinScore float64 `json:"min_score" yaml:"min_score" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the stock transition bounds.
func DefaultConfig() Config {
	return Config{
		MaxStep:     1.0,
		MaxMemory:   1e6,
		MaxCoupling: 1e3,
		MinScore:    0.2,
	}
}

// #endregion gate-config

// #region gate-decision
// Action values carried by Decision.
const (
	ActionCommit = "commit"
	ActionReject = "reject"
)

// Decision is the output of the gate evaluation.
type Decision struct {
	Action      string       `json:"action"` // "commit" | "reject"
	Reason      string       `json:"reason"`
	Vetoed      bool         `json:"vetoed"`
	VetoSignals []VetoSignal `json:"veto_signals,omitempty"` // non-empty if vetoed
	SoftScore   float64      `json:"soft_score"`             // 0-1 composite of soft signals (for logging)
}

// #endregion gate-decision
