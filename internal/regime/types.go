package regime

import "fmt"

// #region regime
// Regime is the discrete classification of a State.
type Regime int

const (
	Laminar Regime = iota
	Transitional
	Turbulent
	Oscillatory
	Bistable
	Chaotic
	PhaseLocked
	Hierarchical
)

var regimeNames = [...]string{
	Laminar:      "laminar",
	Transitional: "transitional",
	Turbulent:    "turbulent",
	Oscillatory:  "oscillatory",
	Bistable:     "bistable",
	Chaotic:      "chaotic",
	PhaseLocked:  "phase_locked",
	Hierarchical: "hierarchical",
}

// All lists every regime in declaration order.
func All() []Regime {
	return []Regime{Laminar, Transitional, Turbulent, Oscillatory, Bistable, Chaotic, PhaseLocked, Hierarchical}
}

func (r Regime) String() string {
	if r < 0 || int(r) >= len(regimeNames) {
		return fmt.Sprintf("regime(%d)", int(r))
	}
	return regimeNames[r]
}

// MarshalText encodes the regime by name.
func (r Regime) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(regimeNames) {
		return nil, fmt.Errorf("regime: unknown value %d", int(r))
	}
	return []byte(regimeNames[r]), nil
}

// UnmarshalText decodes a regime name.
func (r *Regime) UnmarshalText(b []byte) error {
	for i, name := range regimeNames {
		if name == string(b) {
			*r = Regime(i)
			return nil
		}
	}
	return fmt.Errorf("regime: unknown name %q", string(b))
}

// #endregion regime

// #region state
// State is the continuous vector a regime is derived from. PrimaryLevel and
// SecondaryLevel are the driven level and the flow it carries; FlowIndex is
// the dimensionless flow number the thresholds apply to.
type State struct {
	PrimaryLevel   float64 `json:"primary_level"`
	SecondaryLevel float64 `json:"secondary_level"`
	FlowIndex      float64 `json:"flow_index"`
	Phase          float64 `json:"phase"`
	Frequency      float64 `json:"frequency"`
	Coherence      float64 `json:"coherence"`
	Depth          float64 `json:"depth"`
	Variance       float64 `json:"variance"`
}

// Thresholds split the flow index into low, middle and high bands.
type Thresholds struct {
	LowFlow  float64 `json:"low_flow" yaml:"low_flow" validate:"gt=0"`
	HighFlow float64 `json:"high_flow" yaml:"high_flow" validate:"gtfield=LowFlow"`
}

// DefaultThresholds returns the stock flow thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowFlow:  2300,
		HighFlow: 4000,
	}
}

// #endregion state
