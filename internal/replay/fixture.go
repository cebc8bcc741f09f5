package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/catnav/internal/eval"
	"github.com/danielpatrickdp/catnav/internal/gate"
	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Start           FixtureStart            `json:"start"`
	Config          FixtureConfig           `json:"config"`
	Steps           []FixtureStep           `json:"steps"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureStart is the JSON-serializable initial state.
type FixtureStart struct {
	Coordinate         sentropy.Coord `json:"coordinate"`
	Coherence          *float64       `json:"coherence,omitempty"`
	FrequencyCoherence *float64       `json:"frequency_coherence,omitempty"`
	Memory             float64        `json:"memory"`
}

// FixtureStep is one recorded step: a dynamics input plus an optional jump.
type FixtureStep struct {
	StepID string `json:"step_id"`
	trajectory.Input
	Target    *sentropy.Coord `json:"target,omitempty"`
	Coupling  float64         `json:"coupling"`
	Cancelled bool            `json:"cancelled"`
}

// FixtureExpectedResult captures the expected action per step.
type FixtureExpectedResult struct {
	StepID string `json:"step_id"`
	Action string `json:"action"`
}

// FixtureConfig bundles the gate and eval configs for a replay run.
// Missing sections fall back to defaults.
type FixtureConfig struct {
	Gate *gate.Config `json:"gate,omitempty"`
	Eval *eval.Config `json:"eval,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToState converts a FixtureStart to a trajectory state.
func (s *FixtureStart) ToState() trajectory.State {
	st := trajectory.Initial(s.Coordinate).WithMemory(s.Memory)
	if s.Coherence != nil {
		st = st.WithCoherence(*s.Coherence)
	}
	if s.FrequencyCoherence != nil {
		st = st.WithFrequencyCoherence(*s.FrequencyCoherence)
	}
	return st
}

// ToStep converts a FixtureStep to a domain Step.
func (fs *FixtureStep) ToStep() Step {
	return Step{
		StepID:    fs.StepID,
		Input:     fs.Input,
		Target:    fs.Target,
		Coupling:  fs.Coupling,
		Cancelled: fs.Cancelled,
	}
}

// ToSteps converts every fixture step.
func (f *Fixture) ToSteps() []Step {
	steps := make([]Step, len(f.Steps))
	for i := range f.Steps {
		steps[i] = f.Steps[i].ToStep()
	}
	return steps
}

// ToReplayConfig converts a FixtureConfig to a domain Config.
func (fc *FixtureConfig) ToReplayConfig() Config {
	cfg := DefaultConfig()
	if fc.Gate != nil {
		cfg.Gate = *fc.Gate
	}
	if fc.Eval != nil {
		cfg.Eval = *fc.Eval
	}
	return cfg
}

// #endregion fixture-loader

// #region fixture-export

// FromGateRecords builds a fixture from logged gate records, expecting each
// record's logged action.
func FromGateRecords(description string, start trajectory.State, cfg Config, records []logging.GateRecord) *Fixture {
	coh, fcoh := start.Coherence, start.FrequencyCoherence
	f := &Fixture{
		Description: description,
		Start: FixtureStart{
			Coordinate:         start.Coordinate,
			Coherence:          &coh,
			FrequencyCoherence: &fcoh,
			Memory:             start.Memory,
		},
		Config: FixtureConfig{Gate: &cfg.Gate, Eval: &cfg.Eval},
	}
	for _, rec := range records {
		id := fmt.Sprintf("%s-%d", rec.Trigger, rec.Step)
		f.Steps = append(f.Steps, FixtureStep{
			StepID:    id,
			Input:     rec.Input,
			Target:    rec.Target,
			Coupling:  rec.Metrics.Coupling,
			Cancelled: rec.Metrics.Cancelled,
		})
		action := rec.GateAction
		switch {
		case rec.GateVetoed:
			action = ActionGateReject
		case rec.EvalPassed != nil && !*rec.EvalPassed:
			action = ActionEvalRollback
		}
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{StepID: id, Action: action})
	}
	return f
}

// #endregion fixture-export
