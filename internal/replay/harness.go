package replay

import (
	"github.com/danielpatrickdp/catnav/internal/eval"
	"github.com/danielpatrickdp/catnav/internal/gate"
	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region types
// Actions a replayed step can end in. They match the live decisions so a
// replay compares directly against provenance rows.
const (
	ActionCommit       = logging.DecisionCommit
	ActionGateReject   = logging.DecisionGateReject
	ActionEvalRollback = logging.DecisionEvalRollback
	ActionNoOp         = logging.DecisionNoOp
)

// Step is a single recorded transition input for replay.
type Step struct {
	StepID    string
	Input     trajectory.Input
	Target    *sentropy.Coord // optional coordinate jump after evolving
	Coupling  float64         // coupling reported alongside the step
	Cancelled bool
}

// Config bundles gate and eval configs for a replay run.
type Config struct {
	Gate gate.Config
	Eval eval.Config
}

// DefaultConfig returns the stock configs for both checking stages.
func DefaultConfig() Config {
	return Config{
		Gate: gate.DefaultConfig(),
		Eval: eval.DefaultConfig(),
	}
}

// Result captures the outcome of replaying one step through the full pipeline.
type Result struct {
	StepID  string
	Action  string // "commit" | "gate_reject" | "eval_rollback" | "no_op"
	Reason  string
	Metrics gate.Metrics

	// Gate stage (nil if the step was a no_op)
	GateDecision *gate.Decision

	// Eval stage (nil if gate rejected or the step was a no_op)
	EvalResult *eval.Result

	// State after this step (equals the previous one if rejected or rolled back)
	Final trajectory.State
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps    int
	Commits       int
	GateRejects   int
	EvalRollbacks int
	NoOps         int
	Final         trajectory.State
}

// #endregion types

// #region replay
// Propose applies step to current: evolve by the step's input, then jump to
// its target. The second return is false when the step changes nothing.
func Propose(current trajectory.State, step Step) (trajectory.State, gate.Metrics, bool) {
	if step.Input.Dt == 0 && step.Target == nil {
		return current, gate.Metrics{}, false
	}
	next := current
	if step.Input.Dt != 0 {
		next = next.Evolve(step.Input)
	}
	if step.Target != nil {
		next = next.TransitionTo(*step.Target)
	}
	return next, gate.Metrics{
		Distance:       current.Coordinate.Distance(next.Coordinate),
		Coupling:       step.Coupling,
		CoherenceDelta: next.Coherence - current.Coherence,
		Cancelled:      step.Cancelled,
	}, true
}

// Replay iterates through steps, applying the full pipeline per step:
// propose → gate → eval → commit/reject. Operates entirely in-memory.
func Replay(start trajectory.State, steps []Step, config Config) []Result {
	current := start
	results := make([]Result, 0, len(steps))

	gateInst := gate.New(config.Gate)
	evalInst := eval.NewHarness(config.Eval)

	for _, step := range steps {
		// 1. Propose
		proposed, metrics, changed := Propose(current, step)

		// 2. No-op check
		if !changed {
			results = append(results, Result{
				StepID: step.StepID,
				Action: ActionNoOp,
				Reason: "zero dt and no target",
				Final:  current,
			})
			continue
		}

		// 3. Gate
		decision := gateInst.Evaluate(current, proposed, metrics)
		if decision.Action == gate.ActionReject {
			results = append(results, Result{
				StepID:       step.StepID,
				Action:       ActionGateReject,
				Reason:       decision.Reason,
				Metrics:      metrics,
				GateDecision: &decision,
				Final:        current,
			})
			continue
		}

		// 4. Eval
		evalResult := evalInst.Run(current, proposed)
		if !evalResult.Passed {
			results = append(results, Result{
				StepID:       step.StepID,
				Action:       ActionEvalRollback,
				Reason:       evalResult.Reason,
				Metrics:      metrics,
				GateDecision: &decision,
				EvalResult:   &evalResult,
				Final:        current,
			})
			continue
		}

		// 5. Commit
		current = proposed
		results = append(results, Result{
			StepID:       step.StepID,
			Action:       ActionCommit,
			Reason:       decision.Reason,
			Metrics:      metrics,
			GateDecision: &decision,
			EvalResult:   &evalResult,
			Final:        current,
		})
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result, start trajectory.State) Summary {
	s := Summary{
		TotalSteps: len(results),
		Final:      start,
	}
	for _, r := range results {
		switch r.Action {
		case ActionCommit:
			s.Commits++
		case ActionGateReject:
			s.GateRejects++
		case ActionEvalRollback:
			s.EvalRollbacks++
		case ActionNoOp:
			s.NoOps++
		}
		s.Final = r.Final
	}
	return s
}

// #endregion replay
