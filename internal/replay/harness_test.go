package replay

import (
	"reflect"
	"testing"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// helper: initial state at a fixed coordinate.
func startState() trajectory.State {
	return trajectory.Initial(sentropy.Coord{Sk: 0.2, St: 0.2, Se: 0.2})
}

// helper: a tick that evolves with steady inputs.
func tickStep(id string) Step {
	return Step{
		StepID:   id,
		Input:    trajectory.Input{Dt: 0.01, PerceptionInput: 10, ThoughtInput: 5, DHdt: 1},
		Coupling: 2,
	}
}

// helper: a jump to c.
func jumpStep(id string, c sentropy.Coord) Step {
	return Step{StepID: id, Target: &c, Coupling: 2}
}

// 1. Full commit path: state advances, both stages populated.
func TestReplay_FullCommitPath(t *testing.T) {
	start := startState()

	results := Replay(start, []Step{tickStep("s1")}, DefaultConfig())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Action != ActionCommit {
		t.Errorf("expected action=commit, got %s", r.Action)
	}
	if r.Final.Timestamp != 0.01 {
		t.Errorf("expected state to advance to t=0.01, got %f", r.Final.Timestamp)
	}
	if r.GateDecision == nil {
		t.Fatal("expected GateDecision to be populated")
	}
	if r.EvalResult == nil || !r.EvalResult.Passed {
		t.Fatal("expected passing EvalResult")
	}
}

// 2. Gate rejection: oversized jump leaves state unchanged.
func TestReplay_GateRejection(t *testing.T) {
	start := startState()
	config := DefaultConfig()
	config.Gate.MaxStep = 0.1

	results := Replay(start, []Step{jumpStep("s1", sentropy.Equilibrium())}, config)

	r := results[0]
	if r.Action != ActionGateReject {
		t.Errorf("expected action=gate_reject, got %s", r.Action)
	}
	if r.Final.Coordinate != start.Coordinate {
		t.Error("expected state unchanged after gate rejection")
	}
	if r.GateDecision == nil || !r.GateDecision.Vetoed {
		t.Error("expected vetoed GateDecision")
	}
	if r.EvalResult != nil {
		t.Error("expected EvalResult to be nil after gate rejection")
	}
}

// 3. Eval rollback: history bound of zero fails the first jump.
func TestReplay_EvalRollback(t *testing.T) {
	start := startState()
	config := DefaultConfig()
	config.Eval.MaxHistory = 0

	results := Replay(start, []Step{jumpStep("s1", sentropy.Equilibrium())}, config)

	r := results[0]
	if r.Action != ActionEvalRollback {
		t.Errorf("expected action=eval_rollback, got %s", r.Action)
	}
	if len(r.Final.History) != 0 {
		t.Error("expected state unchanged after eval rollback")
	}
	if r.EvalResult == nil || r.EvalResult.Passed {
		t.Error("expected failing EvalResult")
	}
}

// 4. No-op: zero dt and no target.
func TestReplay_NoOp(t *testing.T) {
	start := startState()

	results := Replay(start, []Step{{StepID: "s1"}}, DefaultConfig())

	r := results[0]
	if r.Action != ActionNoOp {
		t.Errorf("expected action=no_op, got %s", r.Action)
	}
	if r.GateDecision != nil || r.EvalResult != nil {
		t.Error("no_op should skip gate and eval")
	}
}

// 5. Multi-step: commits chain, rejections leave the chain intact.
func TestReplay_MultiStep(t *testing.T) {
	start := startState()
	a := sentropy.Coord{Sk: 0.3, St: 0.3, Se: 0.3}
	b := sentropy.Coord{Sk: 0.4, St: 0.4, Se: 0.4}
	cancelled := tickStep("s3")
	cancelled.Cancelled = true

	steps := []Step{tickStep("s1"), jumpStep("s2", a), cancelled, jumpStep("s4", b), tickStep("s5")}
	results := Replay(start, steps, DefaultConfig())

	want := []string{ActionCommit, ActionCommit, ActionGateReject, ActionCommit, ActionCommit}
	for i, r := range results {
		if r.Action != want[i] {
			t.Errorf("step %d: expected %s, got %s (%s)", i, want[i], r.Action, r.Reason)
		}
	}
	final := results[len(results)-1].Final
	if !reflect.DeepEqual(final.History, []sentropy.Coord{start.Coordinate, a}) {
		t.Errorf("unexpected history %v", final.History)
	}
	if final.Coordinate != b {
		t.Errorf("expected final coordinate %v, got %v", b, final.Coordinate)
	}
}

// 6. Propose reports step metrics.
func TestPropose_Metrics(t *testing.T) {
	start := startState()
	target := sentropy.Coord{Sk: 0.2, St: 0.2, Se: 0.5}

	next, m, changed := Propose(start, Step{Target: &target, Coupling: 3})

	if !changed {
		t.Fatal("expected a change")
	}
	if next.Coordinate != target {
		t.Errorf("expected jump to %v, got %v", target, next.Coordinate)
	}
	if d := m.Distance - 0.3; d > 1e-12 || d < -1e-12 {
		t.Errorf("expected distance 0.3, got %f", m.Distance)
	}
	if m.Coupling != 3 {
		t.Errorf("expected coupling passthrough, got %f", m.Coupling)
	}
}

// 7. Summarize counts every action.
func TestReplay_Summarize(t *testing.T) {
	results := []Result{
		{Action: ActionCommit},
		{Action: ActionCommit},
		{Action: ActionGateReject},
		{Action: ActionEvalRollback},
		{Action: ActionNoOp},
	}
	s := Summarize(results, startState())

	if s.TotalSteps != 5 || s.Commits != 2 || s.GateRejects != 1 || s.EvalRollbacks != 1 || s.NoOps != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
}

// 8. Deterministic: same inputs, same results.
func TestReplay_Deterministic(t *testing.T) {
	steps := []Step{tickStep("s1"), jumpStep("s2", sentropy.Equilibrium()), tickStep("s3")}

	r1 := Replay(startState(), steps, DefaultConfig())
	r2 := Replay(startState(), steps, DefaultConfig())

	if !reflect.DeepEqual(r1, r2) {
		t.Fatal("replay is not deterministic")
	}
}
