package gate

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

func makeState() trajectory.State {
	return trajectory.Initial(sentropy.Coord{Sk: 0.2, St: 0.2, Se: 0.2})
}

func TestGateCommitOnCleanStep(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState()
	proposed := old.WithCoherence(0.8)

	decision := g.Evaluate(old, proposed, Metrics{CoherenceDelta: 0.3, Coupling: 1})

	if decision.Action != ActionCommit {
		t.Fatalf("expected commit, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.Vetoed {
		t.Fatal("should not be vetoed")
	}
	if math.Abs(decision.SoftScore-1.0) > 1e-12 {
		t.Fatalf("expected full soft score, got %f", decision.SoftScore)
	}
}

func TestGateRejectOnCancel(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState()

	decision := g.Evaluate(old, old, Metrics{Cancelled: true})

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if len(decision.VetoSignals) != 1 || decision.VetoSignals[0].Type != VetoCancelled {
		t.Fatalf("expected single VetoCancelled, got %+v", decision.VetoSignals)
	}
}

func TestGateRejectOnNaN(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState()
	proposed := old
	proposed.Coherence = math.NaN()

	decision := g.Evaluate(old, proposed, Metrics{})

	if !decision.Vetoed {
		t.Fatal("should be vetoed")
	}
	if decision.VetoSignals[0].Type != VetoNumeric {
		t.Fatalf("expected VetoNumeric, got %s", decision.VetoSignals[0].Type)
	}
	if len(decision.VetoSignals) != 1 {
		t.Fatalf("NaN should not also report bounds, got %+v", decision.VetoSignals)
	}
}

func TestGateRejectOnBounds(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState()
	proposed := old
	proposed.ThoughtLevel = 1.5

	decision := g.Evaluate(old, proposed, Metrics{})

	if decision.Action != ActionReject || decision.VetoSignals[0].Type != VetoBounds {
		t.Fatalf("expected bounds veto, got %+v", decision)
	}
}

func TestGateRejectOnLargeStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxStep = 0.1
	g := New(cfg)
	old := makeState()
	proposed := old.TransitionTo(sentropy.Equilibrium())

	decision := g.Evaluate(old, proposed, Metrics{Distance: old.Coordinate.Distance(proposed.Coordinate)})

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoStep {
		t.Fatalf("expected VetoStep, got %s", decision.VetoSignals[0].Type)
	}
}

func TestGateRejectOnCouplingRunaway(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState()

	decision := g.Evaluate(old, old, Metrics{Coupling: 1e4})

	if decision.VetoSignals[0].Type != VetoCoupling {
		t.Fatalf("expected VetoCoupling, got %+v", decision.VetoSignals)
	}
}

func TestGateMultipleVetoes(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState()
	proposed := old.WithMemory(1e9)

	decision := g.Evaluate(old, proposed, Metrics{Cancelled: true, Distance: 2})

	if len(decision.VetoSignals) != 3 {
		t.Fatalf("expected 3 vetoes, got %d: %+v", len(decision.VetoSignals), decision.VetoSignals)
	}
	if decision.SoftScore != 0 {
		t.Fatalf("vetoed decisions carry zero soft score, got %f", decision.SoftScore)
	}
}

func TestSoftScorePenalisesCollapse(t *testing.T) {
	g := New(DefaultConfig())
	old := makeState().WithCoherence(1).WithFrequencyCoherence(1)
	proposed := old.EnterDream()

	decision := g.Evaluate(old, proposed, Metrics{CoherenceDelta: -0.5, Distance: 0.5})

	if decision.Action != ActionCommit {
		t.Fatalf("soft signals never block, got %s", decision.Action)
	}
	// 0.4·0.5 + 0.3·0.5 + 0
	if math.Abs(decision.SoftScore-0.35) > 1e-12 {
		t.Fatalf("expected 0.35, got %f", decision.SoftScore)
	}
}
