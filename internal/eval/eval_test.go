package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

func makeState() trajectory.State {
	return trajectory.Initial(sentropy.Coord{Sk: 0.1, St: 0.2, Se: 0.3})
}

func TestEvalPassesOnTick(t *testing.T) {
	h := NewHarness(DefaultConfig())
	prev := makeState()
	next := prev.Evolve(trajectory.Input{Dt: 0.01})

	result := h.Run(prev, next)

	if !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 5 {
		t.Fatalf("expected 5 metrics, got %d", len(result.Metrics))
	}
}

func TestEvalPassesOnTransition(t *testing.T) {
	h := NewHarness(DefaultConfig())
	prev := makeState().TransitionTo(sentropy.Origin())
	next := prev.TransitionTo(sentropy.Equilibrium())

	if result := h.Run(prev, next); !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
}

func TestEvalFailsOnRewrittenHistory(t *testing.T) {
	h := NewHarness(DefaultConfig())
	prev := makeState().TransitionTo(sentropy.Origin())
	next := prev.TransitionTo(sentropy.Equilibrium())
	next.History[0] = sentropy.Equilibrium()

	result := h.Run(prev, next)

	if result.Passed {
		t.Fatal("expected fail on rewritten history")
	}
	failed := result.Failed()
	if len(failed) != 1 || failed[0] != "history_prefix" {
		t.Fatalf("expected history_prefix failure, got %v", failed)
	}
}

func TestEvalFailsOnTimeReversal(t *testing.T) {
	h := NewHarness(DefaultConfig())
	prev := makeState().WithTimestamp(2)
	next := prev.WithTimestamp(1)

	result := h.Run(prev, next)

	if result.Passed {
		t.Fatal("expected fail on time reversal")
	}
	if !strings.Contains(result.Reason, "timestamp") {
		t.Fatalf("expected timestamp reason, got %q", result.Reason)
	}
}

func TestEvalFailsOnHistoryBound(t *testing.T) {
	config := DefaultConfig()
	config.MaxHistory = 1
	h := NewHarness(config)

	prev := makeState().TransitionTo(sentropy.Origin())
	next := prev.TransitionTo(sentropy.Equilibrium())

	if result := h.Run(prev, next); result.Passed {
		t.Fatal("expected fail on history bound")
	}
}

func TestEvalMultipleFailures(t *testing.T) {
	h := NewHarness(DefaultConfig())
	prev := makeState().WithTimestamp(5)
	next := prev.WithTimestamp(0)
	next.Coherence = 3

	result := h.Run(prev, next)

	if result.Passed {
		t.Fatal("expected fail")
	}
	if !strings.Contains(result.Reason, "2 checks") {
		t.Fatalf("expected multi-check reason, got %q", result.Reason)
	}
}

func TestEvalConsciousnessIsInformational(t *testing.T) {
	h := NewHarness(DefaultConfig())
	prev := makeState()
	next := prev.EnterDream()

	result := h.Run(prev, next)

	if !result.Passed {
		t.Fatalf("low consciousness must not fail eval: %s", result.Reason)
	}
	for _, m := range result.Metrics {
		if m.Name == "consciousness" && m.Pass {
			t.Fatal("consciousness metric should be flagged")
		}
	}
}
