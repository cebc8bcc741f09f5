package eval

import (
	"fmt"

	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region eval-harness
// Harness runs lightweight post-commit validation on trajectory states.
type Harness struct {
	config Config
}

// NewHarness creates an eval harness with the given configuration.
func NewHarness(config Config) *Harness {
	return &Harness{config: config}
}

// Run validates next as the successor of prev. Returns pass/fail with metrics.
func (h *Harness) Run(prev, next trajectory.State) Result {
	var metrics []Metric
	passed := true
	var failReasons []string

	fail := func(reason string) {
		passed = false
		failReasons = append(failReasons, reason)
	}

	// 1. Field invariants
	invErr := trajectory.Validate(next)
	metrics = append(metrics, Metric{Name: "invariants", Value: boolValue(invErr == nil), Pass: invErr == nil})
	if invErr != nil {
		fail(invErr.Error())
	}

	// 2. Time never runs backwards
	dt := next.Timestamp - prev.Timestamp
	metrics = append(metrics, Metric{Name: "timestamp_delta", Value: dt, Pass: dt >= 0})
	if dt < 0 {
		fail(fmt.Sprintf("timestamp went back by %.4g", -dt))
	}

	// 3. History is prev's history, optionally extended by prev's coordinate
	prefixOK := historyExtends(prev, next)
	metrics = append(metrics, Metric{Name: "history_prefix", Value: float64(len(next.History)), Pass: prefixOK})
	if !prefixOK {
		fail("history does not extend predecessor")
	}

	// 4. History bound
	n := len(next.History)
	histPass := n <= h.config.MaxHistory
	metrics = append(metrics, Metric{Name: "history_length", Value: float64(n), Pass: histPass})
	if !histPass {
		fail(fmt.Sprintf("history length %d exceeds %d", n, h.config.MaxHistory))
	}

	// 5. Consciousness: informational only
	score := next.ConsciousnessScore()
	metrics = append(metrics, Metric{
		Name:  "consciousness",
		Value: score,
		Pass:  score >= h.config.ConsciousnessFloor,
	})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func historyExtends(prev, next trajectory.State) bool {
	switch len(next.History) {
	case len(prev.History):
	case len(prev.History) + 1:
		if next.History[len(prev.History)] != prev.Coordinate {
			return false
		}
	default:
		return false
	}
	for i, c := range prev.History {
		if next.History[i] != c {
			return false
		}
	}
	return true
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
