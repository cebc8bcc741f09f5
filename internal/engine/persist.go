package engine

import (
	"log/slog"

	"github.com/danielpatrickdp/catnav/internal/gate"
	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region commit
// begin starts a new run from initial. The next commit creates a fresh root
// version instead of extending the previous run's head.
func (e *Engine) begin(initial trajectory.State) {
	e.manager.Initialize(initial)
	e.head = trajectory.Record{}
	e.step = 0
	e.runID = e.pinned
}

// commit records proposed as the successor of prev. Without a store the
// proposal is taken as is. With a store it passes gate → eval → write, and a
// rejected or rolled-back proposal leaves prev in place.
func (e *Engine) commit(trigger string, prev, proposed trajectory.State, in trajectory.Input, target *sentropy.Coord) trajectory.State {
	if e.store == nil || e.err != nil {
		return e.manager.Apply(func(trajectory.State) trajectory.State { return proposed })
	}
	if e.head.VersionID == "" {
		head, err := e.store.CreateInitial(e.runID, prev)
		if err != nil {
			e.fail("create initial version", err)
			return e.manager.Apply(func(trajectory.State) trajectory.State { return proposed })
		}
		e.head = head
		e.runID = head.RunID
	}
	e.step++

	m := gate.Metrics{
		Distance:       prev.Coordinate.Distance(proposed.Coordinate),
		Coupling:       e.pop.Coupling(),
		CoherenceDelta: proposed.Coherence - prev.Coherence,
	}
	decision := e.gate.Evaluate(prev, proposed, m)
	rec := logging.GateRecord{
		Step:          e.step,
		Trigger:       trigger,
		ScoreBefore:   prev.ConsciousnessScore(),
		ScoreAfter:    proposed.ConsciousnessScore(),
		Input:         in,
		Target:        target,
		Metrics:       m,
		Thresholds:    e.gate.Config(),
		GateAction:    decision.Action,
		GateSoftScore: decision.SoftScore,
		GateVetoed:    decision.Vetoed,
		GateReason:    decision.Reason,
	}

	action, reason, result := logging.DecisionGateReject, decision.Reason, prev
	if decision.Action == gate.ActionCommit {
		res := e.eval.Run(prev, proposed)
		rec.EvalPassed = &res.Passed
		rec.EvalFailed = res.Failed()
		if res.Passed {
			action, result = logging.DecisionCommit, proposed
		} else {
			action, reason = logging.DecisionEvalRollback, res.Reason
		}
	}

	if action == logging.DecisionCommit {
		next := trajectory.NewRecord(e.head, proposed)
		if err := e.store.Commit(next); err != nil {
			e.fail("commit version", err)
			return e.manager.Apply(func(trajectory.State) trajectory.State { return proposed })
		}
		e.head = next
	} else {
		e.logger.Warn("transition refused",
			slog.String("trigger", trigger),
			slog.String("action", action),
			slog.String("reason", reason),
			slog.Int("step", e.step),
		)
	}

	entry := logging.ProvenanceEntry{
		VersionID:   e.head.VersionID,
		RunID:       e.runID,
		TriggerType: trigger,
		Decision:    action,
		Reason:      reason,
	}
	if err := logging.LogGateRecord(e.store.DB(), entry, rec); err != nil {
		e.fail("log decision", err)
	}
	e.metrics.ObserveDecision(action)
	return e.manager.Apply(func(trajectory.State) trajectory.State { return result })
}

func (e *Engine) fail(what string, err error) {
	if e.err == nil {
		e.err = err
	}
	e.logger.Error("persistence failed", slog.String("op", what), slog.Any("err", err))
}

// Head returns the last committed version, zero when nothing was persisted.
func (e *Engine) Head() trajectory.Record { return e.head }

// #endregion commit
