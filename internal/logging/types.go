package logging

import (
	"time"

	"github.com/danielpatrickdp/catnav/internal/gate"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region decisions
// Decisions recorded in provenance_log.decision.
const (
	DecisionCommit       = "commit"
	DecisionGateReject   = "gate_reject"
	DecisionEvalRollback = "eval_rollback"
	DecisionNoOp         = "no_op"
)

// #endregion decisions

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	VersionID   string
	RunID       string
	TriggerType string // "tick" | "steer" | "complete" | "perturb" | "dream" | "replay"
	SignalsJSON string
	Decision    string // "commit" | "gate_reject" | "eval_rollback"
	Reason      string
	CreatedAt   time.Time
}

// #endregion provenance-entry

// #region gate-record
// GateRecord captures the complete gate evaluation inputs for a single step.
// Serialized as JSON into provenance_log.signals_json for deterministic replay.
type GateRecord struct {
	Step    int    `json:"step"`
	Trigger string `json:"trigger"`

	// Scores on either side of the step
	ScoreBefore float64 `json:"score_before"`
	ScoreAfter  float64 `json:"score_after"`

	// Step inputs, enough to re-run the step offline
	Input  trajectory.Input `json:"input"`
	Target *sentropy.Coord  `json:"target,omitempty"`

	// Step metrics as evaluated at runtime
	Metrics gate.Metrics `json:"metrics"`

	// Gate thresholds active at decision time
	Thresholds gate.Config `json:"thresholds"`

	// Gate output
	GateAction    string  `json:"gate_action"`
	GateSoftScore float64 `json:"gate_soft_score"`
	GateVetoed    bool    `json:"gate_vetoed"`
	GateReason    string  `json:"gate_reason"`

	// Eval output, absent when the gate rejected
	EvalPassed *bool    `json:"eval_passed,omitempty"`
	EvalFailed []string `json:"eval_failed,omitempty"`
}

// #endregion gate-record
