package engine

import (
	"github.com/danielpatrickdp/catnav/internal/config"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// RunResult is the output of Run and Dream: one state and one R per tick.
type RunResult struct {
	RunID     string             `json:"run_id,omitempty"`
	States    []trajectory.State `json:"states"`
	Coherence []float64          `json:"coherence"`
}

// Final returns the last state, or false when no tick ran.
func (r RunResult) Final() (trajectory.State, bool) {
	if len(r.States) == 0 {
		return trajectory.State{}, false
	}
	return r.States[len(r.States)-1], true
}

// ComputeResult is the output of ComputeToTarget.
type ComputeResult struct {
	Success     bool              `json:"success"`
	Final       trajectory.State  `json:"final"`
	Iterations  int               `json:"iterations"`
	Convergence []float64         `json:"convergence"` // consciousness score per iteration
	Trajectory  []sentropy.Coord  `json:"trajectory"`
	Coupling    float64           `json:"coupling"` // coupling after steering
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// BatchRun describes one independent run of RunBatch.
type BatchRun struct {
	Config   config.Engine
	Initial  trajectory.State
	Duration float64
	Dt       float64
}
