package solver

import (
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region constraint
// Constraint is a residual over the entropy cube; zero means satisfied.
type Constraint func(sentropy.Coord) float64

// StepFunc advances a trajectory state by dt.
type StepFunc func(s trajectory.State, dt float64) trajectory.State

// Axis names one component of an entropy coordinate.
type Axis int

const (
	AxisSk Axis = iota
	AxisSt
	AxisSe
)

// #endregion constraint

// #region options
// Options bound and tune Complete.
type Options struct {
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations" validate:"gt=0"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance" validate:"gt=0"`
	LearningRate  float64 `json:"learning_rate" yaml:"learning_rate" validate:"gt=0"`
	Epsilon       float64 `json:"epsilon" yaml:"epsilon" validate:"gt=0"`
	// LearningRateDecay multiplies the learning rate after every iteration.
	LearningRateDecay float64 `json:"learning_rate_decay" yaml:"learning_rate_decay" validate:"gt=0,lte=1"`
}

// DefaultOptions returns the stock completion settings.
func DefaultOptions() Options {
	return Options{
		MaxIterations:     1000,
		Tolerance:         1e-4,
		LearningRate:      0.1,
		Epsilon:           1e-6,
		LearningRateDecay: 0.999,
	}
}

// #endregion options

// #region results
// CompletionResult reports how Complete ended. Success=false is an ordinary
// outcome meaning the iteration budget ran out first.
type CompletionResult struct {
	Success    bool             `json:"success"`
	Final      sentropy.Coord   `json:"final"`
	Iterations int              `json:"iterations"`
	Trajectory []sentropy.Coord `json:"trajectory"`
	Violations []float64        `json:"violations"`
}

// EquilibriumResult reports how Equilibrium ended.
type EquilibriumResult struct {
	Final     trajectory.State   `json:"final"`
	Converged bool               `json:"converged"`
	History   []trajectory.State `json:"-"`
}

// #endregion results
