package config

import (
	"github.com/danielpatrickdp/catnav/internal/eval"
	"github.com/danielpatrickdp/catnav/internal/gate"
	"github.com/danielpatrickdp/catnav/internal/regime"
	"github.com/danielpatrickdp/catnav/internal/solver"
)

// #region engine
// Engine holds every constant an engine run depends on.
type Engine struct {
	Oscillators     int     `json:"oscillators" yaml:"oscillators" validate:"gt=0"`
	Coupling        float64 `json:"coupling" yaml:"coupling" validate:"gte=0"`
	MeanFrequency   float64 `json:"mean_frequency" yaml:"mean_frequency"`
	FrequencyStd    float64 `json:"frequency_std" yaml:"frequency_std" validate:"gte=0"`
	PartitionLevels int     `json:"partition_levels" yaml:"partition_levels" validate:"gt=0"`
	Seed            uint64  `json:"seed" yaml:"seed"`

	TauPerception float64 `json:"tau_perception" yaml:"tau_perception" validate:"gt=0"`
	TauThought    float64 `json:"tau_thought" yaml:"tau_thought" validate:"gt=0"`

	// Coupling steering used by ComputeToTarget.
	TargetTolerance float64 `json:"target_tolerance" yaml:"target_tolerance" validate:"gt=0"`
	CouplingUp      float64 `json:"coupling_up" yaml:"coupling_up" validate:"gt=1"`
	CouplingDown    float64 `json:"coupling_down" yaml:"coupling_down" validate:"gt=0,lt=1"`

	MaxHistory int `json:"max_history" yaml:"max_history" validate:"gt=0"`

	Regime regime.Thresholds `json:"regime" yaml:"regime"`
	Solver solver.Options    `json:"solver" yaml:"solver"`
	Gate   gate.Config       `json:"gate" yaml:"gate"`
	Eval   eval.Config       `json:"eval" yaml:"eval"`
}

// DefaultEngine returns the stock engine settings.
func DefaultEngine() Engine {
	return Engine{
		Oscillators:     100,
		Coupling:        0.5,
		MeanFrequency:   10,
		FrequencyStd:    1,
		PartitionLevels: 5,
		Seed:            1,
		TauPerception:   0.05,
		TauThought:      0.1,
		TargetTolerance: 0.01,
		CouplingUp:      1.01,
		CouplingDown:    0.99,
		MaxHistory:      1000,
		Regime:          regime.DefaultThresholds(),
		Solver:          solver.DefaultOptions(),
		Gate:            gate.DefaultConfig(),
		Eval:            eval.DefaultConfig(),
	}
}

// #endregion engine

// #region validation
// Validation configures the validator suite.
type Validation struct {
	OutputDir     string   `json:"output_dir" yaml:"output_dir" validate:"required"`
	Skip          []string `json:"skip" yaml:"skip"`
	PartitionNMax int      `json:"partition_n_max" yaml:"partition_n_max" validate:"gt=0,lte=64"`
	KuramotoN     int      `json:"kuramoto_n" yaml:"kuramoto_n" validate:"gt=1"`
	TernaryDepth  int      `json:"ternary_depth" yaml:"ternary_depth" validate:"gt=0,lte=40"`
	Seed          uint64   `json:"seed" yaml:"seed"`
	Parallel      bool     `json:"parallel" yaml:"parallel"`
}

// DefaultValidation returns the stock suite settings.
func DefaultValidation() Validation {
	return Validation{
		OutputDir:     "validation_results",
		PartitionNMax: 10,
		KuramotoN:     100,
		TernaryDepth:  12,
		Seed:          42,
	}
}

// #endregion validation

// #region file
// Store locates the lineage database. An empty path disables persistence.
type Store struct {
	Path string `json:"path" yaml:"path"`
}

// Log configures the console logger.
type Log struct {
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// Metrics configures the prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `json:"addr" yaml:"addr"`
}

// File is the top-level layout of a catnav YAML file.
type File struct {
	Engine     Engine     `json:"engine" yaml:"engine"`
	Validation Validation `json:"validation" yaml:"validation"`
	Store      Store      `json:"store" yaml:"store"`
	Log        Log        `json:"log" yaml:"log"`
	Metrics    Metrics    `json:"metrics" yaml:"metrics"`
}

// Default returns a File with every section at its defaults.
func Default() File {
	return File{
		Engine:     DefaultEngine(),
		Validation: DefaultValidation(),
		Log:        Log{Level: "info"},
	}
}

// #endregion file
