package eval

// #region eval-config
// Config holds thresholds for post-commit validation.
type Config struct {
	MaxHistory         int     `json:"max_history" yaml:"max_history" validate:"gt=0"`                        // reject if the coordinate trail grows past this
	ConsciousnessFloor float64 `json:"consciousness_floor" yaml:"consciousness_floor" validate:"gte=0,lte=1"` // warn if the score sinks below
}

// DefaultConfig returns the stock post-commit thresholds.
func DefaultConfig() Config {
	return Config{
		MaxHistory:         10000,
		ConsciousnessFloor: 0.05,
	}
}

// #endregion eval-config

// #region eval-metric
// Metric captures a single validation check result.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// Result is the output of post-commit validation.
type Result struct {
	Passed  bool     `json:"passed"`
	Metrics []Metric `json:"metrics"`
	Reason  string   `json:"reason"`
}

// Failed returns the names of failing checks.
func (r Result) Failed() []string {
	var names []string
	for _, m := range r.Metrics {
		if !m.Pass {
			names = append(names, m.Name)
		}
	}
	return names
}

// #endregion eval-result
