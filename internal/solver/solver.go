package solver

import (
	"math"

	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region complete
// Complete descends the total violation V = Σ|c(s)| from start until V drops
// below opts.Tolerance or opts.MaxIterations is spent.
//
// Each iteration takes the central-difference gradient ∇V and moves by
// −lr·V·∇V, the gradient of ½V², so steps shrink as constraints are met.
// The learning rate is multiplied by opts.LearningRateDecay after every
// iteration. Zero-valued options fall back to DefaultOptions.
func Complete(start sentropy.Coord, constraints []Constraint, opts Options) CompletionResult {
	opts = withDefaults(opts)
	violation := totalViolation(constraints)

	state := start
	lr := opts.LearningRate
	res := CompletionResult{
		Trajectory: []sentropy.Coord{state},
		Violations: make([]float64, 0, opts.MaxIterations+1),
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		v := violation(state)
		res.Violations = append(res.Violations, v)
		if v < opts.Tolerance {
			res.Success = true
			res.Final = state
			res.Iterations = iter
			return res
		}

		g := centralGradient(violation, state, opts.Epsilon)
		state = state.Update(-lr*v*g[0], -lr*v*g[1], -lr*v*g[2])
		res.Trajectory = append(res.Trajectory, state)
		lr *= opts.LearningRateDecay
	}

	final := violation(state)
	res.Violations = append(res.Violations, final)
	res.Success = final < opts.Tolerance
	res.Final = state
	res.Iterations = opts.MaxIterations
	return res
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
	if opts.LearningRateDecay <= 0 || opts.LearningRateDecay > 1 {
		opts.LearningRateDecay = def.LearningRateDecay
	}
	return opts
}

// TotalViolation is Σ|c(s)| over constraints.
func TotalViolation(s sentropy.Coord, constraints []Constraint) float64 {
	return totalViolation(constraints)(s)
}

func totalViolation(constraints []Constraint) sentropy.Field {
	return func(s sentropy.Coord) float64 {
		var v float64
		for _, c := range constraints {
			v += math.Abs(c(s))
		}
		return v
	}
}

// centralGradient differentiates f along each axis with step eps, falling
// back to a one-sided difference where a shifted point would leave [0, 1].
func centralGradient(f sentropy.Field, s sentropy.Coord, eps float64) [3]float64 {
	var g [3]float64
	base := s.Array()
	for axis := range base {
		lo, hi := base, base
		hiOK := base[axis]+eps <= 1
		loOK := base[axis]-eps >= 0
		switch {
		case hiOK && loOK:
			hi[axis] += eps
			lo[axis] -= eps
			g[axis] = (f(coord(hi)) - f(coord(lo))) / (2 * eps)
		case hiOK:
			hi[axis] += eps
			g[axis] = (f(coord(hi)) - f(s)) / eps
		case loOK:
			lo[axis] -= eps
			g[axis] = (f(s) - f(coord(lo))) / eps
		}
	}
	return g
}

func coord(v [3]float64) sentropy.Coord {
	return sentropy.Coord{Sk: v[0], St: v[1], Se: v[2]}
}

// #endregion complete

// #region equilibrium
// Equilibrium applies step until the consciousness score changes by less
// than tolerance between consecutive states, or until maxTime has elapsed.
func Equilibrium(initial trajectory.State, step StepFunc, dt, maxTime, tolerance float64) EquilibriumResult {
	res := EquilibriumResult{Final: initial, History: []trajectory.State{initial}}
	if dt <= 0 || maxTime <= 0 {
		return res
	}

	steps := int(math.Ceil(maxTime / dt))
	state := initial
	prev := state.ConsciousnessScore()
	for i := 0; i < steps; i++ {
		state = step(state, dt)
		res.History = append(res.History, state)
		score := state.ConsciousnessScore()
		if math.Abs(score-prev) < tolerance {
			res.Final = state
			res.Converged = true
			return res
		}
		prev = score
	}
	res.Final = state
	return res
}

// #endregion equilibrium

// #region target
// Target moves current one step of at most stepSize toward target along the
// normalized gradient. Returns target once it is within reach.
func Target(current, target sentropy.Coord, stepSize float64) sentropy.Coord {
	dist := current.Distance(target)
	if dist < sentropy.Epsilon || dist <= stepSize {
		return target
	}
	g := current.GradientToward(target)
	return current.Update(g[0]*stepSize, g[1]*stepSize, g[2]*stepSize)
}

// Satisfy reports whether |c(s)| < tolerance.
func Satisfy(s sentropy.Coord, c Constraint, tolerance float64) bool {
	return math.Abs(c(s)) < tolerance
}

// #endregion target

// #region constraints
// RecurrenceConstraint is zero on the sphere of radius eps around initial.
func RecurrenceConstraint(initial sentropy.Coord, eps float64) Constraint {
	return func(s sentropy.Coord) float64 {
		return s.Distance(initial) - eps
	}
}

// AxisConstraint pins one axis to value.
func AxisConstraint(axis Axis, value float64) Constraint {
	return func(s sentropy.Coord) float64 {
		return s.Array()[axis] - value
	}
}

// ConsciousnessConstraint is the signed miss c − target, snapped to zero
// inside the tolerance band.
func ConsciousnessConstraint(target, tolerance float64) func(float64) float64 {
	return func(c float64) float64 {
		if math.Abs(c-target) < tolerance {
			return 0
		}
		return c - target
	}
}

// #endregion constraints
