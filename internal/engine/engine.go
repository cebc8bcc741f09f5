// Package engine drives one oscillator population and one trajectory through
// discrete time steps, steering and completing the carried entropy
// coordinate on request.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielpatrickdp/catnav/internal/config"
	"github.com/danielpatrickdp/catnav/internal/eval"
	"github.com/danielpatrickdp/catnav/internal/gate"
	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/oscillator"
	"github.com/danielpatrickdp/catnav/internal/regime"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/solver"
	"github.com/danielpatrickdp/catnav/internal/telemetry"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

const seedMix = 0x9e3779b97f4a7c15

// #region engine
// Engine owns one population and the history of one run. It is not safe for
// concurrent use; RunBatch gives each run its own Engine.
type Engine struct {
	cfg     config.Engine
	pop     oscillator.Population
	src     rand.Source
	logger  *slog.Logger
	metrics *telemetry.Metrics
	manager *trajectory.Manager

	store  *trajectory.Store
	gate   *gate.Gate
	eval   *eval.Harness
	runID  string
	pinned string
	head   trajectory.Record
	step   int
	err    error
}

// New validates cfg and draws the initial population.
func New(cfg config.Engine, opts ...Option) (*Engine, error) {
	if err := config.ValidateEngine(cfg); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		manager: trajectory.NewManager(cfg.MaxHistory),
		gate:    gate.New(cfg.Gate),
		eval:    eval.NewHarness(cfg.Eval),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = rand.NewPCG(cfg.Seed, cfg.Seed^seedMix)
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}

	pop, err := oscillator.Random(cfg.Oscillators, cfg.MeanFrequency, cfg.FrequencyStd, cfg.Coupling, e.src)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.pop = pop
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Engine { return e.cfg }

// Population returns the current population.
func (e *Engine) Population() oscillator.Population { return e.pop }

// Coherence is the order parameter R of the current population.
func (e *Engine) Coherence() float64 { return e.pop.Coherence() }

// RunID is the lineage run the engine writes to, empty until the first
// commit of a run when no ID was supplied.
func (e *Engine) RunID() string { return e.runID }

// History returns the recorded states of the current run, oldest first.
func (e *Engine) History() []trajectory.State { return e.manager.History() }

// Err reports the first persistence failure, if any.
func (e *Engine) Err() error { return e.err }

// Reset redraws phases and natural frequencies, keeping N and the current
// coupling.
func (e *Engine) Reset() error {
	pop, err := oscillator.Random(e.pop.N(), e.cfg.MeanFrequency, e.cfg.FrequencyStd, e.pop.Coupling(), e.src)
	if err != nil {
		return fmt.Errorf("engine: reset: %w", err)
	}
	e.pop = pop
	e.logger.Debug("population reset", slog.Int("n", pop.N()), slog.Float64("coupling", pop.Coupling()))
	return nil
}

// #endregion engine

// #region tick
// Tick evolves the population by dt, folds R into the coherence of state and
// decays perception and thought. The timestamp advances by dt.
func (e *Engine) Tick(state trajectory.State, dt float64) trajectory.State {
	e.pop = e.pop.Evolve(dt)
	r := e.pop.Coherence()

	in := trajectory.Input{Dt: dt, TauPerception: e.cfg.TauPerception, TauThought: e.cfg.TauThought}
	next := state.WithCoherence(r).Evolve(in)
	e.metrics.ObserveTick(r, e.pop.Coupling(), next.ConsciousnessScore())
	return e.commit("tick", state, next, in, nil)
}

// Run ticks ⌊duration/dt⌋ times from initial. Cancelling ctx stops the run
// between ticks and returns the states produced so far with ctx.Err().
func (e *Engine) Run(ctx context.Context, initial trajectory.State, duration, dt float64) (RunResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "Engine.Run", trace.WithAttributes(
		attribute.Float64("duration", duration),
		attribute.Float64("dt", dt),
		attribute.Int("oscillators", e.pop.N()),
	))
	defer span.End()

	res, err := e.run(ctx, initial, steps(duration, dt), dt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("ticks", len(res.States)))
	return res, err
}

func (e *Engine) run(ctx context.Context, initial trajectory.State, n int, dt float64) (RunResult, error) {
	e.begin(initial)
	res := RunResult{
		States:    make([]trajectory.State, 0, n),
		Coherence: make([]float64, 0, n),
	}
	state := initial
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			res.RunID = e.runID
			return res, err
		}
		state = e.Tick(state, dt)
		if e.err != nil {
			res.RunID = e.runID
			return res, e.err
		}
		res.States = append(res.States, state)
		res.Coherence = append(res.Coherence, state.Coherence)
	}
	res.RunID = e.runID
	e.logger.Info("run finished",
		slog.String("run_id", e.runID),
		slog.Int("ticks", n),
		slog.Float64("coherence", e.pop.Coherence()),
	)
	return res, nil
}

// Dream enters the dream mode (perception off) and runs from there.
func (e *Engine) Dream(ctx context.Context, initial trajectory.State, duration, dt float64) (RunResult, error) {
	return e.Run(ctx, initial.EnterDream(), duration, dt)
}

func steps(duration, dt float64) int {
	if !(dt > 0) || !(duration > 0) {
		return 0
	}
	return int(duration / dt)
}

// #endregion tick

// #region steering
// ComputeToTarget ticks until the consciousness score is within the
// configured tolerance of target, nudging the coupling up by CouplingUp when
// below and down by CouplingDown when above. Running out of iterations is
// reported through Success=false.
func (e *Engine) ComputeToTarget(ctx context.Context, initial trajectory.State, target float64, maxIterations int, dt float64) ComputeResult {
	_, span := telemetry.Tracer().Start(ctx, "Engine.ComputeToTarget", trace.WithAttributes(
		attribute.Float64("target", target),
		attribute.Int("max_iterations", maxIterations),
	))
	defer span.End()

	e.begin(initial)
	res := ComputeResult{
		Trajectory:  []sentropy.Coord{initial.Coordinate},
		Convergence: make([]float64, 0, maxIterations),
	}
	state := initial
	for iter := 0; iter < maxIterations; iter++ {
		state = e.Tick(state, dt)
		c := state.ConsciousnessScore()
		res.Convergence = append(res.Convergence, c)

		if math.Abs(c-target) < e.cfg.TargetTolerance {
			res.Success = true
			res.Final = state
			res.Iterations = iter + 1
			res.Coupling = e.pop.Coupling()
			span.SetAttributes(attribute.Bool("success", true), attribute.Int("iterations", iter+1))
			return res
		}

		k := e.pop.Coupling()
		if c < target {
			k *= e.cfg.CouplingUp
		} else {
			k *= e.cfg.CouplingDown
		}
		e.pop = e.pop.WithCoupling(k)
	}

	res.Final = state
	res.Iterations = maxIterations
	res.Coupling = e.pop.Coupling()
	res.Metadata = map[string]string{"reason": "max_iterations"}
	span.SetAttributes(attribute.Bool("success", false))
	e.logger.Debug("target not reached",
		slog.Float64("target", target),
		slog.Float64("score", state.ConsciousnessScore()),
		slog.Float64("coupling", res.Coupling),
	)
	return res
}

// FindEquilibrium ticks until the consciousness score settles within
// tolerance, or maxTime elapses.
func (e *Engine) FindEquilibrium(initial trajectory.State, maxTime, dt, tolerance float64) solver.EquilibriumResult {
	e.begin(initial)
	return solver.Equilibrium(initial, e.Tick, dt, maxTime, tolerance)
}

// Navigate returns the straight-line path from start toward target.
func (e *Engine) Navigate(start, target sentropy.Coord, stepSize float64, maxSteps int) []sentropy.Coord {
	return sentropy.Navigate(start, target, stepSize, maxSteps)
}

// Steer moves the coordinate of state one step of at most stepSize toward
// target and records the move in its history.
func (e *Engine) Steer(state trajectory.State, target sentropy.Coord, stepSize float64) trajectory.State {
	next := solver.Target(state.Coordinate, target, stepSize)
	return e.commit("steer", state, state.TransitionTo(next), trajectory.Input{}, &next)
}

// ApplyPerturbation evolves one step under coupling K·(1 + concentration·aggregation)
// and folds the resulting R into state. The stored coupling is left as is.
func (e *Engine) ApplyPerturbation(state trajectory.State, concentration, aggregation, dt float64) trajectory.State {
	e.pop = e.pop.EvolvePerturbed(concentration, aggregation, dt)
	next := state.WithCoherence(e.pop.Coherence())
	return e.commit("perturb", state, next, trajectory.Input{}, nil)
}

// CompleteCoordinate runs the constraint solver from the coordinate of state.
// On success the solution becomes the new coordinate; otherwise state is
// returned unchanged alongside the solver result.
func (e *Engine) CompleteCoordinate(state trajectory.State, constraints []solver.Constraint) (trajectory.State, solver.CompletionResult) {
	res := solver.Complete(state.Coordinate, constraints, e.cfg.Solver)
	e.metrics.ObserveSolver(res.Iterations)
	if !res.Success {
		e.logger.Debug("completion did not converge",
			slog.Int("iterations", res.Iterations),
			slog.Float64("violation", res.Violations[len(res.Violations)-1]),
		)
		return state, res
	}
	final := res.Final
	return e.commit("complete", state, state.TransitionTo(final), trajectory.Input{}, &final), res
}

// #endregion steering

// #region regime
// Regime derives a regime state from state and the current population, and
// classifies it with the configured thresholds.
//
// The flow index is LowFlow·Kc/K, so coupling at the critical value sits on
// the low-flow boundary and weaker coupling reads as faster flow.
func (e *Engine) Regime(state trajectory.State) (regime.State, regime.Regime) {
	r, psi := e.pop.OrderParameter()
	freqs := e.pop.Frequencies()

	flow := math.Inf(1)
	if k := e.pop.Coupling(); k > 0 {
		flow = e.cfg.Regime.LowFlow * e.pop.CriticalCoupling() / k
	}
	var meanFreq float64
	for _, w := range freqs {
		meanFreq += w
	}
	meanFreq /= float64(len(freqs)) * 2 * math.Pi

	rs := regime.State{
		PrimaryLevel:   state.PerceptionLevel,
		SecondaryLevel: state.ThoughtLevel,
		FlowIndex:      flow,
		Phase:          psi,
		Frequency:      meanFreq,
		Coherence:      r,
		Depth:          state.Coordinate.Magnitude() / math.Sqrt(3),
		Variance:       oscillator.Variance(freqs) / (4 * math.Pi * math.Pi),
	}
	return rs, regime.ClassifyWith(rs, e.cfg.Regime)
}

// #endregion regime
