package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/catnav/internal/config"
	"github.com/danielpatrickdp/catnav/internal/engine"
	"github.com/danielpatrickdp/catnav/internal/oscillator"
	"github.com/danielpatrickdp/catnav/internal/partition"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/solver"
	"github.com/danielpatrickdp/catnav/internal/ternary"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

const (
	randomTrials   = 100
	bijectionLimit = 100
	ternaryLimit   = 1000
)

// Run executes the validator with the suite settings in cfg. Every validator
// draws from its own PCG stream seeded by cfg.Seed, so results do not depend
// on which other validators run or in which order.
func (k Kind) Run(ctx context.Context, cfg config.Validation) (Result, error) {
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(k)+1))
	res := newResult(k.String(), time.Now())
	var err error
	switch k {
	case Partition:
		err = runPartition(ctx, cfg, rng, &res)
	case Kuramoto:
		err = runKuramoto(ctx, cfg, rng, &res)
	case Consciousness:
		err = runConsciousness(ctx, cfg, rng, &res)
	case Ternary:
		err = runTernary(ctx, cfg, rng, &res)
	case Completion:
		err = runCompletion(ctx, &res)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", k, err)
	}
	return res, nil
}

// #region partition
func runPartition(ctx context.Context, cfg config.Validation, rng *rand.Rand, res *Result) error {
	nMax := cfg.PartitionNMax
	res.Parameters["n_max"] = nMax

	// C(n) = 2n² against the enumeration
	var levels []map[string]any
	capOK := true
	for n := 1; n <= nMax; n++ {
		c, err := partition.Capacity(n)
		if err != nil {
			return err
		}
		all, err := partition.AllAtLevel(n)
		if err != nil {
			return err
		}
		ok := c == 2*n*n && len(all) == c
		capOK = capOK && ok
		levels = append(levels, map[string]any{"n": n, "capacity": c, "enumerated": len(all), "correct": ok})
	}
	res.claim("capacity_formula_correct", map[string]any{"levels": levels, "all_correct": capOK}, capOK)
	if err := ctx.Err(); err != nil {
		return err
	}

	total := partition.TotalCapacity(nMax)
	coords := partition.IterAll(nMax)
	var sum int64
	for n := 1; n <= nMax; n++ {
		sum += int64(2 * n * n)
	}
	totalOK := total == sum && int64(len(coords)) == total
	res.claim("total_capacity_correct", map[string]any{
		"total_capacity": total,
		"summed":         sum,
		"enumerated":     len(coords),
	}, totalOK)

	limit := min(total, bijectionLimit)
	bijective := true
	var firstFailure int64 = -1
	for id := int64(0); id < limit; id++ {
		c, err := partition.Partition(id, nMax)
		if err != nil || c.LinearIndex() != id || coords[id] != c {
			bijective = false
			firstFailure = id
			break
		}
	}
	res.claim("linear_index_bijective", map[string]any{
		"checked":       limit,
		"first_failure": firstFailure,
	}, bijective)
	if err := ctx.Err(); err != nil {
		return err
	}

	symmetric := true
	for i := 0; i < randomTrials; i++ {
		a := coords[rng.IntN(len(coords))]
		b := coords[rng.IntN(len(coords))]
		if a.Distance(b) != b.Distance(a) || a.Distance(a) != 0 {
			symmetric = false
			break
		}
	}
	res.claim("distance_symmetric", map[string]any{"n_tests": randomTrials, "symmetric": symmetric}, symmetric)
	return nil
}

// #endregion partition

// #region kuramoto
func runKuramoto(ctx context.Context, cfg config.Validation, rng *rand.Rand, res *Result) error {
	const (
		meanFreq = 10.0
		freqStd  = 1.0
		dt       = 0.01
	)
	n := cfg.KuramotoN
	res.Parameters["n_oscillators"] = n
	res.Parameters["mean_frequency"] = meanFreq
	res.Parameters["frequency_std"] = freqStd
	res.Parameters["dt"] = dt

	bounded := true
	for i := 0; i < randomTrials; i++ {
		pop, err := oscillator.Random(n, meanFreq, freqStd, 0.5, rng)
		if err != nil {
			return err
		}
		if r := pop.Coherence(); r < 0 || r > 1 {
			bounded = false
			break
		}
	}
	res.claim("phase_coherence_bounded", map[string]any{"n_tests": randomTrials, "all_in_bounds": bounded}, bounded)
	if err := ctx.Err(); err != nil {
		return err
	}

	// Both populations are drawn up front so the two simulations can run
	// concurrently without sharing the generator.
	sample, err := oscillator.Random(n, meanFreq, freqStd, 0, rng)
	if err != nil {
		return err
	}
	kc := sample.CriticalCoupling()
	below, err := oscillator.Random(n, meanFreq, freqStd, kc*0.5, rng)
	if err != nil {
		return err
	}
	above, err := oscillator.Random(n, meanFreq, freqStd, kc*2, rng)
	if err != nil {
		return err
	}

	var rBelow, rAbove float64
	g, gctx := errgroup.WithContext(ctx)
	if !cfg.Parallel {
		g.SetLimit(1)
	}
	g.Go(func() error {
		rBelow = finalR(oscillator.Simulate(below, 10, dt))
		return gctx.Err()
	})
	g.Go(func() error {
		rAbove = finalR(oscillator.Simulate(above, 10, dt))
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return err
	}
	desync, sync := rBelow < 0.5, rAbove > 0.5
	res.claim("sync_above_critical", map[string]any{
		"critical_coupling":     kc,
		"r_below_critical":      rBelow,
		"r_above_critical":      rAbove,
		"desync_below_critical": desync,
		"sync_above_critical":   sync,
	}, desync && sync)

	strong, err := oscillator.Random(n, meanFreq, 0.5, 2, rng)
	if err != nil {
		return err
	}
	series := oscillator.Simulate(strong, 20, dt)
	half := len(series.R) / 2
	varFirst, err := stats.PopulationVariance(series.R[:half])
	if err != nil {
		return fmt.Errorf("variance of first half: %w", err)
	}
	varSecond, err := stats.PopulationVariance(series.R[half:])
	if err != nil {
		return fmt.Errorf("variance of second half: %w", err)
	}
	meanR, _ := stats.Mean(series.R)
	converges := varSecond < varFirst || varSecond < 0.01
	res.claim("order_param_converges", map[string]any{
		"variance_first_half":  varFirst,
		"variance_second_half": varSecond,
		"mean_r":               meanR,
		"converges":            converges,
	}, converges)
	return nil
}

func finalR(s oscillator.Series) float64 {
	if len(s.R) == 0 {
		return s.Final.Coherence()
	}
	return s.R[len(s.R)-1]
}

// #endregion kuramoto

// #region consciousness
func runConsciousness(ctx context.Context, cfg config.Validation, rng *rand.Rand, res *Result) error {
	cases := [][5]float64{
		{1, 1, 1, 1, 1},
		{0.5, 0.5, 0.5, 0.5, 0.0625},
		{1, 1, 0.8, 0.9, 0.72},
		{0, 1, 1, 1, 0},
		{1, 0, 1, 1, 0},
	}
	allCorrect := true
	var tests []map[string]any
	for _, c := range cases {
		got := scoreOf(c[0], c[1], c[2], c[3])
		ok := math.Abs(got-c[4]) < 1e-10
		allCorrect = allCorrect && ok
		tests = append(tests, map[string]any{
			"perception":          c[0],
			"thought":             c[1],
			"coherence":           c[2],
			"frequency_coherence": c[3],
			"expected":            c[4],
			"actual":              got,
			"correct":             ok,
		})
	}
	res.claim("formula_correct", map[string]any{"tests": tests, "all_correct": allCorrect}, allCorrect)

	bounded := true
	scores := make([]float64, 0, randomTrials)
	for i := 0; i < randomTrials; i++ {
		c := scoreOf(rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64())
		scores = append(scores, c)
		if c < 0 || c > 1 {
			bounded = false
		}
	}
	meanScore, _ := stats.Mean(scores)
	res.claim("bounds_correct", map[string]any{
		"n_tests":       randomTrials,
		"all_in_bounds": bounded,
		"mean_score":    meanScore,
	}, bounded)

	awake := trajectory.Initial(sentropy.Origin())
	dreaming := awake.EnterDream()
	dreamOK := dreaming.ConsciousnessScore() < 0.01
	res.claim("dream_works", map[string]any{
		"consciousness_before":        awake.ConsciousnessScore(),
		"consciousness_after":         dreaming.ConsciousnessScore(),
		"dream_reduces_consciousness": dreamOK,
	}, dreamOK)

	woken := dreaming.Wake(0.9)
	wakeOK := woken.ConsciousnessScore() > dreaming.ConsciousnessScore()
	res.claim("awake_works", map[string]any{
		"consciousness_dream":          dreaming.ConsciousnessScore(),
		"consciousness_awake":          woken.ConsciousnessScore(),
		"wake_increases_consciousness": wakeOK,
	}, wakeOK)

	// A full engine dream run keeps perception gated off on every tick.
	ecfg := config.DefaultEngine()
	ecfg.Oscillators = cfg.KuramotoN
	ecfg.Seed = cfg.Seed
	e, err := engine.New(ecfg)
	if err != nil {
		return err
	}
	run, err := e.Dream(ctx, awake, 0.5, 0.01)
	if err != nil {
		return err
	}
	peak := 0.0
	for _, s := range run.States {
		peak = max(peak, s.PerceptionLevel)
	}
	runOK := len(run.States) > 0 && peak < 0.01
	res.claim("dream_run_suppresses_perception", map[string]any{
		"ticks":           len(run.States),
		"peak_perception": peak,
	}, runOK)
	return nil
}

func scoreOf(perception, thought, coherence, freqCoherence float64) float64 {
	return trajectory.State{
		PerceptionLevel:    perception,
		ThoughtLevel:       thought,
		Coherence:          coherence,
		FrequencyCoherence: freqCoherence,
	}.ConsciousnessScore()
}

// #endregion consciousness

// #region ternary
func runTernary(ctx context.Context, cfg config.Validation, rng *rand.Rand, res *Result) error {
	depth := cfg.TernaryDepth
	res.Parameters["depth"] = depth

	capOK := ternary.Capacity(0) == 1
	for d := 0; d < depth; d++ {
		capOK = capOK && ternary.Capacity(d+1) == 3*ternary.Capacity(d)
	}
	res.claim("capacity_triples", map[string]any{"max_depth": depth, "capacity": ternary.Capacity(depth)}, capOK)

	limit := min(ternary.Capacity(depth), ternaryLimit)
	bijective := true
	for v := uint64(0); v < limit; v++ {
		a, err := ternary.Encode(v, depth)
		if err != nil || a.Depth() != depth || a.Decode() != v {
			bijective = false
			break
		}
	}
	_, overflow := ternary.Encode(ternary.Capacity(depth), depth)
	rejects := errors.Is(overflow, ternary.ErrCapacityExceeded)
	res.claim("encode_decode_bijective", map[string]any{
		"checked":           limit,
		"rejects_overflow":  rejects,
		"decode_round_trip": bijective,
	}, bijective && rejects)
	if err := ctx.Err(); err != nil {
		return err
	}

	within := true
	worst := 0.0
	for i := 0; i < randomTrials; i++ {
		v := rng.Float64()
		a, err := ternary.EncodeFloat(v, depth)
		if err != nil {
			return err
		}
		diff := math.Abs(a.DecodeFloat() - v)
		worst = max(worst, diff)
		if diff > a.Resolution()/2+1e-12 {
			within = false
		}
	}
	res.claim("float_within_resolution", map[string]any{
		"n_tests":    randomTrials,
		"resolution": math.Pow(3, -float64(depth)),
		"worst":      worst,
	}, within)

	symmetric := true
	for i := 0; i < randomTrials; i++ {
		a, _ := ternary.EncodeFloat(rng.Float64(), depth)
		b, _ := ternary.EncodeFloat(rng.Float64(), depth)
		if a.NavigationDistance(b) != b.NavigationDistance(a) || a.NavigationDistance(a) != 0 {
			symmetric = false
			break
		}
	}
	res.claim("navigation_distance_symmetric", map[string]any{"n_tests": randomTrials, "symmetric": symmetric}, symmetric)
	return nil
}

// #endregion ternary

// #region completion
func runCompletion(ctx context.Context, res *Result) error {
	opts := solver.DefaultOptions()
	res.Parameters["max_iterations"] = opts.MaxIterations
	res.Parameters["tolerance"] = opts.Tolerance
	res.Parameters["learning_rate"] = opts.LearningRate

	start := sentropy.Coord{Sk: 0.1, St: 0.1, Se: 0.1}
	axis := solver.AxisConstraint(solver.AxisSk, 0.5)
	single := solver.Complete(start, []solver.Constraint{axis}, opts)
	singleOK := single.Success && math.Abs(single.Final.Sk-0.5) < 1e-3 && solver.Satisfy(single.Final, axis, 1e-3)
	res.claim("single_axis_converges", completionDetails(single), singleOK)
	if err := ctx.Err(); err != nil {
		return err
	}

	initial := sentropy.Coord{Sk: 0.2, St: 0.3, Se: 0.4}
	rec := solver.RecurrenceConstraint(initial, 0.1)
	back := solver.Complete(sentropy.Coord{Sk: 0.9, St: 0.9, Se: 0.9}, []solver.Constraint{rec}, opts)
	backOK := back.Success && math.Abs(back.Final.Distance(initial)-0.1) < 1e-3
	res.claim("recurrence_converges", completionDetails(back), backOK)

	monotone := true
	for i := 1; i < len(single.Violations); i++ {
		if single.Violations[i] > single.Violations[i-1]+1e-9 {
			monotone = false
			break
		}
	}
	res.claim("violation_decreases", map[string]any{"steps": len(single.Violations)}, monotone)

	stepOK := true
	cur := sentropy.Origin()
	for i := 0; i < 20; i++ {
		next := solver.Target(cur, sentropy.Equilibrium(), 0.1)
		if cur.Distance(next) > 0.1+1e-9 {
			stepOK = false
			break
		}
		cur = next
	}
	res.claim("target_step_bounded", map[string]any{
		"steps":          20,
		"final_distance": cur.Distance(sentropy.Equilibrium()),
	}, stepOK)
	return nil
}

func completionDetails(r solver.CompletionResult) map[string]any {
	last := 0.0
	if len(r.Violations) > 0 {
		last = r.Violations[len(r.Violations)-1]
	}
	return map[string]any{
		"success":         r.Success,
		"iterations":      r.Iterations,
		"final":           r.Final.Array(),
		"final_violation": last,
	}
}

// #endregion completion
