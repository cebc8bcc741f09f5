package engine

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/catnav/internal/telemetry"
)

// RunBatch runs each entry of runs on its own Engine, concurrently, and
// returns the results in input order. The first failure cancels the rest.
//
// opts are applied to every engine, so they must be safe to share.
// WithLogger and WithMetrics are. WithStore is when given an empty run ID,
// which gives each engine its own run. WithRandSource is not.
func RunBatch(ctx context.Context, runs []BatchRun, opts ...Option) ([]RunResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "engine.RunBatch",
		trace.WithAttributes(attribute.Int("runs", len(runs))))
	defer span.End()

	results := make([]RunResult, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, run := range runs {
		g.Go(func() error {
			e, err := New(run.Config, opts...)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res, err := e.Run(ctx, run.Initial, run.Duration, run.Dt)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return results, nil
}
