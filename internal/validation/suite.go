package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/catnav/internal/config"
	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/telemetry"
)

// AggregateFile is the name of the suite-wide report inside the output dir.
const AggregateFile = "complete_validation_results.json"

// #region suite
// Suite runs a set of validators and writes their reports.
type Suite struct {
	cfg     config.Validation
	logger  *slog.Logger
	metrics *telemetry.Metrics
	kinds   []Kind
}

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithLogger sets the suite logger.
func WithLogger(l *slog.Logger) SuiteOption {
	return func(s *Suite) { s.logger = l }
}

// WithMetrics records validator durations and claim counts on m.
func WithMetrics(m *telemetry.Metrics) SuiteOption {
	return func(s *Suite) { s.metrics = m }
}

// WithKinds replaces the validator set, mostly for tests.
func WithKinds(kinds ...Kind) SuiteOption {
	return func(s *Suite) { s.kinds = kinds }
}

// NewSuite builds a suite over every validator not named in cfg.Skip.
func NewSuite(cfg config.Validation, opts ...SuiteOption) *Suite {
	s := &Suite{cfg: cfg, kinds: All()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Run executes every selected validator. A validator that returns an error
// or panics is recorded as an error outcome; the rest still run. Only
// cancellation of ctx aborts the suite.
func (s *Suite) Run(ctx context.Context) (Report, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "Suite.Run")
	defer span.End()

	start := time.Now()
	kinds := s.selected()
	outcomes := make([]Outcome, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Parallel {
		g.SetLimit(runtime.GOMAXPROCS(0))
	} else {
		g.SetLimit(1)
	}
	for i, k := range kinds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.runOne(gctx, k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{
		Metadata: Metadata{
			Suite:            SuiteName,
			Version:          SuiteVersion,
			Timestamp:        time.Now().Format(timestampLayout),
			TotalTimeSeconds: time.Since(start).Seconds(),
		},
		Results: make(map[string]Outcome, len(kinds)),
	}
	for i, k := range kinds {
		report.Results[k.String()] = outcomes[i]
	}

	validated, total := report.Claims()
	span.SetAttributes(
		attribute.Int("validators", len(kinds)),
		attribute.Int("claims_validated", validated),
		attribute.Int("claims_total", total),
	)
	s.logger.Info("validation finished",
		slog.Int("validators", len(kinds)),
		slog.Int("validated", validated),
		slog.Int("total", total),
		slog.String("status", string(report.Status())),
	)
	return report, nil
}

func (s *Suite) selected() []Kind {
	var out []Kind
	for _, k := range s.kinds {
		if slices.Contains(s.cfg.Skip, k.String()) {
			s.logger.Info("validator skipped", slog.String("validator", k.String()))
			continue
		}
		out = append(out, k)
	}
	return out
}

func (s *Suite) runOne(ctx context.Context, k Kind) (out Outcome) {
	ctx, span := telemetry.Tracer().Start(ctx, "Validator.Run", trace.WithAttributes(
		attribute.String("validator", k.String()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Sprintf("panic: %v", r)}
		}
		if out.Err != "" {
			span.SetStatus(codes.Error, out.Err)
			s.logger.Error("validator failed", slog.String("validator", k.String()), slog.String("err", out.Err))
		}
		s.metrics.ObserveValidator(k.String(), time.Since(start).Seconds(), out.Result.Passed(), out.Result.Total()-out.Result.Passed())
	}()

	s.logger.Debug("validator started", slog.String("validator", k.String()))
	res, err := k.Run(ctx, s.cfg)
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	span.SetAttributes(attribute.Float64("success_rate", res.SuccessRate()))
	s.logger.Info("validator finished",
		slog.String("validator", k.String()),
		slog.Int("passed", res.Passed()),
		slog.Int("total", res.Total()),
	)
	return Outcome{Result: res}
}

// #endregion suite

// #region persistence
// Save writes <dir>/<name>/<name>_results.json for every successful
// validator and the aggregate report to <dir>/complete_validation_results.json.
func Save(dir string, r Report) error {
	for name, o := range r.Results {
		if o.Err != "" {
			continue
		}
		sub := filepath.Join(dir, name)
		if err := writeJSON(filepath.Join(sub, name+"_results.json"), o.Result); err != nil {
			return err
		}
	}
	return writeJSON(filepath.Join(dir, AggregateFile), r)
}

// LoadReport reads an aggregate report written by Save.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return r, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// #endregion persistence
