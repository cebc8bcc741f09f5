package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/catnav/internal/engine"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/telemetry"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region simulate
var (
	simDuration    float64
	simDt          float64
	simDream       bool
	simDB          string
	simRunID       string
	simMetricsAddr string
	simTarget      []float64
	simStep        float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one engine trajectory",
	Long: `Ticks a fresh engine from the origin for --duration seconds.

With --db every step passes the transition gate and is written to the lineage
store with its provenance row. With --metrics-addr the prometheus collectors
are served on /metrics while the run lasts. --target steers the coordinate one
--step per tick toward the given point after the run.

Examples:
  catnav simulate --duration 5 --dt 0.01
  catnav simulate --db catnav.db --run-id demo
  catnav simulate --dream --metrics-addr :9090
  catnav simulate --target 0.8,0.8,0.8 --step 0.05`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Float64Var(&simDuration, "duration", 1, "simulated seconds")
	simulateCmd.Flags().Float64Var(&simDt, "dt", 0.01, "integration step")
	simulateCmd.Flags().BoolVar(&simDream, "dream", false, "start with perception gated off")
	simulateCmd.Flags().StringVar(&simDB, "db", "", "lineage database (default from config)")
	simulateCmd.Flags().StringVar(&simRunID, "run-id", "", "run identifier (generated when empty)")
	simulateCmd.Flags().StringVar(&simMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	simulateCmd.Flags().Float64SliceVar(&simTarget, "target", nil, "steer toward sk,st,se after the run")
	simulateCmd.Flags().Float64Var(&simStep, "step", 0.05, "steering step size")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbPath := cfg.Store.Path
	if simDB != "" {
		dbPath = simDB
	}
	addr := cfg.Metrics.Addr
	if simMetricsAddr != "" {
		addr = simMetricsAddr
	}

	var target *sentropy.Coord
	if len(simTarget) > 0 {
		t, err := sentropy.FromArray(simTarget)
		if err != nil {
			return fmt.Errorf("--target: %w", err)
		}
		target = &t
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	opts := []engine.Option{engine.WithLogger(logger), engine.WithMetrics(metrics)}

	if dbPath != "" {
		store, err := trajectory.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		opts = append(opts, engine.WithStore(store, simRunID))
	}

	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", slog.String("addr", addr), slog.Any("err", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", slog.String("addr", addr))
	}

	e, err := engine.New(cfg.Engine, opts...)
	if err != nil {
		return err
	}

	initial := trajectory.Initial(sentropy.Origin())
	run := e.Run
	if simDream {
		run = e.Dream
	}
	res, err := run(ctx, initial, simDuration, simDt)
	if err != nil {
		return err
	}

	final, ok := res.Final()
	if !ok {
		final = initial
	}
	if target != nil {
		for i := 0; i < 10000 && final.Coordinate.Distance(*target) > 1e-9; i++ {
			next := e.Steer(final, *target, simStep)
			if next.Coordinate == final.Coordinate {
				break
			}
			final = next
		}
		if err := e.Err(); err != nil {
			return err
		}
	}

	rs, regime := e.Regime(final)
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, styles.Title.Render("SIMULATION"))
	fmt.Fprintf(w, "  run id        %s\n", displayRunID(res.RunID))
	fmt.Fprintf(w, "  ticks         %d\n", len(res.States))
	fmt.Fprintf(w, "  coherence R   %.4f\n", e.Coherence())
	fmt.Fprintf(w, "  coupling K    %.4f (Kc %.4f)\n", e.Population().Coupling(), e.Population().CriticalCoupling())
	fmt.Fprintf(w, "  coordinate    %s\n", final.Coordinate)
	fmt.Fprintf(w, "  perception    %.4f\n", final.PerceptionLevel)
	fmt.Fprintf(w, "  thought       %.4f\n", final.ThoughtLevel)
	fmt.Fprintf(w, "  consciousness %.6f\n", final.ConsciousnessScore())
	fmt.Fprintf(w, "  regime        %s (flow %.3g, depth %.3f)\n", regime, rs.FlowIndex, rs.Depth)
	return nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler(reg))
	return mux
}

func displayRunID(id string) string {
	if id == "" {
		return styles.Muted.Render("(not persisted)")
	}
	return id
}

// #endregion simulate
