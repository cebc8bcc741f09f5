package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/replay"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region replay
var (
	replayFixture string
	replayDB      string
	replayRunID   string
	replayExport  string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-run logged steps through the gate and eval pipeline",
	Long: `Replays a fixture (--fixture) or a persisted run (--db, --run-id) offline
and compares every replayed action with the expected one. Exits 1 when any
step diverges.

With --export the run is written out as a fixture instead of replayed.

Examples:
  catnav replay --fixture internal/replay/testdata/basic_run.json
  catnav replay --db catnav.db --run-id demo
  catnav replay --db catnav.db --run-id demo --export demo.json`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayFixture, "fixture", "", "fixture JSON to replay")
	replayCmd.Flags().StringVar(&replayDB, "db", "", "lineage database to replay from")
	replayCmd.Flags().StringVar(&replayRunID, "run-id", "", "run to replay (default: the only run in the database)")
	replayCmd.Flags().StringVar(&replayExport, "export", "", "write the run as a fixture to this path")
	replayCmd.MarkFlagsMutuallyExclusive("fixture", "db")
	replayCmd.MarkFlagsOneRequired("fixture", "db")
	replayCmd.MarkFlagsMutuallyExclusive("fixture", "export")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	var (
		f   *replay.Fixture
		err error
	)
	if replayFixture != "" {
		f, err = replay.LoadFixture(replayFixture)
	} else {
		f, err = fixtureFromDB(replayDB, replayRunID)
	}
	if err != nil {
		return err
	}

	if replayExport != "" {
		if err := replay.WriteFixture(replayExport, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d steps to %s\n", len(f.Steps), replayExport)
		return nil
	}

	start := f.Start.ToState()
	results := replay.Replay(start, f.ToSteps(), f.Config.ToReplayConfig())

	expected := make([]string, len(f.ExpectedResults))
	for i, e := range f.ExpectedResults {
		expected[i] = e.Action
	}
	if diverge := printComparison(cmd.OutOrStdout(), results, expected); diverge > 0 {
		return &exitError{code: 1, msg: fmt.Sprintf("%d steps diverge", diverge)}
	}
	s := replay.Summarize(results, start)
	logger.Debug("replay finished",
		slog.Int("commits", s.Commits),
		slog.Int("gate_rejects", s.GateRejects),
		slog.Int("eval_rollbacks", s.EvalRollbacks),
		slog.Int("no_ops", s.NoOps),
	)
	return nil
}

// #endregion replay

// #region db-extract
func fixtureFromDB(path, runID string) (*replay.Fixture, error) {
	store, err := trajectory.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if runID == "" {
		runs, err := store.Runs()
		if err != nil {
			return nil, err
		}
		if len(runs) != 1 {
			return nil, fmt.Errorf("database holds %d runs, pass --run-id", len(runs))
		}
		runID = runs[0]
	}

	head, err := store.GetCurrent(runID)
	if err != nil {
		return nil, err
	}
	chain, err := store.Lineage(head.VersionID)
	if err != nil {
		return nil, err
	}

	entries, err := logging.Entries(store.DB(), runID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no provenance entries for run %s", runID)
	}
	records := make([]logging.GateRecord, 0, len(entries))
	for _, e := range entries {
		var rec logging.GateRecord
		if err := json.Unmarshal([]byte(e.SignalsJSON), &rec); err != nil {
			return nil, fmt.Errorf("parse signals of %s: %w", e.VersionID, err)
		}
		records = append(records, rec)
	}

	cfgReplay := replay.Config{Gate: records[0].Thresholds, Eval: cfg.Engine.Eval}
	desc := fmt.Sprintf("run %s exported from %s", runID, path)
	return replay.FromGateRecords(desc, chain[0].State, cfgReplay, records), nil
}

// #endregion db-extract

// #region output
// printComparison writes the expected/replayed table and returns the number
// of diverging steps.
func printComparison(w io.Writer, results []replay.Result, expected []string) int {
	fmt.Fprintf(w, "%-14s| %-15s| %-15s| %s\n", "Step", "Expected", "Replayed", "Match")
	fmt.Fprintf(w, "%-14s+%-16s+%-16s+%s\n", "--------------", "----------------", "----------------", "------")

	total := min(len(results), len(expected))
	matches := 0
	for i := 0; i < total; i++ {
		exp, got := expected[i], results[i].Action
		match := styles.Error.Render("DIFF")
		if exp == got {
			match = styles.Success.Render("OK")
			matches++
		}
		fmt.Fprintf(w, "%-14s| %-15s| %-15s| %s\n", results[i].StepID, exp, got, match)
	}
	diverge := total - matches + abs(len(results)-len(expected))
	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge\n", total, matches, diverge)
	return diverge
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// #endregion output
