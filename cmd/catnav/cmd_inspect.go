package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/catnav/internal/logging"
	"github.com/danielpatrickdp/catnav/internal/sentropy"
	"github.com/danielpatrickdp/catnav/internal/trajectory"
)

// #region inspect
var (
	inspectDB      string
	inspectRunID   string
	inspectLast    int
	inspectVersion string
	inspectJSON    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show persisted runs, versions and gate decisions",
	Long: `Without --run-id, lists the runs in the database. With --run-id, lists the
most recent versions of that run together with the provenance decisions.
--version shows one version and the gate records logged against it.

Examples:
  catnav inspect --db catnav.db
  catnav inspect --db catnav.db --run-id demo --last 10
  catnav inspect --db catnav.db --version 1b4e28ba --json`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDB, "db", "", "lineage database (default from config)")
	inspectCmd.Flags().StringVar(&inspectRunID, "run-id", "", "run to list")
	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "show N most recent versions")
	inspectCmd.Flags().StringVar(&inspectVersion, "version", "", "show a single version")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output JSON instead of a table")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	path := cfg.Store.Path
	if inspectDB != "" {
		path = inspectDB
	}
	if path == "" {
		return fmt.Errorf("no database: pass --db or set CATNAV_DB")
	}
	store, err := trajectory.NewStore(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	switch {
	case inspectVersion != "":
		return inspectDetail(w, store, inspectVersion)
	case inspectRunID != "":
		return inspectRun(w, store, inspectRunID, inspectLast)
	default:
		return inspectRuns(w, store)
	}
}

// #endregion inspect

// #region runs
type runRow struct {
	RunID     string `json:"run_id"`
	HeadStep  int    `json:"head_step"`
	HeadID    string `json:"head_version"`
	Decisions int    `json:"decisions"`
}

func inspectRuns(w io.Writer, store *trajectory.Store) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}
	rows := make([]runRow, 0, len(runs))
	for _, id := range runs {
		head, err := store.GetCurrent(id)
		if err != nil {
			return err
		}
		entries, err := logging.Entries(store.DB(), id)
		if err != nil {
			return err
		}
		rows = append(rows, runRow{RunID: id, HeadStep: head.Step, HeadID: head.VersionID, Decisions: len(entries)})
	}
	if inspectJSON {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("no runs found"))
		return nil
	}
	fmt.Fprintf(w, "%-38s  %6s  %-12s  %s\n", "Run", "Step", "Head", "Decisions")
	for _, r := range rows {
		fmt.Fprintf(w, "%-38s  %6d  %-12s  %d\n", r.RunID, r.HeadStep, shortID(r.HeadID), r.Decisions)
	}
	return nil
}

// #endregion runs

// #region versions
type versionRow struct {
	VersionID string         `json:"version_id"`
	Step      int            `json:"step"`
	Coord     sentropy.Coord `json:"coordinate"`
	Coherence float64        `json:"coherence"`
	Score     float64        `json:"consciousness"`
	Decisions []string       `json:"decisions"`
	CreatedAt string         `json:"created_at"`
}

func inspectRun(w io.Writer, store *trajectory.Store, runID string, last int) error {
	versions, err := store.ListVersions(runID, last)
	if err != nil {
		return err
	}
	entries, err := logging.Entries(store.DB(), runID)
	if err != nil {
		return err
	}
	// refusals are logged against the head that stayed in place
	byVersion := map[string][]string{}
	for _, e := range entries {
		byVersion[e.VersionID] = append(byVersion[e.VersionID], e.Decision)
	}

	rows := make([]versionRow, len(versions))
	for i, v := range versions {
		rows[len(versions)-1-i] = versionRow{
			VersionID: v.VersionID,
			Step:      v.Step,
			Coord:     v.State.Coordinate,
			Coherence: v.State.Coherence,
			Score:     v.State.ConsciousnessScore(),
			Decisions: byVersion[v.VersionID],
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if inspectJSON {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("no versions found"))
		return nil
	}
	fmt.Fprintf(w, "%-12s  %5s  %-22s  %8s  %10s  %s\n", "Version", "Step", "Coordinate", "R", "C", "Decisions")
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s  %5d  %-22s  %8.4f  %10.6f  %v\n",
			shortID(r.VersionID), r.Step, r.Coord, r.Coherence, r.Score, r.Decisions)
	}
	return nil
}

// #endregion versions

// #region detail
type detailOutput struct {
	VersionID string               `json:"version_id"`
	ParentID  string               `json:"parent_id"`
	RunID     string               `json:"run_id"`
	Step      int                  `json:"step"`
	CreatedAt string               `json:"created_at"`
	State     trajectory.State     `json:"state"`
	Records   []logging.GateRecord `json:"gate_records,omitempty"`
}

func inspectDetail(w io.Writer, store *trajectory.Store, versionID string) error {
	v, err := store.GetVersion(versionID)
	if err != nil {
		return err
	}
	entries, err := logging.Entries(store.DB(), v.RunID)
	if err != nil {
		return err
	}
	out := detailOutput{
		VersionID: v.VersionID,
		ParentID:  v.ParentID,
		RunID:     v.RunID,
		Step:      v.Step,
		CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		State:     v.State,
	}
	for _, e := range entries {
		if e.VersionID != versionID || e.SignalsJSON == "" {
			continue
		}
		var rec logging.GateRecord
		if err := json.Unmarshal([]byte(e.SignalsJSON), &rec); err == nil {
			out.Records = append(out.Records, rec)
		}
	}
	if inspectJSON {
		return printJSON(w, out)
	}

	s := v.State
	fmt.Fprintf(w, "Version:       %s\n", out.VersionID)
	fmt.Fprintf(w, "Parent:        %s\n", out.ParentID)
	fmt.Fprintf(w, "Run:           %s (step %d)\n", out.RunID, out.Step)
	fmt.Fprintf(w, "Created:       %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Coordinate:    %s\n", s.Coordinate)
	fmt.Fprintf(w, "Coherence:     %.4f (frequency %.4f)\n", s.Coherence, s.FrequencyCoherence)
	fmt.Fprintf(w, "Levels:        perception %.4f, thought %.4f\n", s.PerceptionLevel, s.ThoughtLevel)
	fmt.Fprintf(w, "Consciousness: %.6f\n", s.ConsciousnessScore())
	fmt.Fprintf(w, "History:       %d coordinates\n", len(s.History))
	for _, rec := range out.Records {
		fmt.Fprintf(w, "\n%s %s-%d\n", styles.Header.Render("Gate record"), rec.Trigger, rec.Step)
		fmt.Fprintf(w, "  action      %s (soft score %.3f)\n", rec.GateAction, rec.GateSoftScore)
		if rec.GateReason != "" {
			fmt.Fprintf(w, "  reason      %s\n", rec.GateReason)
		}
		fmt.Fprintf(w, "  distance    %.4f\n", rec.Metrics.Distance)
		fmt.Fprintf(w, "  coupling    %.4f\n", rec.Metrics.Coupling)
		if rec.EvalPassed != nil {
			fmt.Fprintf(w, "  eval        %s %v\n", passFail(*rec.EvalPassed), rec.EvalFailed)
		}
	}
	return nil
}

// #endregion detail

// #region helpers
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion helpers
