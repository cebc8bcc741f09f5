package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (version_id, run_id, trigger_type, signals_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		entry.RunID,
		entry.TriggerType,
		nullIfEmpty(entry.SignalsJSON),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// LogGateRecord serializes rec into the entry's signals and writes it.
func LogGateRecord(db *sql.DB, entry ProvenanceEntry, rec GateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal gate record: %w", err)
	}
	entry.SignalsJSON = string(data)
	return LogDecision(db, entry)
}

// #endregion log-decision

// #region read
// Entries returns the provenance rows of runID in insertion order.
func Entries(db *sql.DB, runID string) ([]ProvenanceEntry, error) {
	rows, err := db.Query(
		`SELECT version_id, run_id, trigger_type, signals_json, decision, reason, created_at
		 FROM provenance_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query provenance: %w", err)
	}
	defer rows.Close()

	var out []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var signals, reason sql.NullString
		var created string
		if err := rows.Scan(&e.VersionID, &e.RunID, &e.TriggerType, &signals, &e.Decision, &reason, &created); err != nil {
			return nil, fmt.Errorf("scan provenance: %w", err)
		}
		e.SignalsJSON = signals.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion read

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
