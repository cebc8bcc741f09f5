package trajectory

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS trajectory_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	state_json    TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	metrics_json  TEXT,
	FOREIGN KEY (parent_id) REFERENCES trajectory_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_trajectory_versions_run ON trajectory_versions(run_id, step);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	signals_json  TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES trajectory_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_state (
	run_id        TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES trajectory_versions(version_id)
);
`

// #endregion schema

// #region record
// Record is one persisted version of a run's State. Versions form a tree
// through ParentID; each run has one active version.
type Record struct {
	VersionID   string
	ParentID    string
	RunID       string
	Step        int
	State       State
	CreatedAt   time.Time
	MetricsJSON string
}

// NewRecord builds the child version of parent holding s.
func NewRecord(parent Record, s State) Record {
	return Record{
		VersionID: uuid.New().String(),
		ParentID:  parent.VersionID,
		RunID:     parent.RunID,
		Step:      parent.Step + 1,
		State:     s,
		CreatedAt: time.Now().UTC(),
	}
}

// #endregion record

// #region store-struct
// Store persists trajectory versions in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// single connection; concurrent engines serialize on the pool
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region create-initial
// CreateInitial stores start as step 0 of a new run and makes it active.
// An empty runID gets a fresh uuid.
func (s *Store) CreateInitial(runID string, start State) (Record, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	rec := Record{
		VersionID: uuid.New().String(),
		RunID:     runID,
		State:     start,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertVersion(tx, rec); err != nil {
		return Record{}, err
	}
	if err := setActive(tx, rec.RunID, rec.VersionID); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion create-initial

// #region commit
// Commit inserts rec and moves its run's active pointer to it atomically.
func (s *Store) Commit(rec Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertVersion(tx, rec); err != nil {
		return err
	}
	if err := setActive(tx, rec.RunID, rec.VersionID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertVersion(tx *sql.Tx, rec Record) error {
	stateJSON, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	var parentPtr interface{}
	if rec.ParentID != "" {
		parentPtr = rec.ParentID
	}
	var metricsPtr interface{}
	if rec.MetricsJSON != "" {
		metricsPtr = rec.MetricsJSON
	}

	_, err = tx.Exec(
		`INSERT INTO trajectory_versions (version_id, parent_id, run_id, step, state_json, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, parentPtr, rec.RunID, rec.Step, string(stateJSON),
		rec.CreatedAt.Format(time.RFC3339Nano), metricsPtr,
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func setActive(tx *sql.Tx, runID, versionID string) error {
	_, err := tx.Exec(
		`INSERT INTO active_state (run_id, version_id) VALUES (?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET version_id = excluded.version_id`,
		runID, versionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}

// #endregion commit

// #region get
// GetCurrent reads the active version of runID.
func (s *Store) GetCurrent(runID string) (Record, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_state WHERE run_id = ?`, runID).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get active %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get active %s: %w", runID, err)
	}
	return s.GetVersion(versionID)
}

const selectVersion = `SELECT version_id, parent_id, run_id, step, state_json, created_at, metrics_json
	FROM trajectory_versions`

// GetVersion retrieves a specific version by ID.
func (s *Store) GetVersion(id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(selectVersion+` WHERE version_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var parentID sql.NullString
	var stateJSON string
	var createdStr string
	var metricsJSON sql.NullString

	if err := row.Scan(&rec.VersionID, &parentID, &rec.RunID, &rec.Step, &stateJSON, &createdStr, &metricsJSON); err != nil {
		return Record{}, err
	}
	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	if err := json.Unmarshal([]byte(stateJSON), &rec.State); err != nil {
		return Record{}, fmt.Errorf("unmarshal state: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if metricsJSON.Valid {
		rec.MetricsJSON = metricsJSON.String
	}
	return rec, nil
}

// #endregion get

// #region rollback
// Rollback points the active pointer of the version's run back at versionID.
// Later versions stay in the table; the next Commit branches from here.
func (s *Store) Rollback(versionID string) error {
	var runID string
	err := s.db.QueryRow(
		`SELECT run_id FROM trajectory_versions WHERE version_id = ?`, versionID,
	).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("version %s: %w", versionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}

	_, err = s.db.Exec(`UPDATE active_state SET version_id = ? WHERE run_id = ?`, versionID, runID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list
// ListVersions returns up to limit versions of runID, newest step first.
func (s *Store) ListVersions(runID string, limit int) ([]Record, error) {
	rows, err := s.db.Query(
		selectVersion+` WHERE run_id = ? ORDER BY step DESC, created_at DESC LIMIT ?`, runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Lineage walks parent links from versionID back to the run's root,
// returning versions root first.
func (s *Store) Lineage(versionID string) ([]Record, error) {
	var chain []Record
	for id := versionID; id != ""; {
		rec, err := s.GetVersion(id)
		if err != nil {
			return nil, fmt.Errorf("lineage: %w", err)
		}
		chain = append(chain, rec)
		id = rec.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Runs lists every run with an active version, ordered by run ID.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM active_state ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// #endregion list
