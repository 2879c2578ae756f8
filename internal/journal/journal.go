// Package journal records gate decisions in a SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ludo-technologies/jsgate/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	revision        TEXT NOT NULL,
	mode            TEXT NOT NULL,
	allowed         INTEGER NOT NULL,
	bypassed        INTEGER NOT NULL,
	files_evaluated INTEGER NOT NULL,
	files_denied    INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	version         TEXT
);

CREATE TABLE IF NOT EXISTS run_files (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	path        TEXT NOT NULL,
	mode        TEXT NOT NULL,
	profile     TEXT NOT NULL,
	allowed     INTEGER NOT NULL,
	violations  INTEGER NOT NULL,
	regressions INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id);
`

// Run is one recorded gate decision
type Run struct {
	ID             string    `json:"run_id" yaml:"run_id"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	Revision       string    `json:"revision" yaml:"revision"`
	Mode           string    `json:"mode" yaml:"mode"`
	Allowed        bool      `json:"allowed" yaml:"allowed"`
	Bypassed       bool      `json:"bypassed" yaml:"bypassed"`
	FilesEvaluated int       `json:"files_evaluated" yaml:"files_evaluated"`
	FilesDenied    int       `json:"files_denied" yaml:"files_denied"`
	DurationMs     int64     `json:"duration_ms" yaml:"duration_ms"`
	Version        string    `json:"version,omitempty" yaml:"version,omitempty"`
}

// RunFile is the recorded outcome of one file in a run
type RunFile struct {
	Path        string `json:"path" yaml:"path"`
	Mode        string `json:"mode" yaml:"mode"`
	Profile     string `json:"profile" yaml:"profile"`
	Allowed     bool   `json:"allowed" yaml:"allowed"`
	Violations  int    `json:"violations" yaml:"violations"`
	Regressions int    `json:"regressions" yaml:"regressions"`
}

// Journal stores gate runs in SQLite
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the journal at path. ":memory:" keeps it in memory.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a run and its files, returning the generated run id
func (j *Journal) Record(ctx context.Context, result *domain.GateResult) (string, error) {
	id := uuid.New().String()
	createdAt := j.now().UTC()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, revision, mode, allowed, bypassed, files_evaluated, files_denied, duration_ms, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		createdAt.Format(time.RFC3339Nano),
		result.Revision,
		string(result.Mode),
		result.Allowed,
		result.Bypassed,
		result.Summary.FilesEvaluated,
		result.Summary.FilesDenied,
		result.Duration,
		nullIfEmpty(result.Version),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, f := range result.Files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, path, mode, profile, allowed, violations, regressions)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, f.Path, string(f.Mode), f.Profile, f.Allowed, f.Violations, len(f.Regressions),
		)
		if err != nil {
			return "", fmt.Errorf("insert run file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// Recent lists up to limit runs, newest first. A limit <= 0 lists every run.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, created_at, revision, mode, allowed, bypassed, files_evaluated, files_denied, duration_ms, version
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			createdAt string
			version   sql.NullString
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.Revision, &r.Mode, &r.Allowed, &r.Bypassed,
			&r.FilesEvaluated, &r.FilesDenied, &r.DurationMs, &version); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", r.ID, err)
		}
		r.Version = version.String
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Files lists the files of a run ordered by path
func (j *Journal) Files(ctx context.Context, runID string) ([]RunFile, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT path, mode, profile, allowed, violations, regressions
		 FROM run_files WHERE run_id = ? ORDER BY path`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.Path, &f.Mode, &f.Profile, &f.Allowed, &f.Violations, &f.Regressions); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
