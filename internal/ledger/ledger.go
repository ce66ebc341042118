// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of normalize runs and the per-file
// audit rows of each run.
// Implements: docs/ARCHITECTURE § Run Ledger.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

const defaultMaxResults = 20

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the ledger database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the ledger at cfg.Path, creating its parent
// directory and the schema if they do not exist.
func Open(cfg types.LedgerConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ledger path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			in_dir TEXT,
			policy TEXT NOT NULL,
			force_path TEXT,
			total_files INTEGER NOT NULL,
			ok_files INTEGER NOT NULL,
			max_len INTEGER NOT NULL,
			status TEXT NOT NULL,
			fingerprint TEXT,
			aggregate TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS run_files (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			file TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			path TEXT,
			method TEXT,
			length INTEGER NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_run_files_sha256 ON run_files(sha256)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRun starts a run record with a fresh ID.
func NewRun(inDir string, startedAt time.Time) types.Run {
	return types.Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UTC(),
		InDir:     inDir,
	}
}

// Record stores run and its files in one transaction.
func (s *Store) Record(ctx context.Context, run types.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var aggregate sql.NullString
	if run.Aggregate != nil {
		data, err := json.Marshal(run.Aggregate)
		if err != nil {
			return fmt.Errorf("marshaling aggregate: %w", err)
		}
		aggregate = sql.NullString{String: string(data), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, in_dir, policy, force_path, total_files, ok_files, max_len, status, fingerprint, aggregate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.InDir,
		string(run.Summary.OnMismatch), nullable(run.Summary.ForcePath),
		run.Summary.TotalFiles, run.Summary.OK, run.Summary.MaxLen,
		string(run.Status), run.Summary.Fingerprint, aggregate,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, position, file, sha256, bytes, path, method, length, ok, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range run.Files {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, f.FileID, f.SHA256, f.Bytes,
			nullable(f.Path), string(f.Method), f.Length, f.OK, nullable(f.Error),
		)
		if err != nil {
			return fmt.Errorf("inserting file %s: %w", f.FileID, err)
		}
	}

	return tx.Commit()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
