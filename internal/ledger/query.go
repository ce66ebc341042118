// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

const runColumns = `id, started_at, in_dir, policy, force_path, total_files, ok_files, max_len, status, fingerprint, aggregate`

type rowScanner interface {
	Scan(dest ...any) error
}

// List returns the most recent runs, newest first, without their files.
// A limit of zero or less uses the configured default.
func (s *Store) List(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get loads one run with its files in input order.
func (s *Store) Get(ctx context.Context, id string) (*types.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file, sha256, bytes, path, method, length, ok, error
		 FROM run_files WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f           types.ExtractionResult
			path, fault sql.NullString
			method      string
		)
		if err := rows.Scan(&f.FileID, &f.SHA256, &f.Bytes, &path, &method, &f.Length, &f.OK, &fault); err != nil {
			return nil, fmt.Errorf("scanning run file: %w", err)
		}
		f.Method = types.ExtractionMethod(method)
		f.Path = fromNullable(path)
		f.Error = fromNullable(fault)
		run.Files = append(run.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// FileHit is one earlier appearance of a file's content.
type FileHit struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	File      string    `json:"file" yaml:"file"`
	OK        bool      `json:"ok" yaml:"ok"`
}

// FindBySHA lists the runs that processed content with the given SHA-256,
// newest first.
func (s *Store) FindBySHA(ctx context.Context, sha string) ([]FileHit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, f.file, f.ok
		 FROM run_files f JOIN runs r ON r.id = f.run_id
		 WHERE f.sha256 = ?
		 ORDER BY r.started_at DESC, f.position`, sha)
	if err != nil {
		return nil, fmt.Errorf("querying by sha256: %w", err)
	}
	defer rows.Close()

	var hits []FileHit
	for rows.Next() {
		var (
			h       FileHit
			started string
		)
		if err := rows.Scan(&h.RunID, &started, &h.File, &h.OK); err != nil {
			return nil, fmt.Errorf("scanning file hit: %w", err)
		}
		h.StartedAt, _ = time.Parse(timeLayout, started)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func scanRun(row rowScanner) (types.Run, error) {
	var (
		run                           types.Run
		started, policy, status       string
		inDir, forcePath, fingerprint sql.NullString
		aggregate                     sql.NullString
	)
	err := row.Scan(&run.ID, &started, &inDir, &policy, &forcePath,
		&run.Summary.TotalFiles, &run.Summary.OK, &run.Summary.MaxLen,
		&status, &fingerprint, &aggregate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Run{}, err
		}
		return types.Run{}, fmt.Errorf("scanning run: %w", err)
	}

	run.StartedAt, err = time.Parse(timeLayout, started)
	if err != nil {
		return types.Run{}, fmt.Errorf("parsing start time of run %s: %w", run.ID, err)
	}
	run.InDir = inDir.String
	run.Status = types.RunStatus(status)
	run.Summary.OnMismatch = types.MismatchPolicy(policy)
	run.Summary.ForcePath = fromNullable(forcePath)
	run.Summary.Fingerprint = fingerprint.String
	if aggregate.Valid {
		if err := json.Unmarshal([]byte(aggregate.String), &run.Aggregate); err != nil {
			return types.Run{}, fmt.Errorf("decoding aggregate of run %s: %w", run.ID, err)
		}
	}
	return run, nil
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
