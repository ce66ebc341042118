// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus records how a normalize run ended.
type RunStatus string

const (
	RunDone           RunStatus = "done"
	RunEmpty          RunStatus = "empty"
	RunLengthMismatch RunStatus = "length-mismatch"
)

// Summary is the batch-level record written to scores.json and the ledger.
type Summary struct {
	TotalFiles int            `json:"totalFiles" yaml:"total_files"`
	OK         int            `json:"ok" yaml:"ok"`
	MaxLen     int            `json:"maxLen" yaml:"max_len"`
	OnMismatch MismatchPolicy `json:"onMismatch" yaml:"on_mismatch"`
	ForcePath  *string        `json:"forcePath" yaml:"force_path"`

	// Fingerprint is the xxhash64 of the aggregate vector in hex, empty when
	// no aggregate was produced.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// Run is one recorded normalize invocation.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	InDir     string    `json:"in_dir" yaml:"in_dir"`
	Status    RunStatus `json:"status" yaml:"status"`
	Summary   Summary   `json:"summary" yaml:"summary"`
	Aggregate []float64 `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`

	// Files is populated only when a run is loaded with its audit rows.
	Files []ExtractionResult `json:"files,omitempty" yaml:"files,omitempty"`
}
