// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/json"
	"io"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// Report is the machine-readable run summary printed on stdout.
type Report struct {
	RunID      string               `json:"runId,omitempty"`
	InDir      string               `json:"inDir"`
	OutDir     string               `json:"outDir"`
	Files      int                  `json:"files"`
	OK         int                  `json:"ok"`
	MaxLen     *int                 `json:"maxLen,omitempty"`
	OnMismatch types.MismatchPolicy `json:"onMismatch,omitempty"`
	ForcePath  *string              `json:"forcePath,omitempty"`
	Reason     string               `json:"reason,omitempty"`

	NormalizedPath string `json:"normalizedPath,omitempty"`
	ScoresPath     string `json:"scoresPath,omitempty"`
	AggregatedPath string `json:"aggregatedPath,omitempty"`
}

// EmptyReason explains a report with no ok files.
const EmptyReason = "no extractable vectors"

// NewReport builds the report for a completed run. An empty summary (no ok
// files) produces the short form carrying EmptyReason.
func NewReport(w *Writer, inDir string, s types.Summary) Report {
	r := Report{
		InDir:  inDir,
		OutDir: w.dir,
		Files:  s.TotalFiles,
		OK:     s.OK,
	}
	if s.OK == 0 {
		r.Reason = EmptyReason
		return r
	}
	maxLen := s.MaxLen
	r.MaxLen = &maxLen
	r.OnMismatch = s.OnMismatch
	r.ForcePath = s.ForcePath
	r.NormalizedPath = w.Path(NormalizedFile)
	r.ScoresPath = w.Path(ScoresFile)
	r.AggregatedPath = w.Path(ModelFile)
	return r
}

// Encode writes r as indented JSON.
func (r Report) Encode(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
