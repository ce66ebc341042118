// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes the audit list, the batch scores, and the
// aggregated model of a normalize run.
// Implements: docs/ARCHITECTURE § Inputs and Outputs.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

const (
	NormalizedFile     = "normalized_inputs.json"
	NormalizedYAMLFile = "normalized_inputs.yaml"
	ScoresFile         = "scores.json"
	ModelFile          = "aggregated_model.json"
)

// EmptyNote is written as the model when no file contributed a vector.
const EmptyNote = "no numeric weights found after deep normalization"

// Writer writes run artifacts into one directory.
type Writer struct {
	dir    string
	format types.OutputFormat
}

// NewWriter creates cfg.Dir if needed.
func NewWriter(cfg types.OutputConfig) (*Writer, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	format := cfg.Format
	if format == "" {
		format = types.FormatJSON
	}
	if format != types.FormatJSON && format != types.FormatYAML {
		return nil, fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
	return &Writer{dir: cfg.Dir, format: format}, nil
}

// Path returns the location of name inside the output directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteAudit writes the per-file audit list. With the yaml format a YAML
// copy is written next to the JSON file.
func (w *Writer) WriteAudit(results []types.ExtractionResult) error {
	if results == nil {
		results = []types.ExtractionResult{}
	}
	if err := w.writeJSON(NormalizedFile, results); err != nil {
		return err
	}
	if w.format != types.FormatYAML {
		return nil
	}
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(w.Path(NormalizedYAMLFile), data, 0o644)
}

// WriteScores writes the batch summary.
func (w *Writer) WriteScores(s types.Summary) error {
	return w.writeJSON(ScoresFile, s)
}

// WriteModel writes the aggregate vector and its contributor count.
func (w *Writer) WriteModel(agg types.AggregationResult) error {
	return w.writeJSON(ModelFile, agg)
}

// emptyScores is the scores record when nothing was aggregated.
type emptyScores struct {
	TotalFiles int `json:"totalFiles"`
	OK         int `json:"ok"`
}

type emptyModel struct {
	Note string `json:"note"`
}

// WriteEmpty writes the scores and model for a batch in which no file
// produced a vector.
func (w *Writer) WriteEmpty(totalFiles int) error {
	if err := w.writeJSON(ScoresFile, emptyScores{TotalFiles: totalFiles}); err != nil {
		return err
	}
	return w.writeJSON(ModelFile, emptyModel{Note: EmptyNote})
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.WriteFile(w.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
