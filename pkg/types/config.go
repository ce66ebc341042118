// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// InputConfig holds settings for input enumeration.
type InputConfig struct {
	// Dir is the directory scanned for client update files.
	Dir string `json:"dir" yaml:"dir"`

	// Pattern is a case-insensitive regular expression matched against
	// file names (default "^client_update.*\.json$").
	Pattern string `json:"pattern" yaml:"pattern"`

	// Exclude is a case-insensitive regular expression for names that match
	// Pattern but must be skipped (default "\.enc\.json$").
	Exclude string `json:"exclude" yaml:"exclude"`
}

// ExtractionConfig holds settings for the per-file extraction stage.
type ExtractionConfig struct {
	// ForcePath, when set, bypasses the candidate scan and resolves this
	// path expression in every file (e.g. "$.payload.update<b64>").
	ForcePath string `json:"force_path,omitempty" yaml:"force_path,omitempty"`

	// Workers bounds the number of files extracted concurrently (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// AggregationConfig holds settings for the aggregation stage.
type AggregationConfig struct {
	// OnMismatch selects the length-mismatch policy: strict or pad.
	OnMismatch MismatchPolicy `json:"on_mismatch" yaml:"on_mismatch"`
}

// OutputFormat selects the audit list serialization.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// OutputConfig holds settings for the output writer.
type OutputConfig struct {
	// Dir is the directory receiving normalized_inputs, scores, and the
	// aggregated model. It is created if missing.
	Dir string `json:"dir" yaml:"dir"`

	// Format adds a YAML copy of the audit list when set to yaml. The JSON
	// files are always written.
	Format OutputFormat `json:"format" yaml:"format"`
}

// LedgerConfig holds settings for the run ledger.
type LedgerConfig struct {
	// Path is the SQLite database file. An empty path disables the ledger.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// MaxResults is the default number of runs listed by history (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Enabled reports whether runs should be recorded.
func (c LedgerConfig) Enabled() bool {
	return c.Path != ""
}

// PipelineConfig groups all stage configurations for a normalize run.
type PipelineConfig struct {
	Inputs      InputConfig       `json:"inputs" yaml:"inputs"`
	Extraction  ExtractionConfig  `json:"extraction" yaml:"extraction"`
	Aggregation AggregationConfig `json:"aggregation" yaml:"aggregation"`
	Output      OutputConfig      `json:"output" yaml:"output"`
	Ledger      LedgerConfig      `json:"ledger" yaml:"ledger"`
}
