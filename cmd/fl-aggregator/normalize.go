// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/fl-aggregator/internal/aggregate"
	"github.com/pdiddy/fl-aggregator/internal/extract"
	"github.com/pdiddy/fl-aggregator/internal/inputs"
	"github.com/pdiddy/fl-aggregator/internal/ledger"
	"github.com/pdiddy/fl-aggregator/internal/output"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Extract a vector from every client update and average them",
	Long: `Normalize lists client_update*.json files in the input directory (skipping
*.enc.json), recovers one numeric vector per file, and averages the vectors
elementwise.

Without --force-path every file is scanned for candidate vectors and the
selector picks one by well-known field names, falling back to the longest.
With --force-path the given expression is resolved in every file instead,
for example $.payload.update<b64>.

Per-file status goes to stderr; a JSON summary goes to stdout. Outputs are
normalized_inputs.json, scores.json, and aggregated_model.json in --out-dir.
Under --on-mismatch strict, vectors of different length fail the run with
exit code 2; pad right-fills shorter vectors with zeros.`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	f := normalizeCmd.Flags()
	f.String("in-dir", ".", "directory containing client update files")
	f.String("out-dir", "", "output directory (default: --in-dir)")
	f.String("on-mismatch", string(types.PolicyStrict), "length mismatch policy: strict or pad")
	f.String("force-path", "", "path expression resolved in every file instead of scanning")
	f.Int("workers", extract.DefaultWorkers, "number of files extracted concurrently")
	f.String("format", string(types.FormatJSON), "audit format: json, or yaml to add a normalized_inputs.yaml copy")
	f.String("pattern", inputs.DefaultPattern, "input file name pattern (case-insensitive regexp)")
	f.String("exclude", inputs.DefaultExclude, "file name pattern to skip (case-insensitive regexp)")

	for key, name := range map[string]string{
		"inputs.dir":              "in-dir",
		"inputs.pattern":          "pattern",
		"inputs.exclude":          "exclude",
		"output.dir":              "out-dir",
		"output.format":           "format",
		"aggregation.on_mismatch": "on-mismatch",
		"extraction.force_path":   "force-path",
		"extraction.workers":      "workers",
	} {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}

	rootCmd.AddCommand(normalizeCmd)
}

// pipelineConfig assembles the stage configuration from viper.
func pipelineConfig() (types.PipelineConfig, error) {
	policy, err := types.ParsePolicy(viper.GetString("aggregation.on_mismatch"))
	if err != nil {
		return types.PipelineConfig{}, err
	}

	inDir := viper.GetString("inputs.dir")
	outDir := viper.GetString("output.dir")
	if outDir == "" {
		outDir = inDir
	}

	return types.PipelineConfig{
		Inputs: types.InputConfig{
			Dir:     inDir,
			Pattern: viper.GetString("inputs.pattern"),
			Exclude: viper.GetString("inputs.exclude"),
		},
		Extraction: types.ExtractionConfig{
			ForcePath: viper.GetString("extraction.force_path"),
			Workers:   viper.GetInt("extraction.workers"),
		},
		Aggregation: types.AggregationConfig{OnMismatch: policy},
		Output: types.OutputConfig{
			Dir:    outDir,
			Format: types.OutputFormat(strings.ToLower(viper.GetString("output.format"))),
		},
		Ledger: ledgerConfig(),
	}, nil
}

func ledgerConfig() types.LedgerConfig {
	return types.LedgerConfig{
		Path:       viper.GetString("ledger.path"),
		MaxResults: viper.GetInt("ledger.max_results"),
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ins, err := inputs.Load(cfg.Inputs)
	if err != nil {
		return err
	}

	w, err := output.NewWriter(cfg.Output)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	run := ledger.NewRun(cfg.Inputs.Dir, time.Now())
	ex := extract.New(cfg.Extraction.ForcePath, logger.Named("extract"))

	batch, err := extract.Batch(ctx, ex, ins, cfg.Extraction.Workers, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("extracting vectors: %w", err)
	}
	run.Files = batch.Results

	if err := w.WriteAudit(batch.Results); err != nil {
		return err
	}

	policy := cfg.Aggregation.OnMismatch
	agg, aggErr := aggregate.Aggregate(batch.Results, policy)
	if aggErr != nil {
		run.Status = types.RunLengthMismatch
		run.Summary = aggregate.Summarize(batch.Results, policy, cfg.Extraction.ForcePath, nil)
		if err := recordRun(ctx, cfg.Ledger, run); err != nil {
			logger.Warn("run not recorded", zap.Error(err))
		}
		if errors.Is(aggErr, aggregate.ErrLengthMismatch) {
			return &exitError{code: exitMismatch, err: aggErr}
		}
		return aggErr
	}

	run.Summary = aggregate.Summarize(batch.Results, policy, cfg.Extraction.ForcePath, &agg)
	if agg.IsEmpty() {
		run.Status = types.RunEmpty
		if err := w.WriteEmpty(run.Summary.TotalFiles); err != nil {
			return err
		}
	} else {
		run.Status = types.RunDone
		run.Aggregate = agg.Aggregate
		if err := w.WriteScores(run.Summary); err != nil {
			return err
		}
		if err := w.WriteModel(agg); err != nil {
			return err
		}
	}

	if err := recordRun(ctx, cfg.Ledger, run); err != nil {
		return err
	}

	report := output.NewReport(w, cfg.Inputs.Dir, run.Summary)
	if cfg.Ledger.Enabled() {
		report.RunID = run.ID
	}
	return report.Encode(cmd.OutOrStdout())
}

// recordRun appends run to the ledger when one is configured.
func recordRun(ctx context.Context, cfg types.LedgerConfig, run types.Run) error {
	if !cfg.Enabled() {
		return nil
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	logger.Debug("run recorded",
		zap.String("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.Int("files", len(run.Files)))
	return nil
}
