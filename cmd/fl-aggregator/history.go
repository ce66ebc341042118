// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fl-aggregator/internal/ledger"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List normalize runs recorded in the ledger",
	Long: `History reads the SQLite run ledger written by normalize --ledger (or the
ledger.path config key) and lists recent runs, newest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Print one recorded run with its per-file audit rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyFindCmd = &cobra.Command{
	Use:   "find SHA256",
	Short: "List the runs that processed a file with the given content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryFind,
}

func init() {
	historyCmd.PersistentFlags().Bool("json", false, "output as JSON")
	historyCmd.PersistentFlags().Bool("yaml", false, "output as YAML")
	historyCmd.Flags().Int("limit", 0, "maximum number of runs (default: ledger.max_results)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyFindCmd)
	rootCmd.AddCommand(historyCmd)
}

func openLedger() (*ledger.Store, error) {
	cfg := ledgerConfig()
	if !cfg.Enabled() {
		return nil, fmt.Errorf("no ledger configured: set --ledger or FL_AGGREGATOR_LEDGER_PATH")
	}
	return ledger.Open(cfg)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if handled, err := encodeStructured(cmd, out, runs); handled {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-20s  %-15s  %-6s  %-6s  %-6s  %s\n",
		"Run", "Started", "Status", "Files", "OK", "MaxLen", "Policy")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-20s  %-15s  %-6d  %-6d  %-6d  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Status,
			r.Summary.TotalFiles, r.Summary.OK, r.Summary.MaxLen, r.Summary.OnMismatch)
	}
	fmt.Fprintf(out, "\n%d runs\n", len(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if handled, err := encodeStructured(cmd, out, run); handled {
		return err
	}
	printRun(out, run)
	return nil
}

func runHistoryFind(cmd *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	hits, err := store.FindBySHA(cmd.Context(), strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if handled, err := encodeStructured(cmd, out, hits); handled {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(out, "No runs processed this content.")
		return nil
	}
	for _, h := range hits {
		status := "ok"
		if !h.OK {
			status = "failed"
		}
		fmt.Fprintf(out, "%-36s  %-20s  %-6s  %s\n",
			h.RunID, h.StartedAt.Format(time.RFC3339), status, h.File)
	}
	return nil
}

// encodeStructured writes v as JSON or YAML when the matching flag is set.
func encodeStructured(cmd *cobra.Command, out io.Writer, v any) (bool, error) {
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = out.Write(data)
		return true, err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	}
	return false, nil
}

func printRun(out io.Writer, r *types.Run) {
	fmt.Fprintf(out, "Run:         %s\n", r.ID)
	fmt.Fprintf(out, "Started:     %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Input dir:   %s\n", r.InDir)
	fmt.Fprintf(out, "Status:      %s\n", r.Status)
	fmt.Fprintf(out, "Policy:      %s\n", r.Summary.OnMismatch)
	if r.Summary.ForcePath != nil {
		fmt.Fprintf(out, "Force path:  %s\n", *r.Summary.ForcePath)
	}
	fmt.Fprintf(out, "Files:       %d (%d ok, max length %d)\n",
		r.Summary.TotalFiles, r.Summary.OK, r.Summary.MaxLen)
	if r.Summary.Fingerprint != "" {
		fmt.Fprintf(out, "Fingerprint: %s\n", r.Summary.Fingerprint)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-30s  %-6s  %-7s  %-40s  %s\n", "File", "OK", "Length", "Path", "Error")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, f := range r.Files {
		path, fault := "", ""
		if f.Path != nil {
			path = *f.Path
		}
		if f.Error != nil {
			fault = *f.Error
		}
		fmt.Fprintf(out, "%-30s  %-6t  %-7d  %-40s  %s\n", f.FileID, f.OK, f.Length, path, fault)
	}
}
