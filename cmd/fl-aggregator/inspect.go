// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fl-aggregator/internal/extract"
	"github.com/pdiddy/fl-aggregator/internal/inputs"
	"github.com/pdiddy/fl-aggregator/internal/jsonvalue"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "List the candidate vectors found in each file",
	Long: `Inspect scans each file the way normalize does and prints every candidate
vector it finds, longest first, marking the one the selector would choose.
Use it to pick a --force-path for an unusual client encoding.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "output candidates as JSON")
	inspectCmd.Flags().Int("preview", 4, "number of leading values shown per candidate")

	rootCmd.AddCommand(inspectCmd)
}

// candidateView is one candidate as shown by inspect.
type candidateView struct {
	Path     string                 `json:"path"`
	Method   types.ExtractionMethod `json:"method"`
	Length   int                    `json:"length"`
	Preview  []float64              `json:"preview"`
	Selected bool                   `json:"selected"`
}

// fileView is the inspect result for one file.
type fileView struct {
	File       string          `json:"file"`
	Error      string          `json:"error,omitempty"`
	Selected   *string         `json:"selected"`
	Candidates []candidateView `json:"candidates"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	preview, _ := cmd.Flags().GetInt("preview")

	ins, err := inputs.ReadFiles(args)
	if err != nil {
		return err
	}

	views := make([]fileView, 0, len(ins))
	for _, in := range ins {
		views = append(views, inspectFile(in, preview))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printFileView(out, v)
	}
	return nil
}

// inspectFile scans one input and orders its candidates longest first,
// keeping scan order among equal lengths.
func inspectFile(in types.Input, preview int) fileView {
	view := fileView{File: in.ID, Candidates: []candidateView{}}

	doc, err := jsonvalue.Parse(in.Data)
	if err != nil {
		view.Error = err.Error()
		return view
	}

	cands := extract.Scan(doc)
	chosen, ok := extract.Select(cands)
	if ok {
		view.Selected = &chosen.Path
	} else {
		view.Error = extract.ErrNoCandidates.Error()
	}

	sorted := make([]types.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Len() > sorted[j].Len()
	})

	for _, c := range sorted {
		n := min(preview, c.Len())
		if n < 0 {
			n = 0
		}
		view.Candidates = append(view.Candidates, candidateView{
			Path:     c.Path,
			Method:   c.Method,
			Length:   c.Len(),
			Preview:  c.Vector[:n],
			Selected: ok && c.Path == chosen.Path,
		})
	}
	return view
}

func printFileView(out io.Writer, v fileView) {
	fmt.Fprintln(out, v.File)
	if v.Error != "" {
		fmt.Fprintf(out, "  error: %s\n", v.Error)
	}
	if len(v.Candidates) == 0 {
		return
	}

	fmt.Fprintf(out, "  %-1s %-50s  %-10s  %-6s  %s\n", "", "Path", "Method", "Length", "Values")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, c := range v.Candidates {
		mark := ""
		if c.Selected {
			mark = "*"
		}
		path := c.Path
		if len(path) > 50 {
			path = path[:47] + "..."
		}
		fmt.Fprintf(out, "  %-1s %-50s  %-10s  %-6d  %s\n",
			mark, path, c.Method, c.Length, formatPreview(c.Preview, c.Length))
	}
}

func formatPreview(vals []float64, total int) string {
	parts := make([]string, len(vals))
	for i, f := range vals {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := "[" + strings.Join(parts, " ")
	if total > len(vals) {
		s += " ..."
	}
	return s + "]"
}
