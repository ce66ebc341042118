// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fl-aggregator/internal/aggregate"
	"github.com/pdiddy/fl-aggregator/internal/coerce"
	"github.com/pdiddy/fl-aggregator/internal/inputs"
	"github.com/pdiddy/fl-aggregator/internal/ledger"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// --- test helpers ---

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// --- exit codes ---

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitMismatch, exitCode(&exitError{code: exitMismatch, err: aggregate.ErrLengthMismatch}))

	wrapped := &exitError{code: exitMismatch, err: aggregate.ErrLengthMismatch}
	assert.ErrorIs(t, wrapped, aggregate.ErrLengthMismatch)
}

// --- normalize ---

func TestNormalize_AveragesMixedEncodings(t *testing.T) {
	dir := t.TempDir()
	f64 := base64.StdEncoding.EncodeToString(coerce.EncodeFloat64LE([]float64{5, 6, 7}))
	writeFile(t, dir, "client_update_a.json", `{"weights":[1,2,3]}`)
	writeFile(t, dir, "client_update_b.json", `{"payload":{"update":"`+f64+`"}}`)
	writeFile(t, dir, "client_update_c.enc.json", `{"weights":[100,100,100]}`)
	writeFile(t, dir, "notes.json", `{"weights":[100,100,100]}`)

	stdout, stderr, err := execute(t, "normalize", "--in-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Batch summary: 2 ok, 0 failed (total: 2)")

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.EqualValues(t, 2, report["files"])
	assert.EqualValues(t, 2, report["ok"])
	assert.EqualValues(t, 3, report["maxLen"])
	assert.Equal(t, "strict", report["onMismatch"])
	assert.NotContains(t, report, "runId")

	model := readJSON(t, filepath.Join(dir, "aggregated_model.json"))
	assert.Equal(t, []any{3.0, 4.0, 5.0}, model["weights"])
	assert.EqualValues(t, 2, model["count"])

	scores := readJSON(t, filepath.Join(dir, "scores.json"))
	assert.EqualValues(t, 2, scores["totalFiles"])
	assert.Nil(t, scores["forcePath"])
	assert.NotEmpty(t, scores["fingerprint"])
}

func TestNormalize_StrictMismatchExitsTwo(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "client_update_a.json", `{"weights":[1,2]}`)
	writeFile(t, in, "client_update_b.json", `{"weights":[1,2,3]}`)

	_, _, err := execute(t, "normalize", "--in-dir", in, "--out-dir", out)
	require.Error(t, err)
	assert.Equal(t, exitMismatch, exitCode(err))
	assert.ErrorIs(t, err, aggregate.ErrLengthMismatch)

	assert.FileExists(t, filepath.Join(out, "normalized_inputs.json"))
	assert.NoFileExists(t, filepath.Join(out, "scores.json"))
	assert.NoFileExists(t, filepath.Join(out, "aggregated_model.json"))
}

func TestNormalize_PadPolicy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "client_update_a.json", `{"weights":[1,2]}`)
	writeFile(t, dir, "client_update_b.json", `{"weights":"3,4,5,6"}`)

	_, _, err := execute(t, "normalize", "--in-dir", dir, "--on-mismatch", "PAD")
	require.NoError(t, err)

	model := readJSON(t, filepath.Join(dir, "aggregated_model.json"))
	assert.Equal(t, []any{2.0, 3.0, 2.5, 3.0}, model["weights"])
}

func TestNormalize_LargeWeights(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "client_update_a.json", `{"weights":[1.7e308,1]}`)
	writeFile(t, dir, "client_update_b.json", `{"weights":[1.7e308,3]}`)

	_, _, err := execute(t, "normalize", "--in-dir", dir)
	require.NoError(t, err)

	model := readJSON(t, filepath.Join(dir, "aggregated_model.json"))
	assert.Equal(t, []any{1.7e308, 2.0}, model["weights"])
}

func TestNormalize_NoContributorsSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "client_update_a.json", `{"name":"x"}`)
	writeFile(t, dir, "client_update_b.json", `not json`)

	stdout, stderr, err := execute(t, "normalize", "--in-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "0 ok, 2 failed")

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.EqualValues(t, 0, report["ok"])
	assert.Equal(t, "no extractable vectors", report["reason"])

	model := readJSON(t, filepath.Join(dir, "aggregated_model.json"))
	assert.Equal(t, "no numeric weights found after deep normalization", model["note"])
}

func TestNormalize_NoInputs(t *testing.T) {
	_, _, err := execute(t, "normalize", "--in-dir", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, inputs.ErrNoInputs)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestNormalize_UnknownPolicy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "client_update_a.json", `{"weights":[1]}`)

	_, _, err := execute(t, "normalize", "--in-dir", dir, "--on-mismatch", "truncate")
	assert.ErrorIs(t, err, types.ErrUnknownPolicy)
	assert.NoFileExists(t, filepath.Join(dir, "normalized_inputs.json"))
}

func TestNormalize_ForcePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "client_update_a.json", `{"weights":[9,9],"other":{"v":[1,2]}}`)

	_, _, err := execute(t, "normalize", "--in-dir", dir, "--force-path", "$.other.v")
	require.NoError(t, err)

	model := readJSON(t, filepath.Join(dir, "aggregated_model.json"))
	assert.Equal(t, []any{1.0, 2.0}, model["weights"])
	scores := readJSON(t, filepath.Join(dir, "scores.json"))
	assert.Equal(t, "$.other.v", scores["forcePath"])
}

// --- ledger ---

func TestNormalize_RecordsLedger(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	writeFile(t, dir, "client_update_a.json", `{"weights":[1,2]}`)

	stdout, _, err := execute(t, "normalize", "--in-dir", dir, "--ledger", dbPath)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	runID, _ := report["runId"].(string)
	require.NotEmpty(t, runID)

	store, err := ledger.Open(types.LedgerConfig{Path: dbPath})
	require.NoError(t, err)
	defer store.Close()

	run, err := store.Get(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, types.RunDone, run.Status)
	assert.Equal(t, []float64{1, 2}, run.Aggregate)
	require.Len(t, run.Files, 1)
	assert.Equal(t, "client_update_a.json", run.Files[0].FileID)

	stdout, _, err = execute(t, "history", "--ledger", dbPath, "--json")
	require.NoError(t, err)
	var runs []types.Run
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)

	stdout, _, err = execute(t, "history", "show", runID, "--ledger", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "client_update_a.json")
	assert.Contains(t, stdout, "Status:      done")
}

func TestNormalize_RecordsMismatchRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	writeFile(t, dir, "client_update_a.json", `{"weights":[1,2]}`)
	writeFile(t, dir, "client_update_b.json", `{"weights":[1]}`)

	_, _, err := execute(t, "normalize", "--in-dir", dir, "--ledger", dbPath)
	require.Equal(t, exitMismatch, exitCode(err))

	store, err := ledger.Open(types.LedgerConfig{Path: dbPath})
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.RunLengthMismatch, runs[0].Status)
	assert.Nil(t, runs[0].Aggregate)
}

func TestHistory_RequiresLedger(t *testing.T) {
	_, _, err := execute(t, "history")
	assert.Error(t, err)
}

// --- inspect ---

func TestInspect_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "update.json")
	writeFile(t, dir, "update.json", `{"a":[1,2,3,4,5],"weights":[1,2]}`)

	stdout, _, err := execute(t, "inspect", "--json", path)
	require.NoError(t, err)

	var views []fileView
	require.NoError(t, json.Unmarshal([]byte(stdout), &views))
	require.Len(t, views, 1)
	v := views[0]
	require.NotNil(t, v.Selected)
	assert.Equal(t, "$.weights", *v.Selected)
	require.Len(t, v.Candidates, 2)
	assert.Equal(t, "$.a", v.Candidates[0].Path, "longest first")
	assert.Equal(t, []float64{1, 2, 3, 4}, v.Candidates[0].Preview)
	assert.True(t, v.Candidates[1].Selected)
}

func TestInspect_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "update.json")
	writeFile(t, dir, "update.json", `{"name":"x"}`)

	stdout, _, err := execute(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "error: no numeric arrays found")
}

func TestFormatPreview(t *testing.T) {
	assert.Equal(t, "[1 2.5]", formatPreview([]float64{1, 2.5}, 2))
	assert.Equal(t, "[1 2 ...]", formatPreview([]float64{1, 2}, 5))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fl-aggregator dev\n", stdout)
}
