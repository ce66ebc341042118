// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inputs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestMatcher_Defaults(t *testing.T) {
	m, err := NewMatcher(types.InputConfig{})
	require.NoError(t, err)

	tests := map[string]bool{
		"client_update.json":       true,
		"client_update_3.json":     true,
		"CLIENT_UPDATE_A.JSON":     true,
		"client_update_3.enc.json": false,
		"client_update_3.ENC.JSON": false,
		"client_update_3.json.bak": false,
		"other_update.json":        false,
		"normalized_inputs.json":   false,
	}
	for name, want := range tests {
		assert.Equal(t, want, m.Match(name), name)
	}
}

func TestNewMatcher_BadPattern(t *testing.T) {
	_, err := NewMatcher(types.InputConfig{Pattern: "("})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "client_update_b.json", `{"w": [2]}`)
	writeFile(t, dir, "client_update_a.json", `{"w": [1]}`)
	writeFile(t, dir, "client_update_c.enc.json", `{"ciphertext": "x"}`)
	writeFile(t, dir, "scores.json", `{}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "client_update_dir.json"), 0o755))

	got, err := Load(types.InputConfig{Dir: dir})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "client_update_a.json", got[0].ID)
	assert.Equal(t, `{"w": [1]}`, string(got[0].Data))
	assert.Equal(t, "client_update_b.json", got[1].ID)
}

func TestLoad_NoInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "x")

	_, err := Load(types.InputConfig{Dir: dir})
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(types.InputConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoInputs)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.json", `[1]`)

	got, err := ReadFiles([]string{filepath.Join(dir, "x.json")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(dir, "x.json"), got[0].ID)

	_, err = ReadFiles([]string{filepath.Join(dir, "nope.json")})
	assert.Error(t, err)
}
