// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inputs enumerates client update files in a directory.
// Implements: docs/ARCHITECTURE § Inputs and Outputs.
package inputs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

const (
	// DefaultPattern matches plaintext client update files.
	DefaultPattern = `^client_update.*\.json$`

	// DefaultExclude skips separately encrypted artifacts.
	DefaultExclude = `\.enc\.json$`
)

// ErrNoInputs means the directory held no matching files.
var ErrNoInputs = errors.New("no input files found")

// Matcher selects file names by an include and an exclude pattern, both
// case-insensitive.
type Matcher struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewMatcher compiles the patterns from cfg, using the defaults for empty
// fields.
func NewMatcher(cfg types.InputConfig) (*Matcher, error) {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	exclude := cfg.Exclude
	if exclude == "" {
		exclude = DefaultExclude
	}

	inc, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling input pattern %q: %w", pattern, err)
	}
	exc, err := regexp.Compile("(?i)" + exclude)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude pattern %q: %w", exclude, err)
	}
	return &Matcher{include: inc, exclude: exc}, nil
}

// Match reports whether name should be processed.
func (m *Matcher) Match(name string) bool {
	return m.include.MatchString(name) && !m.exclude.MatchString(name)
}

// List returns the matching regular files in dir, sorted by name. It
// returns ErrNoInputs when nothing matches.
func List(cfg types.InputConfig) ([]string, error) {
	m, err := NewMatcher(cfg)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", cfg.Dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !m.Match(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputs, cfg.Dir)
	}
	return names, nil
}

// Load lists and reads the matching files. Input IDs are the bare file
// names.
func Load(cfg types.InputConfig) ([]types.Input, error) {
	names, err := List(cfg)
	if err != nil {
		return nil, err
	}

	inputs := make([]types.Input, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(cfg.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		inputs = append(inputs, types.Input{ID: name, Data: data})
	}
	return inputs, nil
}

// ReadFiles reads explicit paths. Input IDs are the paths as given.
func ReadFiles(paths []string) ([]types.Input, error) {
	inputs := make([]types.Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		inputs = append(inputs, types.Input{ID: p, Data: data})
	}
	return inputs, nil
}
