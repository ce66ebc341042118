// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers one numeric vector per client update file.
// In scan mode every plausible encoding in the document is collected and
// one candidate is selected; in forced-path mode a caller-supplied path is
// resolved and coerced instead. Failures are recorded on the per-file
// result and never abort a batch.
// Implements: docs/ARCHITECTURE § Extraction.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/fl-aggregator/internal/coerce"
	"github.com/pdiddy/fl-aggregator/internal/jsonpath"
	"github.com/pdiddy/fl-aggregator/internal/jsonvalue"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

var (
	// ErrNoCandidates means the scan found no numeric vector anywhere.
	ErrNoCandidates = errors.New("no numeric arrays found")

	// ErrPathNotResolved means the force path did not lead to a value.
	ErrPathNotResolved = errors.New("force-path did not resolve")

	// ErrNotVector means the force path led to a value that is not a
	// numeric vector.
	ErrNotVector = errors.New("force-path resolved but not a numeric vector")
)

// Extractor turns raw inputs into ExtractionResults. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	forcePath *jsonpath.Path
	pathErr   error
	log       *zap.Logger
}

// New builds an Extractor. A non-empty forcePath switches every file to
// forced-path mode; a malformed forcePath makes every file fail with the
// syntax error. A nil logger discards diagnostics.
func New(forcePath string, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Extractor{log: log}
	if forcePath != "" {
		p, err := jsonpath.Compile(forcePath)
		if err != nil {
			e.pathErr = err
		} else {
			e.forcePath = &p
		}
	}
	return e
}

// Forced reports whether the extractor runs in forced-path mode.
func (e *Extractor) Forced() bool {
	return e.forcePath != nil || e.pathErr != nil
}

// Extract parses in.Data and recovers its vector. The content hash and size
// are recorded whether or not extraction succeeds.
func (e *Extractor) Extract(in types.Input) types.ExtractionResult {
	sum := sha256.Sum256(in.Data)
	sha := hex.EncodeToString(sum[:])
	size := len(in.Data)

	doc, err := jsonvalue.Parse(in.Data)
	if err != nil {
		return types.Failed(in.ID, sha, size, err)
	}

	var c types.Candidate
	if e.Forced() {
		c, err = e.resolve(doc)
	} else {
		c, err = e.scan(in.ID, doc)
	}
	if err != nil {
		return types.Failed(in.ID, sha, size, err)
	}
	return types.Succeeded(in.ID, sha, size, c.Path, c.Method, c.Vector)
}

func (e *Extractor) resolve(doc jsonvalue.Value) (types.Candidate, error) {
	if e.pathErr != nil {
		return types.Candidate{}, e.pathErr
	}
	val, ok := e.forcePath.Resolve(doc)
	if !ok {
		return types.Candidate{}, fmt.Errorf("%w: %s", ErrPathNotResolved, e.forcePath)
	}
	vec, method, ok := coerce.Vector(val)
	if !ok {
		return types.Candidate{}, fmt.Errorf("%w: %s", ErrNotVector, e.forcePath)
	}
	return types.Candidate{Path: e.forcePath.String(), Method: method, Vector: vec}, nil
}

func (e *Extractor) scan(id string, doc jsonvalue.Value) (types.Candidate, error) {
	cands := Scan(doc)
	chosen, ok := Select(cands)
	if !ok {
		e.log.Debug("no candidates", zap.String("file", id))
		return types.Candidate{}, ErrNoCandidates
	}
	e.log.Debug("candidate selected",
		zap.String("file", id),
		zap.Int("candidates", len(cands)),
		zap.String("path", chosen.Path),
		zap.String("method", string(chosen.Method)),
		zap.Int("length", chosen.Len()))
	return chosen, nil
}
