// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Input is one raw artifact handed to the extraction stage.
type Input struct {
	// ID identifies the artifact, normally its file name.
	ID string

	// Data holds the raw bytes as read from disk.
	Data []byte
}

// ExtractionResult is the per-file audit record. It is created once per input
// and never mutated afterwards.
type ExtractionResult struct {
	// FileID is the input identifier (file name).
	FileID string `json:"file" yaml:"file"`

	// SHA256 is the hex-encoded SHA-256 of the raw input bytes.
	SHA256 string `json:"sha256" yaml:"sha256"`

	// Bytes is the raw input size.
	Bytes int `json:"bytes" yaml:"bytes"`

	// Path is the provenance path of the chosen vector, or nil on failure.
	Path *string `json:"path" yaml:"path"`

	// Method is the strategy that produced the chosen vector.
	Method ExtractionMethod `json:"method,omitempty" yaml:"method,omitempty"`

	// Length is len(Vector), zero on failure.
	Length int `json:"length" yaml:"length"`

	// OK reports whether a vector was recovered.
	OK bool `json:"ok" yaml:"ok"`

	// Error holds the failure message, or nil on success.
	Error *string `json:"error" yaml:"error"`

	// Vector is the recovered vector, or nil on failure.
	Vector []float64 `json:"vector" yaml:"vector"`
}

// Succeeded builds an ok ExtractionResult for the given vector.
func Succeeded(fileID, sha string, size int, path string, method ExtractionMethod, vec []float64) ExtractionResult {
	return ExtractionResult{
		FileID: fileID,
		SHA256: sha,
		Bytes:  size,
		Path:   &path,
		Method: method,
		Length: len(vec),
		OK:     true,
		Vector: vec,
	}
}

// Failed builds a failed ExtractionResult carrying err's message.
func Failed(fileID, sha string, size int, err error) ExtractionResult {
	msg := err.Error()
	return ExtractionResult{
		FileID: fileID,
		SHA256: sha,
		Bytes:  size,
		Error:  &msg,
	}
}

// AggregationResult is the unweighted elementwise mean of the contributing
// vectors. A zero ContributingCount with an empty Aggregate is the
// "nothing to aggregate" outcome and is not an error.
type AggregationResult struct {
	Aggregate         []float64 `json:"weights" yaml:"weights"`
	ContributingCount int       `json:"count" yaml:"count"`
}

// IsEmpty reports whether no file contributed to the aggregate.
func (r AggregationResult) IsEmpty() bool {
	return r.ContributingCount == 0
}

// MismatchPolicy selects how aggregation treats vectors of different length.
type MismatchPolicy string

const (
	// PolicyStrict fails the batch when ok vectors disagree in length.
	PolicyStrict MismatchPolicy = "strict"

	// PolicyPad right-pads shorter vectors with zeros to the longest length.
	PolicyPad MismatchPolicy = "pad"
)

// ErrUnknownPolicy is returned by ParsePolicy for values other than strict or pad.
var ErrUnknownPolicy = errors.New("unknown mismatch policy")

// ParsePolicy converts a flag value into a MismatchPolicy. Matching is
// case-insensitive; the empty string selects PolicyStrict.
func ParsePolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyPad:
		return PolicyPad, nil
	}
	return "", fmt.Errorf("%w %q: use strict or pad", ErrUnknownPolicy, s)
}
