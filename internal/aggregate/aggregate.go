// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate merges per-file vectors into one unweighted mean under
// a length-mismatch policy.
// Implements: docs/ARCHITECTURE § Aggregation.
package aggregate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// ErrLengthMismatch is the batch-fatal outcome of the strict policy.
var ErrLengthMismatch = errors.New("vector length mismatch")

// MismatchError describes the first ok file whose length differs from the
// first ok file's. It matches ErrLengthMismatch with errors.Is.
type MismatchError struct {
	FileID   string
	Expected int
	Actual   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: %s has length %d, expected %d; use --on-mismatch pad",
		ErrLengthMismatch, e.FileID, e.Actual, e.Expected)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// OK returns the results that recovered a vector, in input order.
func OK(results []types.ExtractionResult) []types.ExtractionResult {
	var oks []types.ExtractionResult
	for _, r := range results {
		if r.OK {
			oks = append(oks, r)
		}
	}
	return oks
}

// MaxLen returns the longest vector length among ok results, zero if none.
func MaxLen(results []types.ExtractionResult) int {
	maxLen := 0
	for _, r := range results {
		if r.OK {
			maxLen = max(maxLen, len(r.Vector))
		}
	}
	return maxLen
}

// Aggregate averages the vectors of the ok results elementwise. With no ok
// results it returns the empty result and no error. Under PolicyStrict
// every vector must have the first vector's length; under PolicyPad shorter
// vectors count as zero past their end. Stored vectors are not modified.
func Aggregate(results []types.ExtractionResult, policy types.MismatchPolicy) (types.AggregationResult, error) {
	oks := OK(results)
	if len(oks) == 0 {
		return types.AggregationResult{Aggregate: []float64{}}, nil
	}

	switch policy {
	case types.PolicyStrict:
		l0 := len(oks[0].Vector)
		for _, r := range oks[1:] {
			if len(r.Vector) != l0 {
				return types.AggregationResult{}, &MismatchError{FileID: r.FileID, Expected: l0, Actual: len(r.Vector)}
			}
		}
	case types.PolicyPad:
	default:
		return types.AggregationResult{}, fmt.Errorf("%w %q", types.ErrUnknownPolicy, policy)
	}

	maxLen := MaxLen(oks)
	sum := make([]float64, maxLen)
	for _, r := range oks {
		for i, v := range r.Vector {
			sum[i] += v
		}
	}
	n := float64(len(oks))
	for i := range sum {
		if math.IsInf(sum[i], 0) {
			sum[i] = scaledMean(oks, i, n)
			continue
		}
		sum[i] /= n
	}
	return types.AggregationResult{Aggregate: sum, ContributingCount: len(oks)}, nil
}

// scaledMean averages element i by summing each value divided by n, for
// elements whose plain sum overflows.
func scaledMean(oks []types.ExtractionResult, i int, n float64) float64 {
	var mean float64
	for _, r := range oks {
		if i < len(r.Vector) {
			mean += r.Vector[i] / n
		}
	}
	return mean
}

// Summarize builds the batch summary for a finished aggregation. agg may
// be nil when aggregation failed.
func Summarize(results []types.ExtractionResult, policy types.MismatchPolicy, forcePath string, agg *types.AggregationResult) types.Summary {
	s := types.Summary{
		TotalFiles: len(results),
		OK:         len(OK(results)),
		MaxLen:     MaxLen(results),
		OnMismatch: policy,
	}
	if forcePath != "" {
		s.ForcePath = &forcePath
	}
	if agg != nil && !agg.IsEmpty() {
		s.Fingerprint = Fingerprint(agg.Aggregate)
	}
	return s
}

// Fingerprint returns the xxhash64, in hex, of the vector's little-endian
// float64 encoding.
func Fingerprint(vec []float64) string {
	d := xxhash.New()
	var buf [8]byte
	for _, f := range vec {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		d.Write(buf[:])
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
