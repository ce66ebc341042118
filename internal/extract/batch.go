// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// DefaultWorkers is the concurrency used when a batch is given none.
const DefaultWorkers = 4

// BatchResult holds the per-file audit list of a batch run in input order.
type BatchResult struct {
	Results []types.ExtractionResult
	OK      int
	Failed  int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.OK + r.Failed
}

// HasFailures reports whether any file yielded no vector.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Batch extracts every input with up to workers files in flight, then
// prints one status line per file to w in input order followed by a
// summary. If ctx is cancelled no further files are started and the
// context error is returned.
func Batch(ctx context.Context, e *Extractor, inputs []types.Input, workers int, w io.Writer) (BatchResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]types.ExtractionResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Extract(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	out := BatchResult{Results: results}
	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "ok:      %s (%s, len=%d)\n", r.FileID, *r.Path, r.Length)
			out.OK++
		} else {
			fmt.Fprintf(w, "failed:  %s (%s)\n", r.FileID, *r.Error)
			out.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d ok, %d failed (total: %d)\n", out.OK, out.Failed, out.Total())
	return out, nil
}
