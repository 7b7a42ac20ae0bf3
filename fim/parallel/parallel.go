// Package parallel partitions index ranges across a bounded conc worker pool.
// Work functions own a disjoint [lo, hi) range and must write only to state
// private to that range, so no locking is required when merging.
package parallel

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// minChunk keeps tiny ranges from being split across goroutines.
const minChunk = 64

// Range is a half-open index interval. Index is the position of the range in
// the slice returned by Split, usable as a slot for per-worker results.
type Range struct {
	Index  int
	Lo, Hi int
}

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return max(runtime.NumCPU(), 1)
}

// Split divides [0, n) into at most workers contiguous ranges of near-equal size.
func Split(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	workers = max(workers, 1)
	chunks := min(workers, max(n/minChunk, 1))
	size := (n + chunks - 1) / chunks

	out := make([]Range, 0, chunks)
	for lo := 0; lo < n; lo += size {
		out = append(out, Range{Index: len(out), Lo: lo, Hi: min(lo+size, n)})
	}
	return out
}

// ForEach runs fn once per range of Split(n, workers). With a single range fn
// runs on the calling goroutine. The first error cancels the remaining work.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, r Range) error) error {
	ranges := Split(n, workers)
	if len(ranges) == 0 {
		return ctx.Err()
	}
	if len(ranges) == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx, ranges[0])
	}

	p := pool.New().
		WithMaxGoroutines(len(ranges)).
		WithContext(ctx).
		WithCancelOnError()
	for _, r := range ranges {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, r)
		})
	}
	return p.Wait()
}
