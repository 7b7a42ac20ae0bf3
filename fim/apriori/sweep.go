package apriori

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"
)

// SweepOptions controls a Sweep beyond the per-miner Options.
type SweepOptions struct {
	// RunContext derives the context of a single run, e.g. to give every
	// threshold its own deadline. nil runs everything under the sweep context.
	RunContext func(context.Context) (context.Context, context.CancelFunc)
	// OnResult is called after each run in order. A non-nil error stops the sweep.
	OnResult func(*Result) error
}

// Sweep runs one independent Miner per support percentage over the same store,
// in the given order. base supplies every option except the percentage. All
// percentages are validated before the first run starts. A truncated run stops
// the sweep only when ctx itself is done.
func Sweep(ctx context.Context, st *store.Store, percentages []float64, base Options, so SweepOptions) ([]*Result, error) {
	miners := make([]*Miner, len(percentages))
	for i, pct := range percentages {
		opts := base
		opts.SupportPercentage = pct
		m, err := New(st, opts)
		if err != nil {
			return nil, fmt.Errorf("sweep level %v: %w", pct, err)
		}
		miners[i] = m
	}

	results := make([]*Result, 0, len(miners))
	for _, m := range miners {
		res, err := runOne(ctx, m, so.RunContext)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if so.OnResult != nil {
			if err := so.OnResult(res); err != nil {
				return results, err
			}
		}
		if res.Truncated && ctx.Err() != nil {
			break
		}
	}
	return results, nil
}

func runOne(ctx context.Context, m *Miner, derive func(context.Context) (context.Context, context.CancelFunc)) (*Result, error) {
	if derive == nil {
		return m.Run(ctx)
	}
	runCtx, cancel := derive(ctx)
	defer cancel()
	return m.Run(runCtx)
}
