package counting

import (
	"context"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"
)

// naiveBudget is the largest transactions x candidates product Auto still scans.
const naiveBudget = 1 << 14

// denseThreshold is the density above which posting lists stop paying off for
// short candidates and a scan is preferred for moderate batches.
const denseThreshold = 0.5

// Auto chooses between Naive and Indexed for each batch.
type Auto struct {
	naive   *Naive
	indexed *Indexed
}

// NewAuto returns an Auto counter whose strategies share the given parallelism.
// workers <= 0 means one worker per CPU.
func NewAuto(workers int) *Auto {
	workers = resolveWorkers(workers)
	return &Auto{
		naive:   &Naive{Workers: workers},
		indexed: &Indexed{Workers: workers},
	}
}

func (a *Auto) Name() string { return StrategyAuto }

// Select returns the strategy Auto would use for this batch.
func (a *Auto) Select(st *store.Store, cands []itemset.Itemset) Counter {
	work := st.Len() * len(cands)
	if work <= naiveBudget {
		return a.naive
	}
	if st.Density() >= denseThreshold && work <= 16*naiveBudget {
		return a.naive
	}
	return a.indexed
}

func (a *Auto) Count(ctx context.Context, st *store.Store, cands []itemset.Itemset) ([]int, error) {
	return a.Select(st, cands).Count(ctx, st, cands)
}
