package counting

import (
	"context"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"
)

// Naive tests every candidate against every transaction,
// O(transactions x candidates x k). Transactions are split across workers; each
// worker accumulates into its own count slice and the slices are summed.
type Naive struct {
	Workers int
}

func (n *Naive) Name() string { return StrategyNaive }

func (n *Naive) Count(ctx context.Context, st *store.Store, cands []itemset.Itemset) ([]int, error) {
	if len(cands) == 0 {
		return []int{}, nil
	}

	ranges := parallel.Split(st.Len(), n.Workers)
	partial := make([][]int, len(ranges))

	err := parallel.ForEach(ctx, st.Len(), n.Workers, func(ctx context.Context, r parallel.Range) error {
		counts := make([]int, len(cands))
		for tx := r.Lo; tx < r.Hi; tx++ {
			if tx%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			row := st.Transaction(tx)
			for i, cand := range cands {
				if cand.IsSubsetOf(row) {
					counts[i]++
				}
			}
		}
		partial[r.Index] = counts
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := make([]int, len(cands))
	for _, counts := range partial {
		for i, c := range counts {
			total[i] += c
		}
	}
	return total, nil
}
