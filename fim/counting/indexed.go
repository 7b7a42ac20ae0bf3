package counting

import (
	"context"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"
)

// Indexed computes the support of a candidate as the cardinality of the
// intersection of its items' posting lists. Candidates are split across workers;
// each worker writes only the count slots of its own range.
type Indexed struct {
	Workers int
}

func (x *Indexed) Name() string { return StrategyIndexed }

func (x *Indexed) Count(ctx context.Context, st *store.Store, cands []itemset.Itemset) ([]int, error) {
	counts := make([]int, len(cands))
	if len(cands) == 0 {
		return counts, nil
	}

	postings := st.Postings()
	err := parallel.ForEach(ctx, len(cands), x.Workers, func(ctx context.Context, r parallel.Range) error {
		for i := r.Lo; i < r.Hi; i++ {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			counts[i] = postings.AndCardinality(cands[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
