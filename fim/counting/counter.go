// Package counting computes support counts for batches of candidate itemsets.
//
// Two interchangeable strategies implement Counter: Naive scans every
// transaction and tests each candidate for containment, Indexed intersects the
// roaring posting lists of a candidate's items. Both return identical counts for
// identical input. Auto picks one of them per batch from the shape of the data.
package counting

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"
)

// Counter computes support counts. The returned slice is aligned with cands:
// counts[i] is the number of transactions of st containing cands[i].
type Counter interface {
	Name() string
	Count(ctx context.Context, st *store.Store, cands []itemset.Itemset) ([]int, error)
}

// Strategy names accepted by ForName.
const (
	StrategyAuto    = "auto"
	StrategyNaive   = "naive"
	StrategyIndexed = "indexed"
)

// ForName returns the counter registered under name with the given parallelism.
// workers <= 0 means one worker per CPU.
func ForName(name string, workers int) (Counter, error) {
	workers = resolveWorkers(workers)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyAuto:
		return NewAuto(workers), nil
	case StrategyNaive:
		return &Naive{Workers: workers}, nil
	case StrategyIndexed:
		return &Indexed{Workers: workers}, nil
	default:
		return nil, fmt.Errorf("unknown counting strategy %q (want %s, %s or %s)", name, StrategyAuto, StrategyNaive, StrategyIndexed)
	}
}

func resolveWorkers(n int) int {
	if n <= 0 {
		return parallel.DefaultWorkers()
	}
	return n
}

// CountMap runs c and keys the result by itemset.
func CountMap(ctx context.Context, c Counter, st *store.Store, cands []itemset.Itemset) (map[itemset.Key]int, error) {
	counts, err := c.Count(ctx, st, cands)
	if err != nil {
		return nil, err
	}
	m := make(map[itemset.Key]int, len(cands))
	for i, cand := range cands {
		m[cand.Key()] = counts[i]
	}
	return m, nil
}
