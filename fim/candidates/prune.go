package candidates

import (
	"context"
	"encoding/binary"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"
)

// KeySet is a membership set of itemsets of one size.
type KeySet map[itemset.Key]struct{}

// NewKeySet indexes sets by key.
func NewKeySet(sets []itemset.Itemset) KeySet {
	ks := make(KeySet, len(sets))
	for _, s := range sets {
		ks[s.Key()] = struct{}{}
	}
	return ks
}

// Has reports whether s is a member.
func (ks KeySet) Has(s itemset.Itemset) bool {
	_, ok := ks[s.Key()]
	return ok
}

// checker tests candidates against the frequent set of the previous level.
// It reuses one key buffer and is therefore not safe for concurrent use.
type checker struct {
	frequent KeySet
	buf      []byte
}

// keep reports whether every subset of cand obtained by dropping one item is frequent.
func (c *checker) keep(cand itemset.Itemset) bool {
	need := 4 * (cand.Len() - 1)
	if cap(c.buf) < need {
		c.buf = make([]byte, need)
	}
	buf := c.buf[:need]
	for skip := range cand.Len() {
		pos := 0
		for i, it := range cand {
			if i == skip {
				continue
			}
			binary.BigEndian.PutUint32(buf[pos:], it)
			pos += 4
		}
		if _, ok := c.frequent[itemset.Key(buf)]; !ok {
			return false
		}
	}
	return true
}

// Prune drops every candidate that has a subset, one item smaller, missing from
// frequent. Order of the surviving candidates is preserved.
func Prune(cands []itemset.Itemset, frequent KeySet) []itemset.Itemset {
	c := &checker{frequent: frequent}
	out := make([]itemset.Itemset, 0, len(cands))
	for _, cand := range cands {
		if c.keep(cand) {
			out = append(out, cand)
		}
	}
	return out
}

// PruneParallel is Prune with candidates partitioned across workers. Each worker
// fills the keep flags of its own range; survivors are collected in input order.
func PruneParallel(ctx context.Context, cands []itemset.Itemset, frequent KeySet, workers int) ([]itemset.Itemset, error) {
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Prune(cands, frequent), nil
	}

	keep := make([]bool, len(cands))
	err := parallel.ForEach(ctx, len(cands), workers, func(_ context.Context, r parallel.Range) error {
		c := &checker{frequent: frequent}
		for i := r.Lo; i < r.Hi; i++ {
			keep[i] = c.keep(cands[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]itemset.Itemset, 0, len(cands))
	for i, ok := range keep {
		if ok {
			out = append(out, cands[i])
		}
	}
	return out, nil
}
