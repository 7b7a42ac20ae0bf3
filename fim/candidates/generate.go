package candidates

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"

	"github.com/ZanzyTHEbar/assert-lib"
)

var (
	// ErrDuplicateItemInCandidate means the join produced a non-canonical itemset.
	// This is a generator bug, never a property of the input data.
	ErrDuplicateItemInCandidate = errors.New("candidate itemset contains a repeated or out-of-order item")
	// ErrMixedLevels means the join input held itemsets of different sizes.
	ErrMixedLevels = errors.New("frequent itemsets of different sizes passed to join")
)

// Join builds the distinct size k+1 candidates from frequent itemsets of size k.
//
// The input is sorted lexicographically, which makes itemsets sharing their first
// k-1 items contiguous. Within each such block every ordered pair (A, B) with
// A before B yields A + B.last. Each candidate has exactly one generating pair,
// so no deduplication pass is needed. For k = 1 the prefix is empty and the
// whole input is one block. The returned candidates are in canonical order.
func Join(frequent []itemset.Itemset) ([]itemset.Itemset, error) {
	if len(frequent) < 2 {
		return nil, nil
	}

	sorted := slices.Clone(frequent)
	itemset.Sort(sorted)
	k := sorted[0].Len()
	if k == 0 {
		return nil, fmt.Errorf("%w: empty itemset in join input", ErrMixedLevels)
	}
	prefix := k - 1

	var out []itemset.Itemset
	for lo := 0; lo < len(sorted); {
		hi := lo + 1
		for hi < len(sorted) && itemset.SharesPrefix(sorted[lo], sorted[hi], prefix) {
			hi++
		}
		for a := lo; a < hi; a++ {
			if sorted[a].Len() != k {
				return nil, fmt.Errorf("%w: %v has %d items, want %d", ErrMixedLevels, sorted[a], sorted[a].Len(), k)
			}
			for b := a + 1; b < hi; b++ {
				cand := sorted[a].Extend(sorted[b].Last())
				if !cand.IsCanonical() {
					return nil, fmt.Errorf("%w: %v from %v and %v", ErrDuplicateItemInCandidate, cand, sorted[a], sorted[b])
				}
				out = append(out, cand)
			}
		}
		lo = hi
	}
	return out, nil
}

// Generator runs the join step and treats a broken candidate invariant as fatal.
type Generator struct {
	AssertHandler *assert.AssertHandler
}

// NewGenerator creates a generator that reports invariant violations through h.
func NewGenerator(h *assert.AssertHandler) *Generator {
	if h == nil {
		h = assert.NewAssertHandler()
	}
	return &Generator{AssertHandler: h}
}

// Generate returns the join candidates for the next level. Input that is not a
// valid frequent level aborts the process through the assert handler.
func (g *Generator) Generate(ctx context.Context, frequent []itemset.Itemset) []itemset.Itemset {
	out, err := Join(frequent)
	g.AssertHandler.Assert(ctx, err == nil, "candidate join violated the itemset invariant", "error", err)
	return out
}
