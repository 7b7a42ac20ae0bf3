package candidates

import (
	"context"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"

	assertlib "github.com/ZanzyTHEbar/assert-lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
)

func sets(ss ...[]itemset.Item) []itemset.Itemset {
	out := make([]itemset.Itemset, len(ss))
	for i, s := range ss {
		out[i] = itemset.New(s...)
	}
	return out
}

func TestJoinLevelOneIsAllPairs(t *testing.T) {
	const n = 7
	var level []itemset.Itemset
	for i := n - 1; i >= 0; i-- { // deliberately unsorted
		level = append(level, itemset.Itemset{itemset.Item(i)})
	}

	got, err := Join(level)
	require.NoError(t, err)

	var want []itemset.Itemset
	for _, c := range combin.Combinations(n, 2) {
		want = append(want, itemset.Itemset{itemset.Item(c[0]), itemset.Item(c[1])})
	}
	itemset.Sort(want)
	assert.Equal(t, want, got)
}

func TestJoinPrefixBlocks(t *testing.T) {
	level := sets(
		[]itemset.Item{1, 2},
		[]itemset.Item{1, 3},
		[]itemset.Item{1, 4},
		[]itemset.Item{2, 3},
		[]itemset.Item{3, 5},
	)
	got, err := Join(level)
	require.NoError(t, err)
	assert.Equal(t, sets(
		[]itemset.Item{1, 2, 3},
		[]itemset.Item{1, 2, 4},
		[]itemset.Item{1, 3, 4},
	), got, "only itemsets sharing the first k-1 items join")
}

func TestJoinEdgeCases(t *testing.T) {
	got, err := Join(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Join(sets([]itemset.Item{4, 5}))
	require.NoError(t, err)
	assert.Empty(t, got, "a single frequent itemset has no partner")

	_, err = Join(sets([]itemset.Item{1, 2}, []itemset.Item{1, 2}))
	assert.ErrorIs(t, err, ErrDuplicateItemInCandidate, "duplicate input would produce {1,2,2}")

	_, err = Join(sets([]itemset.Item{1}, []itemset.Item{1, 2}))
	assert.ErrorIs(t, err, ErrMixedLevels)

	_, err = Join([]itemset.Itemset{{3}, {}})
	assert.ErrorIs(t, err, ErrMixedLevels, "an empty itemset is not a level")
}

func TestJoinNeverEmitsDuplicates(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := range 20 {
		k := 1 + round%4
		seen := map[itemset.Key]bool{}
		var level []itemset.Itemset
		for range 60 {
			raw := make([]itemset.Item, 0, k)
			for len(itemset.New(raw...)) < k {
				raw = append(raw, itemset.Item(rng.IntN(12)))
			}
			s := itemset.New(raw...)
			if !seen[s.Key()] {
				seen[s.Key()] = true
				level = append(level, s)
			}
		}

		got, err := Join(level)
		require.NoError(t, err)
		keys := map[itemset.Key]bool{}
		for _, c := range got {
			require.True(t, c.IsCanonical(), "candidate %v is not canonical", c)
			require.Equal(t, k+1, c.Len())
			require.False(t, keys[c.Key()], "duplicate candidate %v", c)
			keys[c.Key()] = true
		}
	}
}

func TestPruneDropsCandidatesWithInfrequentSubsets(t *testing.T) {
	frequent := sets(
		[]itemset.Item{1, 2},
		[]itemset.Item{1, 3},
		[]itemset.Item{2, 3},
		[]itemset.Item{1, 4},
	)
	cands, err := Join(frequent)
	require.NoError(t, err)
	require.Equal(t, sets(
		[]itemset.Item{1, 2, 3},
		[]itemset.Item{1, 2, 4},
		[]itemset.Item{1, 3, 4},
	), cands)

	got := Prune(cands, NewKeySet(frequent))
	assert.Equal(t, sets([]itemset.Item{1, 2, 3}), got, "{2,4} and {3,4} are not frequent")
}

func TestPruneParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	var frequent []itemset.Itemset
	seen := map[itemset.Key]bool{}
	for range 400 {
		s := itemset.New(itemset.Item(rng.IntN(30)), itemset.Item(rng.IntN(30)), itemset.Item(rng.IntN(30)))
		if s.Len() == 3 && !seen[s.Key()] {
			seen[s.Key()] = true
			frequent = append(frequent, s)
		}
	}
	cands, err := Join(frequent)
	require.NoError(t, err)
	require.NotEmpty(t, cands)

	ks := NewKeySet(frequent)
	want := Prune(cands, ks)
	for _, workers := range []int{1, 2, 8} {
		got, err := PruneParallel(context.Background(), cands, ks, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestPruneParallelHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PruneParallel(ctx, sets([]itemset.Item{1, 2, 3}), KeySet{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratorValidLevel(t *testing.T) {
	g := NewGenerator(nil)
	got := g.Generate(context.Background(), sets([]itemset.Item{0}, []itemset.Item{1}, []itemset.Item{2}))
	assert.Equal(t, sets([]itemset.Item{0, 1}, []itemset.Item{0, 2}, []itemset.Item{1, 2}), got)
}

func TestGeneratorAbortsOnBrokenLevel(t *testing.T) {
	called := false
	h := assertlib.NewAssertHandler()
	h.ToWriter(io.Discard)
	h.SetExitFunc(func(int) { called = true })

	g := NewGenerator(h)
	g.Generate(context.Background(), sets([]itemset.Item{1, 2}, []itemset.Item{1, 2}))
	require.True(t, called, "a duplicated level must reach the exit function")

	called = false
	g.Generate(context.Background(), sets([]itemset.Item{1, 2}, []itemset.Item{1, 3}))
	assert.False(t, called)
}
