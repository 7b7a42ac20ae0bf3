package counting

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestCounterSuite(t *testing.T) {
	suite.Run(t, new(CounterTestSuite))
}

// CounterTestSuite checks every strategy against the same fixtures.
type CounterTestSuite struct {
	suite.Suite
	abc      *store.Store
	counters []Counter
}

func (s *CounterTestSuite) SetupTest() {
	var err error
	// A=0 B=1 C=2
	s.abc, err = store.New([][]itemset.Item{{0, 1, 2}, {0, 1}, {0, 2}, {1, 2}, {0}})
	s.Require().NoError(err)

	s.counters = []Counter{
		&Naive{Workers: 1},
		&Naive{Workers: 4},
		&Indexed{Workers: 1},
		&Indexed{Workers: 4},
		NewAuto(2),
	}
}

func (s *CounterTestSuite) TestExampleSupports() {
	cands := []itemset.Itemset{{0, 1}, {0, 2}, {1, 2}, {0, 1, 2}, {0, 7}}
	for _, c := range s.counters {
		counts, err := c.Count(context.Background(), s.abc, cands)
		s.Require().NoError(err, c.Name())
		s.Equal([]int{2, 2, 2, 1, 0}, counts, c.Name())
	}
}

func (s *CounterTestSuite) TestEmptyBatch() {
	for _, c := range s.counters {
		counts, err := c.Count(context.Background(), s.abc, nil)
		s.Require().NoError(err, c.Name())
		s.Empty(counts, c.Name())
	}
}

func (s *CounterTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, c := range s.counters {
		_, err := c.Count(ctx, s.abc, []itemset.Itemset{{0, 1}})
		s.ErrorIs(err, context.Canceled, c.Name())
	}
}

func (s *CounterTestSuite) TestCountMap() {
	m, err := CountMap(context.Background(), &Indexed{}, s.abc, []itemset.Itemset{{0, 1}, {1, 2}})
	s.Require().NoError(err)
	s.Equal(map[itemset.Key]int{
		itemset.Itemset{0, 1}.Key(): 2,
		itemset.Itemset{1, 2}.Key(): 2,
	}, m)
}

// randomStore builds a reproducible dataset of n transactions over width items.
func randomStore(t *testing.T, seed uint64, n, width int, density float64) *store.Store {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rows := make([][]itemset.Item, n)
	for i := range rows {
		for it := range width {
			if rng.Float64() < density {
				rows[i] = append(rows[i], itemset.Item(it))
			}
		}
	}
	st, err := store.New(rows)
	require.NoError(t, err)
	return st
}

func randomCandidates(seed uint64, count, width, k int) []itemset.Itemset {
	rng := rand.New(rand.NewPCG(seed, 1))
	out := make([]itemset.Itemset, 0, count)
	for range count {
		var raw []itemset.Item
		for len(itemset.New(raw...)) < k {
			raw = append(raw, itemset.Item(rng.IntN(width)))
		}
		out = append(out, itemset.New(raw...))
	}
	return out
}

func TestNaiveAndIndexedAreEquivalent(t *testing.T) {
	cases := []struct {
		name    string
		n       int
		width   int
		density float64
	}{
		{"sparse", 3000, 60, 0.05},
		{"medium", 1500, 25, 0.3},
		{"dense", 500, 12, 0.8},
		{"tiny", 3, 4, 0.5},
	}
	for ci, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := randomStore(t, uint64(ci+1), tc.n, tc.width, tc.density)
			for k := 1; k <= 4 && k <= tc.width; k++ {
				cands := randomCandidates(uint64(100*ci+k), 200, tc.width, k)

				naive, err := (&Naive{Workers: 3}).Count(context.Background(), st, cands)
				require.NoError(t, err)
				indexed, err := (&Indexed{Workers: 3}).Count(context.Background(), st, cands)
				require.NoError(t, err)
				sequential, err := (&Naive{Workers: 1}).Count(context.Background(), st, cands)
				require.NoError(t, err)

				assert.Equal(t, naive, indexed, "k=%d", k)
				assert.Equal(t, sequential, naive, "worker count must not change counts, k=%d", k)
			}
		})
	}
}

func TestForName(t *testing.T) {
	for name, want := range map[string]string{
		"":         StrategyAuto,
		"auto":     StrategyAuto,
		"Naive":    StrategyNaive,
		" indexed": StrategyIndexed,
	} {
		c, err := ForName(name, 2)
		require.NoError(t, err, name)
		assert.Equal(t, want, c.Name())
	}

	_, err := ForName("fpgrowth", 2)
	assert.ErrorContains(t, err, "unknown counting strategy")
}

func TestZeroWorkersMeansOnePerCPU(t *testing.T) {
	want := parallel.DefaultWorkers()

	c, err := ForName(StrategyNaive, 0)
	require.NoError(t, err)
	assert.Equal(t, want, c.(*Naive).Workers)

	c, err = ForName(StrategyIndexed, -1)
	require.NoError(t, err)
	assert.Equal(t, want, c.(*Indexed).Workers)

	a := NewAuto(0)
	assert.Equal(t, want, a.naive.Workers)
	assert.Equal(t, want, a.indexed.Workers)

	c, err = ForName(StrategyNaive, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.(*Naive).Workers)
}

func TestAutoSelect(t *testing.T) {
	a := NewAuto(1)

	small := randomStore(t, 1, 10, 8, 0.3)
	assert.Equal(t, StrategyNaive, a.Select(small, randomCandidates(1, 10, 8, 2)).Name())

	large := randomStore(t, 2, 5000, 100, 0.02)
	assert.Equal(t, StrategyIndexed, a.Select(large, randomCandidates(2, 500, 100, 2)).Name())
}
