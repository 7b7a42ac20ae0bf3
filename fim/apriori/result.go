package apriori

import (
	"time"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
)

// Entry is a frequent itemset with its support count.
type Entry struct {
	Itemset itemset.Itemset
	Support int
}

// Level is the frequent set of one itemset size. Entries are in canonical
// lexicographic order of their itemsets.
type Level struct {
	K       int
	Entries []Entry
}

// Len returns the number of frequent itemsets in the level.
func (l Level) Len() int { return len(l.Entries) }

// Itemsets returns the itemsets of the level without their counts.
func (l Level) Itemsets() []itemset.Itemset {
	out := make([]itemset.Itemset, len(l.Entries))
	for i, e := range l.Entries {
		out[i] = e.Itemset
	}
	return out
}

// LevelReport describes one completed level. It is passed to the Observer.
type LevelReport struct {
	RunID      string
	K          int
	Generated  int // candidates produced by the join (distinct items for k = 1)
	Pruned     int // candidates removed before counting
	Counted    int // candidates whose support was computed
	Frequent   int // itemsets meeting the minimum support
	MinSupport int
	Duration   time.Duration
}

// Observer is invoked once per completed level, including the final level that
// produced no frequent itemsets.
type Observer func(LevelReport)

// Result is the outcome of one mining run.
type Result struct {
	RunID             string
	SupportPercentage float64
	MinSupportCount   int
	Transactions      int
	// Levels holds the non-empty frequent sets in ascending k.
	Levels []Level
	// Truncated is set when the context ended before the level loop terminated
	// on its own. Levels then holds every level completed so far.
	Truncated bool
}

// Counts returns the number of frequent itemsets per level.
func (r *Result) Counts() []int {
	out := make([]int, len(r.Levels))
	for i, l := range r.Levels {
		out[i] = l.Len()
	}
	return out
}

// Len returns the total number of frequent itemsets.
func (r *Result) Len() int {
	n := 0
	for _, l := range r.Levels {
		n += l.Len()
	}
	return n
}

// Entries flattens all levels in discovery order.
func (r *Result) Entries() []Entry {
	out := make([]Entry, 0, r.Len())
	for _, l := range r.Levels {
		out = append(out, l.Entries...)
	}
	return out
}

// Lookup returns the support of s when s is frequent.
func (r *Result) Lookup(s itemset.Itemset) (int, bool) {
	if s.Len() == 0 || s.Len() > len(r.Levels) {
		return 0, false
	}
	l := r.Levels[s.Len()-1]
	lo, hi := 0, len(l.Entries)
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := itemset.Compare(l.Entries[mid].Itemset, s); {
		case c == 0:
			return l.Entries[mid].Support, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}
