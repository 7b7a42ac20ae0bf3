package itemset

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"
)

// Item is an encoded item identifier. Items are small and contiguous so they can
// be used directly as roaring bitmap keys and slice indexes.
type Item = uint32

// Itemset is a set of distinct items stored as a strictly increasing sequence.
// The canonical ordering is the deduplication and join key for the miner.
type Itemset []Item

// Key is the byte form of an Itemset, usable as a map key. Items are written
// big-endian so that byte order of keys matches lexicographic order of itemsets.
type Key string

// New builds a canonical itemset from items in any order, collapsing duplicates.
func New(items ...Item) Itemset {
	s := make(Itemset, len(items))
	copy(s, items)
	slices.Sort(s)
	return slices.Compact(s)
}

// Len returns the number of items.
func (s Itemset) Len() int { return len(s) }

// Last returns the largest item; s must not be empty.
func (s Itemset) Last() Item { return s[len(s)-1] }

// IsCanonical reports whether s is strictly increasing, i.e. sorted with no repeats.
func (s Itemset) IsCanonical() bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return false
		}
	}
	return true
}

// Key returns the map key form of s.
func (s Itemset) Key() Key {
	buf := make([]byte, 4*len(s))
	for i, it := range s {
		binary.BigEndian.PutUint32(buf[4*i:], it)
	}
	return Key(buf)
}

// FromKey decodes a key produced by Itemset.Key.
func FromKey(k Key) Itemset {
	s := make(Itemset, len(k)/4)
	for i := range s {
		s[i] = binary.BigEndian.Uint32([]byte(k[4*i : 4*i+4]))
	}
	return s
}

// Compare orders itemsets lexicographically by their canonical sequence.
// A proper prefix sorts before any of its extensions.
func Compare(a, b Itemset) int {
	return slices.Compare(a, b)
}

// SharesPrefix reports whether a and b agree on their first n items.
func SharesPrefix(a, b Itemset, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return slices.Equal(a[:n], b[:n])
}

// IsSubsetOf reports whether every item of s is present in t. Both must be canonical.
func (s Itemset) IsSubsetOf(t Itemset) bool {
	if len(s) > len(t) {
		return false
	}
	j := 0
	for _, it := range s {
		for j < len(t) && t[j] < it {
			j++
		}
		if j == len(t) || t[j] != it {
			return false
		}
		j++
	}
	return true
}

// Without returns a copy of s with the item at index i removed.
func (s Itemset) Without(i int) Itemset {
	out := make(Itemset, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Extend returns a copy of s with it appended. it must be greater than s.Last().
func (s Itemset) Extend(it Item) Itemset {
	out := make(Itemset, len(s), len(s)+1)
	copy(out, s)
	return append(out, it)
}

// String renders s as {1,2,3}.
func (s Itemset) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, it := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(it), 10))
	}
	b.WriteByte('}')
	return b.String()
}

// Sort orders sets lexicographically in place.
func Sort(sets []Itemset) {
	slices.SortFunc(sets, Compare)
}
