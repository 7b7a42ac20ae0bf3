package store

import (
	"slices"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"

	roaring "github.com/RoaringBitmap/roaring"
)

// PostingIndex holds roaring bitmaps keyed by item.
// Example: item 7 -> bitmap of transaction ids that contain item 7.
type PostingIndex struct {
	lists map[itemset.Item]*roaring.Bitmap
}

func NewPostingIndex() *PostingIndex {
	return &PostingIndex{lists: make(map[itemset.Item]*roaring.Bitmap)}
}

func (pi *PostingIndex) Add(it itemset.Item, tx TxID) {
	bm, ok := pi.lists[it]
	if !ok {
		bm = roaring.New()
		pi.lists[it] = bm
	}
	bm.Add(tx)
}

// Optimize run-length encodes every list. Called once after loading.
func (pi *PostingIndex) Optimize() {
	for _, bm := range pi.lists {
		bm.RunOptimize()
	}
}

// Get returns the posting list of it, or nil.
func (pi *PostingIndex) Get(it itemset.Item) *roaring.Bitmap {
	return pi.lists[it]
}

// Cardinality returns the length of the posting list of it.
func (pi *PostingIndex) Cardinality(it itemset.Item) int {
	bm, ok := pi.lists[it]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Items returns the indexed items in ascending order.
func (pi *PostingIndex) Items() []itemset.Item {
	items := make([]itemset.Item, 0, len(pi.lists))
	for it := range pi.lists {
		items = append(items, it)
	}
	slices.Sort(items)
	return items
}

// AndCardinality returns the number of transactions containing every item of set
// without materializing more than one intermediate bitmap.
func (pi *PostingIndex) AndCardinality(set itemset.Itemset) int {
	switch len(set) {
	case 0:
		return 0
	case 1:
		return pi.Cardinality(set[0])
	case 2:
		a, b := pi.lists[set[0]], pi.lists[set[1]]
		if a == nil || b == nil {
			return 0
		}
		return int(a.AndCardinality(b))
	}

	bms := make([]*roaring.Bitmap, len(set))
	for i, it := range set {
		bm := pi.lists[it]
		if bm == nil {
			return 0
		}
		bms[i] = bm
	}
	// intersect smallest first so the running result shrinks quickly
	slices.SortFunc(bms, func(a, b *roaring.Bitmap) int {
		return int(a.GetCardinality()) - int(b.GetCardinality())
	})
	res := bms[0].Clone()
	for _, bm := range bms[1 : len(bms)-1] {
		res.And(bm)
		if res.IsEmpty() {
			return 0
		}
	}
	return int(res.AndCardinality(bms[len(bms)-1]))
}

// And returns the intersection of the posting lists of set as a new bitmap.
func (pi *PostingIndex) And(set itemset.Itemset) *roaring.Bitmap {
	if len(set) == 0 {
		return roaring.New()
	}
	bms := make([]*roaring.Bitmap, 0, len(set))
	for _, it := range set {
		bm := pi.lists[it]
		if bm == nil {
			return roaring.New()
		}
		bms = append(bms, bm)
	}
	return roaring.FastAnd(bms...)
}
