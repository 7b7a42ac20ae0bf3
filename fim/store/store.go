package store

import (
	"errors"
	"slices"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"

	roaring "github.com/RoaringBitmap/roaring"
)

// ErrEmptyDataset is returned when a store is built from zero transactions.
var ErrEmptyDataset = errors.New("dataset has no transactions")

// TxID identifies a transaction by its position in the store.
// It is small and contiguous so it can be stored in roaring bitmaps.
type TxID = uint32

// Store is the immutable, encoded view of a dataset. Transactions are canonical
// itemsets; a posting bitmap per item records which transactions contain it.
// A Store is never mutated after New returns and may be shared across goroutines.
type Store struct {
	transactions []itemset.Itemset
	postings     *PostingIndex
	items        []itemset.Item
	totalItems   int
}

// New builds a store from raw item collections. Duplicate items inside one
// collection collapse to a single occurrence.
func New(transactions [][]itemset.Item) (*Store, error) {
	if len(transactions) == 0 {
		return nil, ErrEmptyDataset
	}

	s := &Store{
		transactions: make([]itemset.Itemset, len(transactions)),
		postings:     NewPostingIndex(),
	}
	for i, raw := range transactions {
		tx := itemset.New(raw...)
		s.transactions[i] = tx
		s.totalItems += len(tx)
		for _, it := range tx {
			s.postings.Add(it, TxID(i))
		}
	}
	s.postings.Optimize()
	s.items = s.postings.Items()
	return s, nil
}

// Len returns the number of transactions.
func (s *Store) Len() int { return len(s.transactions) }

// Transaction returns the item set of transaction i. Callers must not modify it.
func (s *Store) Transaction(i int) itemset.Itemset { return s.transactions[i] }

// ContainsSubset reports whether transaction i contains every item of set.
func (s *Store) ContainsSubset(i int, set itemset.Itemset) bool {
	return set.IsSubsetOf(s.transactions[i])
}

// Items returns the distinct items of the dataset in ascending order.
func (s *Store) Items() []itemset.Item { return slices.Clone(s.items) }

// NumItems returns the number of distinct items.
func (s *Store) NumItems() int { return len(s.items) }

// ItemSupport returns the number of transactions containing it.
func (s *Store) ItemSupport(it itemset.Item) int {
	return s.postings.Cardinality(it)
}

// Postings returns the posting index. It is read-only.
func (s *Store) Postings() *PostingIndex { return s.postings }

// PostingsFor returns the bitmap of transactions containing it, or nil when the
// item never occurs. Read-only.
func (s *Store) PostingsFor(it itemset.Item) *roaring.Bitmap {
	return s.postings.Get(it)
}

// AvgTransactionLen is the mean number of distinct items per transaction.
func (s *Store) AvgTransactionLen() float64 {
	return float64(s.totalItems) / float64(len(s.transactions))
}

// Density is the fraction of the transaction x item matrix that is set.
func (s *Store) Density() float64 {
	if len(s.items) == 0 {
		return 0
	}
	return s.AvgTransactionLen() / float64(len(s.items))
}
