package encoding

import (
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"

	"github.com/armon/go-radix"
)

// keySep separates the column number from the raw value in dictionary keys.
// It cannot appear in a column number, so keys of different columns never collide.
const keySep = "\x1f"

// Feature is the (column, raw value) pair an Item stands for.
type Feature struct {
	Column int // 1-based
	Value  string
	Token  string // display form, e.g. G3_5
}

// Dictionary maps features to items and back. Items are assigned densely in
// first-seen order. Lookups and per-column listings go through a radix tree.
type Dictionary struct {
	tree     *radix.Tree
	features []Feature
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{tree: radix.New()}
}

func featureKey(col int, value string) string {
	return strconv.Itoa(col) + keySep + value
}

// Intern returns the item for (col, value), assigning the next identifier when
// the feature is new.
func (d *Dictionary) Intern(col int, value, token string) itemset.Item {
	key := featureKey(col, value)
	if v, ok := d.tree.Get(key); ok {
		return v.(itemset.Item)
	}
	it := itemset.Item(len(d.features))
	d.tree.Insert(key, it)
	d.features = append(d.features, Feature{Column: col, Value: value, Token: token})
	return it
}

// Lookup returns the item for (col, value).
func (d *Dictionary) Lookup(col int, value string) (itemset.Item, bool) {
	v, ok := d.tree.Get(featureKey(col, value))
	if !ok {
		return 0, false
	}
	return v.(itemset.Item), true
}

// Feature returns what it stands for.
func (d *Dictionary) Feature(it itemset.Item) (Feature, bool) {
	if int(it) >= len(d.features) {
		return Feature{}, false
	}
	return d.features[it], true
}

// Token returns the display token of it, or its number when unknown.
func (d *Dictionary) Token(it itemset.Item) string {
	if f, ok := d.Feature(it); ok {
		return f.Token
	}
	return "#" + strconv.FormatUint(uint64(it), 10)
}

// Tokens renders every item of s.
func (d *Dictionary) Tokens(s itemset.Itemset) []string {
	out := make([]string, len(s))
	for i, it := range s {
		out[i] = d.Token(it)
	}
	return out
}

// Format renders s as space separated tokens.
func (d *Dictionary) Format(s itemset.Itemset) string {
	return strings.Join(d.Tokens(s), " ")
}

// ColumnItems returns the items of one column in ascending raw value order.
func (d *Dictionary) ColumnItems(col int) []itemset.Item {
	var out []itemset.Item
	d.tree.WalkPrefix(strconv.Itoa(col)+keySep, func(_ string, v interface{}) bool {
		out = append(out, v.(itemset.Item))
		return false
	})
	return out
}

// Len returns the number of distinct features.
func (d *Dictionary) Len() int { return len(d.features) }
