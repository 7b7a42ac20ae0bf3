// Package encoding turns delimited text into a transaction store.
//
// Every (column, value) pair becomes its own item, so a "5" in column 3 and a
// "5" in column 4 are different items. Display tokens follow the G<col>_<value>
// convention with 1-based columns; the label column, when configured, keeps its
// raw value as token.
package encoding

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"
)

// LabelMode selects which column, if any, is left unprefixed.
type LabelMode string

const (
	LabelNone LabelMode = "none"
	LabelLast LabelMode = "last"
)

// DefaultPrefix starts every feature token.
const DefaultPrefix = "G"

// MalformedRowError reports a row whose width differs from the dataset width.
type MalformedRowError struct {
	Row  int // 0-based record index
	Line int // 1-based input line, 0 when rows did not come from text
	Want int
	Got  int
}

func (e *MalformedRowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d (line %d): got %d columns, want %d", e.Row, e.Line, e.Got, e.Want)
	}
	return fmt.Sprintf("row %d: got %d columns, want %d", e.Row, e.Got, e.Want)
}

// Options controls reading and encoding.
type Options struct {
	Delimiter rune
	Comment   rune
	Label     LabelMode
	Prefix    string
	// KeepEmpty encodes empty cells as items instead of treating them as missing.
	KeepEmpty bool
}

// DefaultOptions reads tab separated files with # comments and a trailing label column.
func DefaultOptions() Options {
	return Options{
		Delimiter: '\t',
		Comment:   '#',
		Label:     LabelLast,
		Prefix:    DefaultPrefix,
	}
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = '\t'
	}
	if o.Label == "" {
		o.Label = LabelLast
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	return o
}

// Rows is raw input with the 1-based source line of every record.
type Rows struct {
	Records [][]string
	Lines   []int
}

// Read parses delimited text. Blank lines and comment lines are skipped. Every
// row must have the width of the first row, otherwise a *MalformedRowError is
// returned.
func Read(r io.Reader, opts Options) (*Rows, error) {
	opts = opts.withDefaults()
	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.Comment = opts.Comment
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	rows := &Rows{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows.Records), err)
		}
		line, _ := cr.FieldPos(0)
		if len(rows.Records) > 0 && len(rec) != len(rows.Records[0]) {
			return nil, &MalformedRowError{Row: len(rows.Records), Line: line, Want: len(rows.Records[0]), Got: len(rec)}
		}
		rows.Records = append(rows.Records, rec)
		rows.Lines = append(rows.Lines, line)
	}
	return rows, nil
}

// Encoder assigns items to features. One Encoder may encode several batches;
// the dictionary is shared so item identifiers stay stable.
type Encoder struct {
	opts Options
	dict *Dictionary
}

// NewEncoder creates an encoder with an empty dictionary.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts.withDefaults(), dict: NewDictionary()}
}

// Dictionary returns the item dictionary built so far.
func (e *Encoder) Dictionary() *Dictionary { return e.dict }

// Token returns the display token of value in col (1-based) of a width-column row.
func (e *Encoder) Token(col, width int, value string) string {
	if e.opts.Label == LabelLast && col == width {
		return value
	}
	return e.opts.Prefix + strconv.Itoa(col) + "_" + value
}

// Encode maps rows to item collections and builds the store. All rows must
// share the width of the first one.
func (e *Encoder) Encode(records [][]string) (*store.Store, error) {
	return e.encode(records, nil)
}

// EncodeRows is Encode with line numbers for error reporting.
func (e *Encoder) EncodeRows(rows *Rows) (*store.Store, error) {
	return e.encode(rows.Records, rows.Lines)
}

func (e *Encoder) encode(records [][]string, lines []int) (*store.Store, error) {
	if len(records) == 0 {
		return nil, store.ErrEmptyDataset
	}
	width := len(records[0])
	txs := make([][]itemset.Item, len(records))
	for i, rec := range records {
		if len(rec) != width {
			err := &MalformedRowError{Row: i, Want: width, Got: len(rec)}
			if i < len(lines) {
				err.Line = lines[i]
			}
			return nil, err
		}
		tx := make([]itemset.Item, 0, width)
		for c, raw := range rec {
			value := strings.TrimSpace(raw)
			if value == "" && !e.opts.KeepEmpty {
				continue
			}
			col := c + 1
			tx = append(tx, e.dict.Intern(col, value, e.Token(col, width, value)))
		}
		txs[i] = tx
	}
	return store.New(txs)
}

// Encode builds a store and its dictionary from rows in one call.
func Encode(records [][]string, opts Options) (*store.Store, *Dictionary, error) {
	enc := NewEncoder(opts)
	st, err := enc.Encode(records)
	if err != nil {
		return nil, nil, err
	}
	return st, enc.Dictionary(), nil
}

// Load reads and encodes delimited text.
func Load(r io.Reader, opts Options) (*store.Store, *Dictionary, error) {
	rows, err := Read(r, opts)
	if err != nil {
		return nil, nil, err
	}
	enc := NewEncoder(opts)
	st, err := enc.EncodeRows(rows)
	if err != nil {
		return nil, nil, err
	}
	return st, enc.Dictionary(), nil
}
