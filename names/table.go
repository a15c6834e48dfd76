package names

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/internal/hash"
	"github.com/arloliu/iopkg/section"
)

// Entry is one decoded name table row.
type Entry struct {
	Text string
	// Hash is the hash stored alongside the name batch, zero when the batch carries none.
	Hash uint64
}

// Table is an immutable, ordered name table.
//
// A Table is safe for concurrent use.
type Table struct {
	entries []Entry
	index   map[uint64][]int
	fold    map[uint64][]int
}

// NewTable builds a table from texts, hashing each with Hash.
func NewTable(texts ...string) *Table {
	entries := make([]Entry, len(texts))
	for i, text := range texts {
		entries[i] = Entry{Text: text, Hash: Hash(text)}
	}

	return newTable(entries)
}

func newTable(entries []Entry) *Table {
	t := &Table{
		entries: entries,
		index:   make(map[uint64][]int, len(entries)),
		fold:    make(map[uint64][]int, len(entries)),
	}
	for i, e := range entries {
		id := hash.ID(e.Text)
		t.index[id] = append(t.index[id], i)
		fid := hash.FoldID(e.Text)
		t.fold[fid] = append(t.fold[fid], i)
	}

	return t
}

// Len returns the number of names.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}

// Entry returns the row at index.
func (t *Table) Entry(index int) (Entry, bool) {
	if t == nil || index < 0 || index >= len(t.entries) {
		return Entry{}, false
	}

	return t.entries[index], true
}

// Texts returns a copy of the names in table order.
func (t *Table) Texts() []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.entries[i].Text
	}

	return out
}

// Lookup returns the text of the name at index. A non-zero number is the instance
// suffix: number n renders as "<text>_<n-1>".
func (t *Table) Lookup(index, number uint32) (string, error) {
	if int64(index) >= int64(t.Len()) {
		return "", fmt.Errorf("%w: index %d, table has %d names", errs.ErrNameIndexOutOfRange, index, t.Len())
	}

	text := t.entries[index].Text
	if number == 0 {
		return text, nil
	}

	return text + "_" + strconv.FormatUint(uint64(number-1), 10), nil
}

// Find returns the index of text, compared case-sensitively.
func (t *Table) Find(text string) (int, bool) {
	if t == nil {
		return 0, false
	}
	for _, i := range t.index[hash.ID(text)] {
		if t.entries[i].Text == text {
			return i, true
		}
	}

	return 0, false
}

// FindFold returns the index of the first name equal to text ignoring ASCII case.
func (t *Table) FindFold(text string) (int, bool) {
	if t == nil {
		return 0, false
	}
	for _, i := range t.fold[hash.FoldID(text)] {
		if strings.EqualFold(t.entries[i].Text, text) {
			return i, true
		}
	}

	return 0, false
}

// Resolve renders a mapped name. Global names (global or container type) are looked up
// in global only and never touch local.
func Resolve(m section.MappedName, local, global *Table) (string, error) {
	table := local
	if m.IsGlobal() {
		table = global
	}

	text, err := table.Lookup(m.NameIndex(), m.Number)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", m, err)
	}

	return text, nil
}
