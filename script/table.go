// Package script holds the process-wide table of built-in script objects.
//
// Cooked packages reference engine classes such as /Script/Engine.StaticMesh by a
// stable hash instead of by name. The table maps those hashes to descriptors and to
// one live object per descriptor. A Table is built once, before any package load, and
// is read-only afterwards, so it can be shared by every package without locking.
package script

import (
	"fmt"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/names"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/uobject"
)

var le = endian.GetLittleEndianEngine()

// EntrySize is the size of one serialized script object entry.
const EntrySize = 32

// Entry describes one built-in script object.
type Entry struct {
	ObjectName    section.MappedName
	GlobalIndex   section.ObjectIndex
	OuterIndex    section.ObjectIndex
	CDOClassIndex section.ObjectIndex
}

// Table is the immutable global script object table.
type Table struct {
	names   *names.Table
	entries map[section.ObjectIndex]Entry
	objects map[section.ObjectIndex]*uobject.ScriptClass
	order   []section.ObjectIndex
}

// NewTable validates entries against globalNames and builds the table, including one
// ScriptClass per entry with its outer chain linked.
func NewTable(globalNames *names.Table, entries []Entry) (*Table, error) {
	t := &Table{
		names:   globalNames,
		entries: make(map[section.ObjectIndex]Entry, len(entries)),
		objects: make(map[section.ObjectIndex]*uobject.ScriptClass, len(entries)),
		order:   make([]section.ObjectIndex, 0, len(entries)),
	}

	for i, e := range entries {
		if !e.GlobalIndex.IsScriptImport() {
			return nil, fmt.Errorf("%w: entry %d has %s index %s", errs.ErrInvalidScriptTable, i, e.GlobalIndex.Kind(), e.GlobalIndex)
		}
		if _, dup := t.entries[e.GlobalIndex]; dup {
			return nil, fmt.Errorf("%w: entry %d duplicates %s", errs.ErrInvalidScriptTable, i, e.GlobalIndex)
		}
		name, err := globalNames.Lookup(e.ObjectName.NameIndex(), e.ObjectName.Number)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", errs.ErrInvalidScriptTable, i, err)
		}

		t.entries[e.GlobalIndex] = e
		t.objects[e.GlobalIndex] = &uobject.ScriptClass{BaseObject: uobject.BaseObject{
			Name:  name,
			Flags: uobject.FlagPublic | uobject.FlagMarkAsNative,
		}}
		t.order = append(t.order, e.GlobalIndex)
	}

	for idx, obj := range t.objects {
		if outer, ok := t.objects[t.entries[idx].OuterIndex]; ok && outer != obj {
			obj.Outer = outer
		}
	}
	for _, obj := range t.objects {
		obj.Path = uobject.PathName(obj)
	}

	return t, nil
}

// Load reads a serialized table: a zen name batch with the global names, then an i32
// count and count 32-byte entries.
func Load(r *archive.Reader) (*Table, error) {
	globalNames, err := names.LoadZenBatch(r)
	if err != nil {
		return nil, fmt.Errorf("%w: global names: %w", errs.ErrInvalidScriptTable, err)
	}

	count, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: entry count: %w", errs.ErrInvalidScriptTable, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: %d entries", errs.ErrInvalidScriptTable, count)
	}

	entries, err := archive.ReadArray(r, int(count), EntrySize, readEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: entries: %w", errs.ErrInvalidScriptTable, err)
	}

	return NewTable(globalNames, entries)
}

func readEntry(r *archive.Reader) (Entry, error) {
	var (
		e   Entry
		err error
	)
	if e.ObjectName, err = section.ReadMappedName(r); err != nil {
		return Entry{}, err
	}
	if e.GlobalIndex, err = section.ReadObjectIndex(r); err != nil {
		return Entry{}, err
	}
	if e.OuterIndex, err = section.ReadObjectIndex(r); err != nil {
		return Entry{}, err
	}
	e.CDOClassIndex, err = section.ReadObjectIndex(r)

	return e, err
}

// Names returns the global name table. It is nil for a nil table.
func (t *Table) Names() *names.Table {
	if t == nil {
		return nil
	}

	return t.names
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.order)
}

// Lookup returns the entry for a script import index.
func (t *Table) Lookup(index section.ObjectIndex) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[index]

	return e, ok
}

// Object returns the live object for a script import index. The same index always
// yields the same instance.
func (t *Table) Object(index section.ObjectIndex) (*uobject.ScriptClass, bool) {
	if t == nil {
		return nil, false
	}
	obj, ok := t.objects[index]

	return obj, ok
}

// Entries returns the entries in load order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}

	out := make([]Entry, 0, len(t.order))
	for _, idx := range t.order {
		out = append(out, t.entries[idx])
	}

	return out
}

// AppendTo appends the serialized form of a table built from texts and entries.
func AppendTo(buf []byte, texts []string, entries []Entry) []byte {
	buf = names.AppendZenBatch(buf, texts)
	buf = le.AppendUint32(buf, uint32(len(entries))) //nolint: gosec
	for _, e := range entries {
		buf = e.ObjectName.AppendTo(buf, le)
		buf = le.AppendUint64(buf, uint64(e.GlobalIndex))
		buf = le.AppendUint64(buf, uint64(e.OuterIndex))
		buf = le.AppendUint64(buf, uint64(e.CDOClassIndex))
	}

	return buf
}
