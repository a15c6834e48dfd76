package section

import (
	"fmt"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
)

// ExportMapEntry is one row of the export map. It has the same 72-byte size in both
// layouts; the u64 at byte offset 56 is GlobalImportIndex in the legacy layout and
// PublicExportHash in the zen layout.
//
// Layout:
//
//	0  u64 CookedSerialOffset    32 u64 ClassIndex
//	8  u64 CookedSerialSize      40 u64 SuperIndex
//	16 MappedName ObjectName     48 u64 TemplateIndex
//	24 u64 OuterIndex            56 u64 GlobalImportIndex | PublicExportHash
//	64 u32 ObjectFlags           68 u8 FilterFlags, 3 bytes padding
type ExportMapEntry struct {
	CookedSerialOffset uint64
	CookedSerialSize   uint64
	ObjectName         MappedName
	OuterIndex         ObjectIndex
	ClassIndex         ObjectIndex
	SuperIndex         ObjectIndex
	TemplateIndex      ObjectIndex
	// GlobalImportIndex is the index other packages use to import this export (legacy).
	GlobalImportIndex ObjectIndex
	// PublicExportHash identifies this export to importing packages (zen).
	PublicExportHash uint64
	ObjectFlags      uint32
	FilterFlags      uint8
}

// ExportMapEntrySize returns the row size for layout.
func ExportMapEntrySize(layout version.Layout) int {
	if layout == version.LayoutZen {
		return ZenExportMapEntrySize
	}

	return LegacyExportMapEntrySize
}

// ParseExportMapEntry parses one export map row laid out for layout.
func ParseExportMapEntry(data []byte, layout version.Layout, engine endian.EndianEngine) (ExportMapEntry, error) {
	size := ExportMapEntrySize(layout)
	if len(data) < size {
		return ExportMapEntry{}, fmt.Errorf("%w: export map entry needs %d bytes, have %d", errs.ErrTruncated, size, len(data))
	}

	name, _ := ParseMappedName(data[16:24], engine)
	e := ExportMapEntry{
		CookedSerialOffset: engine.Uint64(data[0:8]),
		CookedSerialSize:   engine.Uint64(data[8:16]),
		ObjectName:         name,
		OuterIndex:         ObjectIndex(engine.Uint64(data[24:32])),
		ClassIndex:         ObjectIndex(engine.Uint64(data[32:40])),
		SuperIndex:         ObjectIndex(engine.Uint64(data[40:48])),
		TemplateIndex:      ObjectIndex(engine.Uint64(data[48:56])),
		ObjectFlags:        engine.Uint32(data[64:68]),
		FilterFlags:        data[68],
	}

	if layout == version.LayoutZen {
		e.PublicExportHash = engine.Uint64(data[56:64])
		e.GlobalImportIndex = NullObjectIndex
	} else {
		e.GlobalImportIndex = ObjectIndex(engine.Uint64(data[56:64]))
	}

	return e, nil
}

// AppendTo appends the on-disk form of e for layout to buf.
func (e *ExportMapEntry) AppendTo(buf []byte, layout version.Layout, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint64(buf, e.CookedSerialOffset)
	buf = engine.AppendUint64(buf, e.CookedSerialSize)
	buf = e.ObjectName.AppendTo(buf, engine)
	buf = engine.AppendUint64(buf, uint64(e.OuterIndex))
	buf = engine.AppendUint64(buf, uint64(e.ClassIndex))
	buf = engine.AppendUint64(buf, uint64(e.SuperIndex))
	buf = engine.AppendUint64(buf, uint64(e.TemplateIndex))
	if layout == version.LayoutZen {
		buf = engine.AppendUint64(buf, e.PublicExportHash)
	} else {
		buf = engine.AppendUint64(buf, uint64(e.GlobalImportIndex))
	}
	buf = engine.AppendUint32(buf, e.ObjectFlags)

	return append(buf, e.FilterFlags, 0, 0, 0)
}
