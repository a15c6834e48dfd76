package section

import (
	"fmt"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
)

// ExportCommandType is the command of an export bundle entry.
type ExportCommandType uint32

const (
	CommandCreate    ExportCommandType = 0 // CommandCreate only constructs the export.
	CommandSerialize ExportCommandType = 1 // CommandSerialize reads the export's serialized data.
)

func (c ExportCommandType) String() string {
	switch c {
	case CommandCreate:
		return "Create"
	case CommandSerialize:
		return "Serialize"
	default:
		return "Unknown"
	}
}

// ExportBundleEntry is one visitation command: u32 LocalExportIndex, u32 CommandType.
type ExportBundleEntry struct {
	LocalExportIndex uint32
	CommandType      ExportCommandType
}

// ParseExportBundleEntry parses an 8-byte bundle entry.
func ParseExportBundleEntry(data []byte, engine endian.EndianEngine) (ExportBundleEntry, error) {
	if len(data) < ExportBundleEntrySize {
		return ExportBundleEntry{}, fmt.Errorf("%w: bundle entry needs %d bytes, have %d", errs.ErrTruncated, ExportBundleEntrySize, len(data))
	}

	return ExportBundleEntry{
		LocalExportIndex: engine.Uint32(data[0:4]),
		CommandType:      ExportCommandType(engine.Uint32(data[4:8])),
	}, nil
}

// AppendTo appends the on-disk form of e to buf.
func (e ExportBundleEntry) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, e.LocalExportIndex)
	return engine.AppendUint32(buf, uint32(e.CommandType))
}

// ExportBundleHeader selects a contiguous run of bundle entries.
//
// Legacy headers are 8 bytes (FirstEntryIndex, EntryCount); zen headers prefix them with
// a u64 SerialOffset.
type ExportBundleHeader struct {
	SerialOffset    uint64
	FirstEntryIndex uint32
	EntryCount      uint32
}

// BundleHeaderSize returns the header size for layout.
func BundleHeaderSize(layout version.Layout) int {
	if layout == version.LayoutZen {
		return ZenBundleHeaderSize
	}

	return LegacyBundleHeaderSize
}

// ParseExportBundleHeader parses a bundle header laid out for layout.
func ParseExportBundleHeader(data []byte, layout version.Layout, engine endian.EndianEngine) (ExportBundleHeader, error) {
	size := BundleHeaderSize(layout)
	if len(data) < size {
		return ExportBundleHeader{}, fmt.Errorf("%w: bundle header needs %d bytes, have %d", errs.ErrTruncated, size, len(data))
	}

	if layout == version.LayoutZen {
		return ExportBundleHeader{
			SerialOffset:    engine.Uint64(data[0:8]),
			FirstEntryIndex: engine.Uint32(data[8:12]),
			EntryCount:      engine.Uint32(data[12:16]),
		}, nil
	}

	return ExportBundleHeader{
		FirstEntryIndex: engine.Uint32(data[0:4]),
		EntryCount:      engine.Uint32(data[4:8]),
	}, nil
}

// AppendTo appends the on-disk form of h for layout to buf.
func (h ExportBundleHeader) AppendTo(buf []byte, layout version.Layout, engine endian.EndianEngine) []byte {
	if layout == version.LayoutZen {
		buf = engine.AppendUint64(buf, h.SerialOffset)
	}
	buf = engine.AppendUint32(buf, h.FirstEntryIndex)

	return engine.AppendUint32(buf, h.EntryCount)
}
