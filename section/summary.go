package section

import (
	"fmt"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
)

// Summary is the layout-independent view of a package header.
type Summary struct {
	Layout          version.Layout
	PackageFlags    PackageFlags
	TotalHeaderSize int64
	NameCount       int
	ImportCount     int
	ExportCount     int
	// BulkDataStartOffset is the end of the export data, recorded once every export has
	// been registered. Auxiliary payloads are attached relative to it.
	BulkDataStartOffset int64
}

// LegacySummary is the fixed 64-byte header written before engine 5.0.
type LegacySummary struct {
	Name                MappedName // byte offset 0-7
	SourceName          MappedName // byte offset 8-15
	PackageFlags        PackageFlags
	CookedHeaderSize    uint32
	NameMapNamesOffset  int32
	NameMapNamesSize    int32
	NameMapHashesOffset int32
	NameMapHashesSize   int32
	ImportMapOffset     int32
	ExportMapOffset     int32
	ExportBundlesOffset int32
	GraphDataOffset     int32
	GraphDataSize       int32
	Pad                 int32
}

// ParseLegacySummary parses a legacy summary from the first 64 bytes of data.
func ParseLegacySummary(data []byte, engine endian.EndianEngine) (LegacySummary, error) {
	if len(data) < LegacySummarySize {
		return LegacySummary{}, fmt.Errorf("%w: legacy summary needs %d bytes, have %d", errs.ErrInvalidHeaderSize, LegacySummarySize, len(data))
	}

	name, _ := ParseMappedName(data[0:8], engine)
	source, _ := ParseMappedName(data[8:16], engine)
	i32 := func(off int) int32 { return int32(engine.Uint32(data[off : off+4])) } //nolint: gosec

	return LegacySummary{
		Name:                name,
		SourceName:          source,
		PackageFlags:        PackageFlags(engine.Uint32(data[16:20])),
		CookedHeaderSize:    engine.Uint32(data[20:24]),
		NameMapNamesOffset:  i32(24),
		NameMapNamesSize:    i32(28),
		NameMapHashesOffset: i32(32),
		NameMapHashesSize:   i32(36),
		ImportMapOffset:     i32(40),
		ExportMapOffset:     i32(44),
		ExportBundlesOffset: i32(48),
		GraphDataOffset:     i32(52),
		GraphDataSize:       i32(56),
		Pad:                 i32(60),
	}, nil
}

// Bytes serializes the summary.
func (s *LegacySummary) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 0, LegacySummarySize)
	b = s.Name.AppendTo(b, engine)
	b = s.SourceName.AppendTo(b, engine)
	b = engine.AppendUint32(b, uint32(s.PackageFlags))
	b = engine.AppendUint32(b, s.CookedHeaderSize)
	for _, v := range []int32{
		s.NameMapNamesOffset, s.NameMapNamesSize, s.NameMapHashesOffset, s.NameMapHashesSize,
		s.ImportMapOffset, s.ExportMapOffset, s.ExportBundlesOffset, s.GraphDataOffset,
		s.GraphDataSize, s.Pad,
	} {
		b = engine.AppendUint32(b, uint32(v)) //nolint: gosec
	}

	return b
}

// Unify derives the record counts and returns the layout-independent summary.
//
// NameCount comes from the hash table size: one u64 algorithm id followed by one hash
// per name.
func (s *LegacySummary) Unify() (Summary, error) {
	if s.NameMapHashesSize%8 != 0 {
		return Summary{}, fmt.Errorf("%w: name hash table size %d is not a multiple of 8", errs.ErrInvalidCount, s.NameMapHashesSize)
	}
	nameCount := int(s.NameMapHashesSize/8) - 1
	if nameCount < 0 {
		return Summary{}, fmt.Errorf("%w: name hash table size %d yields %d names", errs.ErrInvalidCount, s.NameMapHashesSize, nameCount)
	}

	exportCount, err := CountRecords(s.ExportMapOffset, s.ExportBundlesOffset, LegacyExportMapEntrySize, "export map")
	if err != nil {
		return Summary{}, err
	}
	importCount, err := CountRecords(s.ImportMapOffset, s.ExportMapOffset, ObjectIndexSize, "import map")
	if err != nil {
		return Summary{}, err
	}
	if s.GraphDataSize < 0 {
		return Summary{}, fmt.Errorf("%w: negative graph data size %d", errs.ErrInvalidCount, s.GraphDataSize)
	}

	return Summary{
		Layout:          version.LayoutLegacy,
		PackageFlags:    s.PackageFlags,
		TotalHeaderSize: int64(s.GraphDataOffset) + int64(s.GraphDataSize),
		NameCount:       nameCount,
		ImportCount:     importCount,
		ExportCount:     exportCount,
	}, nil
}

// ZenSummary is the fixed 44-byte header written by engine 5.0 and later.
type ZenSummary struct {
	HasVersioningInfo                uint32
	HeaderSize                       uint32
	Name                             MappedName
	PackageFlags                     PackageFlags
	CookedHeaderSize                 uint32
	ImportedPublicExportHashesOffset int32
	ImportMapOffset                  int32
	ExportMapOffset                  int32
	ExportBundleEntriesOffset        int32
	GraphDataOffset                  int32
}

// ParseZenSummary parses a zen summary from the first 44 bytes of data.
func ParseZenSummary(data []byte, engine endian.EndianEngine) (ZenSummary, error) {
	if len(data) < ZenSummarySize {
		return ZenSummary{}, fmt.Errorf("%w: zen summary needs %d bytes, have %d", errs.ErrInvalidHeaderSize, ZenSummarySize, len(data))
	}

	name, _ := ParseMappedName(data[8:16], engine)
	i32 := func(off int) int32 { return int32(engine.Uint32(data[off : off+4])) } //nolint: gosec

	return ZenSummary{
		HasVersioningInfo:                engine.Uint32(data[0:4]),
		HeaderSize:                       engine.Uint32(data[4:8]),
		Name:                             name,
		PackageFlags:                     PackageFlags(engine.Uint32(data[16:20])),
		CookedHeaderSize:                 engine.Uint32(data[20:24]),
		ImportedPublicExportHashesOffset: i32(24),
		ImportMapOffset:                  i32(28),
		ExportMapOffset:                  i32(32),
		ExportBundleEntriesOffset:        i32(36),
		GraphDataOffset:                  i32(40),
	}, nil
}

// Bytes serializes the summary.
func (s *ZenSummary) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 0, ZenSummarySize)
	b = engine.AppendUint32(b, s.HasVersioningInfo)
	b = engine.AppendUint32(b, s.HeaderSize)
	b = s.Name.AppendTo(b, engine)
	b = engine.AppendUint32(b, uint32(s.PackageFlags))
	b = engine.AppendUint32(b, s.CookedHeaderSize)
	for _, v := range []int32{
		s.ImportedPublicExportHashesOffset, s.ImportMapOffset, s.ExportMapOffset,
		s.ExportBundleEntriesOffset, s.GraphDataOffset,
	} {
		b = engine.AppendUint32(b, uint32(v)) //nolint: gosec
	}

	return b
}

// Unify derives the record counts and returns the layout-independent summary.
// NameCount is filled in by the caller once the self-describing name batch is read.
func (s *ZenSummary) Unify() (Summary, error) {
	exportCount, err := CountRecords(s.ExportMapOffset, s.ExportBundleEntriesOffset, ZenExportMapEntrySize, "export map")
	if err != nil {
		return Summary{}, err
	}
	importCount, err := CountRecords(s.ImportMapOffset, s.ExportMapOffset, ObjectIndexSize, "import map")
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Layout:          version.LayoutZen,
		PackageFlags:    s.PackageFlags,
		TotalHeaderSize: int64(s.GraphDataOffset) + int64(s.HeaderSize),
		ImportCount:     importCount,
		ExportCount:     exportCount,
	}, nil
}

// CountRecords returns (end - start) / recordSize and fails when the span is negative
// or not a whole number of records.
func CountRecords(start, end int32, recordSize int, what string) (int, error) {
	span := int64(end) - int64(start)
	if span < 0 {
		return 0, fmt.Errorf("%w: %s spans [%d, %d)", errs.ErrInvalidCount, what, start, end)
	}
	if span%int64(recordSize) != 0 {
		return 0, fmt.Errorf("%w: %s span %d is not a multiple of %d", errs.ErrInvalidCount, what, span, recordSize)
	}

	return int(span / int64(recordSize)), nil
}

// VersioningInfo is the optional version block following a zen summary.
type VersioningInfo struct {
	ZenVersion     uint32
	PackageVersion version.FileVersion
	Licensee       int32
	CustomVersions []version.CustomVersion
}

// AppendTo appends the on-disk form of v to buf.
func (v *VersioningInfo) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, v.ZenVersion)
	buf = engine.AppendUint32(buf, uint32(v.PackageVersion.UE4))  //nolint: gosec
	buf = engine.AppendUint32(buf, uint32(v.PackageVersion.UE5))  //nolint: gosec
	buf = engine.AppendUint32(buf, uint32(v.Licensee))            //nolint: gosec
	buf = engine.AppendUint32(buf, uint32(len(v.CustomVersions))) //nolint: gosec
	for _, cv := range v.CustomVersions {
		for _, w := range cv.Key {
			buf = engine.AppendUint32(buf, w)
		}
		buf = engine.AppendUint32(buf, uint32(cv.Version)) //nolint: gosec
	}

	return buf
}
