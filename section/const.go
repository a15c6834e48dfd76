package section

// Fixed record sizes in bytes.
const (
	MappedNameSize           = 8  // index word + number word
	ObjectIndexSize          = 8  // type bits + id
	LegacySummarySize        = 64 // legacy package summary
	ZenSummarySize           = 44 // zen package summary
	LegacyExportMapEntrySize = 72 // export map row, legacy layout
	ZenExportMapEntrySize    = 72 // export map row, zen layout
	ExportBundleEntrySize    = 8  // local export index + command type
	LegacyBundleHeaderSize   = 8  // first entry index + entry count
	ZenBundleHeaderSize      = 16 // serial offset + first entry index + entry count
	CustomVersionSize        = 20 // GUID + version
	GraphArcSize             = 8  // from/to bundle indices, skipped by the loader
)

// Mapped name packing: the top two bits of the index word hold the name table type.
const (
	mappedIndexBits  = 30
	mappedIndexMask  = (1 << mappedIndexBits) - 1
	mappedTypeShift  = mappedIndexBits
	MaxMappedNameIdx = mappedIndexMask
)

// Object index packing: the top two bits hold the kind, the low 62 bits the id.
const (
	objectIndexBits  = 62
	objectIndexMask  = (uint64(1) << objectIndexBits) - 1
	objectTypeShift  = objectIndexBits
	importRefShift   = 32
	exportHashMask   = 0xFFFFFFFF
	maxImportRefSlot = objectIndexMask >> importRefShift
)

// PackageFlags is the package flag word stored in both summaries.
type PackageFlags uint32

const (
	PackageFlagNewlyCreated          PackageFlags = 0x00000001
	PackageFlagClientOptional        PackageFlags = 0x00000002
	PackageFlagServerSideOnly        PackageFlags = 0x00000004
	PackageFlagCompiledIn            PackageFlags = 0x00000010
	PackageFlagEditorOnly            PackageFlags = 0x00000040
	PackageFlagCooked                PackageFlags = 0x00000200
	PackageFlagUnversionedProperties PackageFlags = 0x00002000
	PackageFlagContainsMapData       PackageFlags = 0x00004000
	PackageFlagContainsMap           PackageFlags = 0x00020000
	PackageFlagContainsScript        PackageFlags = 0x00200000
	PackageFlagDynamicImports        PackageFlags = 0x10000000
	PackageFlagFilterEditorOnly      PackageFlags = 0x80000000
)

// Has reports whether all bits of mask are set.
func (f PackageFlags) Has(mask PackageFlags) bool {
	return f&mask == mask
}
