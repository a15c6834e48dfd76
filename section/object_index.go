package section

import "fmt"

// ObjectKind is the kind encoded in the top two bits of an ObjectIndex.
type ObjectKind uint8

const (
	KindExport        ObjectKind = 0 // KindExport points into the owning package's export map.
	KindScriptImport  ObjectKind = 1 // KindScriptImport is a built-in script object hash.
	KindPackageImport ObjectKind = 2 // KindPackageImport points into another package.
	KindNull          ObjectKind = 3 // KindNull is the empty reference.
)

func (k ObjectKind) String() string {
	switch k {
	case KindExport:
		return "Export"
	case KindScriptImport:
		return "ScriptImport"
	case KindPackageImport:
		return "PackageImport"
	case KindNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// ObjectIndex is the opaque 64-bit reference stored in import maps and export map rows.
//
// The kind is decided by the top two bits alone; NullObjectIndex (all bits set) is the
// canonical null value written by cookers.
type ObjectIndex uint64

// NullObjectIndex is the canonical null reference.
const NullObjectIndex ObjectIndex = ^ObjectIndex(0)

// NewExportIndex returns a reference to the export at index in the owning package.
func NewExportIndex(index uint64) ObjectIndex {
	return ObjectIndex(index & objectIndexMask)
}

// NewScriptImport returns a script import reference carrying the given stable hash.
func NewScriptImport(hash uint64) ObjectIndex {
	return ObjectIndex(uint64(KindScriptImport)<<objectTypeShift | hash&objectIndexMask)
}

// NewPackageImport returns a zen package import reference made of an imported package
// slot and the 32-bit export hash of the target export.
func NewPackageImport(slot uint32, exportHash uint32) ObjectIndex {
	id := (uint64(slot)<<importRefShift)&objectIndexMask | uint64(exportHash)
	return ObjectIndex(uint64(KindPackageImport)<<objectTypeShift | id)
}

// NewGlobalPackageImport returns a legacy package import reference carrying a
// cross-package global index.
func NewGlobalPackageImport(globalIndex uint64) ObjectIndex {
	return ObjectIndex(uint64(KindPackageImport)<<objectTypeShift | globalIndex&objectIndexMask)
}

// Kind returns the reference kind.
func (o ObjectIndex) Kind() ObjectKind {
	return ObjectKind(uint64(o) >> objectTypeShift)
}

// IsNull reports whether o references nothing.
func (o ObjectIndex) IsNull() bool { return o.Kind() == KindNull }

// IsExport reports whether o references an export of the owning package.
func (o ObjectIndex) IsExport() bool { return o.Kind() == KindExport }

// IsScriptImport reports whether o references a built-in script object.
func (o ObjectIndex) IsScriptImport() bool { return o.Kind() == KindScriptImport }

// IsPackageImport reports whether o references an export of another package.
func (o ObjectIndex) IsPackageImport() bool { return o.Kind() == KindPackageImport }

// Value returns the raw 64-bit value.
func (o ObjectIndex) Value() uint64 {
	return uint64(o)
}

// ID returns the low 62 bits.
func (o ObjectIndex) ID() uint64 {
	return uint64(o) & objectIndexMask
}

// AsExport returns the local export index of an export reference.
func (o ObjectIndex) AsExport() uint64 {
	return o.ID()
}

// PackageImportRef is the decomposed form of a zen package import.
type PackageImportRef struct {
	// ImportedPackageIndex is the slot in the importing package's imported package list.
	ImportedPackageIndex uint32
	// ExportHash identifies the target export inside the imported package.
	ExportHash uint32
}

// AsPackageImportRef splits a zen package import into slot and export hash.
func (o ObjectIndex) AsPackageImportRef() PackageImportRef {
	id := o.ID()
	return PackageImportRef{
		ImportedPackageIndex: uint32(id >> importRefShift), //nolint: gosec
		ExportHash:           uint32(id & exportHashMask),  //nolint: gosec
	}
}

func (o ObjectIndex) String() string {
	if o.IsNull() {
		return "Null"
	}

	return fmt.Sprintf("%s(0x%X)", o.Kind(), o.ID())
}

// PackageIndex is the classic signed object reference used inside serialized export
// data: negative values are imports (-i-1), positive values exports (i+1), zero is null.
type PackageIndex int32

// IsNull reports whether p references nothing.
func (p PackageIndex) IsNull() bool { return p == 0 }

// IsImport reports whether p references the import map.
func (p PackageIndex) IsImport() bool { return p < 0 }

// IsExport reports whether p references the export map.
func (p PackageIndex) IsExport() bool { return p > 0 }

// ImportIndex returns the zero-based import map index.
func (p PackageIndex) ImportIndex() int { return -int(p) - 1 }

// ExportIndex returns the zero-based export map index.
func (p PackageIndex) ExportIndex() int { return int(p) - 1 }
