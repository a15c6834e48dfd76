// Package fixture writes cooked package bytes from a high-level description, in both
// header layouts. It exists for tests and tools that need real package streams without
// a cooker.
package fixture

import (
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/names"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/version"
)

var le = endian.GetLittleEndianEngine()

// Null is the null object index.
const Null = section.NullObjectIndex

// Export describes one export.
type Export struct {
	Name string
	// MappedName overrides the name reference written for the export. Name is ignored
	// when it is set.
	MappedName *section.MappedName

	Outer    section.ObjectIndex
	Class    section.ObjectIndex
	Super    section.ObjectIndex
	Template section.ObjectIndex
	Flags    uint32

	GlobalImportIndex section.ObjectIndex
	PublicExportHash  uint64

	Data []byte
}

// NewExport returns an export with every reference set to Null.
func NewExport(name string, data []byte) Export {
	return Export{
		Name:              name,
		Outer:             Null,
		Class:             Null,
		Super:             Null,
		Template:          Null,
		GlobalImportIndex: Null,
		Data:              data,
	}
}

// Package describes one package.
type Package struct {
	Name  string
	Flags section.PackageFlags
	// Names are added to the name table after the package and export names.
	Names   []string
	Imports []section.ObjectIndex
	Exports []Export
	// Bundles lists the exports serialized by each bundle, in order. Nil means a single
	// bundle serializing every export in index order.
	Bundles [][]int
	// ImportedPackages is written to legacy graph data and to the zen store entry.
	ImportedPackages []container.PackageID
	// Versioning is written after a zen summary when set.
	Versioning *section.VersioningInfo
	// Trailing is appended after the export data.
	Trailing []byte
}

// ID returns the package id derived from the name.
func (p *Package) ID() container.PackageID {
	return container.PackageIDFromName(p.Name)
}

// StoreEntry returns the container store entry describing p.
func (p *Package) StoreEntry() container.StoreEntry {
	return container.StoreEntry{
		ExportCount:       int32(len(p.Exports)),   //nolint: gosec
		ExportBundleCount: int32(len(p.bundles())), //nolint: gosec
		ImportedPackages:  p.ImportedPackages,
	}
}

// Container returns a container header holding the store entries of pkgs.
func Container(id uint64, pkgs ...*Package) *container.Header {
	ids := make([]container.PackageID, len(pkgs))
	entries := make([]container.StoreEntry, len(pkgs))
	for i, p := range pkgs {
		ids[i] = p.ID()
		entries[i] = p.StoreEntry()
	}

	// Lengths match by construction.
	h, _ := container.NewHeader(id, ids, entries)

	return h
}

func (p *Package) bundles() [][]int {
	if p.Bundles != nil {
		return p.Bundles
	}

	all := make([]int, len(p.Exports))
	for i := range all {
		all[i] = i
	}

	return [][]int{all}
}

// nameTable returns the distinct name texts and the index of each.
func (p *Package) nameTable() ([]string, map[string]uint32) {
	var texts []string
	index := make(map[string]uint32)
	add := func(s string) {
		if _, ok := index[s]; ok {
			return
		}
		index[s] = uint32(len(texts)) //nolint: gosec
		texts = append(texts, s)
	}

	add(p.Name)
	for _, e := range p.Exports {
		if e.MappedName == nil {
			add(e.Name)
		}
	}
	for _, s := range p.Names {
		add(s)
	}

	return texts, index
}

// bundleRecords returns the bundle headers and entries, and the exports in the order
// their data is written.
func (p *Package) bundleRecords() ([]section.ExportBundleHeader, []section.ExportBundleEntry, []int) {
	var (
		headers []section.ExportBundleHeader
		entries []section.ExportBundleEntry
		order   []int
	)
	for _, b := range p.bundles() {
		h := section.ExportBundleHeader{FirstEntryIndex: uint32(len(entries))} //nolint: gosec
		for _, i := range b {
			entries = append(entries, section.ExportBundleEntry{LocalExportIndex: uint32(i), CommandType: section.CommandCreate}) //nolint: gosec
		}
		for _, i := range b {
			entries = append(entries, section.ExportBundleEntry{LocalExportIndex: uint32(i), CommandType: section.CommandSerialize}) //nolint: gosec
			order = append(order, i)
		}
		h.EntryCount = uint32(len(entries)) - h.FirstEntryIndex //nolint: gosec
		headers = append(headers, h)
	}

	return headers, entries, order
}

// exportRows returns the export map rows, with serial offsets relative to dataOffset,
// and the export data in bundle order.
func (p *Package) exportRows(index map[string]uint32, order []int, dataOffset int64) ([]section.ExportMapEntry, []byte) {
	offsets := make([]uint64, len(p.Exports))
	var data []byte
	for _, i := range order {
		offsets[i] = uint64(dataOffset) + uint64(len(data)) //nolint: gosec
		data = append(data, p.Exports[i].Data...)
	}

	rows := make([]section.ExportMapEntry, len(p.Exports))
	for i, e := range p.Exports {
		name := section.NewMappedName(index[e.Name], section.MappedNamePackage, 0)
		if e.MappedName != nil {
			name = *e.MappedName
		}
		rows[i] = section.ExportMapEntry{
			CookedSerialOffset: offsets[i],
			CookedSerialSize:   uint64(len(e.Data)),
			ObjectName:         name,
			OuterIndex:         e.Outer,
			ClassIndex:         e.Class,
			SuperIndex:         e.Super,
			TemplateIndex:      e.Template,
			GlobalImportIndex:  e.GlobalImportIndex,
			PublicExportHash:   e.PublicExportHash,
			ObjectFlags:        e.Flags,
		}
	}

	return rows, data
}

// Legacy writes p in the layout used before engine 5.0.
func (p *Package) Legacy() []byte {
	texts, index := p.nameTable()
	nameBlock, hashBlock := names.AppendLegacyBatch(texts)
	headers, entries, order := p.bundleRecords()

	s := section.LegacySummary{
		Name:         section.NewMappedName(index[p.Name], section.MappedNamePackage, 0),
		SourceName:   section.NewMappedName(index[p.Name], section.MappedNamePackage, 0),
		PackageFlags: p.Flags,
	}
	pos := int32(section.LegacySummarySize)
	s.NameMapNamesOffset, s.NameMapNamesSize = pos, int32(len(nameBlock)) //nolint: gosec
	pos += s.NameMapNamesSize
	s.NameMapHashesOffset, s.NameMapHashesSize = pos, int32(len(hashBlock)) //nolint: gosec
	pos += s.NameMapHashesSize
	s.ImportMapOffset = pos
	pos += int32(len(p.Imports) * section.ObjectIndexSize) //nolint: gosec
	s.ExportMapOffset = pos
	pos += int32(len(p.Exports) * section.LegacyExportMapEntrySize) //nolint: gosec
	s.ExportBundlesOffset = pos
	pos += int32((len(headers) + len(entries)) * section.ExportBundleEntrySize) //nolint: gosec
	s.GraphDataOffset = pos

	graph := container.AppendGraphData(nil, p.ImportedPackages, nil)
	s.GraphDataSize = int32(len(graph)) //nolint: gosec
	dataOffset := int64(s.GraphDataOffset) + int64(s.GraphDataSize)
	s.CookedHeaderSize = uint32(dataOffset) //nolint: gosec

	rows, data := p.exportRows(index, order, dataOffset)

	buf := s.Bytes(le)
	buf = append(buf, nameBlock...)
	buf = append(buf, hashBlock...)
	for _, imp := range p.Imports {
		buf = le.AppendUint64(buf, uint64(imp))
	}
	for i := range rows {
		buf = rows[i].AppendTo(buf, version.LayoutLegacy, le)
	}
	for _, h := range headers {
		buf = h.AppendTo(buf, version.LayoutLegacy, le)
	}
	for _, e := range entries {
		buf = e.AppendTo(buf, le)
	}
	buf = append(buf, graph...)
	buf = append(buf, data...)

	return append(buf, p.Trailing...)
}

// Zen writes p in the layout used by engine 5.0 and later. Bundle headers and imported
// packages are only readable with the store entry, see StoreEntry and Container.
func (p *Package) Zen() []byte {
	texts, index := p.nameTable()
	headers, entries, order := p.bundleRecords()
	// Readers expect exactly two entries per export.
	for len(entries) < 2*len(p.Exports) {
		entries = append(entries, section.ExportBundleEntry{CommandType: section.CommandCreate})
	}

	var prefix []byte
	if p.Versioning != nil {
		prefix = p.Versioning.AppendTo(prefix, le)
	}
	prefix = names.AppendZenBatch(prefix, texts)

	s := section.ZenSummary{
		Name:         section.NewMappedName(index[p.Name], section.MappedNamePackage, 0),
		PackageFlags: p.Flags,
	}
	if p.Versioning != nil {
		s.HasVersioningInfo = 1
	}
	pos := int32(section.ZenSummarySize + len(prefix)) //nolint: gosec
	s.ImportedPublicExportHashesOffset = pos
	s.ImportMapOffset = pos
	pos += int32(len(p.Imports) * section.ObjectIndexSize) //nolint: gosec
	s.ExportMapOffset = pos
	pos += int32(len(p.Exports) * section.ZenExportMapEntrySize) //nolint: gosec
	s.ExportBundleEntriesOffset = pos
	pos += int32(len(entries) * section.ExportBundleEntrySize) //nolint: gosec
	s.GraphDataOffset = pos
	pos += int32(len(headers) * section.ZenBundleHeaderSize) //nolint: gosec
	s.HeaderSize = uint32(pos)                               //nolint: gosec
	s.CookedHeaderSize = s.HeaderSize

	rows, data := p.exportRows(index, order, int64(s.HeaderSize))

	buf := s.Bytes(le)
	buf = append(buf, prefix...)
	for _, imp := range p.Imports {
		buf = le.AppendUint64(buf, uint64(imp))
	}
	for i := range rows {
		buf = rows[i].AppendTo(buf, version.LayoutZen, le)
	}
	for _, e := range entries {
		buf = e.AppendTo(buf, le)
	}
	var serial uint64
	for _, h := range headers {
		h.SerialOffset = serial
		for _, e := range entries[h.FirstEntryIndex : h.FirstEntryIndex+h.EntryCount] {
			if e.CommandType == section.CommandSerialize {
				serial += rows[e.LocalExportIndex].CookedSerialSize
			}
		}
		buf = h.AppendTo(buf, version.LayoutZen, le)
	}
	buf = append(buf, data...)

	return append(buf, p.Trailing...)
}
