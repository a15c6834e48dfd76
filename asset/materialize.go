package asset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/uobject"
)

// maxClassDepth bounds the walk up a class's super chain.
const maxClassDepth = 32

// registerExports visits the bundles in order and registers a slot for every serialize
// command, assigning data offsets from a running cursor that starts at dataOffset.
// The final cursor becomes Summary.BulkDataStartOffset.
func (p *Package) registerExports(dataOffset int64) error {
	p.exports = make([]*LazyExport, len(p.ExportMap))
	for i := range p.exports {
		p.exports[i] = &LazyExport{pkg: p, index: i}
	}

	if dataOffset > p.reader.Size() {
		return fmt.Errorf("%w: export data starts at %d, package has %d bytes", errs.ErrInvalidOffset, dataOffset, p.reader.Size())
	}

	cursor := dataOffset
	for bi, bh := range p.BundleHeaders {
		first, count := int64(bh.FirstEntryIndex), int64(bh.EntryCount)
		if first+count > int64(len(p.BundleEntries)) {
			return fmt.Errorf("%w: bundle %d selects entries [%d, %d) of %d", errs.ErrInvalidBundleEntry, bi, first, first+count, len(p.BundleEntries))
		}

		for _, be := range p.BundleEntries[first : first+count] {
			switch be.CommandType {
			case section.CommandCreate:
				continue
			case section.CommandSerialize:
			default:
				return fmt.Errorf("%w: bundle %d has command %d", errs.ErrInvalidBundleEntry, bi, be.CommandType)
			}

			if int64(be.LocalExportIndex) >= int64(len(p.exports)) {
				return fmt.Errorf("%w: bundle %d serializes export %d of %d", errs.ErrInvalidBundleEntry, bi, be.LocalExportIndex, len(p.exports))
			}
			slot := p.exports[be.LocalExportIndex]
			if slot.state != StateUnregistered {
				return fmt.Errorf("%w: export %d serialized twice", errs.ErrInvalidBundleEntry, be.LocalExportIndex)
			}

			size := p.ExportMap[be.LocalExportIndex].CookedSerialSize
			if size > uint64(p.reader.Size()-cursor) {
				return fmt.Errorf("%w: export %d data [%d, +%d) past end %d", errs.ErrTruncated, be.LocalExportIndex, cursor, size, p.reader.Size())
			}

			slot.dataOffset = cursor
			slot.state = StateRegistered
			cursor += int64(size) //nolint: gosec
		}
	}

	p.Summary.BulkDataStartOffset = cursor

	return nil
}

// materialize constructs, links and deserializes the export of slot e. It runs at most
// once per slot, see LazyExport.force.
func (p *Package) materialize(e *LazyExport, chain *loadChain) (uobject.Object, error) {
	export := &p.ExportMap[e.index]

	class := p.ResolveObjectIndex(export.ClassIndex)
	obj, registered := p.registry.Construct(classChain(class))
	if !registered {
		p.log.Debug("class not registered, constructing shell",
			zap.Int("export", e.index),
			zap.String("class", nameOf(class)),
		)
	}

	base := obj.Base()
	base.Name = p.exportNames[e.index]
	outer, err := p.resolveOuter(export.OuterIndex, chain)
	if err != nil {
		return nil, fmt.Errorf("export %d %q outer: %w", e.index, base.Name, err)
	}
	base.Outer = outer
	base.Class = refOf(class)
	base.Super = refOf(p.ResolveObjectIndex(export.SuperIndex))
	base.Template = refOf(p.ResolveObjectIndex(export.TemplateIndex))
	base.Flags |= uobject.FlagWasLoaded | uobject.ObjectFlags(export.ObjectFlags)

	ar := p.reader.WithContext(withChain(p.reader.Context(), chain))
	ar.AbsoluteOffset = int64(export.CookedSerialOffset) - e.dataOffset //nolint: gosec
	size := int64(export.CookedSerialSize)                              //nolint: gosec
	if err := ar.Seek(e.dataOffset); err != nil {
		return nil, fmt.Errorf("export %d %q: %w", e.index, base.Name, err)
	}
	if err := ar.Limit(e.dataOffset + size); err != nil {
		return nil, fmt.Errorf("export %d %q: %w", e.index, base.Name, err)
	}

	if err := p.deserializer.Deserialize(obj, ar, size); err != nil {
		return nil, fmt.Errorf("deserialize export %d %q: %w", e.index, base.Name, err)
	}
	if registered {
		if left := e.dataOffset + size - ar.Position(); left != 0 {
			p.log.Debug("export data not fully consumed",
				zap.Int("export", e.index),
				zap.Int64("remaining", left),
			)
		}
	}

	base.Flags |= uobject.FlagLoadCompleted
	if pl, ok := obj.(uobject.PostLoader); ok {
		pl.PostLoad()
	}

	return obj, nil
}

// resolveOuter forces the outer export on the current chain. Anything that is not an
// export, including an unresolved index or a script object, falls back to the package
// itself.
func (p *Package) resolveOuter(index section.ObjectIndex, chain *loadChain) (uobject.Object, error) {
	if re, ok := p.ResolveObjectIndex(index).(*ResolvedExport); ok {
		return re.force(chain)
	}

	return p, nil
}

// classChain lists the names of class and its super classes, most derived first.
func classChain(class ResolvedObject) []string {
	var chain []string
	for c := class; c != nil && len(chain) < maxClassDepth; c = c.Super() {
		chain = append(chain, c.Name())
	}

	return chain
}

func nameOf(r ResolvedObject) string {
	if r == nil {
		return ""
	}

	return r.Name()
}

// refOf converts a possibly nil resolution into a uobject.Ref without producing a
// non-nil interface around a nil value.
func refOf(r ResolvedObject) uobject.Ref {
	if r == nil {
		return nil
	}

	return r
}
