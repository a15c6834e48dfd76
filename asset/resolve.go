package asset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/script"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/uobject"
	"github.com/arloliu/iopkg/version"
)

// ResolvedObject is a transient view of the object an index points to.
//
// It has exactly three shapes: *ResolvedExport, *ResolvedScript and *ResolvedLoaded.
// All of them expose the same read-only surface, so most callers never switch on the
// shape. Views are cheap and are recomputed on every resolution.
type ResolvedObject interface {
	Name() string
	// Outer returns the outer object, or nil when there is none.
	Outer() ResolvedObject
	Class() ResolvedObject
	Super() ResolvedObject
	// Object forces the underlying object.
	Object() (uobject.Object, error)
	// ObjectContext forces the underlying object on the resolution chain carried by
	// ctx. Deserializers pass the context of their reader.
	ObjectContext(ctx context.Context) (uobject.Object, error)

	resolved()
}

var (
	_ ResolvedObject = (*ResolvedExport)(nil)
	_ ResolvedObject = (*ResolvedScript)(nil)
	_ ResolvedObject = (*ResolvedLoaded)(nil)
)

// ResolvedExport is an export of a loaded package, possibly not this one.
type ResolvedExport struct {
	Package *Package
	Index   int
}

func (*ResolvedExport) resolved() {}

// Entry returns the export map row.
func (r *ResolvedExport) Entry() *section.ExportMapEntry {
	return &r.Package.ExportMap[r.Index]
}

func (r *ResolvedExport) Name() string {
	return r.Package.exportNames[r.Index]
}

// Outer resolves the outer index and falls back to the owning package.
func (r *ResolvedExport) Outer() ResolvedObject {
	if outer := r.Package.ResolveObjectIndex(r.Entry().OuterIndex); outer != nil {
		return outer
	}

	return &ResolvedLoaded{Obj: r.Package}
}

func (r *ResolvedExport) Class() ResolvedObject {
	return r.Package.ResolveObjectIndex(r.Entry().ClassIndex)
}

func (r *ResolvedExport) Super() ResolvedObject {
	return r.Package.ResolveObjectIndex(r.Entry().SuperIndex)
}

// Object forces the export's memoized slot.
func (r *ResolvedExport) Object() (uobject.Object, error) {
	return r.Package.exports[r.Index].Object()
}

func (r *ResolvedExport) ObjectContext(ctx context.Context) (uobject.Object, error) {
	return r.Package.exports[r.Index].ObjectContext(ctx)
}

func (r *ResolvedExport) force(chain *loadChain) (uobject.Object, error) {
	return r.Package.exports[r.Index].force(chain)
}

// ResolvedScript is a built-in object from the global script table.
type ResolvedScript struct {
	Entry script.Entry

	pkg *Package
	obj *uobject.ScriptClass
}

func (*ResolvedScript) resolved() {}

func (r *ResolvedScript) Name() string {
	return r.obj.Name
}

func (r *ResolvedScript) Outer() ResolvedObject {
	return r.pkg.ResolveObjectIndex(r.Entry.OuterIndex)
}

// Class is the shared "Class" object: the script table does not distinguish classes
// from structs.
func (r *ResolvedScript) Class() ResolvedObject {
	return &ResolvedLoaded{Obj: scriptClassClass}
}

func (r *ResolvedScript) Super() ResolvedObject {
	return nil
}

// Object returns the table's instance for this entry; it is the same on every call.
func (r *ResolvedScript) Object() (uobject.Object, error) {
	return r.obj, nil
}

func (r *ResolvedScript) ObjectContext(context.Context) (uobject.Object, error) {
	return r.obj, nil
}

var scriptClassClass = &uobject.ScriptClass{
	BaseObject: uobject.BaseObject{Name: "Class", Flags: uobject.FlagPublic | uobject.FlagMarkAsNative},
	Path:       "/Script/CoreUObject.Class",
}

// ResolvedLoaded wraps an object that is already live, such as a package.
type ResolvedLoaded struct {
	Obj uobject.Object
}

func (*ResolvedLoaded) resolved() {}

func (r *ResolvedLoaded) Name() string {
	return r.Obj.Base().Name
}

func (r *ResolvedLoaded) Outer() ResolvedObject {
	if outer := r.Obj.Base().Outer; outer != nil {
		return &ResolvedLoaded{Obj: outer}
	}

	return nil
}

func (r *ResolvedLoaded) Class() ResolvedObject {
	return asResolved(r.Obj.Base().Class)
}

func (r *ResolvedLoaded) Super() ResolvedObject {
	return asResolved(r.Obj.Base().Super)
}

func (r *ResolvedLoaded) Object() (uobject.Object, error) {
	return r.Obj, nil
}

func (r *ResolvedLoaded) ObjectContext(context.Context) (uobject.Object, error) {
	return r.Obj, nil
}

func asResolved(ref uobject.Ref) ResolvedObject {
	if ro, ok := ref.(ResolvedObject); ok {
		return ro
	}

	return nil
}

// ResolveObjectIndex resolves an import map or export map reference.
//
// It never fails: a reference that cannot be resolved is logged with the package
// name and the raw index, and yields nil.
func (p *Package) ResolveObjectIndex(index section.ObjectIndex) ResolvedObject {
	var (
		miss   string
		reason error
	)
	switch index.Kind() {
	case section.KindNull:
		return nil

	case section.KindExport:
		if i := index.AsExport(); i < uint64(len(p.ExportMap)) {
			return &ResolvedExport{Package: p, Index: int(i)} //nolint: gosec
		}
		miss = "export index out of range"

	case section.KindScriptImport:
		if entry, ok := p.global.Lookup(index); ok {
			obj, _ := p.global.Object(index)
			return &ResolvedScript{Entry: entry, pkg: p, obj: obj}
		}
		miss = "missing script import"

	case section.KindPackageImport:
		re, err := p.resolvePackageImport(index)
		if err == nil {
			return re
		}
		miss, reason = "missing package import", err
	}

	fields := []zap.Field{zap.String("index", fmt.Sprintf("0x%X", index.Value()))}
	if reason != nil {
		fields = append(fields, zap.Error(reason))
	}
	p.log.Warn(miss, fields...)

	return nil
}

func (p *Package) resolvePackageImport(index section.ObjectIndex) (*ResolvedExport, error) {
	if p.provider == nil {
		return nil, errs.ErrNoProvider
	}
	if p.Versions().Layout() == version.LayoutZen {
		return p.resolveZenImport(index)
	}

	return p.resolveLegacyImport(index)
}

// resolveZenImport finds the export whose public hash matches the reference, inside
// the imported package at the reference's slot.
func (p *Package) resolveZenImport(index section.ObjectIndex) (*ResolvedExport, error) {
	ref := index.AsPackageImportRef()
	imported := p.ImportedPackages()
	if int(ref.ImportedPackageIndex) >= len(imported) {
		return nil, fmt.Errorf("%w: imported package slot %d of %d", errs.ErrPackageNotFound, ref.ImportedPackageIndex, len(imported))
	}
	pkg := imported[ref.ImportedPackageIndex]
	if pkg == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrPackageNotFound, p.ImportedPackageIDs[ref.ImportedPackageIndex])
	}

	for i := range pkg.ExportMap {
		if pkg.ExportMap[i].PublicExportHash == uint64(ref.ExportHash) {
			return &ResolvedExport{Package: pkg, Index: i}, nil
		}
	}

	return nil, fmt.Errorf("%w: public hash 0x%X in %q", errs.ErrExportNotFound, ref.ExportHash, pkg.Name)
}

// resolveLegacyImport scans every imported package for an export whose global import
// index equals index. The first match wins.
func (p *Package) resolveLegacyImport(index section.ObjectIndex) (*ResolvedExport, error) {
	for _, pkg := range p.ImportedPackages() {
		if pkg == nil {
			continue
		}
		for i := range pkg.ExportMap {
			if pkg.ExportMap[i].GlobalImportIndex == index {
				return &ResolvedExport{Package: pkg, Index: i}, nil
			}
		}
	}

	return nil, errs.ErrExportNotFound
}

// ResolvePackageIndex resolves a classic package index as found inside serialized
// export data: negative values index the import map, positive values the export map.
func (p *Package) ResolvePackageIndex(index section.PackageIndex) ResolvedObject {
	switch {
	case index.IsImport() && index.ImportIndex() >= 0 && index.ImportIndex() < len(p.ImportMap):
		return p.ResolveObjectIndex(p.ImportMap[index.ImportIndex()])
	case index.IsExport() && index.ExportIndex() < len(p.ExportMap):
		return &ResolvedExport{Package: p, Index: index.ExportIndex()}
	default:
		return nil
	}
}
