// Package asset loads cooked packages into lazily materialized object graphs.
//
// Load decodes a package header in either the legacy or the zen layout, selected by
// the engine version of the stream, and registers one LazyExport per serialized
// export in bundle order. Nothing is materialized during Load: exports are constructed,
// linked and deserialized the first time they are forced, either directly or by
// resolving a reference to them.
//
// Decode errors abort Load. Resolution misses, such as an unknown script import or an
// imported package that failed to load, are logged and resolve to nil.
package asset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/internal/hash"
	"github.com/arloliu/iopkg/internal/options"
	"github.com/arloliu/iopkg/names"
	"github.com/arloliu/iopkg/script"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/uobject"
	"github.com/arloliu/iopkg/version"
)

var le = endian.GetLittleEndianEngine()

// Provider loads packages by id. Implementations own package lifetimes and caching;
// a package only holds lookups into them.
type Provider interface {
	LoadPackage(id container.PackageID) (*Package, error)
}

// Package is one loaded package.
//
// Package embeds uobject.BaseObject, so it can serve as the outer of its top-level
// exports. All methods are safe for concurrent use.
type Package struct {
	uobject.BaseObject

	ID            container.PackageID
	Summary       section.Summary
	Names         *names.Table
	ImportMap     []section.ObjectIndex
	ExportMap     []section.ExportMapEntry
	BundleHeaders []section.ExportBundleHeader
	BundleEntries []section.ExportBundleEntry
	// ImportedPackageIDs lists the packages this package imports from, in slot order.
	ImportedPackageIDs []container.PackageID

	exportNames  []string
	exportIndex  map[uint64][]int
	exports      []*LazyExport
	reader       *archive.Reader
	global       *script.Table
	provider     Provider
	registry     *uobject.Registry
	deserializer uobject.Deserializer
	log          *zap.Logger

	importedOnce sync.Once
	imported     []*Package
}

// Load decodes a package from data.
//
// On success every serialized export is registered but none is materialized. Any
// decode error aborts the load and no Package is returned.
func Load(data []byte, opts ...LoadOption) (*Package, error) {
	cfg := newLoadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = Logger()
	}

	r := archive.NewReader(cfg.name, data, cfg.versions)
	h, err := decodeHeader(r, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("load package %s: %w", describe(cfg.name, r.Versions), err)
	}
	r.Name = h.name

	p := &Package{
		BaseObject: uobject.BaseObject{
			Name:  h.name,
			Flags: uobject.FlagPublic | uobject.FlagWasLoaded | uobject.FlagLoadCompleted,
		},
		ID:                 container.PackageIDFromName(h.name),
		Summary:            h.summary,
		Names:              h.names,
		ImportMap:          h.importMap,
		ExportMap:          h.exportMap,
		BundleHeaders:      h.bundleHeaders,
		BundleEntries:      h.bundleEntries,
		ImportedPackageIDs: h.importedIDs,
		reader:             r,
		global:             cfg.global,
		provider:           cfg.provider,
		registry:           cfg.registry,
		deserializer:       cfg.deserializer,
		log:                log.With(zap.String("package", h.name)),
	}

	if p.exportNames, err = p.resolveExportNames(); err != nil {
		return nil, fmt.Errorf("load package %q: %w", h.name, err)
	}
	p.exportIndex = make(map[uint64][]int, len(p.exportNames))
	for i, text := range p.exportNames {
		id := hash.FoldID(text)
		p.exportIndex[id] = append(p.exportIndex[id], i)
	}
	if err := p.registerExports(h.exportDataOffset); err != nil {
		return nil, fmt.Errorf("load package %q: %w", h.name, err)
	}

	if cfg.bulk != nil {
		r.AddPayload(archive.PayloadBulk, p.Summary.BulkDataStartOffset, cfg.bulk)
	}
	if cfg.optional != nil {
		r.AddPayload(archive.PayloadOptional, p.Summary.BulkDataStartOffset, cfg.optional)
	}

	return p, nil
}

func describe(name string, v *version.Versions) string {
	if name == "" {
		return "(" + v.Layout().String() + ")"
	}

	return fmt.Sprintf("%q (%s)", name, v.Layout())
}

// resolveExportNames resolves every export name once, so a bad name index is a decode
// error rather than a failure at resolution time.
func (p *Package) resolveExportNames() ([]string, error) {
	out := make([]string, len(p.ExportMap))
	for i := range p.ExportMap {
		text, err := names.Resolve(p.ExportMap[i].ObjectName, p.Names, p.global.Names())
		if err != nil {
			return nil, fmt.Errorf("export %d name: %w", i, err)
		}
		out[i] = text
	}

	return out, nil
}

// Versions returns the version descriptor of the package stream, including versions
// adopted from zen versioning info.
func (p *Package) Versions() *version.Versions {
	return p.reader.Versions
}

// Global returns the global script table the package resolves against.
func (p *Package) Global() *script.Table {
	return p.global
}

// HasFlags reports whether all bits of flags are set in the package flags.
func (p *Package) HasFlags(flags section.PackageFlags) bool {
	return p.Summary.PackageFlags.Has(flags)
}

// ExportCount returns the number of export map rows.
func (p *Package) ExportCount() int {
	return len(p.ExportMap)
}

// ExportName returns the resolved name of export i.
func (p *Package) ExportName(i int) (string, bool) {
	if i < 0 || i >= len(p.exportNames) {
		return "", false
	}

	return p.exportNames[i], true
}

// Export returns the slot of export i, or nil when i is out of range.
func (p *Package) Export(i int) *LazyExport {
	if i < 0 || i >= len(p.exports) {
		return nil
	}

	return p.exports[i]
}

// ExportObject forces export i.
func (p *Package) ExportObject(i int) (uobject.Object, error) {
	return p.ExportObjectContext(context.Background(), i)
}

// ExportObjectContext forces export i on the resolution chain carried by ctx. A
// deserializer passes the context of its reader, see LazyExport.ObjectContext.
func (p *Package) ExportObjectContext(ctx context.Context, i int) (uobject.Object, error) {
	e := p.Export(i)
	if e == nil {
		return nil, fmt.Errorf("%w: export %d, package %q has %d", errs.ErrExportIndexOutOfRange, i, p.Name, len(p.exports))
	}

	return e.ObjectContext(ctx)
}

// GetExport forces the first export named name. Names compare ignoring ASCII case when
// ignoreCase is set.
func (p *Package) GetExport(name string, ignoreCase bool) (uobject.Object, error) {
	return p.GetExportContext(context.Background(), name, ignoreCase)
}

// GetExportContext is GetExport on the resolution chain carried by ctx.
func (p *Package) GetExportContext(ctx context.Context, name string, ignoreCase bool) (uobject.Object, error) {
	for _, i := range p.exportIndex[hash.FoldID(name)] {
		text := p.exportNames[i]
		if text == name || (ignoreCase && strings.EqualFold(text, name)) {
			return p.exports[i].ObjectContext(ctx)
		}
	}

	return nil, fmt.Errorf("%w: %q in package %q", errs.ErrExportNotFound, name, p.Name)
}

// Payload returns a reader over an attached auxiliary stream.
func (p *Package) Payload(kind archive.PayloadKind) (*archive.Reader, error) {
	return p.reader.Payload(kind)
}

// Preload materializes every registered export, at most limit at a time when limit is
// positive. It stops at the first error.
func (p *Package) Preload(ctx context.Context, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, e := range p.exports {
		if e.State() == StateUnregistered {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := e.ObjectContext(ctx)

			return err
		})
	}

	return g.Wait()
}

// ImportedPackages loads the imported packages through the provider once and returns
// them in slot order. Slots whose package failed to load are nil.
func (p *Package) ImportedPackages() []*Package {
	p.importedOnce.Do(func() {
		if p.provider == nil {
			return
		}

		p.imported = make([]*Package, len(p.ImportedPackageIDs))
		for i, id := range p.ImportedPackageIDs {
			pkg, err := p.provider.LoadPackage(id)
			if err != nil {
				p.log.Debug("imported package unavailable",
					zap.Stringer("id", id),
					zap.Error(err),
				)
				continue
			}
			p.imported[i] = pkg
		}
	})

	return p.imported
}
