// Package iopkg loads cooked game asset packages into lazily materialized object
// graphs.
//
// A cooked package is a binary container holding name, import and export tables plus
// the serialized data of every export. Two header layouts exist: the legacy layout
// written before engine 5.0 and the bundle-based zen layout written since. The engine
// version of the stream selects the layout; nothing else does.
//
// # Core Features
//
//   - Header decoding for both layouts into one normalized summary
//   - Name tables with local and global (script) names
//   - Lazy, memoized export materialization in bundle order
//   - Cross-package import resolution through a pluggable provider
//   - Compressed container chunks (Zlib, Gzip, LZ4, Zstd)
//
// # Basic Usage
//
// Loading a single package:
//
//	global, _ := iopkg.LoadScriptTable(globalBytes)
//	pkg, err := iopkg.LoadPackage(data,
//	    asset.WithGlobalData(global),
//	    asset.WithEngineVersion(version.Engine{Major: 5, Minor: 1}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for i := range pkg.ExportCount() {
//	    obj, err := pkg.ExportObject(i)
//	    ...
//	}
//
// Loading packages that import each other:
//
//	header, _ := iopkg.LoadContainerHeader(containerBytes)
//	p, _ := iopkg.NewProvider(
//	    provider.WithGlobalData(global),
//	    provider.WithContainerHeader(header),
//	)
//	id := p.Add("/Game/Maps/Level", levelBytes)
//	p.Add("/Game/Meshes/Rock", rockBytes)
//	level, _ := p.LoadPackage(id)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the asset, script,
// container and provider packages. For fine-grained control, use those packages
// directly.
package iopkg

import (
	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/asset"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/provider"
	"github.com/arloliu/iopkg/script"
	"github.com/arloliu/iopkg/version"
)

// LoadPackage decodes a cooked package.
//
// The package is loaded for engine 5.0 (zen layout) unless an option selects another
// engine. Every serialized export is registered but none is materialized.
//
// Available options:
//   - asset.WithEngineVersion(version.Engine) / asset.WithVersions(*version.Versions)
//   - asset.WithGlobalData(*script.Table)
//   - asset.WithContainerHeader(*container.Header)
//   - asset.WithProvider(asset.Provider)
//   - asset.WithRegistry(*uobject.Registry) / asset.WithDeserializer(uobject.Deserializer)
//   - asset.WithBulkData(archive.PayloadSource) / asset.WithOptionalBulkData(archive.PayloadSource)
//   - asset.WithName(string) / asset.WithLogger(*zap.Logger)
func LoadPackage(data []byte, opts ...asset.LoadOption) (*asset.Package, error) {
	return asset.Load(data, opts...)
}

// LoadPackageForEngine decodes a cooked package written by the given engine release.
//
// Example:
//
//	pkg, err := iopkg.LoadPackageForEngine(data, version.Engine{Major: 4, Minor: 27})
func LoadPackageForEngine(data []byte, engine version.Engine, opts ...asset.LoadOption) (*asset.Package, error) {
	return asset.Load(data, append([]asset.LoadOption{asset.WithEngineVersion(engine)}, opts...)...)
}

// LoadScriptTable decodes the global script object table. Build it once, before any
// package is loaded, and share it between loads.
func LoadScriptTable(data []byte) (*script.Table, error) {
	return script.Load(archive.NewReader("global", data, nil))
}

// LoadContainerHeader decodes a container index holding the store entries of the
// packages in one container.
func LoadContainerHeader(data []byte) (*container.Header, error) {
	return container.ParseHeader(data)
}

// NewProvider creates an in-memory provider that loads packages on demand and
// resolves imports between them.
func NewProvider(opts ...provider.Option) (*provider.Memory, error) {
	return provider.NewMemory(opts...)
}

// PackageID returns the id of the package with the given name. Ids are case-insensitive
// and match the ids stored in container headers and import tables.
//
// Example:
//
//	id := iopkg.PackageID("/Game/Maps/Level")
//	entry, ok := header.Lookup(id)
func PackageID(name string) container.PackageID {
	return container.PackageIDFromName(name)
}
