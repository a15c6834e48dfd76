package asset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/names"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/version"
)

// decodeZenHeader decodes a package cooked by engine 5.0 or later.
//
// Bundle header count and imported package ids live in the container's store entry,
// not in the package. Without a store entry the package is read with one bundle and no
// imports.
func decodeZenHeader(r *archive.Reader, cfg *LoadConfig, log *zap.Logger) (*header, error) {
	b, err := r.ReadBytes(section.ZenSummarySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeaderSize, err)
	}
	raw, err := section.ParseZenSummary(b, le)
	if err != nil {
		return nil, err
	}
	summary, err := raw.Unify()
	if err != nil {
		return nil, err
	}

	if raw.HasVersioningInfo != 0 {
		info, err := section.ReadVersioningInfo(r)
		if err != nil {
			return nil, err
		}
		r.Versions.Adopt(info.PackageVersion, info.Licensee, info.CustomVersions)
	}

	h := &header{
		summary:          summary,
		exportDataOffset: int64(raw.HeaderSize),
	}
	if h.names, err = names.LoadZenBatch(r); err != nil {
		return nil, fmt.Errorf("name map: %w", err)
	}
	h.summary.NameCount = h.names.Len()
	if h.name, err = packageName(cfg, raw.Name, h.names); err != nil {
		return nil, err
	}

	entry, ok := cfg.container.Lookup(container.PackageIDFromName(h.name))
	if !ok {
		log.Warn("store entry not found, package data will not be fully read",
			zap.String("package", h.name),
			zap.Bool("container_header", cfg.container != nil),
		)
		entry = container.StoreEntry{ExportBundleCount: 1}
	}
	if entry.ExportBundleCount < 0 {
		return nil, fmt.Errorf("%w: store entry declares %d bundles", errs.ErrInvalidCount, entry.ExportBundleCount)
	}
	h.importedIDs = entry.ImportedPackages

	if h.importMap, err = readImportMap(r, raw.ImportMapOffset, summary.ImportCount); err != nil {
		return nil, err
	}
	if h.exportMap, err = readExportMap(r, raw.ExportMapOffset, summary.ExportCount, version.LayoutZen); err != nil {
		return nil, err
	}

	if err := r.Seek(int64(raw.ExportBundleEntriesOffset)); err != nil {
		return nil, fmt.Errorf("export bundle entries: %w", err)
	}
	h.bundleEntries, err = archive.ReadArray(r, summary.ExportCount*2, section.ExportBundleEntrySize, section.ReadExportBundleEntry)
	if err != nil {
		return nil, fmt.Errorf("export bundle entries: %w", err)
	}

	// Graph arcs after the headers are not needed.
	if err := r.Seek(int64(raw.GraphDataOffset)); err != nil {
		return nil, fmt.Errorf("export bundle headers: %w", err)
	}
	h.bundleHeaders, err = archive.ReadArray(r, int(entry.ExportBundleCount), section.ZenBundleHeaderSize, section.ReadExportBundleHeader(version.LayoutZen))
	if err != nil {
		return nil, fmt.Errorf("export bundle headers: %w", err)
	}

	return h, nil
}
