package asset

import (
	"fmt"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/names"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/version"
)

// decodeLegacyHeader decodes a package cooked before engine 5.0.
//
// Bundle headers are not stored explicitly in this layout. They are reconstructed
// from the bundle region, see readLegacyBundles.
func decodeLegacyHeader(r *archive.Reader, cfg *LoadConfig) (*header, error) {
	b, err := r.ReadBytes(section.LegacySummarySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeaderSize, err)
	}
	raw, err := section.ParseLegacySummary(b, le)
	if err != nil {
		return nil, err
	}
	summary, err := raw.Unify()
	if err != nil {
		return nil, err
	}

	h := &header{
		summary:          summary,
		exportDataOffset: int64(raw.GraphDataOffset) + int64(raw.GraphDataSize),
	}

	if err := r.Seek(int64(raw.NameMapHashesOffset)); err != nil {
		return nil, fmt.Errorf("name hashes: %w", err)
	}
	_, hashes, err := names.ReadHashes(r, summary.NameCount)
	if err != nil {
		return nil, err
	}
	if err := r.Seek(int64(raw.NameMapNamesOffset)); err != nil {
		return nil, fmt.Errorf("name map: %w", err)
	}
	if h.names, err = names.LoadLegacyBatch(r, summary.NameCount, hashes); err != nil {
		return nil, fmt.Errorf("name map: %w", err)
	}
	if h.name, err = packageName(cfg, raw.Name, h.names); err != nil {
		return nil, err
	}

	if h.importMap, err = readImportMap(r, raw.ImportMapOffset, summary.ImportCount); err != nil {
		return nil, err
	}
	if h.exportMap, err = readExportMap(r, raw.ExportMapOffset, summary.ExportCount, version.LayoutLegacy); err != nil {
		return nil, err
	}

	if err := r.Seek(int64(raw.ExportBundlesOffset)); err != nil {
		return nil, fmt.Errorf("export bundles: %w", err)
	}
	if h.bundleHeaders, h.bundleEntries, err = readLegacyBundles(r, raw.GraphDataOffset-raw.ExportBundlesOffset); err != nil {
		return nil, err
	}

	if err := r.Seek(int64(raw.GraphDataOffset)); err != nil {
		return nil, fmt.Errorf("graph data: %w", err)
	}
	if h.importedIDs, err = container.ReadGraphData(r); err != nil {
		return nil, err
	}

	return h, nil
}

// readLegacyBundles reconstructs bundle headers from a region holding every header
// followed by every entry, all 8 bytes wide.
//
// Each header read consumes one slot of the region's budget and declares how many
// entries follow. Reading stops once the declared entries fill the remaining budget;
// any other outcome means the region is inconsistent.
func readLegacyBundles(r *archive.Reader, regionSize int32) ([]section.ExportBundleHeader, []section.ExportBundleEntry, error) {
	slots, err := section.CountRecords(0, regionSize, section.ExportBundleEntrySize, "export bundle region")
	if err != nil {
		return nil, nil, err
	}

	var (
		remaining = int64(slots)
		found     int64
		headers   []section.ExportBundleHeader
	)
	read := section.ReadExportBundleHeader(version.LayoutLegacy)
	for found < remaining {
		remaining--
		bh, err := read(r)
		if err != nil {
			return nil, nil, fmt.Errorf("export bundle header %d: %w", len(headers), err)
		}
		found += int64(bh.EntryCount)
		headers = append(headers, bh)
	}

	if found != remaining {
		return nil, nil, fmt.Errorf("%w: headers declare %d entries, region holds %d", errs.ErrBundleEntryMismatch, found, remaining)
	}

	entries, err := archive.ReadArray(r, int(found), section.ExportBundleEntrySize, section.ReadExportBundleEntry)
	if err != nil {
		return nil, nil, fmt.Errorf("export bundle entries: %w", err)
	}

	return headers, entries, nil
}
