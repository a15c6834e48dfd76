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

// header is the decoded, layout-independent package header.
type header struct {
	summary          section.Summary
	name             string
	names            *names.Table
	importMap        []section.ObjectIndex
	exportMap        []section.ExportMapEntry
	bundleHeaders    []section.ExportBundleHeader
	bundleEntries    []section.ExportBundleEntry
	importedIDs      []container.PackageID
	exportDataOffset int64
}

// decodeHeader selects the decode path from the stream's engine version. No other
// setting influences which layout is assumed.
func decodeHeader(r *archive.Reader, cfg *LoadConfig, log *zap.Logger) (*header, error) {
	switch layout := r.Versions.Layout(); layout {
	case version.LayoutZen:
		return decodeZenHeader(r, cfg, log)
	case version.LayoutLegacy:
		return decodeLegacyHeader(r, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown layout %s", errs.ErrInvalidHeaderSize, layout)
	}
}

// packageName resolves the summary name, unless the caller supplied one.
func packageName(cfg *LoadConfig, m section.MappedName, local *names.Table) (string, error) {
	if cfg.name != "" {
		return cfg.name, nil
	}

	name, err := names.Resolve(m, local, cfg.global.Names())
	if err != nil {
		return "", fmt.Errorf("package name: %w", err)
	}

	return name, nil
}

func readImportMap(r *archive.Reader, offset int32, count int) ([]section.ObjectIndex, error) {
	if err := r.Seek(int64(offset)); err != nil {
		return nil, fmt.Errorf("import map: %w", err)
	}
	imports, err := archive.ReadArray(r, count, section.ObjectIndexSize, section.ReadObjectIndex)
	if err != nil {
		return nil, fmt.Errorf("import map: %w", err)
	}

	return imports, nil
}

func readExportMap(r *archive.Reader, offset int32, count int, layout version.Layout) ([]section.ExportMapEntry, error) {
	if err := r.Seek(int64(offset)); err != nil {
		return nil, fmt.Errorf("export map: %w", err)
	}
	exports, err := archive.ReadArray(r, count, section.ExportMapEntrySize(layout), section.ReadExportMapEntry(layout))
	if err != nil {
		return nil, fmt.Errorf("export map: %w", err)
	}

	return exports, nil
}
