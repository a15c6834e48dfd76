package section

import (
	"fmt"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
)

// Readers for the fixed records, for use with archive.ReadArray.

// ReadMappedName reads a mapped name at the cursor.
func ReadMappedName(r *archive.Reader) (MappedName, error) {
	b, err := r.ReadBytes(MappedNameSize)
	if err != nil {
		return MappedName{}, err
	}

	return ParseMappedName(b, endian.GetLittleEndianEngine())
}

// ReadObjectIndex reads an object index at the cursor.
func ReadObjectIndex(r *archive.Reader) (ObjectIndex, error) {
	v, err := r.ReadUint64()
	return ObjectIndex(v), err
}

// ReadExportMapEntry returns a reader for export map rows of layout.
func ReadExportMapEntry(layout version.Layout) func(*archive.Reader) (ExportMapEntry, error) {
	size := ExportMapEntrySize(layout)
	return func(r *archive.Reader) (ExportMapEntry, error) {
		b, err := r.ReadBytes(size)
		if err != nil {
			return ExportMapEntry{}, err
		}

		return ParseExportMapEntry(b, layout, endian.GetLittleEndianEngine())
	}
}

// ReadExportBundleEntry reads a bundle entry at the cursor.
func ReadExportBundleEntry(r *archive.Reader) (ExportBundleEntry, error) {
	b, err := r.ReadBytes(ExportBundleEntrySize)
	if err != nil {
		return ExportBundleEntry{}, err
	}

	return ParseExportBundleEntry(b, endian.GetLittleEndianEngine())
}

// ReadExportBundleHeader returns a reader for bundle headers of layout.
func ReadExportBundleHeader(layout version.Layout) func(*archive.Reader) (ExportBundleHeader, error) {
	size := BundleHeaderSize(layout)
	return func(r *archive.Reader) (ExportBundleHeader, error) {
		b, err := r.ReadBytes(size)
		if err != nil {
			return ExportBundleHeader{}, err
		}

		return ParseExportBundleHeader(b, layout, endian.GetLittleEndianEngine())
	}
}

// ReadVersioningInfo reads the versioning block that follows a zen summary.
func ReadVersioningInfo(r *archive.Reader) (VersioningInfo, error) {
	var (
		info VersioningInfo
		err  error
	)

	if info.ZenVersion, err = r.ReadUint32(); err != nil {
		return VersioningInfo{}, fmt.Errorf("versioning info: %w", err)
	}
	if info.PackageVersion.UE4, err = r.ReadInt32(); err != nil {
		return VersioningInfo{}, fmt.Errorf("versioning info: %w", err)
	}
	if info.PackageVersion.UE5, err = r.ReadInt32(); err != nil {
		return VersioningInfo{}, fmt.Errorf("versioning info: %w", err)
	}
	if info.Licensee, err = r.ReadInt32(); err != nil {
		return VersioningInfo{}, fmt.Errorf("versioning info: %w", err)
	}

	count, err := r.ReadInt32()
	if err != nil {
		return VersioningInfo{}, fmt.Errorf("versioning info: %w", err)
	}
	if count < 0 {
		return VersioningInfo{}, fmt.Errorf("%w: %d custom versions", errs.ErrInvalidCount, count)
	}

	info.CustomVersions, err = archive.ReadArray(r, int(count), CustomVersionSize, func(r *archive.Reader) (version.CustomVersion, error) {
		key, err := r.ReadGUID()
		if err != nil {
			return version.CustomVersion{}, err
		}
		v, err := r.ReadInt32()

		return version.CustomVersion{Key: key, Version: v}, err
	})
	if err != nil {
		return VersioningInfo{}, fmt.Errorf("custom versions: %w", err)
	}

	return info, nil
}
