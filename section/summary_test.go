package section

import (
	"testing"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
	"github.com/stretchr/testify/require"
)

func TestLegacySummary_ParseAndUnify(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	s := LegacySummary{
		Name:                NewMappedName(0, MappedNamePackage, 0),
		PackageFlags:        PackageFlagCooked | PackageFlagFilterEditorOnly,
		CookedHeaderSize:    1000,
		NameMapNamesOffset:  64,
		NameMapNamesSize:    40,
		NameMapHashesOffset: 104,
		NameMapHashesSize:   8 * 4, // algorithm id + 3 names
		ImportMapOffset:     136,
		ExportMapOffset:     136 + 2*ObjectIndexSize,
		ExportBundlesOffset: 136 + 2*ObjectIndexSize + 3*LegacyExportMapEntrySize,
		GraphDataOffset:     600,
		GraphDataSize:       12,
	}

	data := s.Bytes(engine)
	require.Len(t, data, LegacySummarySize)

	parsed, err := ParseLegacySummary(data, engine)
	require.NoError(t, err)
	require.Equal(t, s, parsed)

	sum, err := parsed.Unify()
	require.NoError(t, err)
	require.Equal(t, version.LayoutLegacy, sum.Layout)
	require.Equal(t, 3, sum.NameCount)
	require.Equal(t, 2, sum.ImportCount)
	require.Equal(t, 3, sum.ExportCount)
	require.Equal(t, int64(612), sum.TotalHeaderSize)
	require.True(t, sum.PackageFlags.Has(PackageFlagFilterEditorOnly))

	_, err = ParseLegacySummary(data[:LegacySummarySize-1], engine)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestLegacySummary_UnifyRejectsBadArithmetic(t *testing.T) {
	base := LegacySummary{
		NameMapHashesSize:   16,
		ImportMapOffset:     100,
		ExportMapOffset:     108,
		ExportBundlesOffset: 108 + LegacyExportMapEntrySize,
	}

	tests := []struct {
		name   string
		mutate func(*LegacySummary)
	}{
		{"hash size not multiple", func(s *LegacySummary) { s.NameMapHashesSize = 12 }},
		{"hash size empty", func(s *LegacySummary) { s.NameMapHashesSize = 0 }},
		{"export span negative", func(s *LegacySummary) { s.ExportBundlesOffset = s.ExportMapOffset - 8 }},
		{"export span partial", func(s *LegacySummary) { s.ExportBundlesOffset++ }},
		{"import span partial", func(s *LegacySummary) { s.ImportMapOffset = 101 }},
		{"negative graph size", func(s *LegacySummary) { s.GraphDataSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			_, err := s.Unify()
			require.ErrorIs(t, err, errs.ErrInvalidCount)
		})
	}

	_, err := base.Unify()
	require.NoError(t, err)
}

func TestZenSummary_ParseAndUnify(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	s := ZenSummary{
		HasVersioningInfo:         1,
		HeaderSize:                512,
		Name:                      NewMappedName(2, MappedNamePackage, 0),
		PackageFlags:              PackageFlagCooked,
		ImportMapOffset:           200,
		ExportMapOffset:           200 + 4*ObjectIndexSize,
		ExportBundleEntriesOffset: 200 + 4*ObjectIndexSize + 2*ZenExportMapEntrySize,
		GraphDataOffset:           480,
	}

	data := s.Bytes(engine)
	require.Len(t, data, ZenSummarySize)

	parsed, err := ParseZenSummary(data, engine)
	require.NoError(t, err)
	require.Equal(t, s, parsed)

	sum, err := parsed.Unify()
	require.NoError(t, err)
	require.Equal(t, version.LayoutZen, sum.Layout)
	require.Equal(t, 4, sum.ImportCount)
	require.Equal(t, 2, sum.ExportCount)
	require.Equal(t, int64(480+512), sum.TotalHeaderSize)

	s.ExportBundleEntriesOffset -= 1
	_, err = s.Unify()
	require.ErrorIs(t, err, errs.ErrInvalidCount)
}

func TestReadVersioningInfo(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	info := VersioningInfo{
		ZenVersion:     1,
		PackageVersion: version.FileVersion{UE4: 522, UE5: 1008},
		Licensee:       0,
		CustomVersions: []version.CustomVersion{
			{Key: version.GUID{0xA, 0xB, 0xC, 0xD}, Version: 3},
			{Key: version.GUID{1, 1, 1, 1}, Version: 40},
		},
	}

	r := archive.NewReader("vi", info.AppendTo(nil, engine), nil)
	got, err := ReadVersioningInfo(r)
	require.NoError(t, err)
	require.Equal(t, info, got)
	require.Equal(t, r.Size(), r.Position())

	bad := info.AppendTo(nil, engine)
	engine.PutUint32(bad[16:20], 0xFFFFFFFF)
	_, err = ReadVersioningInfo(archive.NewReader("vi", bad, nil))
	require.ErrorIs(t, err, errs.ErrInvalidCount)

	_, err = ReadVersioningInfo(archive.NewReader("vi", info.AppendTo(nil, engine)[:30], nil))
	require.ErrorIs(t, err, errs.ErrTruncated)
}
