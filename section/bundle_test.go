package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
)

func TestExportBundleEntry(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	data := []byte{0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	e, err := ParseExportBundleEntry(data, engine)
	require.NoError(t, err)
	require.Equal(t, ExportBundleEntry{LocalExportIndex: 3, CommandType: CommandSerialize}, e)
	require.Equal(t, data, e.AppendTo(nil, engine))

	_, err = ParseExportBundleEntry(data[:4], engine)
	require.ErrorIs(t, err, errs.ErrTruncated)

	require.Equal(t, "Create", CommandCreate.String())
	require.Equal(t, "Serialize", CommandSerialize.String())
	require.Equal(t, "Unknown", ExportCommandType(9).String())
}

func TestExportBundleHeader_Layouts(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("legacy", func(t *testing.T) {
		h := ExportBundleHeader{SerialOffset: 0xFFFF, FirstEntryIndex: 4, EntryCount: 6}
		buf := h.AppendTo(nil, version.LayoutLegacy, engine)
		require.Len(t, buf, LegacyBundleHeaderSize)

		got, err := ParseExportBundleHeader(buf, version.LayoutLegacy, engine)
		require.NoError(t, err)
		require.Equal(t, ExportBundleHeader{FirstEntryIndex: 4, EntryCount: 6}, got)
	})

	t.Run("zen", func(t *testing.T) {
		h := ExportBundleHeader{SerialOffset: 0x1122_3344_5566, FirstEntryIndex: 1, EntryCount: 2}
		buf := h.AppendTo(nil, version.LayoutZen, engine)
		require.Len(t, buf, ZenBundleHeaderSize)

		got, err := ParseExportBundleHeader(buf, version.LayoutZen, engine)
		require.NoError(t, err)
		require.Equal(t, h, got)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ParseExportBundleHeader(make([]byte, 8), version.LayoutZen, engine)
		require.ErrorIs(t, err, errs.ErrTruncated)
	})
}
