package names

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/section"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Header
	}{
		{"ascii short", []byte{0x00, 0x05}, Header{Length: 5}},
		{"ascii long", []byte{0x01, 0x02}, Header{Length: 0x102}},
		{"wide", []byte{0x80, 0x03}, Header{Wide: true, Length: 3}},
		{"wide max", []byte{0xFF, 0xFF}, Header{Wide: true, Length: 0x7FFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, h)
			require.Equal(t, tt.data, h.AppendTo(nil))
		})
	}

	_, err := ParseHeader([]byte{0x01})
	require.ErrorIs(t, err, errs.ErrInvalidNameHeader)
}

func TestLoadLegacyBatch(t *testing.T) {
	texts := []string{"None", "/Game/Maps/Arena", "Größe", "StaticMesh"}
	nameBlock, hashBlock := AppendLegacyBatch(texts)

	algorithm, hashes, err := ReadHashes(archive.NewReader("hashes", hashBlock, nil), len(texts))
	require.NoError(t, err)
	require.Equal(t, HashAlgorithmID, algorithm)

	r := archive.NewReader("names", nameBlock, nil)
	table, err := LoadLegacyBatch(r, len(texts), hashes)
	require.NoError(t, err)
	require.Equal(t, texts, table.Texts())
	require.Equal(t, r.Size(), r.Position())

	e, ok := table.Entry(2)
	require.True(t, ok)
	require.Equal(t, Hash("größe"), e.Hash)

	t.Run("Truncated", func(t *testing.T) {
		_, err := LoadLegacyBatch(archive.NewReader("names", nameBlock[:len(nameBlock)-3], nil), len(texts), nil)
		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("HashCountMismatch", func(t *testing.T) {
		_, err := LoadLegacyBatch(archive.NewReader("names", nameBlock, nil), len(texts), hashes[:1])
		require.ErrorIs(t, err, errs.ErrInvalidCount)
	})

	t.Run("CountBeyondData", func(t *testing.T) {
		_, err := LoadLegacyBatch(archive.NewReader("names", nameBlock, nil), 1<<20, nil)
		require.ErrorIs(t, err, errs.ErrTruncated)
	})
}

func TestLoadZenBatch(t *testing.T) {
	t.Run("MixedWidths", func(t *testing.T) {
		texts := []string{"Odd", "日本", "Material", "Ω"}
		data := AppendZenBatch(nil, texts)
		data = append(data, 0xAA) // trailing byte after the batch

		r := archive.NewReader("zen", data, nil)
		table, err := LoadZenBatch(r)
		require.NoError(t, err)
		require.Equal(t, texts, table.Texts())
		require.Equal(t, r.Size()-1, r.Position())

		e, _ := table.Entry(1)
		require.Equal(t, Hash("日本"), e.Hash)
	})

	t.Run("WideStringsAreAligned", func(t *testing.T) {
		data := AppendZenBatch(nil, []string{"Odd", "日本"})
		// count, string bytes, hash version, two hashes, two headers.
		strs := 4 + 4 + 8 + 2*8 + 2*2
		require.Equal(t, uint32(3+1+4), le.Uint32(data[4:8]))
		require.Equal(t, "Odd", string(data[strs:strs+3]))
		require.Equal(t, byte(0), data[strs+3])

		table, err := LoadZenBatch(archive.NewReader("zen", data, nil))
		require.NoError(t, err)
		require.Equal(t, []string{"Odd", "日本"}, table.Texts())
	})

	t.Run("Empty", func(t *testing.T) {
		r := archive.NewReader("zen", AppendZenBatch(nil, nil), nil)
		table, err := LoadZenBatch(r)
		require.NoError(t, err)
		require.Equal(t, 0, table.Len())
		require.Equal(t, int64(4), r.Position())
	})

	t.Run("DeclaredSizeTooSmall", func(t *testing.T) {
		data := AppendZenBatch(nil, []string{"Alpha", "Beta"})
		le.PutUint32(data[4:8], 3)
		_, err := LoadZenBatch(archive.NewReader("zen", data, nil))
		require.ErrorIs(t, err, errs.ErrInvalidNameHeader)
	})

	t.Run("NegativeCount", func(t *testing.T) {
		_, err := LoadZenBatch(archive.NewReader("zen", []byte{0xFF, 0xFF, 0xFF, 0xFF}, nil))
		require.ErrorIs(t, err, errs.ErrInvalidCount)
	})
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable("None", "Chair", "Chair")

	text, err := table.Lookup(1, 0)
	require.NoError(t, err)
	require.Equal(t, "Chair", text)

	text, err = table.Lookup(1, 3)
	require.NoError(t, err)
	require.Equal(t, "Chair_2", text)

	_, err = table.Lookup(3, 0)
	require.ErrorIs(t, err, errs.ErrNameIndexOutOfRange)

	var empty *Table
	_, err = empty.Lookup(0, 0)
	require.ErrorIs(t, err, errs.ErrNameIndexOutOfRange)
}

func TestTable_Find(t *testing.T) {
	table := NewTable("None", "Chair", "Chair", "chair")

	i, ok := table.Find("Chair")
	require.True(t, ok)
	require.Equal(t, 1, i)

	i, ok = table.Find("chair")
	require.True(t, ok)
	require.Equal(t, 3, i)

	_, ok = table.Find("Table")
	require.False(t, ok)
}

func TestTable_FindFold(t *testing.T) {
	table := NewTable("None", "Chair", "chair", "/Game/Props/Table")

	i, ok := table.FindFold("CHAIR")
	require.True(t, ok)
	require.Equal(t, 1, i)

	i, ok = table.FindFold("/game/props/table")
	require.True(t, ok)
	require.Equal(t, 3, i)

	_, ok = table.FindFold("Chairs")
	require.False(t, ok)

	var empty *Table
	_, ok = empty.FindFold("None")
	require.False(t, ok)
}

func TestResolve(t *testing.T) {
	local := NewTable("None", "Local")
	global := NewTable("G0", "G1", "G2", "G3", "G4", "/Script/Engine")

	text, err := Resolve(section.NewMappedName(1, section.MappedNamePackage, 0), local, global)
	require.NoError(t, err)
	require.Equal(t, "Local", text)

	// Beyond the local table but valid globally.
	text, err = Resolve(section.NewMappedName(5, section.MappedNameGlobal, 0), local, global)
	require.NoError(t, err)
	require.Equal(t, "/Script/Engine", text)

	// Within local bounds, but global must still win.
	text, err = Resolve(section.NewMappedName(1, section.MappedNameGlobal, 0), local, global)
	require.NoError(t, err)
	require.Equal(t, "G1", text)

	_, err = Resolve(section.NewMappedName(5, section.MappedNamePackage, 0), local, global)
	require.ErrorIs(t, err, errs.ErrNameIndexOutOfRange)

	_, err = Resolve(section.NewMappedName(0, section.MappedNameGlobal, 0), local, nil)
	require.ErrorIs(t, err, errs.ErrNameIndexOutOfRange)
}
