package section

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectIndex_Kind(t *testing.T) {
	tests := []struct {
		name  string
		index ObjectIndex
		kind  ObjectKind
	}{
		{"null sentinel", NullObjectIndex, KindNull},
		{"export zero", NewExportIndex(0), KindExport},
		{"export large", NewExportIndex(1 << 40), KindExport},
		{"script import", NewScriptImport(0x1234_5678_9ABC), KindScriptImport},
		{"zen package import", NewPackageImport(3, 0xCAFEBABE), KindPackageImport},
		{"legacy package import", NewGlobalPackageImport(77), KindPackageImport},
		{"null type bits without sentinel", ObjectIndex(3<<62 | 5), KindNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, tt.index.Kind())
			require.Equal(t, tt.kind == KindNull, tt.index.IsNull())
			require.Equal(t, tt.kind == KindExport, tt.index.IsExport())
			require.Equal(t, tt.kind == KindScriptImport, tt.index.IsScriptImport())
			require.Equal(t, tt.kind == KindPackageImport, tt.index.IsPackageImport())
		})
	}
}

func TestObjectIndex_Decompose(t *testing.T) {
	require.Equal(t, uint64(42), NewExportIndex(42).AsExport())

	ref := NewPackageImport(7, 0xDEADBEEF).AsPackageImportRef()
	require.Equal(t, uint32(7), ref.ImportedPackageIndex)
	require.Equal(t, uint32(0xDEADBEEF), ref.ExportHash)

	// The slot is truncated to the 30 bits left between the kind and the hash.
	ref = NewPackageImport(0xFFFFFFFF, 1).AsPackageImportRef()
	require.Equal(t, uint32(maxImportRefSlot), ref.ImportedPackageIndex)
	require.Equal(t, KindPackageImport, NewPackageImport(0xFFFFFFFF, 1).Kind())

	require.Equal(t, uint64(0x1234), NewScriptImport(0x1234).ID())
	require.Equal(t, "Null", NullObjectIndex.String())
	require.Equal(t, "ScriptImport(0x1234)", NewScriptImport(0x1234).String())
}

func TestPackageIndex(t *testing.T) {
	require.True(t, PackageIndex(0).IsNull())

	imp := PackageIndex(-3)
	require.True(t, imp.IsImport())
	require.False(t, imp.IsExport())
	require.Equal(t, 2, imp.ImportIndex())

	// The most negative value must not wrap in int32.
	require.Equal(t, math.MaxInt32, PackageIndex(math.MinInt32).ImportIndex())

	exp := PackageIndex(1)
	require.True(t, exp.IsExport())
	require.Equal(t, 0, exp.ExportIndex())
}

func TestMappedName(t *testing.T) {
	local := NewMappedName(12, MappedNamePackage, 0)
	require.Equal(t, uint32(12), local.NameIndex())
	require.False(t, local.IsGlobal())

	global := NewMappedName(5, MappedNameGlobal, 2)
	require.Equal(t, uint32(5), global.NameIndex())
	require.True(t, global.IsGlobal())
	require.Equal(t, MappedNameGlobal, global.Type())
	require.Equal(t, "Global[5]#2", global.String())

	require.True(t, NewMappedName(1, MappedNameContainer, 0).IsGlobal())
}
