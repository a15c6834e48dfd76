package asset

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/internal/fixture"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/uobject"
)

func TestResolve_GlobalExportName(t *testing.T) {
	global := newGlobal(t)
	beyond := section.NewMappedName(6, section.MappedNameGlobal, 0)
	numbered := section.NewMappedName(4, section.MappedNameGlobal, 2)

	a := fixture.NewExport("", u32(1))
	a.MappedName = &beyond
	b := fixture.NewExport("", u32(2))
	b.MappedName = &numbered
	fp := &fixture.Package{Name: "/Game/Globals", Exports: []fixture.Export{a, b}}

	p := loadZen(t, fp, WithGlobalData(global))
	require.Less(t, p.Names.Len(), 6)

	name, _ := p.ExportName(0)
	require.Equal(t, "GlobalOnly", name)
	name, _ = p.ExportName(1)
	require.Equal(t, "Zero_1", name)

	obj, err := p.GetExport("GlobalOnly", false)
	require.NoError(t, err)
	require.Equal(t, "GlobalOnly", obj.Base().Name)
}

func TestResolve_Script(t *testing.T) {
	log, logs := newObserver()
	p := loadLegacy(t, twoExportFixture(), WithGlobalData(newGlobal(t)), WithLogger(log))

	r := p.ResolveObjectIndex(testClassIdx)
	rs, ok := r.(*ResolvedScript)
	require.True(t, ok)
	require.Equal(t, testClassIdx, rs.Entry.GlobalIndex)
	require.Equal(t, "TestObject", r.Name())
	require.Equal(t, "/Script/Test", r.Outer().Name())
	require.Equal(t, "Class", r.Class().Name())
	require.Nil(t, r.Super())

	obj, err := r.Object()
	require.NoError(t, err)
	want, _ := p.Global().Object(testClassIdx)
	require.Same(t, want, obj)
	again, _ := p.ResolveObjectIndex(testClassIdx).Object()
	require.Same(t, obj, again)

	unknown := section.NewScriptImport(0xDEAD)
	require.Nil(t, p.ResolveObjectIndex(unknown))
	missing := logs.FilterMessage("missing script import").All()
	require.Len(t, missing, 1)
	require.Equal(t, "0x400000000000DEAD", missing[0].ContextMap()["index"])
	require.Equal(t, "/Game/Maps/Level", missing[0].ContextMap()["package"])
}

func TestResolve_Exports(t *testing.T) {
	log, logs := newObserver()
	reg, _ := newRegistry()
	fp := twoExportFixture()
	fp.Imports = []section.ObjectIndex{testClassIdx}
	p := loadLegacy(t, fp, WithGlobalData(newGlobal(t)), WithRegistry(reg), WithLogger(log))

	require.Nil(t, p.ResolveObjectIndex(section.NullObjectIndex))
	require.Zero(t, logs.Len())

	require.Nil(t, p.ResolveObjectIndex(section.NewExportIndex(10)))
	require.Equal(t, 1, logs.FilterMessage("export index out of range").Len())

	t.Run("export view", func(t *testing.T) {
		r := p.ResolveObjectIndex(section.NewExportIndex(1))
		re, ok := r.(*ResolvedExport)
		require.True(t, ok)
		require.Same(t, p, re.Package)
		require.Equal(t, 1, re.Index)
		require.Equal(t, "Child", r.Name())
		require.Equal(t, "Level", r.Outer().Name())
		require.Equal(t, "TestObject", r.Class().Name())
		require.Nil(t, r.Super())

		obj, err := r.Object()
		require.NoError(t, err)
		direct, err := p.ExportObject(1)
		require.NoError(t, err)
		require.Same(t, direct, obj)
	})

	t.Run("top-level outer is the package", func(t *testing.T) {
		outer := p.ResolveObjectIndex(section.NewExportIndex(0)).Outer()
		rl, ok := outer.(*ResolvedLoaded)
		require.True(t, ok)
		require.Same(t, uobject.Object(p), rl.Obj)
		require.Equal(t, "/Game/Maps/Level", outer.Name())
		require.Nil(t, outer.Outer())
	})

	t.Run("loaded view", func(t *testing.T) {
		child, err := p.ExportObject(1)
		require.NoError(t, err)

		r := &ResolvedLoaded{Obj: child}
		require.Equal(t, "Child", r.Name())
		require.Equal(t, "Level", r.Outer().Name())
		require.Equal(t, "TestObject", r.Class().Name())
		require.Nil(t, r.Super())
	})

	t.Run("package index", func(t *testing.T) {
		require.Equal(t, "TestObject", p.ResolvePackageIndex(-1).Name())
		require.Equal(t, "Child", p.ResolvePackageIndex(2).Name())
		require.Nil(t, p.ResolvePackageIndex(0))
		require.Nil(t, p.ResolvePackageIndex(-9))
		require.Nil(t, p.ResolvePackageIndex(3))
		require.Nil(t, p.ResolvePackageIndex(math.MinInt32))
		require.Nil(t, p.ResolvePackageIndex(math.MaxInt32))
	})
}

func zenSibling() *fixture.Package {
	fp := &fixture.Package{Name: "/Game/B"}
	for i := range 4 {
		e := fixture.NewExport(fmt.Sprintf("Export%d", i), u32(uint32(100+i))) //nolint: gosec
		e.Class = testClassIdx
		e.PublicExportHash = uint64(0x1000 + i) //nolint: gosec
		fp.Exports = append(fp.Exports, e)
	}

	return fp
}

func TestResolve_ZenPackageImport(t *testing.T) {
	global := newGlobal(t)
	reg, _ := newRegistry()

	fb := zenSibling()
	fa := &fixture.Package{
		Name:             "/Game/A",
		Imports:          []section.ObjectIndex{section.NewPackageImport(0, 0x1003)},
		ImportedPackages: []container.PackageID{fb.ID()},
	}
	user := fixture.NewExport("User", u32(1))
	user.Class = testClassIdx
	user.Template = section.NewPackageImport(0, 0x1003)
	fa.Exports = []fixture.Export{user}
	ch := fixture.Container(7, fa, fb)

	pb := loadZen(t, fb, WithContainerHeader(ch), WithGlobalData(global), WithRegistry(reg))
	provider := newMapProvider(pb)
	pa := loadZen(t, fa, WithContainerHeader(ch), WithGlobalData(global), WithRegistry(reg), WithProvider(provider))

	require.Equal(t, []container.PackageID{pb.ID}, pa.ImportedPackageIDs)

	r := pa.ResolveObjectIndex(pa.ImportMap[0])
	re, ok := r.(*ResolvedExport)
	require.True(t, ok)
	require.Same(t, pb, re.Package)
	require.Equal(t, 3, re.Index)
	require.Equal(t, "Export3", r.Name())

	viaImport, err := r.Object()
	require.NoError(t, err)
	direct, err := pb.ExportObject(3)
	require.NoError(t, err)
	require.Same(t, direct, viaImport)
	require.Equal(t, uint32(103), direct.(*testObject).Value)

	obj, err := pa.ExportObject(0)
	require.NoError(t, err)
	tmpl, err := obj.Base().Template.Object()
	require.NoError(t, err)
	require.Same(t, direct, tmpl)

	require.Equal(t, 1, provider.calls)

	t.Run("unknown hash", func(t *testing.T) {
		require.Nil(t, pa.ResolveObjectIndex(section.NewPackageImport(0, 0x9999)))
	})

	t.Run("slot out of range", func(t *testing.T) {
		require.Nil(t, pa.ResolveObjectIndex(section.NewPackageImport(4, 0x1003)))
	})
}

func TestResolve_LegacyPackageImport(t *testing.T) {
	fb := &fixture.Package{Name: "/Game/B"}
	for i := range 3 {
		e := fixture.NewExport(fmt.Sprintf("Export%d", i), u32(uint32(i)))      //nolint: gosec
		e.GlobalImportIndex = section.NewGlobalPackageImport(uint64(0x500 + i)) //nolint: gosec
		fb.Exports = append(fb.Exports, e)
	}
	fa := twoExportFixture()
	fa.Name = "/Game/A"
	fa.Imports = []section.ObjectIndex{section.NewGlobalPackageImport(0x502)}
	fa.ImportedPackages = []container.PackageID{container.PackageIDFromName("/Game/Gone"), fb.ID()}

	pb := loadLegacy(t, fb)
	pa := loadLegacy(t, fa, WithProvider(newMapProvider(pb)))

	r := pa.ResolveObjectIndex(pa.ImportMap[0])
	re, ok := r.(*ResolvedExport)
	require.True(t, ok)
	require.Same(t, pb, re.Package)
	require.Equal(t, 2, re.Index)

	imported := pa.ImportedPackages()
	require.Len(t, imported, 2)
	require.Nil(t, imported[0])
	require.Same(t, pb, imported[1])

	require.Nil(t, pa.ResolveObjectIndex(section.NewGlobalPackageImport(0x600)))
}

func TestResolve_MissingSibling(t *testing.T) {
	fa := twoExportFixture()
	fa.Name = "/Game/A"
	ref := section.NewPackageImport(0, 0x1003)
	fa.Imports = []section.ObjectIndex{ref}
	fa.ImportedPackages = []container.PackageID{container.PackageIDFromName("/Game/Missing")}
	ch := fixture.Container(1, fa)

	t.Run("sibling fails to load", func(t *testing.T) {
		log, logs := newObserver()
		p := loadZen(t, fa, WithContainerHeader(ch), WithProvider(newMapProvider()), WithLogger(log))

		require.NotPanics(t, func() {
			require.Nil(t, p.ResolveObjectIndex(ref))
		})

		require.Equal(t, 1, logs.FilterMessage("imported package unavailable").Len())
		missing := logs.FilterMessage("missing package import").All()
		require.Len(t, missing, 1)
		require.Equal(t, "/Game/A", missing[0].ContextMap()["package"])
		require.Equal(t, fmt.Sprintf("0x%X", uint64(ref)), missing[0].ContextMap()["index"])
		require.Contains(t, missing[0].ContextMap()["error"], errs.ErrPackageNotFound.Error())
	})

	t.Run("no provider", func(t *testing.T) {
		log, logs := newObserver()
		p := loadZen(t, fa, WithContainerHeader(ch), WithLogger(log))

		require.Nil(t, p.ResolveObjectIndex(ref))
		require.Nil(t, p.ImportedPackages())
		missing := logs.FilterMessage("missing package import").All()
		require.Len(t, missing, 1)
		require.Equal(t, errs.ErrNoProvider.Error(), missing[0].ContextMap()["error"])
	})
}
