package asset

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/internal/fixture"
	"github.com/arloliu/iopkg/script"
	"github.com/arloliu/iopkg/section"
	"github.com/arloliu/iopkg/uobject"
	"github.com/arloliu/iopkg/version"
)

var (
	legacyEngine = version.Engine{Major: 4, Minor: 27}

	scriptPackageIdx = section.NewScriptImport(0x1000)
	testClassIdx     = section.NewScriptImport(0x1001)
	greedyClassIdx   = section.NewScriptImport(0x1002)
	unknownClassIdx  = section.NewScriptImport(0x1003)
)

// globalTexts are the global names. Indexes past the script entries are only used as
// global export names.
var globalTexts = []string{"/Script/Test", "TestObject", "Greedy", "Unknown", "Zero", "One", "GlobalOnly"}

func newGlobal(t *testing.T) *script.Table {
	t.Helper()

	entry := func(name uint32, idx, outer section.ObjectIndex) script.Entry {
		return script.Entry{
			ObjectName:    section.NewMappedName(name, section.MappedNameGlobal, 0),
			GlobalIndex:   idx,
			OuterIndex:    outer,
			CDOClassIndex: section.NullObjectIndex,
		}
	}
	entries := []script.Entry{
		entry(0, scriptPackageIdx, section.NullObjectIndex),
		entry(1, testClassIdx, scriptPackageIdx),
		entry(2, greedyClassIdx, scriptPackageIdx),
		entry(3, unknownClassIdx, scriptPackageIdx),
	}

	table, err := script.Load(archive.NewReader("global", script.AppendTo(nil, globalTexts, entries), nil))
	require.NoError(t, err)

	return table
}

// testObject reads a single u32 and records construction and post-load.
type testObject struct {
	uobject.BaseObject
	Value      uint32
	PostLoaded bool
}

func (o *testObject) Deserialize(ar *archive.Reader, _ int64) error {
	v, err := ar.ReadUint32()
	if err != nil {
		return err
	}
	o.Value = v

	return nil
}

func (o *testObject) PostLoad() {
	o.PostLoaded = true
}

// greedyObject reads one byte past its data.
type greedyObject struct {
	uobject.BaseObject
}

func (o *greedyObject) Deserialize(ar *archive.Reader, validPos int64) error {
	_, err := ar.ReadBytes(int(validPos-ar.Position()) + 1)
	return err
}

// newRegistry registers the test classes. The returned counter counts testObject
// constructions.
func newRegistry() (*uobject.Registry, *atomic.Int64) {
	var constructed atomic.Int64
	reg := uobject.NewRegistry()
	reg.Register("TestObject", func() uobject.Object {
		constructed.Add(1)
		return &testObject{}
	})
	reg.Register("Greedy", func() uobject.Object { return &greedyObject{} })

	return reg, &constructed
}

func u32(v uint32) []byte {
	return le.AppendUint32(nil, v)
}

func newObserver() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// mapProvider serves pre-loaded packages and fails for everything else.
type mapProvider struct {
	mu    sync.Mutex
	pkgs  map[container.PackageID]*Package
	calls int
}

func newMapProvider(pkgs ...*Package) *mapProvider {
	p := &mapProvider{pkgs: make(map[container.PackageID]*Package)}
	for _, pkg := range pkgs {
		p.pkgs[pkg.ID] = pkg
	}

	return p
}

func (p *mapProvider) LoadPackage(id container.PackageID) (*Package, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	pkg, ok := p.pkgs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrPackageNotFound, id)
	}

	return pkg, nil
}

func loadLegacy(t *testing.T, fp *fixture.Package, opts ...LoadOption) *Package {
	t.Helper()

	p, err := Load(fp.Legacy(), append([]LoadOption{WithEngineVersion(legacyEngine)}, opts...)...)
	require.NoError(t, err)

	return p
}

func loadZen(t *testing.T, fp *fixture.Package, opts ...LoadOption) *Package {
	t.Helper()

	p, err := Load(fp.Zen(), opts...)
	require.NoError(t, err)

	return p
}
