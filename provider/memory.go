// Package provider implements asset.Provider for packages held in memory.
//
// A Memory provider owns package lifetimes: each package is decoded at most once, on
// first request, and the result is shared by every package that imports it. Concurrent
// requests for the same package wait for a single decode.
package provider

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/arloliu/iopkg/asset"
	"github.com/arloliu/iopkg/chunk"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/internal/options"
)

// stored is one package as added to the provider.
type stored struct {
	name   string
	data   []byte
	blocks []chunk.Block
}

// Memory serves packages from byte slices.
type Memory struct {
	cfg *Config
	log *zap.Logger

	mu     sync.RWMutex
	stored map[container.PackageID]*stored
	loaded map[container.PackageID]*asset.Package
	group  singleflight.Group
}

var _ asset.Provider = (*Memory)(nil)

// NewMemory creates an empty provider.
func NewMemory(opts ...Option) (*Memory, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = Logger()
	}

	return &Memory{
		cfg:    cfg,
		log:    log,
		stored: make(map[container.PackageID]*stored),
		loaded: make(map[container.PackageID]*asset.Package),
	}, nil
}

// Add stores an uncompressed package under name and returns its id.
func (m *Memory) Add(name string, data []byte) container.PackageID {
	return m.add(&stored{name: name, data: data})
}

// AddCompressed stores a package kept as compressed blocks, see chunk.Decode. It is
// decompressed when first loaded.
func (m *Memory) AddCompressed(name string, data []byte, blocks []chunk.Block) container.PackageID {
	return m.add(&stored{name: name, data: data, blocks: blocks})
}

func (m *Memory) add(s *stored) container.PackageID {
	id := container.PackageIDFromName(s.name)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stored[id] = s
	delete(m.loaded, id)

	return id
}

// IDs returns the ids of all stored packages in ascending order.
func (m *Memory) IDs() []container.PackageID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]container.PackageID, 0, len(m.stored))
	for id := range m.stored {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Loaded reports whether the package has been decoded.
func (m *Memory) Loaded(id container.PackageID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.loaded[id]

	return ok
}

// LoadPackage returns the package with the given id, decoding it on first use.
// Failed loads are not cached.
func (m *Memory) LoadPackage(id container.PackageID) (*asset.Package, error) {
	m.mu.RLock()
	pkg, ok := m.loaded[id]
	s := m.stored[id]
	m.mu.RUnlock()
	if ok {
		return pkg, nil
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrPackageNotFound, id)
	}

	v, err, _ := m.group.Do(id.String(), func() (any, error) {
		m.mu.RLock()
		pkg, ok := m.loaded[id]
		m.mu.RUnlock()
		if ok {
			return pkg, nil
		}

		pkg, err := m.decode(s)
		if err != nil {
			m.log.Warn("package load failed",
				zap.String("package", s.name),
				zap.Stringer("id", id),
				zap.Error(err),
			)

			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		// A package added again while decoding replaces this result.
		if m.stored[id] == s {
			m.loaded[id] = pkg
		}

		return pkg, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*asset.Package), nil
}

func (m *Memory) decode(s *stored) (*asset.Package, error) {
	data := s.data
	if s.blocks != nil {
		var err error
		if data, err = chunk.Decode(s.data, s.blocks, m.cfg.methods); err != nil {
			return nil, fmt.Errorf("decompress package %q: %w", s.name, err)
		}
	}

	return asset.Load(data,
		asset.WithVersions(m.cfg.versions),
		asset.WithGlobalData(m.cfg.global),
		asset.WithRegistry(m.cfg.registry),
		asset.WithContainerHeader(m.cfg.container),
		asset.WithProvider(m),
		asset.WithName(s.name),
		asset.WithLogger(m.log),
	)
}
