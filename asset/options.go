package asset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/internal/options"
	"github.com/arloliu/iopkg/script"
	"github.com/arloliu/iopkg/uobject"
	"github.com/arloliu/iopkg/version"
)

// LoadConfig collects the collaborators of one package load.
type LoadConfig struct {
	versions     *version.Versions
	global       *script.Table
	container    *container.Header
	provider     Provider
	registry     *uobject.Registry
	deserializer uobject.Deserializer
	bulk         archive.PayloadSource
	optional     archive.PayloadSource
	name         string
	logger       *zap.Logger
}

func newLoadConfig() *LoadConfig {
	return &LoadConfig{
		versions:     version.New(version.ZenLayout),
		deserializer: uobject.DefaultDeserializer(),
	}
}

// LoadOption represents a functional option for configuring a package load.
type LoadOption = options.Option[*LoadConfig]

// WithVersions sets the version descriptor of the package stream. Set Explicit on it to
// keep versioning info stored in zen packages from overriding the descriptor.
// The descriptor is copied; the caller's value is never modified.
func WithVersions(v *version.Versions) LoadOption {
	return options.New(func(c *LoadConfig) error {
		if v == nil {
			return fmt.Errorf("nil versions")
		}
		c.versions = v.Clone()

		return nil
	})
}

// WithEngineVersion selects the engine release, and with it the header layout.
// The default is version.ZenLayout.
func WithEngineVersion(e version.Engine) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.versions.Engine = e
	})
}

// WithGlobalData sets the global script object table used for global names and script
// imports.
func WithGlobalData(t *script.Table) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.global = t
	})
}

// WithContainerHeader sets the container index that supplies zen bundle counts and
// imported package ids.
func WithContainerHeader(h *container.Header) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.container = h
	})
}

// WithProvider sets the provider used to load imported packages.
func WithProvider(p Provider) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.provider = p
	})
}

// WithRegistry sets the registry used to construct exports by class name.
func WithRegistry(r *uobject.Registry) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.registry = r
	})
}

// WithDeserializer replaces the per-export deserializer.
func WithDeserializer(d uobject.Deserializer) LoadOption {
	return options.New(func(c *LoadConfig) error {
		if d == nil {
			return fmt.Errorf("nil deserializer")
		}
		c.deserializer = d

		return nil
	})
}

// WithBulkData attaches the bulk data stream. It is opened on first use.
func WithBulkData(src archive.PayloadSource) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.bulk = src
	})
}

// WithOptionalBulkData attaches the optional streaming data. It is opened on first use.
func WithOptionalBulkData(src archive.PayloadSource) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.optional = src
	})
}

// WithName overrides the package name decoded from the summary.
func WithName(name string) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.name = name
	})
}

// WithLogger sets the logger for this package. The default is Logger().
func WithLogger(l *zap.Logger) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.logger = l
	})
}
