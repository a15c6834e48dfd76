package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/iopkg/container"
	"github.com/arloliu/iopkg/internal/options"
	"github.com/arloliu/iopkg/script"
	"github.com/arloliu/iopkg/uobject"
	"github.com/arloliu/iopkg/version"
)

// Config holds the settings shared by every package a provider loads.
type Config struct {
	versions  *version.Versions
	global    *script.Table
	registry  *uobject.Registry
	container *container.Header
	methods   []string
	logger    *zap.Logger
}

func newConfig() *Config {
	return &Config{versions: version.New(version.ZenLayout)}
}

// Option represents a functional option for configuring a provider.
type Option = options.Option[*Config]

// WithVersions sets the version descriptor every package is loaded with. Each load
// receives its own copy.
func WithVersions(v *version.Versions) Option {
	return options.New(func(c *Config) error {
		if v == nil {
			return fmt.Errorf("nil versions")
		}
		c.versions = v.Clone()

		return nil
	})
}

// WithGlobalData sets the global script object table.
func WithGlobalData(t *script.Table) Option {
	return options.NoError(func(c *Config) {
		c.global = t
	})
}

// WithRegistry sets the class registry used to construct exports.
func WithRegistry(r *uobject.Registry) Option {
	return options.NoError(func(c *Config) {
		c.registry = r
	})
}

// WithContainerHeader sets the container index of the stored packages.
func WithContainerHeader(h *container.Header) Option {
	return options.NoError(func(c *Config) {
		c.container = h
	})
}

// WithCompressionMethods sets the container method table that block method indexes of
// compressed packages refer to.
func WithCompressionMethods(methods ...string) Option {
	return options.NoError(func(c *Config) {
		c.methods = methods
	})
}

// WithLogger sets the logger for the provider and every package it loads.
func WithLogger(l *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = l
	})
}
