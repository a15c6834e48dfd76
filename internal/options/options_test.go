package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	limit int
	name  string
	calls []string
}

func withLimit(n int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if n < 0 {
			return errors.New("limit cannot be negative")
		}
		c.limit = n
		c.calls = append(c.calls, "limit")

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply(t *testing.T) {
	t.Run("AppliesInOrder", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("a"), withLimit(4), withName("b"))
		require.NoError(t, err)
		require.Equal(t, 4, cfg.limit)
		require.Equal(t, "b", cfg.name)
		require.Equal(t, []string{"name", "limit", "name"}, cfg.calls)
	})

	t.Run("StopsAtFirstError", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withLimit(-1), withName("never"))
		require.ErrorContains(t, err, "limit cannot be negative")
		require.Empty(t, cfg.name)
	})

	t.Run("SkipsNil", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, nil, withLimit(1)))
		require.Equal(t, 1, cfg.limit)
	})

	t.Run("Empty", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply[*testConfig](cfg))
		require.Empty(t, cfg.calls)
	})
}
