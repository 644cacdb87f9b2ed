package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpix/eventpix/pkg/config"
)

// Each subtest uses its own struct type: values are cached per type, so
// sharing one across subtests would leak state.

func TestLoad(t *testing.T) {
	t.Run("parses env tags with defaults", func(t *testing.T) {
		type withDefaults struct {
			Addr string `env:"LOADER_TEST_ADDR" envDefault:":9090"`
			Name string `env:"LOADER_TEST_NAME"`
		}

		t.Setenv("LOADER_TEST_NAME", "eventpix")

		var cfg withDefaults
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, "eventpix", cfg.Name)
	})

	t.Run("second load returns the cached value", func(t *testing.T) {
		type cached struct {
			Value string `env:"LOADER_TEST_CACHED"`
		}

		t.Setenv("LOADER_TEST_CACHED", "first")

		var a cached
		require.NoError(t, config.Load(&a))

		t.Setenv("LOADER_TEST_CACHED", "second")

		var b cached
		require.NoError(t, config.Load(&b))
		assert.Equal(t, "first", b.Value)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		type strict struct {
			Token string `env:"LOADER_TEST_ABSENT_TOKEN,required"`
		}

		var cfg strict
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		err := config.Load[struct{}](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	type strict struct {
		Token string `env:"LOADER_TEST_MUST_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg strict
		config.MustLoad(&cfg)
	})
}
