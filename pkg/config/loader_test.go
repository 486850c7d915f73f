package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/config"
)

type sample struct {
	Name    string        `env:"NAME" envDefault:"twofactord"`
	Count   int           `env:"COUNT" envDefault:"10"`
	TTL     time.Duration `env:"TTL" envDefault:"24h"`
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Nested  nested        `envPrefix:"NESTED_"`
}

type nested struct {
	Size int `env:"SIZE" envDefault:"3"`
}

type required struct {
	Key string `env:"KEY,required"`
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[sample](config.WithEnviron(map[string]string{}))
		require.NoError(t, err)
		assert.Equal(t, "twofactord", cfg.Name)
		assert.Equal(t, 10, cfg.Count)
		assert.Equal(t, 24*time.Hour, cfg.TTL)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, 3, cfg.Nested.Size)
	})

	t.Run("overrides with prefix", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[sample](
			config.WithPrefix("APP_"),
			config.WithEnviron(map[string]string{
				"APP_COUNT":       "5",
				"APP_TTL":         "1h",
				"APP_ENABLED":     "false",
				"APP_NESTED_SIZE": "7",
				"COUNT":           "99",
			}),
		)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Count)
		assert.Equal(t, time.Hour, cfg.TTL)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, 7, cfg.Nested.Size)
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[sample](config.WithEnviron(map[string]string{"COUNT": "many"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("required missing", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[required](config.WithEnviron(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.Panics(t, func() {
			config.MustLoad[required](config.WithEnviron(map[string]string{}))
		})
	})

	t.Run("missing env file", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[sample](config.WithEnvFiles(filepath.Join(t.TempDir(), "absent.env")))
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFGTEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CFGTEST_KEY") })

	cfg, err := config.Load[required](config.WithPrefix("CFGTEST_"), config.WithEnvFiles(path))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Key)
}
