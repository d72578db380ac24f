package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CULTIVOS_SOURCE", "CULTIVOS_ADDR", "CULTIVOS_DEFAULT_CROP"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		clearEnv(t)
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
		require.NoError(t, cfg.Validate())
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "cultivos.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
source:
  locator: https://example.org/raw/datos_2006_2023.xlsx
  timeout: 5s
web:
  per_page: 50
defaults:
  crop: CAFÉ
logging:
  debug: true
`), 0o644))

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/raw/datos_2006_2023.xlsx", cfg.Source.Locator)
		assert.Equal(t, 50, cfg.Web.PerPage)
		assert.Equal(t, "127.0.0.1:8080", cfg.Web.Addr, "keys not in the file keep their default")
		assert.Equal(t, "CAFÉ", cfg.Defaults.Crop)
		assert.True(t, cfg.Logging.Debug)
		d, err := cfg.SourceTimeout()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, d)
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cultivos.yaml")
		require.NoError(t, os.WriteFile(path, []byte("source:\n  locator: a.xlsx\n"), 0o644))
		t.Setenv("CULTIVOS_SOURCE", "b.csv")
		t.Setenv("CULTIVOS_ADDR", ":9000")
		t.Setenv("CULTIVOS_DEFAULT_CROP", "MAIZ")

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "b.csv", cfg.Source.Locator)
		assert.Equal(t, ":9000", cfg.Web.Addr)
		assert.Equal(t, "MAIZ", cfg.Defaults.Crop)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "non_existe.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cultivos.yaml")
		require.NoError(t, os.WriteFile(path, []byte("web: [1, 2"), 0o644))
		_, err := loadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Source.Locator = " "
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Source.Timeout = "pronto"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Web.PerPage = 0
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Source.Timeout = ""
	require.NoError(t, cfg.Validate())
	d, _ := cfg.SourceTimeout()
	assert.Equal(t, 30*time.Second, d)
}
