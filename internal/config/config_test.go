package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Rates.SchedulePath = "/srv/tariff/rates.hcl"
	cfg.Database.URL = "postgres://localhost/tariffs"
	cfg.Database.QueryTimeoutSeconds = 3
	cfg.Output.DefaultFormat = "json"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/tariff/rates.hcl", loaded.Rates.SchedulePath)
	assert.Equal(t, "postgres://localhost/tariffs", loaded.Database.URL)
	assert.Equal(t, 3, loaded.Database.QueryTimeoutSeconds)
	assert.Equal(t, "json", loaded.Output.DefaultFormat)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, 10, cfg.Database.QueryTimeoutSeconds)
}
