package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, _, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HttpPort)
	assert.Equal(t, "release", cfg.Server.RunMode)
	assert.Equal(t, "storage/database/workspace.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Second, cfg.GetAutosaveDelay())
	assert.Equal(t, 10, cfg.App.SnapshotRetention)
	assert.Equal(t, "daily", cfg.App.SnapshotCronStrategy)
}

func TestLoadConfigOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  http-port: :8080
app:
  autosave-delay: 250ms
  snapshot-retention: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, realpath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, realpath)

	assert.Equal(t, ":8080", cfg.Server.HttpPort)
	assert.Equal(t, 250*time.Millisecond, cfg.GetAutosaveDelay())
	assert.Equal(t, 3, cfg.App.SnapshotRetention)
	// Untouched sections keep their defaults.
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 256, cfg.App.WriteQueueCapacity)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))

	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}
