package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "media", cfg.Media.Root)
	assert.False(t, cfg.Search.Enabled)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  type: mysql
  mysql:
    host: db.internal
search:
  enabled: true
scheduler:
  reindex_enabled: true
  reindex_time: "04:30"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.MySQL.Host)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, "04:30", cfg.Scheduler.ReindexTime)

	// Untouched sections keep their defaults.
	assert.Equal(t, "media", cfg.Media.Root)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
}
