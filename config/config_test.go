package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(5), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "uploads", cfg.Storage.Local.UploadDir)
	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Queue.Concurrency)
	assert.Equal(t, "resumes-index", cfg.Index.Name)
	assert.Equal(t, 768, cfg.Index.Dimension)
	assert.Equal(t, "cosine", cfg.Index.Metric)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("MAX_FILE_SIZE_MB", "10")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("STORE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, int64(10), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7070"
index:
  dimension: 1536
`), 0644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	// yaml wins over env defaults, untouched fields keep theirs
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 1536, cfg.Index.Dimension)
	assert.Equal(t, int64(5), cfg.Upload.MaxFileSizeMB)
}

func TestLoadRejectsInvalidSizeLimit(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MAX_FILE_SIZE_MB", "-1")

	_, err := Load()
	assert.Error(t, err)
}
