package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", c.Server.Host)
	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "NDX", c.Data.Benchmark)
	assert.Equal(t, 10, c.Data.WindowSize)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Metrics.Enabled)
	assert.False(t, c.Cache.Redis.Enabled)
}

func TestLoadOverlaysFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
server:
  port: 8080
data:
  benchmark: SPX
  cache_dir: /tmp/results
log:
  level: debug
`), 0o644))

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "127.0.0.1", c.Server.Host)
	assert.Equal(t, "SPX", c.Data.Benchmark)
	assert.Equal(t, "/tmp/results", c.Data.CacheDir)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "data/returns.csv", c.Data.ReturnsPath)
}

func TestLoadRejectsInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("data:\n  window_size: -1\n"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(p, []byte("server: [\n"), 0o644))
	_, err = Load(p)
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PORT", "9001")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("BENCHMARK", "spx")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "warn")

	c, err := LoadWithEnv("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 9001, c.Server.Port)
	assert.Equal(t, "0.0.0.0", c.Server.Host)
	assert.Equal(t, "SPX", c.Data.Benchmark)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	assert.Equal(t, "warn", c.Log.Level)

	t.Setenv("PORT", "http")
	_, err = LoadWithEnv("config.yaml")
	assert.Error(t, err)
}
