package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

const validConfigYAML = `
server:
  port: 9090
  mode: debug
  read_timeout: 5s
log:
  level: debug
  format: console
redis:
  enabled: true
  addr: "cache:6379"
  key_prefix: "perm:"
calendar:
  product_id: "-//Example LLP//PERM//EN"
  reminder_days: [14, 3]
evaluation:
  cache_ttl: 30m
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "perm:", cfg.Redis.KeyPrefix)
	assert.Equal(t, []int{14, 3}, cfg.Calendar.ReminderDays)
	assert.Equal(t, 30*time.Minute, cfg.Evaluation.CacheTTL)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server: [port"))
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "log:\n  level: verbose\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PERM_SERVER_PORT", "7070")
	t.Setenv("PERM_REDIS_ADDR", "env-cache:6379")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-cache:6379", cfg.Redis.Addr)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("PERM_LOG_LEVEL", "warn")
	t.Setenv("PERM_METRICS_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
}

func TestMustLoad_Panic(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	var mu sync.Mutex
	var levels []string
	require.NoError(t, Watch(path, func(cfg *Config) {
		mu.Lock()
		defer mu.Unlock()
		levels = append(levels, cfg.Log.Level)
	}, nil))

	updated := []byte("log:\n  level: error\n")
	require.NoError(t, os.WriteFile(path, updated, 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(levels) > 0 && levels[len(levels)-1] == "error"
	}, 5*time.Second, 50*time.Millisecond)
}
