package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewDefaultConfig().Validate())
}

func TestConfig_Validate_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"server mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"negative body size", func(c *Config) { c.Server.MaxBodySize = -1 }, "server.max_body_size"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "text" }, "log.format"},
		{"redis addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"redis mode", func(c *Config) { c.Redis.Enabled = true; c.Redis.Mode = "ring" }, "redis.mode"},
		{"sentinel without master", func(c *Config) { c.Redis.Enabled = true; c.Redis.Mode = "sentinel" }, "redis.master_name"},
		{"cluster without addrs", func(c *Config) { c.Redis.Enabled = true; c.Redis.Mode = "cluster" }, "redis.cluster_addrs"},
		{"redis db", func(c *Config) { c.Redis.DB = -1 }, "redis.db"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"product id", func(c *Config) { c.Calendar.ProductID = " " }, "calendar.product_id"},
		{"reminder days", func(c *Config) { c.Calendar.ReminderDays = []int{7, -1} }, "calendar.reminder_days"},
		{"cache ttl", func(c *Config) { c.Evaluation.CacheTTL = -time.Second }, "evaluation.cache_ttl"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
		})
	}
}

func TestConfig_Validate_RedisDisabledIgnoresAddr(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()
	cfg.Redis.Addr = ""
	cfg.Redis.Mode = "bogus"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_SentinelComplete(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Mode = "sentinel"
	cfg.Redis.MasterName = "mymaster"
	cfg.Redis.SentinelAddrs = []string{"sentinel:26379"}
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Host: "0.0.0.0", Port: 8080}.Addr())
	assert.Equal(t, ":9000", ServerConfig{Port: 9000}.Addr())
}
