// Package config defines the configuration structures of the PERM tracker.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// Empty disables CORS headers.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	// RateLimitRPS is the per-client request rate.  Zero disables limiting.
	RateLimitRPS       float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// RedisConfig holds the evaluation-cache connection.  The cache is optional;
// when disabled every evaluation is computed fresh.
type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Mode          string        `mapstructure:"mode"` // "standalone" | "sentinel" | "cluster"
	Addr          string        `mapstructure:"addr"`
	MasterName    string        `mapstructure:"master_name"`
	SentinelAddrs []string      `mapstructure:"sentinel_addrs"`
	ClusterAddrs  []string      `mapstructure:"cluster_addrs"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	PoolSize      int           `mapstructure:"pool_size"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	TLSEnabled    bool          `mapstructure:"tls_enabled"`
	TLSCAFile     string        `mapstructure:"tls_ca_file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Path                 string `mapstructure:"path"`
	Namespace            string `mapstructure:"namespace"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
}

// CalendarConfig controls iCalendar export.
type CalendarConfig struct {
	// ProductID is written as the PRODID of exported calendars.
	ProductID string `mapstructure:"product_id"`
	// ReminderDays adds one VALARM per entry, N days before each event.
	ReminderDays []int `mapstructure:"reminder_days"`
}

// EvaluationConfig controls the evaluation service.
type EvaluationConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
}

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeConfigInvalid, "config: "+format, args...)
}

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return invalid("server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 0 {
		return invalid("server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimitRPS < 0 {
		return invalid("server.rate_limit_rps must be >= 0, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		return invalid("server.rate_limit_burst must be >= 1 when rate limiting is enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Redis.Enabled {
		switch c.Redis.Mode {
		case "standalone":
			if c.Redis.Addr == "" {
				return invalid("redis.addr is required when the cache is enabled")
			}
		case "sentinel":
			if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
				return invalid("redis.master_name and redis.sentinel_addrs are required in sentinel mode")
			}
		case "cluster":
			if len(c.Redis.ClusterAddrs) == 0 {
				return invalid("redis.cluster_addrs is required in cluster mode")
			}
		default:
			return invalid("redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
	}
	if c.Redis.DB < 0 {
		return invalid("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path %q must start with /", c.Metrics.Path)
	}

	if strings.TrimSpace(c.Calendar.ProductID) == "" {
		return invalid("calendar.product_id is required")
	}
	for _, d := range c.Calendar.ReminderDays {
		if d < 0 || d > 365 {
			return invalid("calendar.reminder_days entry %d is out of range [0, 365]", d)
		}
	}

	if c.Evaluation.CacheTTL <= 0 {
		return invalid("evaluation.cache_ttl must be positive, got %s", c.Evaluation.CacheTTL)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
