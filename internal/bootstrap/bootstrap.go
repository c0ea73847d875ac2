// Package bootstrap wires configuration into the tracker's runtime
// dependencies.  The API server and the CLI share it.
package bootstrap

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	"github.com/turtacn/perm-tracker/internal/config"
	"github.com/turtacn/perm-tracker/internal/infrastructure/database/redis"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/perm-tracker/internal/interfaces/http"
	"github.com/turtacn/perm-tracker/internal/interfaces/http/handlers"
	"github.com/turtacn/perm-tracker/pkg/clock"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// NewLogger builds the process logger from cfg.Log.  CLI callers pass
// stderr so command output on stdout stays machine-readable.
func NewLogger(cfg config.LogConfig, outputPaths ...string) (logging.Logger, error) {
	lc := logging.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	}
	if len(outputPaths) > 0 {
		lc.OutputPaths = outputPaths
		lc.ErrorOutputPaths = outputPaths
	}
	return logging.New(lc)
}

// Infrastructure holds the optional cache and metrics backends.  Fields are
// nil when the backend is disabled or unreachable.
type Infrastructure struct {
	Redis   *redis.Client
	Cache   redis.Cache
	Metrics *prometheus.AppMetrics

	collector prometheus.MetricsCollector
	logger    logging.Logger
}

// NewInfrastructure connects the configured backends.  An unreachable Redis
// is logged and skipped: evaluations are then always computed.
func NewInfrastructure(cfg *config.Config, build BuildInfo, logger logging.Logger) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.Default()
	}
	infra := &Infrastructure{logger: logger}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
		}, logger)
		if err != nil {
			return nil, err
		}
		infra.collector = collector
		infra.Metrics = prometheus.NewAppMetrics(collector)
		infra.Metrics.SetBuildInfo(build.Version, build.Commit)
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redisConfig(cfg.Redis), logger.Named("redis"))
		if err != nil {
			logger.Warn("evaluation cache unavailable, continuing without it",
				logging.String("addr", cfg.Redis.Addr), logging.Err(err))
		} else {
			infra.Redis = client
			infra.Cache = redis.NewRedisCache(client, logger.Named("cache"), redis.WithPrefix(cfg.Redis.KeyPrefix))
		}
	}

	logger.Info("infrastructure initialized",
		logging.Bool("cache", infra.Cache != nil),
		logging.Bool("metrics", infra.Metrics != nil))
	return infra, nil
}

func redisConfig(c config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Enabled:       c.Enabled,
		Mode:          c.Mode,
		Addr:          c.Addr,
		MasterName:    c.MasterName,
		SentinelAddrs: c.SentinelAddrs,
		ClusterAddrs:  c.ClusterAddrs,
		Username:      c.Username,
		Password:      c.Password,
		DB:            c.DB,
		KeyPrefix:     c.KeyPrefix,
		PoolSize:      c.PoolSize,
		DialTimeout:   c.DialTimeout,
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
		TLSEnabled:    c.TLSEnabled,
		TLSCAFile:     c.TLSCAFile,
	}
}

// Close releases the backends.
func (i *Infrastructure) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.logger.Warn("failed to close redis", logging.Err(err))
		}
	}
}

// MetricsHandler serves the metrics registry, or nil when metrics are off.
func (i *Infrastructure) MetricsHandler() http.Handler {
	if i.collector == nil {
		return nil
	}
	return i.collector.Handler()
}

// HealthCheckers lists the readiness probes of the connected backends.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	var checkers []handlers.HealthChecker
	if i.Cache != nil {
		checkers = append(checkers, handlers.CheckerFunc("redis", i.Cache.Ping))
	}
	return checkers
}

// NewEvaluationService builds the evaluation service over infra.
func NewEvaluationService(cfg *config.Config, infra *Infrastructure, clk clock.Clock, logger logging.Logger) lifecycle.EvaluationService {
	var cache lifecycle.CachePort
	var metrics lifecycle.MetricsPort
	if infra != nil {
		if infra.Cache != nil {
			cache = infra.Cache
		}
		if infra.Metrics != nil {
			metrics = infra.Metrics
		}
	}
	return lifecycle.NewEvaluationService(lifecycle.ServiceConfig{
		CacheTTL:     cfg.Evaluation.CacheTTL,
		ProductID:    cfg.Calendar.ProductID,
		ReminderDays: cfg.Calendar.ReminderDays,
	}, clk, cache, metrics, logger)
}

// NewHTTPServer assembles the router and server for svc.
func NewHTTPServer(cfg *config.Config, build BuildInfo, infra *Infrastructure, svc lifecycle.EvaluationService, logger logging.Logger) *httpserver.Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	rc := httpserver.RouterConfig{
		CaseHandler:    handlers.NewCaseHandler(svc, logger),
		HealthHandler:  handlers.NewHealthHandler(build.Version, infra.HealthCheckers()...),
		Logger:         logger,
		MetricsHandler: infra.MetricsHandler(),
		MetricsPath:    cfg.Metrics.Path,
		MaxBodySize:    cfg.Server.MaxBodySize,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}
	if infra.Metrics != nil {
		rc.Metrics = infra.Metrics
	}
	return httpserver.NewServer(cfg.Server, httpserver.NewRouter(rc), logger)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, srv *httpserver.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}
