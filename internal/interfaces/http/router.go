package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/internal/interfaces/http/handlers"
	"github.com/turtacn/perm-tracker/internal/interfaces/http/middleware"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers are skipped.
type RouterConfig struct {
	// Handlers
	CaseHandler   *handlers.CaseHandler
	HealthHandler *handlers.HealthHandler

	// Infrastructure
	Logger         logging.Logger
	Metrics        middleware.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string

	// Limits
	MaxBodySize    int64
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the gin engine serving the probes, the metrics endpoint
// and the /api/v1 case routes.
//
// Middleware order: RequestID → Metrics → Logging → Recovery → CORS →
// RateLimit → BodyLimit.  Metrics and logging sit outside recovery so a
// recovered panic is still counted and logged as a 500.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()))
	r.Use(middleware.Recovery(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	}
	if cfg.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter := middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.IdleTimeout)
		r.Use(middleware.RateLimit(limiter, rl))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	// --- Probes ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}

	// --- Metrics ---
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	if cfg.CaseHandler != nil {
		cfg.CaseHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		abortJSON(c, http.StatusNotFound, errors.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		abortJSON(c, http.StatusMethodNotAllowed, errors.ErrCodeBadRequest, "method not allowed")
	})

	return r
}

func abortJSON(c *gin.Context, status int, code errors.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, handlers.ErrorResponse{
		Code:      code.String(),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}
