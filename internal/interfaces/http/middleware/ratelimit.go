package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

// RateLimiter decides whether the request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limiter state reported in response headers.
type RateLimitInfo struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc extracts the limiter key.  Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
	// SkipPaths bypass limiting.
	SkipPaths []string
	// IdleTimeout evicts limiters unused for this long.
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig limits each client IP to rps with the given burst.
func DefaultRateLimitConfig(rps float64, burst int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: rps,
		BurstSize:         burst,
		KeyFunc:           func(c *gin.Context) string { return c.ClientIP() },
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTimeout:       5 * time.Minute,
	}
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one golang.org/x/time/rate limiter per key.
type TokenBucketLimiter struct {
	rate        rate.Limit
	burst       int
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
}

// NewTokenBucketLimiter creates a limiter allowing rps per key with burst.
func NewTokenBucketLimiter(rps float64, burst int, idleTimeout time.Duration) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		rate:        rate.Limit(rps),
		burst:       burst,
		idleTimeout: idleTimeout,
		now:         time.Now,
		limiters:    make(map[string]*keyedLimiter),
	}
}

// Allow consumes one token for key when available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.evictIdle(now)
	l.mu.Unlock()

	info := RateLimitInfo{Limit: l.burst}
	r := entry.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		info.RetryAfter = delay
		return false, info
	}
	info.Remaining = int(math.Max(0, entry.limiter.TokensAt(now)))
	return true, info
}

// evictIdle drops limiters idle past the timeout.  Callers hold l.mu.
func (l *TokenBucketLimiter) evictIdle(now time.Time) {
	if l.idleTimeout <= 0 {
		return
	}
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTimeout {
			delete(l.limiters, key)
		}
	}
}

// Len returns the number of tracked keys.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimit rejects requests over the limit with 429 and a Retry-After header.
func RateLimit(limiter RateLimiter, config RateLimitConfig) gin.HandlerFunc {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		if skipSet[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, info := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if !allowed {
			secs := int(math.Ceil(info.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    errors.ErrCodeServiceUnavailable,
				"message": "rate limit exceeded, please retry later",
			})
			return
		}
		c.Next()
	}
}
