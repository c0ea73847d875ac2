package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedLimiter(rps float64, burst int, idle time.Duration) (*TokenBucketLimiter, *time.Time) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	l := NewTokenBucketLimiter(rps, burst, idle)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestTokenBucketLimiter_Allow(t *testing.T) {
	t.Parallel()
	l, now := fixedLimiter(1, 2, 0)

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, info = l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, info.RetryAfter)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "keys are limited independently")

	*now = now.Add(time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_EvictsIdleKeys(t *testing.T) {
	t.Parallel()
	l, now := fixedLimiter(1, 1, time.Minute)

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	*now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Parallel()
	l, _ := fixedLimiter(1, 1, 0)
	r := newTestEngine(RateLimit(l, DefaultRateLimitConfig(1, 1)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code, "probes bypass the limiter")
}
