package lifecycle

import (
	"context"
	"time"
)

// CachePort abstracts the evaluation cache.
type CachePort interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// MetricsPort receives evaluation telemetry.
type MetricsPort interface {
	ObserveEvaluation(operation, source string, d time.Duration)
	RecordValidation(errors, warnings int)
	RecordNextAction(action string)
	RecordCacheResult(result string)
	RecordCalendarEvent(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvaluation(string, string, time.Duration) {}
func (noopMetrics) RecordValidation(int, int)                       {}
func (noopMetrics) RecordNextAction(string)                         {}
func (noopMetrics) RecordCacheResult(string)                        {}
func (noopMetrics) RecordCalendarEvent(string)                      {}

// Cache result labels.
const (
	cacheHit      = "hit"
	cacheMiss     = "miss"
	cacheError    = "error"
	cacheDisabled = "disabled"
)

// Evaluation sources.
const (
	sourceComputed = "computed"
	sourceCache    = "cache"
)
