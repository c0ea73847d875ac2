package lifecycle

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

// ---------------------------------------------------------------------------
// Mock implementations (shared across tests)
// ---------------------------------------------------------------------------

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	gets   int
	sets   int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return errors.New(errors.ErrCodeCacheMiss, "cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type evaluationObservation struct {
	operation string
	source    string
}

type mockMetrics struct {
	mu           sync.Mutex
	evaluations  []evaluationObservation
	validations  [][2]int
	actions      []string
	cacheResults []string
	events       []string
}

func (m *mockMetrics) ObserveEvaluation(operation, source string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations = append(m.evaluations, evaluationObservation{operation, source})
}

func (m *mockMetrics) RecordValidation(errs, warnings int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations = append(m.validations, [2]int{errs, warnings})
}

func (m *mockMetrics) RecordNextAction(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

func (m *mockMetrics) RecordCacheResult(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheResults = append(m.cacheResults, result)
}

func (m *mockMetrics) RecordCalendarEvent(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, kind)
}
