package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewFromCore(core), logs
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := New(Config{Level: "debug", Format: format, OutputPaths: []string{"stdout"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}

	_, err := New(Config{OutputPaths: []string{"/nonexistent-dir/permtrack/log.json"}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapLogger_Fields(t *testing.T) {
	t.Parallel()

	l, logs := newObserved(zapcore.DebugLevel)
	l.Named("eval").With(CaseID("case-1")).Info("evaluated",
		String("readiness", "ready"),
		Int("deadlines", 3),
		Bool("cached", false),
		Duration("took", 2*time.Millisecond),
		Date("today", time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)),
		Err(errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "eval", e.LoggerName)
	assert.Equal(t, "evaluated", e.Message)

	ctx := e.ContextMap()
	assert.Equal(t, "case-1", ctx["case_id"])
	assert.Equal(t, "ready", ctx["readiness"])
	assert.EqualValues(t, 3, ctx["deadlines"])
	assert.Equal(t, false, ctx["cached"])
	assert.Equal(t, 2*time.Millisecond, ctx["took"])
	assert.Equal(t, "2024-06-15", ctx["today"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_Levels(t *testing.T) {
	t.Parallel()

	l, logs := newObserved(zapcore.WarnLevel)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("w").Len())
	assert.NoError(t, l.Sync())
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x", Err(nil))
		l.With(String("k", "v")).Named("n").Info("x")
	})
	assert.NoError(t, l.Sync())
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, logs := newObserved(zapcore.InfoLevel)
	SetDefault(l)
	SetDefault(nil)
	Default().Info("hello")
	assert.Equal(t, 1, logs.Len())
}
