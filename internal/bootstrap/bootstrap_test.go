package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	"github.com/turtacn/perm-tracker/internal/config"
	"github.com/turtacn/perm-tracker/internal/testutil"
	"github.com/turtacn/perm-tracker/pkg/clock"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.Mode = gin.TestMode
	return cfg
}

var testBuild = BuildInfo{Version: "1.0.0", Commit: "abc123"}

func TestNewInfrastructure_Defaults(t *testing.T) {
	t.Parallel()
	infra, err := NewInfrastructure(testConfig(), testBuild, nil)
	require.NoError(t, err)
	defer infra.Close()

	assert.NotNil(t, infra.Metrics)
	assert.NotNil(t, infra.MetricsHandler())
	assert.Nil(t, infra.Cache)
	assert.Empty(t, infra.HealthCheckers())
}

func TestNewInfrastructure_MetricsDisabled(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Metrics.Enabled = false

	infra, err := NewInfrastructure(cfg, testBuild, nil)
	require.NoError(t, err)
	assert.Nil(t, infra.Metrics)
	assert.Nil(t, infra.MetricsHandler())
}

func TestNewInfrastructure_Redis(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	infra, err := NewInfrastructure(cfg, testBuild, testutil.NewMockLogger())
	require.NoError(t, err)
	defer infra.Close()

	require.NotNil(t, infra.Cache)
	require.Len(t, infra.HealthCheckers(), 1)
	assert.Equal(t, "redis", infra.HealthCheckers()[0].Name())
	assert.NoError(t, infra.HealthCheckers()[0].Check(context.Background()))
}

func TestNewInfrastructure_RedisUnreachable(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	cfg.Redis.DialTimeout = 200 * time.Millisecond
	log := testutil.NewMockLogger()

	infra, err := NewInfrastructure(cfg, testBuild, log)
	require.NoError(t, err)
	assert.Nil(t, infra.Cache)
	assert.Nil(t, infra.Redis)
	assert.True(t, log.HasMessage("warn", "evaluation cache unavailable, continuing without it"))
}

func TestEvaluationService_UsesCache(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	infra, err := NewInfrastructure(cfg, testBuild, nil)
	require.NoError(t, err)
	defer infra.Close()
	svc := NewEvaluationService(cfg, infra, clock.NewFixed(testutil.ScenarioToday), nil)

	req := &lifecycle.CaseRequest{Case: testutil.RecruitmentCase()}
	first, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.NotEmpty(t, mr.Keys())
	assert.True(t, strings.HasPrefix(mr.Keys()[0], cfg.Redis.KeyPrefix))

	second, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.NextAction, second.NextAction)
}

func TestEvaluationService_NilInfrastructure(t *testing.T) {
	t.Parallel()
	svc := NewEvaluationService(testConfig(), nil, clock.NewFixed(testutil.ScenarioToday), nil)

	ev, err := svc.Evaluate(context.Background(), &lifecycle.CaseRequest{Case: testutil.RecruitmentCase()})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", ev.Today)
}

// Not parallel: NewHTTPServer sets the process-wide gin mode.
func TestNewHTTPServer(t *testing.T) {
	cfg := testConfig()
	infra, err := NewInfrastructure(cfg, testBuild, nil)
	require.NoError(t, err)
	svc := NewEvaluationService(cfg, infra, clock.NewFixed(testutil.ScenarioToday), nil)

	srv := NewHTTPServer(cfg, testBuild, infra, svc, nil)
	assert.Equal(t, cfg.Server.Addr(), srv.Addr())

	for _, path := range []string{"/healthz", "/readyz", cfg.Metrics.Path} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, cfg.Metrics.Path, nil))
	assert.Contains(t, w.Body.String(), "permtrack_build_info")
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "console"}, "stderr")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
