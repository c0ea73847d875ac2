package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/interfaces/http/middleware"
	"github.com/turtacn/perm-tracker/internal/testutil"
	"github.com/turtacn/perm-tracker/pkg/clock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock Evaluation Service ---

type mockEvaluationService struct {
	mock.Mock
}

func (m *mockEvaluationService) Evaluate(ctx context.Context, req *lifecycle.CaseRequest) (*lifecycle.CaseEvaluation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lifecycle.CaseEvaluation), args.Error(1)
}

func (m *mockEvaluationService) Validate(ctx context.Context, req *lifecycle.CaseRequest) (*domainLifecycle.ValidationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainLifecycle.ValidationResult), args.Error(1)
}

func (m *mockEvaluationService) Deadlines(ctx context.Context, req *lifecycle.CaseRequest) (*lifecycle.DeadlineReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lifecycle.DeadlineReport), args.Error(1)
}

func (m *mockEvaluationService) Calendar(ctx context.Context, req *lifecycle.CalendarRequest) ([]domainLifecycle.CalendarEvent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainLifecycle.CalendarEvent), args.Error(1)
}

func (m *mockEvaluationService) ExportICal(ctx context.Context, req *lifecycle.CalendarRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockEvaluationService) AddRequestEntry(ctx context.Context, req *lifecycle.AddRequestEntryRequest) (*domainLifecycle.RequestEntry, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainLifecycle.RequestEntry), args.Error(1)
}

// --- Helpers ---

func newRealService() lifecycle.EvaluationService {
	now := testutil.ScenarioToday.Add(8 * time.Hour)
	return lifecycle.NewEvaluationService(lifecycle.ServiceConfig{ReminderDays: []int{7}}, clock.NewFixed(now), nil, nil, nil)
}

func newCaseRouter(svc lifecycle.EvaluationService, log *testutil.MockLogger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	NewCaseHandler(svc, log).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func caseJSON(t *testing.T, c interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	return data
}

func post(r http.Handler, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
