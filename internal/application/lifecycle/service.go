// Package lifecycle is the application layer of the PERM tracker.  It adapts
// the pure lifecycle engine to request/response use cases: it resolves the
// evaluation date, caches evaluations, records metrics and renders calendar
// exports.
package lifecycle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/pkg/clock"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// CaseRequest carries one case and an optional evaluation date override.
type CaseRequest struct {
	Case *domainLifecycle.Case `json:"case"`
	// Today overrides the clock date (YYYY-MM-DD).  Empty means the clock.
	Today string `json:"today,omitempty"`
}

// CalendarRequest carries the cases of one calendar export.
type CalendarRequest struct {
	Cases []*domainLifecycle.Case `json:"cases"`
	Today string                  `json:"today,omitempty"`
}

// AddRequestEntryRequest records a newly received RFI or RFE.
type AddRequestEntryRequest struct {
	Case            *domainLifecycle.Case       `json:"case"`
	Kind            domainLifecycle.RequestKind `json:"kind"`
	ReceivedDate    string                      `json:"receivedDate"`
	ResponseDueDate string                      `json:"responseDueDate"`
}

// CaseEvaluation is the evaluation of one case plus its identity and the
// request histories in display order.
type CaseEvaluation struct {
	CaseID       string `json:"caseId,omitempty"`
	EmployerName string `json:"employerName"`
	CaseStatus   string `json:"caseStatus"`
	domainLifecycle.Evaluation
	RFIHistory []domainLifecycle.RequestEntry `json:"rfiHistory"`
	RFEHistory []domainLifecycle.RequestEntry `json:"rfeHistory"`

	// Cached is set when the evaluation was served from the cache.
	Cached bool `json:"-"`
}

// DeadlineReport lists the outstanding deadlines of a case.
type DeadlineReport struct {
	CaseID     string                     `json:"caseId,omitempty"`
	Today      string                     `json:"today"`
	MostUrgent *domainLifecycle.Deadline  `json:"mostUrgent"`
	Deadlines  []domainLifecycle.Deadline `json:"deadlines"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// EvaluationService exposes the lifecycle engine to the outer layers.
type EvaluationService interface {
	Evaluate(ctx context.Context, req *CaseRequest) (*CaseEvaluation, error)
	Validate(ctx context.Context, req *CaseRequest) (*domainLifecycle.ValidationResult, error)
	Deadlines(ctx context.Context, req *CaseRequest) (*DeadlineReport, error)
	Calendar(ctx context.Context, req *CalendarRequest) ([]domainLifecycle.CalendarEvent, error)
	ExportICal(ctx context.Context, req *CalendarRequest) ([]byte, error)
	AddRequestEntry(ctx context.Context, req *AddRequestEntryRequest) (*domainLifecycle.RequestEntry, error)
}

// ServiceConfig tunes the evaluation service.
type ServiceConfig struct {
	CacheTTL     time.Duration
	ProductID    string
	ReminderDays []int
}

type evaluationServiceImpl struct {
	cfg     ServiceConfig
	clock   clock.Clock
	cache   CachePort
	metrics MetricsPort
	logger  logging.Logger
}

// NewEvaluationService wires the service.  cache and metrics may be nil.
func NewEvaluationService(cfg ServiceConfig, clk clock.Clock, cache CachePort, metrics MetricsPort, logger logging.Logger) EvaluationService {
	if clk == nil {
		clk = clock.NewReal()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.ProductID == "" {
		cfg.ProductID = defaultProductID
	}
	return &evaluationServiceImpl{
		cfg:     cfg,
		clock:   clk,
		cache:   cache,
		metrics: metrics,
		logger:  logger.Named("evaluation"),
	}
}

// resolveToday returns the override date, or the clock date when empty.
func (s *evaluationServiceImpl) resolveToday(override string) (time.Time, error) {
	if override == "" {
		return clock.Today(s.clock), nil
	}
	t, err := domainLifecycle.ParseDate(override)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.ErrCodeDateInvalid, "invalid evaluation date").WithDetail(override)
	}
	return t, nil
}

func requireCase(req *CaseRequest) error {
	if req == nil || req.Case == nil {
		return errors.InvalidParam("case is required")
	}
	return nil
}

// Evaluate computes the full evaluation of a case, serving it from the cache
// when an identical case was evaluated for the same date.
func (s *evaluationServiceImpl) Evaluate(ctx context.Context, req *CaseRequest) (*CaseEvaluation, error) {
	if err := requireCase(req); err != nil {
		return nil, err
	}
	today, err := s.resolveToday(req.Today)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.logger.With(logging.CaseID(req.Case.ID), logging.Date("today", today))

	key, keyErr := evaluationKey(req.Case, today)
	if keyErr != nil {
		log.Warn("cannot derive cache key", logging.Err(keyErr))
	}

	if cached := s.lookup(ctx, key, log); cached != nil {
		s.metrics.ObserveEvaluation("evaluate", sourceCache, time.Since(start))
		return cached, nil
	}

	result := buildEvaluation(req.Case, today)
	s.record(result)
	s.store(ctx, key, result, log)
	s.metrics.ObserveEvaluation("evaluate", sourceComputed, time.Since(start))

	log.Debug("case evaluated",
		logging.String("readiness", string(result.Readiness)),
		logging.Int("deadlines", len(result.Deadlines)),
		logging.Bool("valid", result.Validation.Valid))
	return result, nil
}

func buildEvaluation(c *domainLifecycle.Case, today time.Time) *CaseEvaluation {
	return &CaseEvaluation{
		CaseID:       c.ID,
		EmployerName: c.EmployerName,
		CaseStatus:   string(c.CaseStatus),
		Evaluation:   *domainLifecycle.EvaluateAt(c, today),
		RFIHistory:   domainLifecycle.SortRequestEntries(c.RFIEntries),
		RFEHistory:   domainLifecycle.SortRequestEntries(c.RFEEntries),
	}
}

func (s *evaluationServiceImpl) record(ev *CaseEvaluation) {
	s.metrics.RecordValidation(len(ev.Validation.Errors), len(ev.Validation.Warnings))
	if ev.NextAction != nil {
		s.metrics.RecordNextAction(ev.NextAction.Kind.Key())
	} else {
		s.metrics.RecordNextAction("")
	}
}

func (s *evaluationServiceImpl) lookup(ctx context.Context, key string, log logging.Logger) *CaseEvaluation {
	if s.cache == nil || key == "" {
		s.metrics.RecordCacheResult(cacheDisabled)
		return nil
	}
	var ev CaseEvaluation
	err := s.cache.Get(ctx, key, &ev)
	switch {
	case err == nil:
		s.metrics.RecordCacheResult(cacheHit)
		ev.Cached = true
		return &ev
	case errors.IsCode(err, errors.ErrCodeCacheMiss):
		s.metrics.RecordCacheResult(cacheMiss)
	default:
		s.metrics.RecordCacheResult(cacheError)
		log.Warn("evaluation cache read failed", logging.Err(err))
	}
	return nil
}

func (s *evaluationServiceImpl) store(ctx context.Context, key string, ev *CaseEvaluation, log logging.Logger) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, ev, s.cfg.CacheTTL); err != nil {
		log.Warn("evaluation cache write failed", logging.Err(err))
	}
}

// evaluationKey digests the case content and the evaluation date, so any
// edit to the case yields a new key and no invalidation is needed.
func evaluationKey(c *domainLifecycle.Case, today time.Time) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return "eval:" + hex.EncodeToString(sum[:]) + ":" + domainLifecycle.FormatDate(today), nil
}

// Validate runs the validation engine.  Findings are returned as data; only
// a missing case or a bad date is an error.
func (s *evaluationServiceImpl) Validate(ctx context.Context, req *CaseRequest) (*domainLifecycle.ValidationResult, error) {
	if err := requireCase(req); err != nil {
		return nil, err
	}
	today, err := s.resolveToday(req.Today)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result := domainLifecycle.Validate(req.Case, today)
	s.metrics.RecordValidation(len(result.Errors), len(result.Warnings))
	s.metrics.ObserveEvaluation("validate", sourceComputed, time.Since(start))
	if !result.Valid {
		s.logger.Debug("case has validation errors",
			logging.CaseID(req.Case.ID), logging.Int("errors", len(result.Errors)))
	}
	return &result, nil
}

// Deadlines lists the outstanding deadlines of a case, most urgent first.
func (s *evaluationServiceImpl) Deadlines(ctx context.Context, req *CaseRequest) (*DeadlineReport, error) {
	if err := requireCase(req); err != nil {
		return nil, err
	}
	today, err := s.resolveToday(req.Today)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	deadlines := domainLifecycle.Deadlines(req.Case, today)
	if deadlines == nil {
		deadlines = []domainLifecycle.Deadline{}
	}
	report := &DeadlineReport{
		CaseID:     req.Case.ID,
		Today:      domainLifecycle.FormatDate(today),
		MostUrgent: domainLifecycle.MostUrgentDeadline(req.Case, today),
		Deadlines:  deadlines,
	}
	s.metrics.ObserveEvaluation("deadlines", sourceComputed, time.Since(start))
	return report, nil
}

// Calendar derives the calendar events of every case, in case order.
func (s *evaluationServiceImpl) Calendar(ctx context.Context, req *CalendarRequest) ([]domainLifecycle.CalendarEvent, error) {
	if req == nil || len(req.Cases) == 0 {
		return nil, errors.InvalidParam("at least one case is required")
	}
	today, err := s.resolveToday(req.Today)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	events := []domainLifecycle.CalendarEvent{}
	for i, c := range req.Cases {
		if c == nil {
			return nil, errors.InvalidParam("case is required").WithDetail("index " + strconv.Itoa(i))
		}
		for _, ev := range domainLifecycle.CalendarEvents(c, today) {
			s.metrics.RecordCalendarEvent(string(ev.Kind))
			events = append(events, ev)
		}
	}
	s.metrics.ObserveEvaluation("calendar", sourceComputed, time.Since(start))
	return events, nil
}

// ExportICal renders the calendar events of every case as an iCalendar
// document.
func (s *evaluationServiceImpl) ExportICal(ctx context.Context, req *CalendarRequest) ([]byte, error) {
	events, err := s.Calendar(ctx, req)
	if err != nil {
		return nil, err
	}
	return buildICalData(events, icalOptions{
		ProductID:    s.cfg.ProductID,
		ReminderDays: s.cfg.ReminderDays,
		Stamp:        s.clock.Now(),
	}), nil
}

// AddRequestEntry appends a new RFI or RFE to the case.  It fails with a
// conflict while an entry of the same kind is awaiting a response.
func (s *evaluationServiceImpl) AddRequestEntry(ctx context.Context, req *AddRequestEntryRequest) (*domainLifecycle.RequestEntry, error) {
	if req == nil || req.Case == nil {
		return nil, errors.InvalidParam("case is required")
	}
	switch req.Kind {
	case domainLifecycle.RequestRFI, domainLifecycle.RequestRFE:
	default:
		return nil, errors.InvalidParam("kind must be rfi or rfe").WithDetail(string(req.Kind))
	}
	entry, err := domainLifecycle.AddRequestEntry(req.Case, req.Kind, req.ReceivedDate, req.ResponseDueDate, s.clock.Now())
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeUnknown {
			return nil, errors.Wrap(err, errors.ErrCodeDateInvalid, "invalid request entry date")
		}
		return nil, err
	}
	s.logger.Info("request entry added",
		logging.CaseID(req.Case.ID),
		logging.String("kind", req.Kind.Label()),
		logging.String("entry_id", entry.ID))
	return &entry, nil
}
