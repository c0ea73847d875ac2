package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics is the tracker's metric set.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Evaluation engine
	EvaluationsTotal       CounterVec
	EvaluationDuration     HistogramVec
	ValidationFindings     CounterVec
	NextActionsTotal       CounterVec
	CalendarEventsExported CounterVec

	// Cache
	CacheRequestsTotal CounterVec

	// Health
	BuildInfo GaugeVec
}

// NewAppMetrics registers the tracker's metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "HTTP requests by method, route and status.", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request latency.", nil, "method", "path"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests.", "method"),

		EvaluationsTotal:       collector.RegisterCounter("evaluations_total", "Case evaluations by operation and source.", "operation", "source"),
		EvaluationDuration:     collector.RegisterHistogram("evaluation_duration_seconds", "Case evaluation latency.", nil, "operation"),
		ValidationFindings:     collector.RegisterCounter("validation_findings_total", "Validation findings by severity.", "severity"),
		NextActionsTotal:       collector.RegisterCounter("next_actions_total", "Resolved next actions by kind.", "action"),
		CalendarEventsExported: collector.RegisterCounter("calendar_events_exported_total", "Calendar events written to iCalendar exports.", "kind"),

		CacheRequestsTotal: collector.RegisterCounter("cache_requests_total", "Evaluation cache lookups by result.", "result"),

		BuildInfo: collector.RegisterGauge("build_info", "Build metadata; value is always 1.", "version", "commit"),
	}
}

// RecordHTTPRequest records one completed request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// IncInFlight and DecInFlight bracket a request being served.
func (m *AppMetrics) IncInFlight(method string) {
	m.HTTPActiveRequests.WithLabelValues(method).Inc()
}

func (m *AppMetrics) DecInFlight(method string) {
	m.HTTPActiveRequests.WithLabelValues(method).Dec()
}

// ObserveEvaluation records one evaluation.  source is "computed" or "cache".
func (m *AppMetrics) ObserveEvaluation(operation, source string, d time.Duration) {
	m.EvaluationsTotal.WithLabelValues(operation, source).Inc()
	m.EvaluationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordValidation counts validation findings.
func (m *AppMetrics) RecordValidation(errors, warnings int) {
	if errors > 0 {
		m.ValidationFindings.WithLabelValues("error").Add(float64(errors))
	}
	if warnings > 0 {
		m.ValidationFindings.WithLabelValues("warning").Add(float64(warnings))
	}
}

// RecordNextAction counts a resolved action; "none" when no action applies.
func (m *AppMetrics) RecordNextAction(action string) {
	if action == "" {
		action = "none"
	}
	m.NextActionsTotal.WithLabelValues(action).Inc()
}

// RecordCacheResult counts a cache lookup: hit, miss or error.
func (m *AppMetrics) RecordCacheResult(result string) {
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordCalendarEvent counts one exported event.
func (m *AppMetrics) RecordCalendarEvent(kind string) {
	m.CalendarEventsExported.WithLabelValues(kind).Inc()
}

// SetBuildInfo publishes version metadata.
func (m *AppMetrics) SetBuildInfo(version, commit string) {
	m.BuildInfo.WithLabelValues(version, commit).Set(1)
}
