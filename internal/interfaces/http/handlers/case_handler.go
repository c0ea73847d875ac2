package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/infrastructure/casefile"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// HeaderEvaluationCache reports whether an evaluation came from the cache.
const HeaderEvaluationCache = "X-Evaluation-Cache"

const icalFilename = "perm-deadlines.ics"

// CaseHandler serves the case evaluation endpoints.  Every endpoint takes
// the case document as the request body; nothing is stored.
type CaseHandler struct {
	svc    lifecycle.EvaluationService
	logger logging.Logger
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(svc lifecycle.EvaluationService, logger logging.Logger) *CaseHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CaseHandler{svc: svc, logger: logger.Named("case_handler")}
}

// RegisterRoutes registers the case routes on an /api/v1 group.
func (h *CaseHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/cases/evaluate", h.Evaluate)
	r.POST("/cases/validate", h.Validate)
	r.POST("/cases/deadlines", h.Deadlines)
	r.POST("/cases/calendar", h.Calendar)
	r.POST("/cases/calendar.ics", h.ExportICal)
	r.POST("/cases/requests/:kind", h.AddRequestEntry)
}

func (h *CaseHandler) readCase(c *gin.Context) (*domainLifecycle.Case, bool) {
	kase, err := casefile.DecodeCase(c.Request.Body, bodyFormat(c))
	if err != nil {
		writeAppError(c, h.logger, err)
		return nil, false
	}
	return kase, true
}

func (h *CaseHandler) readCases(c *gin.Context) ([]*domainLifecycle.Case, bool) {
	cases, err := casefile.Decode(c.Request.Body, bodyFormat(c))
	if err != nil {
		writeAppError(c, h.logger, err)
		return nil, false
	}
	return cases, true
}

// Evaluate handles POST /api/v1/cases/evaluate.
func (h *CaseHandler) Evaluate(c *gin.Context) {
	kase, ok := h.readCase(c)
	if !ok {
		return
	}
	ev, err := h.svc.Evaluate(c.Request.Context(), &lifecycle.CaseRequest{Case: kase, Today: todayParam(c)})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if ev.Cached {
		c.Header(HeaderEvaluationCache, "hit")
	} else {
		c.Header(HeaderEvaluationCache, "miss")
	}
	c.JSON(http.StatusOK, ev)
}

// Validate handles POST /api/v1/cases/validate.  An invalid case is still a
// 200; the findings are the response.
func (h *CaseHandler) Validate(c *gin.Context) {
	kase, ok := h.readCase(c)
	if !ok {
		return
	}
	res, err := h.svc.Validate(c.Request.Context(), &lifecycle.CaseRequest{Case: kase, Today: todayParam(c)})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Deadlines handles POST /api/v1/cases/deadlines.
func (h *CaseHandler) Deadlines(c *gin.Context) {
	kase, ok := h.readCase(c)
	if !ok {
		return
	}
	report, err := h.svc.Deadlines(c.Request.Context(), &lifecycle.CaseRequest{Case: kase, Today: todayParam(c)})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CalendarResponse lists the calendar events of the posted cases.
type CalendarResponse struct {
	Events []domainLifecycle.CalendarEvent `json:"events"`
	Total  int                             `json:"total"`
}

// Calendar handles POST /api/v1/cases/calendar.  The body may hold one case
// or several.
func (h *CaseHandler) Calendar(c *gin.Context) {
	cases, ok := h.readCases(c)
	if !ok {
		return
	}
	events, err := h.svc.Calendar(c.Request.Context(), &lifecycle.CalendarRequest{Cases: cases, Today: todayParam(c)})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CalendarResponse{Events: events, Total: len(events)})
}

// ExportICal handles POST /api/v1/cases/calendar.ics.
func (h *CaseHandler) ExportICal(c *gin.Context) {
	cases, ok := h.readCases(c)
	if !ok {
		return
	}
	data, err := h.svc.ExportICal(c.Request.Context(), &lifecycle.CalendarRequest{Cases: cases, Today: todayParam(c)})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+icalFilename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// AddRequestEntryBody is the body of POST /api/v1/cases/requests/{kind}.
type AddRequestEntryBody struct {
	Case            *domainLifecycle.Case `json:"case"`
	ReceivedDate    string                `json:"receivedDate"`
	ResponseDueDate string                `json:"responseDueDate"`
}

// AddRequestEntryResponse returns the new entry and the updated case.
type AddRequestEntryResponse struct {
	Entry *domainLifecycle.RequestEntry `json:"entry"`
	Case  *domainLifecycle.Case         `json:"case"`
}

// AddRequestEntry handles POST /api/v1/cases/requests/{kind} with kind rfi
// or rfe.  A second entry while one is awaiting a response is a 409.
func (h *CaseHandler) AddRequestEntry(c *gin.Context) {
	var body AddRequestEntryBody
	raw, err := c.GetRawData()
	if err != nil {
		writeAppError(c, h.logger, errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read request body"))
		return
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeAppError(c, h.logger, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	entry, err := h.svc.AddRequestEntry(c.Request.Context(), &lifecycle.AddRequestEntryRequest{
		Case:            body.Case,
		Kind:            domainLifecycle.RequestKind(c.Param("kind")),
		ReceivedDate:    body.ReceivedDate,
		ResponseDueDate: body.ResponseDueDate,
	})
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, AddRequestEntryResponse{Entry: entry, Case: body.Case})
}
