package lifecycle

import (
	"time"

	"github.com/turtacn/perm-tracker/pkg/clock"
)

// Evaluation gathers every engine output for one case on one day.
type Evaluation struct {
	Today              string            `json:"today"`
	RecruitmentWindow  RecruitmentWindow `json:"recruitmentWindow"`
	FilingWindow       FilingWindow      `json:"filingWindow"`
	Readiness          Readiness         `json:"readiness"`
	NextAction         *NextAction       `json:"nextAction"`
	MostUrgentDeadline *Deadline         `json:"mostUrgentDeadline"`
	Deadlines          []Deadline        `json:"deadlines"`
	RFI                RequestStatus     `json:"rfi"`
	RFE                RequestStatus     `json:"rfe"`
	Validation         ValidationResult  `json:"validation"`
}

// EvaluateAt computes the full evaluation of c as of today.
func EvaluateAt(c *Case, today time.Time) *Evaluation {
	today = clock.Midnight(today)
	deadlines := Deadlines(c, today)
	if deadlines == nil {
		deadlines = []Deadline{}
	}
	return &Evaluation{
		Today:              FormatDate(today),
		RecruitmentWindow:  CalculateRecruitmentWindow(c, today),
		FilingWindow:       CalculateFilingWindow(c, today),
		Readiness:          ClassifyReadiness(c, today),
		NextAction:         ResolveNextAction(c, today),
		MostUrgentDeadline: MostUrgentDeadline(c, today),
		Deadlines:          deadlines,
		RFI:                TrackRequests(RequestRFI, c.RFIEntries, today),
		RFE:                TrackRequests(RequestRFE, c.RFEEntries, today),
		Validation:         Validate(c, today),
	}
}

// Engine binds the lifecycle computations to a clock.
type Engine struct {
	clock clock.Clock
}

// NewEngine returns an engine reading today from clk.  A nil clock uses the
// system clock.
func NewEngine(clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Engine{clock: clk}
}

// Today is the current UTC calendar date.
func (e *Engine) Today() time.Time {
	return clock.Today(e.clock)
}

// Evaluate computes the full evaluation of c as of today.
func (e *Engine) Evaluate(c *Case) *Evaluation {
	return EvaluateAt(c, e.Today())
}

// RecruitmentWindow computes the recruitment window as of today.
func (e *Engine) RecruitmentWindow(c *Case) RecruitmentWindow {
	return CalculateRecruitmentWindow(c, e.Today())
}

// FilingWindow computes the filing window as of today.
func (e *Engine) FilingWindow(c *Case) FilingWindow {
	return CalculateFilingWindow(c, e.Today())
}

// NextAction resolves the next action as of today.
func (e *Engine) NextAction(c *Case) *NextAction {
	return ResolveNextAction(c, e.Today())
}

// MostUrgentDeadline selects the most urgent deadline as of today.
func (e *Engine) MostUrgentDeadline(c *Case) *Deadline {
	return MostUrgentDeadline(c, e.Today())
}

// Validate validates c as of today.
func (e *Engine) Validate(c *Case) ValidationResult {
	return Validate(c, e.Today())
}
