package lifecycle

import (
	"sort"
	"time"
)

// DeadlineKind identifies the source of a deadline candidate.
type DeadlineKind string

const (
	DeadlinePWDExpiration      DeadlineKind = "pwd_expiration"
	DeadlineRecruitmentCloses  DeadlineKind = "recruitment_window_closes"
	DeadlineFilingWindowOpens  DeadlineKind = "filing_window_opens"
	DeadlineFilingWindowCloses DeadlineKind = "filing_window_closes"
	DeadlineI140Filing         DeadlineKind = "i140_filing_deadline"
	DeadlineRFIResponse        DeadlineKind = "rfi_response_due"
	DeadlineRFEResponse        DeadlineKind = "rfe_response_due"
)

// Label is the user-facing deadline name.
func (k DeadlineKind) Label() string {
	switch k {
	case DeadlinePWDExpiration:
		return "PWD Expiration"
	case DeadlineRecruitmentCloses:
		return "Recruitment Window Closes"
	case DeadlineFilingWindowOpens:
		return "Filing Window Opens"
	case DeadlineFilingWindowCloses:
		return "Filing Window Closes"
	case DeadlineI140Filing:
		return "I-140 Filing Deadline"
	case DeadlineRFIResponse:
		return "RFI Response Due"
	case DeadlineRFEResponse:
		return "RFE Response Due"
	}
	return string(k)
}

// Deadline is one dated obligation of a case.
type Deadline struct {
	Kind      DeadlineKind `json:"kind"`
	Label     string       `json:"label"`
	Date      string       `json:"date"`
	DaysUntil int          `json:"daysUntil"`
	Urgency   Urgency      `json:"urgency"`
}

// CollectDeadlines returns every applicable deadline candidate in insertion
// order.  Closed cases have none.
func CollectDeadlines(c *Case, today time.Time) []Deadline {
	today = midnight(today)
	if c.IsClosed() {
		return nil
	}
	var out []Deadline
	add := func(kind DeadlineKind, date time.Time) {
		d := DaysBetween(today, date)
		out = append(out, Deadline{
			Kind:      kind,
			Label:     kind.Label(),
			Date:      FormatDate(date),
			DaysUntil: d,
			Urgency:   UrgencyFor(d),
		})
	}

	filed := c.ETA9089Filed()
	if !filed {
		if exp, ok := optionalDate(c.PWD.ExpirationDate); ok {
			add(DeadlinePWDExpiration, exp)
		}
	}

	if c.CaseStatus == CaseStatusRecruitment && !filed {
		if first, ok := c.FirstRecruitmentDate(); ok {
			add(DeadlineRecruitmentCloses, AddDays(first, RecruitmentWindowDays))
		}
		opens, hasOpens, closes, hasCloses := filingBounds(c)
		if hasOpens && today.Before(opens) {
			add(DeadlineFilingWindowOpens, opens)
		}
		if hasOpens && hasCloses {
			add(DeadlineFilingWindowCloses, closes)
		}
	}

	if c.ETA9089.CertificationDate != "" && c.I140.FilingDate == "" {
		if exp, ok := optionalDate(c.ETA9089.ExpirationDate); ok {
			add(DeadlineI140Filing, exp)
		}
	}

	if active := ActiveEntry(c.RFIEntries); active != nil {
		if due, ok := optionalDate(active.ResponseDueDate); ok {
			add(DeadlineRFIResponse, due)
		}
	}
	if active := ActiveEntry(c.RFEEntries); active != nil {
		if due, ok := optionalDate(active.ResponseDueDate); ok {
			add(DeadlineRFEResponse, due)
		}
	}
	return out
}

// MostUrgentDeadline returns the candidate with the smallest daysUntil, the
// first inserted winning ties, or nil when there are none.
func MostUrgentDeadline(c *Case, today time.Time) *Deadline {
	candidates := CollectDeadlines(c, today)
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, d := range candidates[1:] {
		if d.DaysUntil < best.DaysUntil {
			best = d
		}
	}
	return &best
}

// Deadlines returns every candidate ordered by daysUntil, keeping insertion
// order among equals.
func Deadlines(c *Case, today time.Time) []Deadline {
	out := CollectDeadlines(c, today)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntil < out[j].DaysUntil
	})
	return out
}
