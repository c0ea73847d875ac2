package lifecycle

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Recruitment window
// ─────────────────────────────────────────────────────────────────────────────

// RecruitmentWindowStatus classifies the 180-day recruitment window.
type RecruitmentWindowStatus string

const (
	RecruitmentNotStarted RecruitmentWindowStatus = "NOT_STARTED"
	RecruitmentActive     RecruitmentWindowStatus = "ACTIVE"
	RecruitmentExpired    RecruitmentWindowStatus = "EXPIRED"
	RecruitmentCompleted  RecruitmentWindowStatus = "COMPLETED"
)

// RecruitmentWindow is the computed recruitment window of a case.
type RecruitmentWindow struct {
	Status        RecruitmentWindowStatus `json:"status"`
	StartDate     string                  `json:"startDate,omitempty"`
	EndDate       string                  `json:"endDate,omitempty"`
	DaysRemaining *int                    `json:"daysRemaining,omitempty"`
	DaysElapsed   *int                    `json:"daysElapsed,omitempty"`
}

// CalculateRecruitmentWindow derives the recruitment window from the first
// recruitment step.  A case whose mandatory steps are all recorded is
// COMPLETED whatever the date.
func CalculateRecruitmentWindow(c *Case, today time.Time) RecruitmentWindow {
	today = midnight(today)
	start, ok := c.FirstRecruitmentDate()
	if !ok {
		return RecruitmentWindow{Status: RecruitmentNotStarted}
	}
	end := AddDays(start, RecruitmentWindowDays)
	w := RecruitmentWindow{
		StartDate: FormatDate(start),
		EndDate:   FormatDate(end),
	}

	switch {
	case c.Recruitment.MandatoryStepsComplete():
		w.Status = RecruitmentCompleted
	case today.After(end):
		w.Status = RecruitmentExpired
		w.DaysElapsed = intPtr(DaysBetween(end, today))
	default:
		w.Status = RecruitmentActive
		w.DaysRemaining = intPtr(DaysBetween(today, end))
	}
	return w
}

// ─────────────────────────────────────────────────────────────────────────────
// Filing window
// ─────────────────────────────────────────────────────────────────────────────

// FilingWindowStatus classifies the ETA 9089 filing window.
type FilingWindowStatus string

const (
	FilingNotAvailable FilingWindowStatus = "NOT_AVAILABLE"
	FilingOpeningSoon  FilingWindowStatus = "OPENING_SOON"
	FilingOpen         FilingWindowStatus = "OPEN"
	FilingClosingSoon  FilingWindowStatus = "CLOSING_SOON"
	FilingClosed       FilingWindowStatus = "CLOSED"
	FilingFiled        FilingWindowStatus = "FILED"
)

// FilingWindow is the computed ETA 9089 filing window of a case.
type FilingWindow struct {
	Status        FilingWindowStatus `json:"status"`
	OpensDate     string             `json:"opensDate,omitempty"`
	ClosesDate    string             `json:"closesDate,omitempty"`
	DaysUntilOpen *int               `json:"daysUntilOpen,omitempty"`
	DaysRemaining *int               `json:"daysRemaining,omitempty"`
	DaysElapsed   *int               `json:"daysElapsed,omitempty"`
}

// filingBounds returns the opens and closes dates of the filing window.
// opens is the last mandatory recruitment date + 30 days; closes is the
// earlier of PWD expiration and first recruitment + 180 days.
func filingBounds(c *Case) (opens time.Time, hasOpens bool, closes time.Time, hasCloses bool) {
	if last, ok := c.LastMandatoryRecruitmentDate(); ok {
		opens, hasOpens = AddDays(last, FilingWaitDays), true
	}

	var cap180 time.Time
	hasCap := false
	if first, ok := c.FirstRecruitmentDate(); ok {
		cap180, hasCap = AddDays(first, RecruitmentWindowDays), true
	}
	pwdExp, hasPWD := optionalDate(c.PWD.ExpirationDate)

	switch {
	case hasPWD && hasCap:
		closes, hasCloses = pwdExp, true
		if cap180.Before(pwdExp) {
			closes = cap180
		}
	case hasPWD:
		closes, hasCloses = pwdExp, true
	case hasCap:
		closes, hasCloses = cap180, true
	}
	return opens, hasOpens, closes, hasCloses
}

// CalculateFilingWindow derives the ETA 9089 filing window.
func CalculateFilingWindow(c *Case, today time.Time) FilingWindow {
	today = midnight(today)
	filed := c.ETA9089Filed()
	unavailable := FilingNotAvailable
	if filed {
		unavailable = FilingFiled
	}

	opens, hasOpens, closes, hasCloses := filingBounds(c)
	if !hasOpens {
		return FilingWindow{Status: unavailable}
	}

	w := FilingWindow{OpensDate: FormatDate(opens)}
	if !hasCloses {
		w.Status = unavailable
		if !filed && today.Before(opens) {
			w.DaysUntilOpen = intPtr(DaysBetween(today, opens))
		}
		return w
	}
	w.ClosesDate = FormatDate(closes)

	if filed {
		w.Status = FilingFiled
		return w
	}

	switch {
	case today.After(closes):
		w.Status = FilingClosed
		w.DaysElapsed = intPtr(DaysBetween(closes, today))
	case today.Before(opens):
		untilOpen := DaysBetween(today, opens)
		w.DaysUntilOpen = intPtr(untilOpen)
		w.Status = FilingNotAvailable
		if untilOpen <= OpeningSoonDays {
			w.Status = FilingOpeningSoon
		}
	default:
		remaining := DaysBetween(today, closes)
		w.DaysRemaining = intPtr(remaining)
		w.Status = FilingOpen
		if remaining <= ClosingSoonDays {
			w.Status = FilingClosingSoon
		}
	}
	return w
}

// IsOpen reports whether an ETA 9089 may be filed today.
func (w FilingWindow) IsOpen() bool {
	return w.Status == FilingOpen || w.Status == FilingClosingSoon
}
