package lifecycle

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// ActionKind enumeration
// ─────────────────────────────────────────────────────────────────────────────

// ActionKind is the closed set of next actions a case can require.
type ActionKind int

const (
	ActionRespondRFI ActionKind = iota + 1
	ActionRespondRFE
	ActionFilePWD
	ActionWaitPWD
	ActionStartRecruitment
	ActionPostJobOrder
	ActionPostNoticeOfFiling
	ActionPlaceSundayAds
	ActionCompleteAdditionalRecruitment
	ActionWaitFilingWindow
	ActionFileETA9089
	ActionWaitCertification
	ActionFileI140
	ActionWaitI140Decision
	ActionCaseComplete
)

// Label is the user-facing action name.
func (k ActionKind) Label() string {
	switch k {
	case ActionRespondRFI:
		return "Respond to RFI"
	case ActionRespondRFE:
		return "Respond to RFE"
	case ActionFilePWD:
		return "File PWD"
	case ActionWaitPWD:
		return "Wait for PWD"
	case ActionStartRecruitment:
		return "Start Recruitment"
	case ActionPostJobOrder:
		return "Post Job Order"
	case ActionPostNoticeOfFiling:
		return "Post Notice of Filing"
	case ActionPlaceSundayAds:
		return "Place Sunday Ads"
	case ActionCompleteAdditionalRecruitment:
		return "Complete Additional Recruitment"
	case ActionWaitFilingWindow:
		return "Wait for Filing Window"
	case ActionFileETA9089:
		return "File ETA 9089"
	case ActionWaitCertification:
		return "Wait for Certification"
	case ActionFileI140:
		return "File I-140"
	case ActionWaitI140Decision:
		return "Wait for I-140 Decision"
	case ActionCaseComplete:
		return "Case Complete"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// String implements fmt.Stringer.
func (k ActionKind) String() string { return k.Label() }

var actionKeys = [...]string{
	ActionRespondRFI:                    "respond_rfi",
	ActionRespondRFE:                    "respond_rfe",
	ActionFilePWD:                       "file_pwd",
	ActionWaitPWD:                       "wait_pwd",
	ActionStartRecruitment:              "start_recruitment",
	ActionPostJobOrder:                  "post_job_order",
	ActionPostNoticeOfFiling:            "post_notice_of_filing",
	ActionPlaceSundayAds:                "place_sunday_ads",
	ActionCompleteAdditionalRecruitment: "complete_additional_recruitment",
	ActionWaitFilingWindow:              "wait_filing_window",
	ActionFileETA9089:                   "file_eta9089",
	ActionWaitCertification:             "wait_certification",
	ActionFileI140:                      "file_i140",
	ActionWaitI140Decision:              "wait_i140_decision",
	ActionCaseComplete:                  "case_complete",
}

// Key is the stable machine-readable identifier of the kind.
func (k ActionKind) Key() string {
	if k <= 0 || int(k) >= len(actionKeys) {
		return ""
	}
	return actionKeys[k]
}

// MarshalText encodes the kind as its key.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.Key()), nil }

// UnmarshalText decodes a key produced by MarshalText.
func (k *ActionKind) UnmarshalText(text []byte) error {
	for i, key := range actionKeys {
		if key != "" && key == string(text) {
			*k = ActionKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action kind %q", text)
}

// Description explains what the action involves.
func (k ActionKind) Description() string {
	switch k {
	case ActionRespondRFI:
		return "Submit a response to the Request for Information before its due date."
	case ActionRespondRFE:
		return "Submit a response to the Request for Evidence before its due date."
	case ActionFilePWD:
		return "File the Prevailing Wage Determination request."
	case ActionWaitPWD:
		return "The PWD request is pending a determination."
	case ActionStartRecruitment:
		return "The prevailing wage is determined; begin recruitment before it expires."
	case ActionPostJobOrder:
		return "Post a state workforce agency job order for at least 30 days."
	case ActionPostNoticeOfFiling:
		return "Post the Notice of Filing at the worksite."
	case ActionPlaceSundayAds:
		return "Place two Sunday newspaper advertisements on different Sundays."
	case ActionCompleteAdditionalRecruitment:
		return "Complete three distinct additional recruitment methods for a professional occupation."
	case ActionWaitFilingWindow:
		return "Recruitment is complete; the 30-day waiting period has not elapsed."
	case ActionFileETA9089:
		return "File the ETA 9089 labor certification application."
	case ActionWaitCertification:
		return "The ETA 9089 is pending certification."
	case ActionFileI140:
		return "File the I-140 immigrant petition before the labor certification expires."
	case ActionWaitI140Decision:
		return "The I-140 petition is pending a decision."
	case ActionCaseComplete:
		return "The I-140 petition has been approved."
	}
	return ""
}

// NextAction is the single action a case currently requires.
type NextAction struct {
	Kind        ActionKind `json:"kind"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
	Urgency     Urgency    `json:"urgency"`
	DueDate     string     `json:"dueDate,omitempty"`
	DaysUntil   *int       `json:"daysUntil,omitempty"`
}

func newAction(kind ActionKind, urgency Urgency) *NextAction {
	return &NextAction{
		Kind:        kind,
		Action:      kind.Label(),
		Description: kind.Description(),
		Urgency:     urgency,
	}
}

// actionDue derives urgency from a deadline.  fallback applies when the
// deadline is unknown.
func actionDue(kind ActionKind, due time.Time, ok bool, today time.Time, fallback Urgency) *NextAction {
	if !ok {
		return newAction(kind, fallback)
	}
	d := DaysBetween(today, due)
	a := newAction(kind, UrgencyFor(d))
	a.DueDate = FormatDate(due)
	a.DaysUntil = intPtr(d)
	return a
}

// ─────────────────────────────────────────────────────────────────────────────
// Resolver
// ─────────────────────────────────────────────────────────────────────────────

// ResolveNextAction walks the priority chain and returns the first matching
// action, or nil when nothing is required.
func ResolveNextAction(c *Case, today time.Time) *NextAction {
	today = midnight(today)
	if c.IsClosed() {
		return nil
	}
	if a := requestAction(ActionRespondRFI, c.RFIEntries, today); a != nil {
		return a
	}
	if a := requestAction(ActionRespondRFE, c.RFEEntries, today); a != nil {
		return a
	}

	switch c.CaseStatus {
	case CaseStatusPWD:
		return pwdAction(c, today)
	case CaseStatusRecruitment:
		return recruitmentAction(c, today)
	case CaseStatusETA9089:
		return eta9089Action(c, today)
	case CaseStatusI140:
		return i140Action(c, today)
	}
	return nil
}

func requestAction(kind ActionKind, entries []RequestEntry, today time.Time) *NextAction {
	active := ActiveEntry(entries)
	if active == nil {
		return nil
	}
	due, ok := optionalDate(active.ResponseDueDate)
	return actionDue(kind, due, ok, today, UrgencyNormal)
}

func pwdAction(c *Case, today time.Time) *NextAction {
	switch {
	case c.PWD.FilingDate == "":
		return newAction(ActionFilePWD, UrgencyNormal)
	case c.PWD.DeterminationDate == "":
		return newAction(ActionWaitPWD, UrgencyNormal)
	}
	exp, ok := optionalDate(c.PWD.ExpirationDate)
	return actionDue(ActionStartRecruitment, exp, ok, today, UrgencyNormal)
}

func recruitmentAction(c *Case, today time.Time) *NextAction {
	r := c.Recruitment
	var missing ActionKind
	switch {
	case !r.JobOrderComplete():
		missing = ActionPostJobOrder
	case !r.NoticeOfFilingComplete():
		missing = ActionPostNoticeOfFiling
	case !r.SundayAdsComplete():
		missing = ActionPlaceSundayAds
	case !r.AdditionalMethodsComplete():
		missing = ActionCompleteAdditionalRecruitment
	}
	if missing != 0 {
		var end time.Time
		first, ok := c.FirstRecruitmentDate()
		if ok {
			end = AddDays(first, RecruitmentWindowDays)
		}
		return actionDue(missing, end, ok, today, UrgencyNormal)
	}

	if last, ok := c.LastRecruitmentActivityDate(); ok {
		opens := AddDays(last, FilingWaitDays)
		if today.Before(opens) {
			a := newAction(ActionWaitFilingWindow, UrgencyNormal)
			a.DueDate = FormatDate(opens)
			a.DaysUntil = intPtr(DaysBetween(today, opens))
			return a
		}
	}
	return newAction(ActionFileETA9089, UrgencySoon)
}

func eta9089Action(c *Case, today time.Time) *NextAction {
	switch {
	case c.ETA9089.FilingDate == "":
		_, _, closes, ok := filingBounds(c)
		return actionDue(ActionFileETA9089, closes, ok, today, UrgencySoon)
	case c.ETA9089.CertificationDate == "":
		return newAction(ActionWaitCertification, UrgencyNormal)
	}
	return fileI140Action(c, today)
}

func i140Action(c *Case, today time.Time) *NextAction {
	switch {
	case c.I140.FilingDate == "":
		return fileI140Action(c, today)
	case c.I140.ApprovalDate != "":
		return newAction(ActionCaseComplete, UrgencyNormal)
	case c.I140.DenialDate == "":
		return newAction(ActionWaitI140Decision, UrgencyNormal)
	}
	return nil
}

// fileI140Action uses the ETA 9089 expiration, defaulting to 180 days out.
func fileI140Action(c *Case, today time.Time) *NextAction {
	if exp, ok := optionalDate(c.ETA9089.ExpirationDate); ok {
		return actionDue(ActionFileI140, exp, true, today, UrgencyNormal)
	}
	a := newAction(ActionFileI140, UrgencyFor(DefaultI140DaysUntil))
	a.DaysUntil = intPtr(DefaultI140DaysUntil)
	return a
}
