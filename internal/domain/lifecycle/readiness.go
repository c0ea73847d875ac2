package lifecycle

import "time"

// Readiness is the recruitment-readiness classification of a case.  It is
// distinct from the filing window status: it answers "can this case move on
// to ETA 9089 filing?".
type Readiness string

const (
	// ReadinessIncomplete: one or more mandatory recruitment steps missing.
	ReadinessIncomplete Readiness = "incomplete"
	// ReadinessExpired: more than 180 days have passed since the first
	// recruitment step.
	ReadinessExpired Readiness = "expired"
	// ReadinessWaiting: steps done, the 30-day wait has not elapsed.
	ReadinessWaiting Readiness = "waiting"
	// ReadinessReady: steps done and the filing window has opened.
	ReadinessReady Readiness = "ready"
)

// ClassifyReadiness classifies recruitment readiness.  Missing steps always
// win over date-based states because filing cannot occur regardless of
// timing.
func ClassifyReadiness(c *Case, today time.Time) Readiness {
	today = midnight(today)
	if !c.Recruitment.MandatoryStepsComplete() {
		return ReadinessIncomplete
	}
	if first, ok := c.FirstRecruitmentDate(); ok {
		if today.After(AddDays(first, RecruitmentWindowDays)) {
			return ReadinessExpired
		}
	}
	opens, hasOpens, _, _ := filingBounds(c)
	if hasOpens && today.Before(opens) {
		return ReadinessWaiting
	}
	return ReadinessReady
}
