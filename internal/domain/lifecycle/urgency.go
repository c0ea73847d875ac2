package lifecycle

// Urgency buckets how close a deadline is.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent" // <= 7 days
	UrgencySoon    Urgency = "soon"   // <= 30 days
	UrgencyNormal  Urgency = "normal" // > 30 days
)

const (
	urgentThresholdDays = 7
	soonThresholdDays   = 30
)

// UrgencyFor buckets a days-until-deadline value.
func UrgencyFor(daysUntil int) Urgency {
	switch {
	case daysUntil < 0:
		return UrgencyOverdue
	case daysUntil <= urgentThresholdDays:
		return UrgencyUrgent
	case daysUntil <= soonThresholdDays:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}
