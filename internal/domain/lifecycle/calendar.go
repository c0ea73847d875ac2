package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CalendarEventKind identifies a calendar event derived from a case.
type CalendarEventKind string

const (
	EventPWDExpiration      CalendarEventKind = "pwd_expiration"
	EventRecruitmentExpires CalendarEventKind = "recruitment_expires"
	EventReadyToFile        CalendarEventKind = "ready_to_file"
	EventETA9089Filing      CalendarEventKind = "eta9089_filing"
	EventETA9089Expiration  CalendarEventKind = "eta9089_expiration"
	EventI140Deadline       CalendarEventKind = "i140_deadline"
	EventRFIResponseDue     CalendarEventKind = "rfi_response_due"
	EventRFEResponseDue     CalendarEventKind = "rfe_response_due"
)

func (k CalendarEventKind) titlePrefix() string {
	switch k {
	case EventPWDExpiration:
		return "PWD Expiration"
	case EventRecruitmentExpires:
		return "Recruitment Expires"
	case EventReadyToFile:
		return "Ready to File"
	case EventETA9089Filing:
		return "ETA 9089 Filing"
	case EventETA9089Expiration:
		return "ETA 9089 Expiration"
	case EventI140Deadline:
		return "I-140 Deadline"
	case EventRFIResponseDue:
		return "RFI Response Due"
	case EventRFEResponseDue:
		return "RFE Response Due"
	}
	return string(k)
}

func (k CalendarEventKind) description() string {
	switch k {
	case EventPWDExpiration:
		return "The prevailing wage determination expires."
	case EventRecruitmentExpires:
		return "The 180-day recruitment window closes."
	case EventReadyToFile:
		return "The 30-day waiting period ends and the ETA 9089 may be filed."
	case EventETA9089Filing:
		return "Last day to file the ETA 9089."
	case EventETA9089Expiration:
		return "The labor certification expires."
	case EventI140Deadline:
		return "Last day to file the I-140 petition."
	case EventRFIResponseDue:
		return "The Request for Information response is due."
	case EventRFEResponseDue:
		return "The Request for Evidence response is due."
	}
	return ""
}

// calendarNamespace seeds deterministic event UIDs.
var calendarNamespace = uuid.MustParse("6f1d3c52-8f0e-4a8e-9b7c-2f5d8e4a1c90")

// CalendarEvent is an all-day calendar entry derived from a case.
type CalendarEvent struct {
	UID         string            `json:"uid"`
	Kind        CalendarEventKind `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	DaysUntil   int               `json:"daysUntil"`
	Urgency     Urgency           `json:"urgency"`
}

// CalendarEvents derives the calendar entries of a case.  Event UIDs depend
// only on the case identity, kind and date so re-exports replace earlier
// entries.
func CalendarEvents(c *Case, today time.Time) []CalendarEvent {
	today = midnight(today)
	if c.IsClosed() {
		return nil
	}
	identity := c.ID
	if identity == "" {
		identity = c.EmployerName + "|" + c.BeneficiaryIdentifier + "|" + c.PositionTitle
	}

	var out []CalendarEvent
	add := func(kind CalendarEventKind, date time.Time) {
		iso := FormatDate(date)
		d := DaysBetween(today, date)
		out = append(out, CalendarEvent{
			UID:         uuid.NewSHA1(calendarNamespace, []byte(identity+"|"+string(kind)+"|"+iso)).String(),
			Kind:        kind,
			Title:       fmt.Sprintf("%s: %s", kind.titlePrefix(), c.EmployerName),
			Description: kind.description(),
			Date:        iso,
			DaysUntil:   d,
			Urgency:     UrgencyFor(d),
		})
	}

	if !c.ETA9089Filed() {
		if exp, ok := optionalDate(c.PWD.ExpirationDate); ok {
			add(EventPWDExpiration, exp)
		}
		if first, ok := c.FirstRecruitmentDate(); ok {
			add(EventRecruitmentExpires, AddDays(first, RecruitmentWindowDays))
		}
		opens, hasOpens, closes, hasCloses := filingBounds(c)
		if hasOpens {
			add(EventReadyToFile, opens)
		}
		if hasOpens && hasCloses {
			add(EventETA9089Filing, closes)
		}
	}

	if c.ETA9089.CertificationDate != "" {
		if exp, ok := optionalDate(c.ETA9089.ExpirationDate); ok {
			add(EventETA9089Expiration, exp)
			if c.I140.FilingDate == "" {
				add(EventI140Deadline, exp)
			}
		}
	}

	if active := ActiveEntry(c.RFIEntries); active != nil {
		if due, ok := optionalDate(active.ResponseDueDate); ok {
			add(EventRFIResponseDue, due)
		}
	}
	if active := ActiveEntry(c.RFEEntries); active != nil {
		if due, ok := optionalDate(active.ResponseDueDate); ok {
			add(EventRFEResponseDue, due)
		}
	}
	return out
}
