package lifecycle

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
)

const (
	defaultProductID = "-//PERM Tracker//Case Deadlines//EN"
	uidDomain        = "perm-tracker"
	icalStampLayout  = "20060102T150405Z"
	icalDateLayout   = "20060102"
	icalLineLimit    = 75
)

type icalOptions struct {
	ProductID    string
	ReminderDays []int
	Stamp        time.Time
}

// buildICalData renders events as an RFC 5545 calendar of all-day events.
// Each reminder day adds a display alarm that many days before the event.
func buildICalData(events []domainLifecycle.CalendarEvent, opts icalOptions) []byte {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		writeFolded(&b, fmt.Sprintf(format, args...))
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", opts.ProductID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")

	stamp := opts.Stamp.UTC().Format(icalStampLayout)
	for _, ev := range events {
		start, err := domainLifecycle.ParseDate(ev.Date)
		if err != nil {
			continue
		}
		line("BEGIN:VEVENT")
		line("UID:%s@%s", ev.UID, uidDomain)
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", start.Format(icalDateLayout))
		line("DTEND;VALUE=DATE:%s", domainLifecycle.AddDays(start, 1).Format(icalDateLayout))
		line("SUMMARY:%s", escapeText(ev.Title))
		if ev.Description != "" {
			line("DESCRIPTION:%s", escapeText(ev.Description))
		}
		line("CATEGORIES:%s", strings.ToUpper(string(ev.Kind)))
		line("TRANSP:TRANSPARENT")
		for _, days := range opts.ReminderDays {
			line("BEGIN:VALARM")
			line("ACTION:DISPLAY")
			if days == 0 {
				line("TRIGGER:PT0S")
			} else {
				line("TRIGGER:-P%dD", days)
			}
			line("DESCRIPTION:%s", escapeText("Reminder: "+ev.Title))
			line("END:VALARM")
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return []byte(b.String())
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// writeFolded writes one content line, folding it at 75 octets without
// splitting a UTF-8 sequence.  Continuation lines start with a space.
func writeFolded(b *strings.Builder, s string) {
	limit := icalLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		limit = icalLineLimit - 1
	}
	b.WriteString(s)
	b.WriteString("\r\n")
}
