package lifecycle

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

// RequestKind distinguishes the two government request collections.
type RequestKind string

const (
	RequestRFI RequestKind = "rfi"
	RequestRFE RequestKind = "rfe"
)

// Label returns the display abbreviation ("RFI" or "RFE").
func (k RequestKind) Label() string {
	switch k {
	case RequestRFI:
		return "RFI"
	case RequestRFE:
		return "RFE"
	}
	return string(k)
}

// Field returns the case field key holding entries of this kind.
func (k RequestKind) Field() string {
	if k == RequestRFE {
		return "rfeEntries"
	}
	return "rfiEntries"
}

// Entries returns the collection of this kind from c.
func (k RequestKind) Entries(c *Case) []RequestEntry {
	if k == RequestRFE {
		return c.RFEEntries
	}
	return c.RFIEntries
}

// IsActive is the single definition of an open request: no response has been
// submitted yet.  Sorting, validation, next-action and deadline logic all use
// it.
func IsActive(e RequestEntry) bool {
	return e.ResponseSubmittedDate == ""
}

// ActiveEntry returns the open entry of entries, or nil.  A well-formed
// collection has at most one; if several are open the one due first wins,
// then the earliest created.
func ActiveEntry(entries []RequestEntry) *RequestEntry {
	var best *RequestEntry
	for i := range entries {
		e := entries[i]
		if !IsActive(e) {
			continue
		}
		if best == nil || activeBefore(e, *best) {
			picked := e
			best = &picked
		}
	}
	return best
}

func activeBefore(a, b RequestEntry) bool {
	ad, aok := optionalDate(a.ResponseDueDate)
	bd, bok := optionalDate(b.ResponseDueDate)
	switch {
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	case aok && bok && !ad.Equal(bd):
		return ad.Before(bd)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// RequestStatus describes the active entry of a collection.
type RequestStatus struct {
	Kind         RequestKind   `json:"kind"`
	Active       bool          `json:"active"`
	Entry        *RequestEntry `json:"entry,omitempty"`
	DaysUntilDue *int          `json:"daysUntilDue,omitempty"`
	Urgency      Urgency       `json:"urgency,omitempty"`
}

// TrackRequests resolves the active entry of entries and its urgency.
func TrackRequests(kind RequestKind, entries []RequestEntry, today time.Time) RequestStatus {
	today = midnight(today)
	status := RequestStatus{Kind: kind}
	active := ActiveEntry(entries)
	if active == nil {
		return status
	}
	status.Active = true
	status.Entry = active
	status.Urgency = UrgencyNormal
	if due, ok := optionalDate(active.ResponseDueDate); ok {
		d := DaysBetween(today, due)
		status.DaysUntilDue = intPtr(d)
		status.Urgency = UrgencyFor(d)
	}
	return status
}

// SortRequestEntries returns a copy of entries in display order: active
// first, then most recently received, then most recently created.
func SortRequestEntries(entries []RequestEntry) []RequestEntry {
	out := make([]RequestEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if IsActive(a) != IsActive(b) {
			return IsActive(a)
		}
		if a.ReceivedDate != b.ReceivedDate {
			return a.ReceivedDate > b.ReceivedDate
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

// CanAddRequestEntry returns a conflict error while an entry of kind is still
// awaiting a response.
func CanAddRequestEntry(kind RequestKind, entries []RequestEntry) error {
	if active := ActiveEntry(entries); active != nil {
		return errors.New(errors.ErrCodeRequestEntryActive,
			fmt.Sprintf("an %s is already awaiting a response", kind.Label())).
			WithDetail("id=" + active.ID)
	}
	return nil
}

// NewRequestEntry builds an entry with a generated id.  Both dates must be
// valid ISO dates and the due date must not precede the received date.
func NewRequestEntry(receivedDate, responseDueDate string, createdAt time.Time) (RequestEntry, error) {
	received, err := ParseDate(receivedDate)
	if err != nil {
		return RequestEntry{}, errors.Wrap(err, errors.ErrCodeUnknown, "invalid receivedDate")
	}
	due, err := ParseDate(responseDueDate)
	if err != nil {
		return RequestEntry{}, errors.Wrap(err, errors.ErrCodeUnknown, "invalid responseDueDate")
	}
	if due.Before(received) {
		return RequestEntry{}, errors.InvalidParam("responseDueDate must be on or after receivedDate")
	}
	return RequestEntry{
		ID:              uuid.NewString(),
		ReceivedDate:    receivedDate,
		ResponseDueDate: responseDueDate,
		CreatedAt:       createdAt.UTC(),
	}, nil
}

// AddRequestEntry appends a new entry of kind to c after checking that no
// entry of that kind is active.  It returns the stored entry.
func AddRequestEntry(c *Case, kind RequestKind, receivedDate, responseDueDate string, createdAt time.Time) (RequestEntry, error) {
	if err := CanAddRequestEntry(kind, kind.Entries(c)); err != nil {
		return RequestEntry{}, err
	}
	entry, err := NewRequestEntry(receivedDate, responseDueDate, createdAt)
	if err != nil {
		return RequestEntry{}, err
	}
	if kind == RequestRFE {
		c.RFEEntries = append(c.RFEEntries, entry)
	} else {
		c.RFIEntries = append(c.RFIEntries, entry)
	}
	return entry, nil
}
