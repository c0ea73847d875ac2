package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

func TestActiveEntry(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	entries := []RequestEntry{
		{ID: "answered", ReceivedDate: "2024-04-01", ResponseDueDate: "2024-05-01", ResponseSubmittedDate: "2024-04-20"},
		{ID: "later", ReceivedDate: "2024-06-01", ResponseDueDate: "2024-07-01", CreatedAt: created},
		{ID: "sooner-b", ReceivedDate: "2024-06-01", ResponseDueDate: "2024-06-20", CreatedAt: created.Add(time.Hour)},
		{ID: "sooner-a", ReceivedDate: "2024-06-01", ResponseDueDate: "2024-06-20", CreatedAt: created},
	}

	got := ActiveEntry(entries)
	require.NotNil(t, got)
	assert.Equal(t, "sooner-a", got.ID)

	assert.Nil(t, ActiveEntry(entries[:1]))
	assert.Nil(t, ActiveEntry(nil))
}

func TestTrackRequests(t *testing.T) {
	t.Parallel()

	entries := []RequestEntry{{ID: "rfi-1", ReceivedDate: "2024-05-26", ResponseDueDate: "2024-06-20"}}
	status := TrackRequests(RequestRFI, entries, scenarioToday)
	assert.True(t, status.Active)
	require.NotNil(t, status.Entry)
	assert.Equal(t, "rfi-1", status.Entry.ID)
	require.NotNil(t, status.DaysUntilDue)
	assert.Equal(t, 5, *status.DaysUntilDue)
	assert.Equal(t, UrgencyUrgent, status.Urgency)

	idle := TrackRequests(RequestRFE, nil, scenarioToday)
	assert.Equal(t, RequestStatus{Kind: RequestRFE}, idle)
}

func TestSortRequestEntries(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []RequestEntry{
		{ID: "old-closed", ReceivedDate: "2023-01-01", ResponseSubmittedDate: "2023-01-15"},
		{ID: "new-closed-early", ReceivedDate: "2024-02-01", ResponseSubmittedDate: "2024-02-15", CreatedAt: created},
		{ID: "open", ReceivedDate: "2023-06-01"},
		{ID: "new-closed-late", ReceivedDate: "2024-02-01", ResponseSubmittedDate: "2024-02-20", CreatedAt: created.Add(time.Minute)},
	}

	sorted := SortRequestEntries(entries)
	ids := make([]string, 0, len(sorted))
	for _, e := range sorted {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"open", "new-closed-late", "new-closed-early", "old-closed"}, ids)
	assert.Equal(t, "old-closed", entries[0].ID, "input must not be reordered")
}

func TestCanAddRequestEntry(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CanAddRequestEntry(RequestRFI, nil))

	err := CanAddRequestEntry(RequestRFI, []RequestEntry{{ID: "x", ReceivedDate: "2024-06-01", ResponseDueDate: "2024-06-30"}})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Equal(t, errors.ErrCodeRequestEntryActive, errors.GetCode(err))
	assert.Contains(t, err.Error(), "id=x")
}

func TestAddRequestEntry(t *testing.T) {
	t.Parallel()

	c := newTestCase(CaseStatusI140)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	entry, err := AddRequestEntry(c, RequestRFE, "2024-06-01", "2024-08-30", created)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, time.UTC, entry.CreatedAt.Location())
	require.Len(t, c.RFEEntries, 1)
	assert.Empty(t, c.RFIEntries)

	_, err = AddRequestEntry(c, RequestRFE, "2024-06-10", "2024-09-10", created)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRequestEntryActive))

	_, err = AddRequestEntry(c, RequestRFI, "2024-06-10", "2024-06-01", created)
	assert.True(t, errors.IsValidation(err))

	_, err = AddRequestEntry(c, RequestRFI, "June 10", "2024-06-01", created)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDateInvalid))
	assert.Len(t, c.RFIEntries, 0)
}
