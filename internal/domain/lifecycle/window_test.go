package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRecruitmentWindow_Scenarios(t *testing.T) {
	t.Parallel()

	t.Run("active", func(t *testing.T) {
		t.Parallel()
		c := newTestCase(CaseStatusRecruitment)
		c.Recruitment.SundayAdFirstDate = "2024-05-16"

		w := CalculateRecruitmentWindow(c, scenarioToday)
		assert.Equal(t, RecruitmentActive, w.Status)
		assert.Equal(t, "2024-05-16", w.StartDate)
		assert.Equal(t, "2024-11-12", w.EndDate)
		require.NotNil(t, w.DaysRemaining)
		assert.Equal(t, 150, *w.DaysRemaining)
		assert.Nil(t, w.DaysElapsed)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		c := newTestCase(CaseStatusRecruitment)
		c.Recruitment.SundayAdFirstDate = "2023-11-28"

		w := CalculateRecruitmentWindow(c, scenarioToday)
		assert.Equal(t, RecruitmentExpired, w.Status)
		assert.Equal(t, "2024-05-26", w.EndDate)
		require.NotNil(t, w.DaysElapsed)
		assert.Equal(t, 20, *w.DaysElapsed)
		assert.Nil(t, w.DaysRemaining)
	})

	t.Run("not started", func(t *testing.T) {
		t.Parallel()
		c := newTestCase(CaseStatusRecruitment)
		c.Recruitment.NoticeOfFilingStartDate = "2024-05-01"

		w := CalculateRecruitmentWindow(c, scenarioToday)
		assert.Equal(t, RecruitmentWindow{Status: RecruitmentNotStarted}, w)
	})

	t.Run("completed", func(t *testing.T) {
		t.Parallel()
		w := CalculateRecruitmentWindow(completeCase(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, RecruitmentCompleted, w.Status)
		assert.Equal(t, "2024-03-01", w.StartDate)
		assert.Equal(t, "2024-08-28", w.EndDate)
		assert.Nil(t, w.DaysRemaining)
		assert.Nil(t, w.DaysElapsed)
	})

	t.Run("job order start opens window", func(t *testing.T) {
		t.Parallel()
		c := newTestCase(CaseStatusRecruitment)
		c.Recruitment.SundayAdFirstDate = "2024-05-19"
		c.Recruitment.JobOrderStartDate = "2024-05-16"

		w := CalculateRecruitmentWindow(c, scenarioToday)
		assert.Equal(t, "2024-05-16", w.StartDate)
	})
}

func TestCalculateRecruitmentWindow_MonotonicExpiry(t *testing.T) {
	t.Parallel()

	c := newTestCase(CaseStatusRecruitment)
	c.Recruitment.SundayAdFirstDate = "2024-05-16"

	expired := false
	for d := mustDate(t, "2024-05-16"); !d.After(mustDate(t, "2025-01-31")); d = AddDays(d, 1) {
		w := CalculateRecruitmentWindow(c, d)
		if expired {
			require.Equal(t, RecruitmentExpired, w.Status, FormatDate(d))
			continue
		}
		if w.Status == RecruitmentExpired {
			expired = true
			assert.Equal(t, "2024-11-13", FormatDate(d))
			assert.Equal(t, 1, *w.DaysElapsed)
		}
	}
	assert.True(t, expired)

	last := CalculateRecruitmentWindow(c, mustDate(t, "2024-11-12"))
	assert.Equal(t, RecruitmentActive, last.Status)
	assert.Equal(t, 0, *last.DaysRemaining)
}

func TestCalculateFilingWindow_Scenarios(t *testing.T) {
	t.Parallel()

	openingSoon := func() *Case {
		c := newTestCase(CaseStatusRecruitment)
		c.Recruitment.JobOrderEndDate = "2024-05-16"
		c.Recruitment.SundayAdSecondDate = "2024-05-23"
		c.PWD.ExpirationDate = "2024-08-13"
		return c
	}

	t.Run("opening soon", func(t *testing.T) {
		t.Parallel()
		w := CalculateFilingWindow(openingSoon(), scenarioToday)
		assert.Equal(t, FilingOpeningSoon, w.Status)
		assert.Equal(t, "2024-06-22", w.OpensDate)
		assert.Equal(t, "2024-08-13", w.ClosesDate)
		require.NotNil(t, w.DaysUntilOpen)
		assert.Equal(t, 7, *w.DaysUntilOpen)
		assert.False(t, w.IsOpen())
	})

	t.Run("filed", func(t *testing.T) {
		t.Parallel()
		c := openingSoon()
		c.ETA9089.FilingDate = "2024-06-25"

		w := CalculateFilingWindow(c, scenarioToday)
		assert.Equal(t, FilingFiled, w.Status)
		assert.Equal(t, "2024-06-22", w.OpensDate)
		assert.Equal(t, "2024-08-13", w.ClosesDate)
		assert.Nil(t, w.DaysUntilOpen)
		assert.Nil(t, w.DaysRemaining)
		assert.Nil(t, w.DaysElapsed)
	})

	t.Run("no recruitment end dates", func(t *testing.T) {
		t.Parallel()
		c := newTestCase(CaseStatusRecruitment)
		c.PWD.ExpirationDate = "2024-08-13"
		assert.Equal(t, FilingWindow{Status: FilingNotAvailable}, CalculateFilingWindow(c, scenarioToday))

		c.ETA9089.FilingDate = "2024-06-01"
		assert.Equal(t, FilingWindow{Status: FilingFiled}, CalculateFilingWindow(c, scenarioToday))
	})

	t.Run("no closes bound", func(t *testing.T) {
		t.Parallel()
		c := newTestCase(CaseStatusRecruitment)
		c.Recruitment.SundayAdSecondDate = "2024-06-02"

		w := CalculateFilingWindow(c, scenarioToday)
		assert.Equal(t, FilingNotAvailable, w.Status)
		assert.Equal(t, "2024-07-02", w.OpensDate)
		assert.Empty(t, w.ClosesDate)
		require.NotNil(t, w.DaysUntilOpen)
		assert.Equal(t, 17, *w.DaysUntilOpen)

		past := CalculateFilingWindow(c, mustDate(t, "2024-08-01"))
		assert.Equal(t, FilingNotAvailable, past.Status)
		assert.Nil(t, past.DaysUntilOpen)
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		c := completeCase()
		c.PWD.ExpirationDate = "2024-06-10"

		w := CalculateFilingWindow(c, scenarioToday)
		assert.Equal(t, FilingClosed, w.Status)
		assert.Equal(t, "2024-06-10", w.ClosesDate)
		require.NotNil(t, w.DaysElapsed)
		assert.Equal(t, 5, *w.DaysElapsed)
	})

	t.Run("180 day cap bounds closes", func(t *testing.T) {
		t.Parallel()
		w := CalculateFilingWindow(completeCase(), scenarioToday)
		assert.Equal(t, FilingOpen, w.Status)
		assert.Equal(t, "2024-05-01", w.OpensDate)
		assert.Equal(t, "2024-08-28", w.ClosesDate)
		require.NotNil(t, w.DaysRemaining)
		assert.Equal(t, 74, *w.DaysRemaining)
		assert.True(t, w.IsOpen())
	})
}

func TestCalculateFilingWindow_Boundaries(t *testing.T) {
	t.Parallel()

	opening := newTestCase(CaseStatusRecruitment)
	opening.Recruitment.JobOrderEndDate = "2024-05-16"
	opening.Recruitment.SundayAdSecondDate = "2024-05-23"
	opening.PWD.ExpirationDate = "2024-08-13"

	closing := func(pwdExp string) *Case {
		c := completeCase()
		c.PWD.ExpirationDate = pwdExp
		return c
	}

	tests := []struct {
		name   string
		c      *Case
		today  string
		status FilingWindowStatus
	}{
		{"opens in 7 days", opening, "2024-06-15", FilingOpeningSoon},
		{"opens in 8 days", opening, "2024-06-14", FilingNotAvailable},
		{"opens today", opening, "2024-06-22", FilingOpen},
		{"closes in 14 days", closing("2024-06-29"), "2024-06-15", FilingClosingSoon},
		{"closes in 15 days", closing("2024-06-30"), "2024-06-15", FilingOpen},
		{"closes today", closing("2024-06-15"), "2024-06-15", FilingClosingSoon},
		{"closed yesterday", closing("2024-06-14"), "2024-06-15", FilingClosed},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.status, CalculateFilingWindow(tt.c, mustDate(t, tt.today)).Status)
		})
	}
}

func TestWindows_Idempotent(t *testing.T) {
	t.Parallel()

	c := completeCase()
	assert.Equal(t, CalculateRecruitmentWindow(c, scenarioToday), CalculateRecruitmentWindow(c, scenarioToday))
	assert.Equal(t, CalculateFilingWindow(c, scenarioToday), CalculateFilingWindow(c, scenarioToday))
}

func TestWindows_TimeOfDayIgnored(t *testing.T) {
	t.Parallel()

	evening := time.Date(2024, 11, 12, 18, 30, 0, 0, time.UTC)
	c := newTestCase(CaseStatusRecruitment)
	c.Recruitment.SundayAdFirstDate = "2024-05-16"

	w := CalculateRecruitmentWindow(c, evening)
	assert.Equal(t, RecruitmentActive, w.Status)
	require.NotNil(t, w.DaysRemaining)
	assert.Equal(t, 0, *w.DaysRemaining)
	assert.Nil(t, w.DaysElapsed)

	closing := time.Date(2024, 8, 28, 23, 59, 0, 0, time.UTC)
	f := CalculateFilingWindow(completeCase(), closing)
	assert.Equal(t, FilingClosingSoon, f.Status)
	require.NotNil(t, f.DaysRemaining)
	assert.Equal(t, 0, *f.DaysRemaining)
	assert.Nil(t, f.DaysElapsed)

	assert.Equal(t, ReadinessReady, ClassifyReadiness(completeCase(), closing))
}
