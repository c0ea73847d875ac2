package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scenarioToday is the reference date of the worked examples.
var scenarioToday = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTestCase(status CaseStatus) *Case {
	c := NewCase("Acme Corp", "BEN-001", "Software Engineer")
	c.CaseStatus = status
	return c
}

// completeCase has every mandatory recruitment step recorded:
// first recruitment 2024-03-01, window end 2024-08-28, filing opens
// 2024-05-01.
func completeCase() *Case {
	c := newTestCase(CaseStatusRecruitment)
	c.PWD = PWDStage{
		FilingDate:        "2024-01-02",
		DeterminationDate: "2024-02-01",
		ExpirationDate:    "2024-12-31",
	}
	c.Recruitment = RecruitmentStage{
		JobOrderStartDate:       "2024-03-01",
		JobOrderEndDate:         "2024-04-01",
		SundayAdFirstDate:       "2024-03-03",
		SundayAdSecondDate:      "2024-03-10",
		NoticeOfFilingStartDate: "2024-03-01",
		NoticeOfFilingEndDate:   "2024-03-15",
	}
	return c
}

func professionalMethods() []AdditionalRecruitment {
	return []AdditionalRecruitment{
		{Method: MethodJobFair, Date: "2024-03-05"},
		{Method: MethodEmployerWebsite, Date: "2024-03-12"},
		{Method: MethodEmployeeReferral, Date: "2024-03-20"},
	}
}
