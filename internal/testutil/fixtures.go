package testutil

import (
	"time"

	"github.com/turtacn/perm-tracker/internal/domain/lifecycle"
)

// ScenarioToday is the evaluation date used by the shared fixtures.
var ScenarioToday = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

// RecruitmentCase returns a case whose mandatory recruitment finished on
// 2024-04-01.  As of ScenarioToday its filing window is open (opened
// 2024-05-01, closes 2024-08-28) and the next action is File ETA 9089.
func RecruitmentCase() *lifecycle.Case {
	c := lifecycle.NewCase("Acme Corp", "BEN-001", "Software Engineer")
	c.ID = "case-001"
	c.CaseStatus = lifecycle.CaseStatusRecruitment
	c.PWD = lifecycle.PWDStage{
		FilingDate:        "2024-01-02",
		DeterminationDate: "2024-02-01",
		ExpirationDate:    "2024-12-31",
	}
	c.Recruitment = lifecycle.RecruitmentStage{
		JobOrderStartDate:       "2024-03-01",
		JobOrderEndDate:         "2024-04-01",
		SundayAdFirstDate:       "2024-03-03",
		SundayAdSecondDate:      "2024-03-10",
		NoticeOfFilingStartDate: "2024-03-01",
		NoticeOfFilingEndDate:   "2024-03-15",
	}
	return c
}

// CertifiedCase returns a case with a certified ETA 9089 expiring on
// 2024-12-01 and no I-140 filed.
func CertifiedCase() *lifecycle.Case {
	c := RecruitmentCase()
	c.ID = "case-002"
	c.CaseStatus = lifecycle.CaseStatusI140
	c.ETA9089 = lifecycle.ETA9089Stage{
		FilingDate:        "2024-05-10",
		CertificationDate: "2024-06-03",
		ExpirationDate:    "2024-12-01",
	}
	return c
}
