package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyReadiness(t *testing.T) {
	t.Parallel()

	expiredIncomplete := newTestCase(CaseStatusRecruitment)
	expiredIncomplete.Recruitment.SundayAdFirstDate = "2023-11-28"

	professional := completeCase()
	professional.Recruitment.IsProfessionalOccupation = true
	professional.Recruitment.AdditionalRecruitmentMethods = professionalMethods()[:2]

	tests := []struct {
		name  string
		c     *Case
		today string
		want  Readiness
	}{
		{"nothing recorded", newTestCase(CaseStatusRecruitment), "2024-06-15", ReadinessIncomplete},
		{"incomplete beats expired", expiredIncomplete, "2024-06-15", ReadinessIncomplete},
		{"professional methods missing", professional, "2024-06-15", ReadinessIncomplete},
		{"waiting for 30 days", completeCase(), "2024-04-15", ReadinessWaiting},
		{"opens day is ready", completeCase(), "2024-05-01", ReadinessReady},
		{"ready", completeCase(), "2024-06-15", ReadinessReady},
		{"last day of window", completeCase(), "2024-08-28", ReadinessReady},
		{"expired", completeCase(), "2024-08-29", ReadinessExpired},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyReadiness(tt.c, mustDate(t, tt.today)))
		})
	}
}
