package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		daysUntil int
		want      Urgency
	}{
		{-30, UrgencyOverdue},
		{-1, UrgencyOverdue},
		{0, UrgencyUrgent},
		{7, UrgencyUrgent},
		{8, UrgencySoon},
		{30, UrgencySoon},
		{31, UrgencyNormal},
		{365, UrgencyNormal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UrgencyFor(tt.daysUntil), "daysUntil=%d", tt.daysUntil)
	}
}
