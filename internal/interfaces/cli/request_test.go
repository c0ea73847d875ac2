package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/internal/infrastructure/casefile"
	"github.com/turtacn/perm-tracker/internal/testutil"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

func TestRequestAddCmd(t *testing.T) {
	t.Parallel()
	path := writeCase(t, "case.yaml", testutil.CertifiedCase())

	out, _, err := runCLI(t, "request", "add", "rfe", "-f", path, "--received", "2024-06-10", "--due", "2024-09-08")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: RFE ")
	assert.Contains(t, out, "response due 2024-09-08")

	saved, err := casefile.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, saved.RFEEntries, 1)
	assert.Equal(t, "2024-06-10", saved.RFEEntries[0].ReceivedDate)
	assert.Empty(t, saved.RFIEntries)

	_, _, err = runCLI(t, "request", "add", "rfe", "-f", path, "--received", "2024-06-11", "--due", "2024-09-09")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRequestEntryActive), "got %v", err)
}

func TestRequestAddCmd_DryRun(t *testing.T) {
	t.Parallel()
	path := writeCase(t, "case.yaml", testutil.CertifiedCase())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	out, _, err := runCLI(t, "request", "add", "RFI", "-f", path, "--received", "2024-06-10", "--due", "2024-07-10", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: RFI ")
	assert.Contains(t, out, "dry run")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRequestAddCmd_BadInput(t *testing.T) {
	t.Parallel()
	path := writeCase(t, "case.yaml", testutil.CertifiedCase())

	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"request", "add", "noid", "-f", path, "--received", "2024-06-10", "--due", "2024-07-10"}},
		{"missing due", []string{"request", "add", "rfi", "-f", path, "--received", "2024-06-10"}},
		{"bad date", []string{"request", "add", "rfi", "-f", path, "--received", "June 10", "--due", "2024-07-10"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
