//go:build basic

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrackademicWithSQLite runs the demo lifecycle against a temporary SQLite file.
func TestTrackademicWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trackademic.db")
	verifyDemoLifecycle(t, map[string]string{
		"TRACKADEMIC_BACKEND":    "sqlite",
		"TRACKADEMIC_DB_CONNECT": dbPath,
	})
}

// TestPlanValidateExitCode checks that invalid plans fail the command.
func TestPlanValidateExitCode(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"subject_code":"CS101","semester":"2024-1","activities":[
		{"id":"a1","name":"Exam","percentage":60},{"id":"a2","name":"Project","percentage":40}]}`), 0o644))
	require.NoError(t, os.WriteFile(invalid, []byte(`{"subject_code":"CS101","semester":"2024-1","activities":[
		{"id":"a1","name":"Exam","percentage":60},{"id":"a2","name":"Project","percentage":35}]}`), 0o644))

	out, err := runCommand(t, nil, "plan", "validate", valid, "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Plan is valid")

	out, err = runCommand(t, nil, "plan", "validate", invalid, "--color", "no")
	require.Error(t, err)
	assert.Contains(t, string(out), "Plan is invalid")
}

// TestMemoryBackendSummary needs no seeding; the memory backend starts with the demo data.
func TestMemoryBackendSummary(t *testing.T) {
	out, err := runCommand(t, map[string]string{"TRACKADEMIC_BACKEND": "memory"}, "summary", "--color", "no", "--width", "120")
	require.NoError(t, err)
	assert.Contains(t, string(out), "CS101")
	assert.Contains(t, string(out), "Overall average (nonzero): 1.59")
}
