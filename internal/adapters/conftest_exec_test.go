package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConftestOutput(t *testing.T) {
	stdout := `[
		{
			"filename": "main.tf",
			"successes": 4,
			"failures": [{"msg": "storage account must disable public access"}],
			"warnings": [{"msg": "consider enabling soft delete"}]
		},
		{
			"filename": "network.tf",
			"successes": 2,
			"failures": []
		}
	]`

	report := parseConftestOutput(stdout)
	assert.Equal(t, 6, report.Passed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Findings, 2)
	assert.Equal(t, "main.tf", report.Findings[0].Policy)
	assert.Equal(t, "error", report.Findings[0].Severity)
	assert.Equal(t, "storage account must disable public access", report.Findings[0].Message)
	assert.Equal(t, "warning", report.Findings[1].Severity)
}

func TestParseConftestOutputGarbage(t *testing.T) {
	report := parseConftestOutput("conftest exploded\n")
	assert.Empty(t, report.Findings)
	assert.Zero(t, report.Passed)
	assert.Equal(t, "conftest exploded\n", report.RawOutput)
}

func TestConftestValidateHCLRejectsEmptyContent(t *testing.T) {
	runner := NewConftestRunner("conftest")
	_, err := runner.ValidateHCL(context.Background(), "\t\n", "")
	require.Error(t, err)
}

func TestConftestValidatePlanRejectsBadInput(t *testing.T) {
	runner := NewConftestRunner("conftest")

	_, err := runner.ValidatePlan(context.Background(), "  ", "")
	require.Error(t, err)

	_, err = runner.ValidatePlan(context.Background(), "{not json", "")
	require.Error(t, err)
}

func TestConftestValidatePlanRunsJSONParser(t *testing.T) {
	// stand-in binary records its arguments, so the test covers the
	// parser selection and temp-file plumbing without conftest installed
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\necho '[]'\n"
	binary := filepath.Join(dir, "conftest")
	require.NoError(t, os.WriteFile(binary, []byte(script), 0755))

	runner := NewConftestRunner(binary)
	report, err := runner.ValidatePlan(context.Background(), `{"resource_changes":[]}`, "")
	require.NoError(t, err)
	assert.Zero(t, report.Failed)

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(recorded), "tfplan.json")
	assert.Contains(t, string(recorded), "--parser json")
}

func TestConftestValidateWorkspaceMissingDir(t *testing.T) {
	runner := NewConftestRunner("conftest")
	_, err := runner.ValidateWorkspace(context.Background(), filepath.Join(t.TempDir(), "absent"), "")
	require.Error(t, err)
}

func TestConftestCheckInstallationMissingBinary(t *testing.T) {
	runner := NewConftestRunner("conftest-binary-that-does-not-exist")
	status := runner.CheckInstallation(context.Background())
	assert.False(t, status.Installed)
	assert.Equal(t, "conftest", status.Tool)
}
