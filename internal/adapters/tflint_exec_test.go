package adapters

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

func TestParseLintOutput(t *testing.T) {
	stdout := `{
		"issues": [
			{
				"rule": {"name": "terraform_deprecated_syntax", "severity": "warning"},
				"message": "Interpolation-only expressions are deprecated",
				"range": {"filename": "main.tf", "start": {"line": 7}}
			},
			{
				"rule": {"name": "azurerm_resource_missing_tags", "severity": "error"},
				"message": "resource is missing required tags",
				"range": {"filename": "storage.tf", "start": {"line": 2}}
			}
		]
	}`

	report := parseLintOutput(stdout)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, "terraform_deprecated_syntax", report.Issues[0].Rule)
	assert.Equal(t, "warning", report.Issues[0].Severity)
	assert.Equal(t, "main.tf", report.Issues[0].Filename)
	assert.Equal(t, 7, report.Issues[0].Line)
	assert.Equal(t, "azurerm_resource_missing_tags", report.Issues[1].Rule)
	assert.Equal(t, stdout, report.RawOutput)
}

func TestParseLintOutputGarbage(t *testing.T) {
	report := parseLintOutput("tflint panicked\n")
	assert.Empty(t, report.Issues)
	assert.Equal(t, "tflint panicked\n", report.RawOutput)
}

func TestFilterIssues(t *testing.T) {
	issues := []types.LintIssue{
		{Rule: "a", Severity: "info"},
		{Rule: "b", Severity: "warning"},
		{Rule: "c", Severity: "error"},
	}

	assert.Len(t, filterIssues(issues, ""), 3)
	assert.Len(t, filterIssues(issues, "info"), 3)
	assert.Len(t, filterIssues(issues, "bogus"), 3)

	warnings := filterIssues(issues, "warning")
	require.Len(t, warnings, 2)
	assert.Equal(t, "b", warnings[0].Rule)

	errors := filterIssues(issues, "ERROR")
	require.Len(t, errors, 1)
	assert.Equal(t, "c", errors[0].Rule)
}

func TestLintWorkspaceMissingDir(t *testing.T) {
	runner := NewTFLintRunner("tflint")
	_, err := runner.LintWorkspace(context.Background(), filepath.Join(t.TempDir(), "absent"), "")
	require.Error(t, err)
}

func TestTFLintCheckInstallationMissingBinary(t *testing.T) {
	runner := NewTFLintRunner("tflint-binary-that-does-not-exist")
	status := runner.CheckInstallation(context.Background())
	assert.False(t, status.Installed)
	assert.Equal(t, "tflint", status.Tool)
	assert.NotEmpty(t, status.Help)
}
