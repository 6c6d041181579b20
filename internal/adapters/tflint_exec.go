package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/shared"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// tflintConfig enables the azurerm ruleset plugin; it is written into
// workspaces that do not carry their own .tflint.hcl.
const tflintConfig = `plugin "azurerm" {
  enabled = true
  version = "0.27.0"
  source  = "github.com/terraform-linters/tflint-ruleset-azurerm"
}
`

// severityRank orders tflint severities for filtering.
var severityRank = map[string]int{"info": 0, "warning": 1, "error": 2}

// TFLintRunner wraps the tflint binary with the azurerm plugin enabled
// and parses its JSON issue output.
type TFLintRunner struct {
	Binary string
}

func NewTFLintRunner(binary string) TFLintRunner {
	if binary == "" {
		binary = "tflint"
	}
	return TFLintRunner{Binary: binary}
}

// CheckInstallation reports whether tflint is on PATH.
func (r TFLintRunner) CheckInstallation(ctx context.Context) types.InstallationStatus {
	status := types.InstallationStatus{Tool: "tflint"}
	path, err := exec.LookPath(r.Binary)
	if err != nil {
		status.Help = "Install tflint from https://github.com/terraform-linters/tflint"
		return status
	}
	status.Installed = true
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err == nil {
		status.Version = firstLine(shared.StripANSI(string(out)))
	}
	return status
}

// LintWorkspace initializes tflint in the working directory and runs it
// with JSON output. severityFilter drops issues below the given level
// ("", "info", "warning", "error").
func (r TFLintRunner) LintWorkspace(ctx context.Context, workingDir string, severityFilter string) (types.LintReport, error) {
	if info, err := os.Stat(workingDir); err != nil || !info.IsDir() {
		return types.LintReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("working directory does not exist: " + workingDir)
	}

	configPath := filepath.Join(workingDir, ".tflint.hcl")
	if _, err := os.Stat(configPath); err != nil {
		if err := os.WriteFile(configPath, []byte(tflintConfig), 0644); err != nil {
			return types.LintReport{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write tflint config").
				WithCause(err)
		}
	}

	if result := r.run(ctx, workingDir, "--init"); !result.Success {
		log.Ctx(ctx).Warn().Str("stderr", result.Stderr).Msg("tflint --init failed, plugin rules may be missing")
	}

	result := r.run(ctx, workingDir, "--format", "json")
	report := parseLintOutput(result.Stdout)
	report.Issues = filterIssues(report.Issues, severityFilter)
	report.ErrorCount = 0
	for _, issue := range report.Issues {
		if issue.Severity == "error" {
			report.ErrorCount++
		}
	}
	return report, nil
}

func (r TFLintRunner) run(ctx context.Context, workingDir string, args ...string) types.CommandResult {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return types.CommandResult{
		Command:  r.Binary + " " + strings.Join(args, " "),
		Stdout:   shared.StripANSI(stdout.String()),
		Stderr:   shared.StripANSI(stderr.String()),
		ExitCode: cmd.ProcessState.ExitCode(),
		Success:  err == nil,
	}
}

// parseLintOutput decodes tflint's JSON format. Non-JSON output
// degrades to an empty report carrying the raw text.
func parseLintOutput(stdout string) types.LintReport {
	var raw struct {
		Issues []struct {
			Rule struct {
				Name     string `json:"name"`
				Severity string `json:"severity"`
			} `json:"rule"`
			Message string `json:"message"`
			Range   struct {
				Filename string `json:"filename"`
				Start    struct {
					Line int `json:"line"`
				} `json:"start"`
			} `json:"range"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return types.LintReport{RawOutput: stdout}
	}

	report := types.LintReport{RawOutput: stdout}
	for _, issue := range raw.Issues {
		report.Issues = append(report.Issues, types.LintIssue{
			Rule:     issue.Rule.Name,
			Severity: issue.Rule.Severity,
			Message:  issue.Message,
			Filename: issue.Range.Filename,
			Line:     issue.Range.Start.Line,
		})
	}
	return report
}

func filterIssues(issues []types.LintIssue, severityFilter string) []types.LintIssue {
	minimum, ok := severityRank[strings.ToLower(severityFilter)]
	if !ok || minimum == 0 {
		return issues
	}
	var kept []types.LintIssue
	for _, issue := range issues {
		if severityRank[strings.ToLower(issue.Severity)] >= minimum {
			kept = append(kept, issue)
		}
	}
	return kept
}
