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

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/shared"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// ConftestRunner validates Terraform configurations and plan files
// against Azure Verified Modules rego policies via the conftest binary.
type ConftestRunner struct {
	Binary string
}

func NewConftestRunner(binary string) ConftestRunner {
	if binary == "" {
		binary = "conftest"
	}
	return ConftestRunner{Binary: binary}
}

// CheckInstallation reports whether conftest is on PATH.
func (r ConftestRunner) CheckInstallation(ctx context.Context) types.InstallationStatus {
	status := types.InstallationStatus{Tool: "conftest"}
	path, err := exec.LookPath(r.Binary)
	if err != nil {
		status.Help = "Install conftest from https://www.conftest.dev"
		return status
	}
	status.Installed = true
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err == nil {
		status.Version = firstLine(shared.StripANSI(string(out)))
	}
	return status
}

// ValidateWorkspace runs conftest over every file in the working
// directory against the given policy directory.
func (r ConftestRunner) ValidateWorkspace(ctx context.Context, workingDir string, policyDir string) (types.PolicyReport, error) {
	if info, err := os.Stat(workingDir); err != nil || !info.IsDir() {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("working directory does not exist: " + workingDir)
	}
	return r.test(ctx, workingDir, ".", "hcl2", policyDir)
}

// ValidateHCL writes the snippet to a throwaway workspace and validates
// it the same way.
func (r ConftestRunner) ValidateHCL(ctx context.Context, hclContent string, policyDir string) (types.PolicyReport, error) {
	if strings.TrimSpace(hclContent) == "" {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("hcl content is empty")
	}
	workDir, err := os.MkdirTemp("", "conftest-avm-")
	if err != nil {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create conftest workspace").
			WithCause(err)
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, "main.tf"), []byte(hclContent), 0644); err != nil {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write conftest input").
			WithCause(err)
	}
	return r.test(ctx, workDir, "main.tf", "hcl2", policyDir)
}

// ValidatePlan validates a `terraform show -json` plan document. The
// plan is written to a temporary .json file so conftest picks it up
// with its json parser instead of hcl2.
func (r ConftestRunner) ValidatePlan(ctx context.Context, planJSON string, policyDir string) (types.PolicyReport, error) {
	if strings.TrimSpace(planJSON) == "" {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("plan json is empty")
	}
	if !json.Valid([]byte(planJSON)) {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("plan content is not valid json")
	}
	workDir, err := os.MkdirTemp("", "conftest-plan-")
	if err != nil {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create conftest workspace").
			WithCause(err)
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, "tfplan.json"), []byte(planJSON), 0644); err != nil {
		return types.PolicyReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write conftest input").
			WithCause(err)
	}
	return r.test(ctx, workDir, "tfplan.json", "json", policyDir)
}

func (r ConftestRunner) test(ctx context.Context, workingDir, input, parser, policyDir string) (types.PolicyReport, error) {
	args := []string{"test", input, "--output", "json", "--parser", parser}
	if policyDir != "" {
		args = append(args, "--policy", policyDir)
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// conftest exits nonzero on policy failures; that is a result,
	// not an execution error.
	_ = cmd.Run()

	report := parseConftestOutput(shared.StripANSI(stdout.String()))
	if report.Findings == nil && report.Passed == 0 && strings.TrimSpace(stderr.String()) != "" {
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("conftest produced no results: " + firstLine(shared.StripANSI(stderr.String())))
	}
	return report, nil
}

// parseConftestOutput decodes conftest's JSON result array into a
// flat finding list.
func parseConftestOutput(stdout string) types.PolicyReport {
	var raw []struct {
		Filename  string `json:"filename"`
		Successes int    `json:"successes"`
		Failures  []struct {
			Message string `json:"msg"`
		} `json:"failures"`
		Warnings []struct {
			Message string `json:"msg"`
		} `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return types.PolicyReport{RawOutput: stdout}
	}

	report := types.PolicyReport{RawOutput: stdout}
	for _, entry := range raw {
		report.Passed += entry.Successes
		for _, failure := range entry.Failures {
			report.Failed++
			report.Findings = append(report.Findings, types.PolicyFinding{
				Policy:   entry.Filename,
				Severity: "error",
				Message:  failure.Message,
			})
		}
		for _, warning := range entry.Warnings {
			report.Findings = append(report.Findings, types.PolicyFinding{
				Policy:   entry.Filename,
				Severity: "warning",
				Message:  warning.Message,
			})
		}
	}
	return report
}
