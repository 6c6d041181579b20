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

// allowedTerraformCommands is the subcommand allowlist for the generic
// Run entry point. Anything else is rejected before reaching the shell.
var allowedTerraformCommands = map[string]struct{}{
	"init": {}, "validate": {}, "plan": {}, "apply": {}, "destroy": {},
	"refresh": {}, "show": {}, "output": {}, "fmt": {}, "workspace": {},
}

// TerraformExecutor runs the terraform binary against caller-supplied
// working directories, with ANSI output stripped and validate
// diagnostics parsed from the -json format.
type TerraformExecutor struct {
	Binary string
}

func NewTerraformExecutor(binary string) TerraformExecutor {
	if binary == "" {
		binary = "terraform"
	}
	return TerraformExecutor{Binary: binary}
}

// CheckInstallation reports whether the terraform binary is on PATH.
func (e TerraformExecutor) CheckInstallation(ctx context.Context) types.InstallationStatus {
	status := types.InstallationStatus{Tool: "terraform"}
	path, err := exec.LookPath(e.Binary)
	if err != nil {
		status.Help = "Install Terraform from https://developer.hashicorp.com/terraform/install"
		return status
	}
	status.Installed = true
	out, err := exec.CommandContext(ctx, path, "version").Output()
	if err == nil {
		status.Version = firstLine(shared.StripANSI(string(out)))
	}
	return status
}

// ValidateHCL writes the configuration into a throwaway workspace,
// initializes it without a backend, and runs `terraform validate -json`.
func (e TerraformExecutor) ValidateHCL(ctx context.Context, hclContent string, fileName string) (types.ValidationResult, error) {
	if strings.TrimSpace(hclContent) == "" {
		return types.ValidationResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("hcl content is empty")
	}
	if fileName == "" {
		fileName = "main.tf"
	}

	workDir, err := os.MkdirTemp("", "tf-validate-")
	if err != nil {
		return types.ValidationResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create validation workspace").
			WithCause(err)
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, fileName), []byte(hclContent), 0644); err != nil {
		return types.ValidationResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write validation config").
			WithCause(err)
	}

	initResult := e.run(ctx, workDir, "init", "-backend=false", "-input=false", "-no-color")
	if !initResult.Success {
		return types.ValidationResult{
			Valid:      false,
			ErrorCount: 1,
			Diagnostics: []types.Diagnostic{{
				Severity: "error",
				Summary:  "terraform init failed",
				Detail:   initResult.Stderr,
			}},
			RawOutput: initResult.Stderr,
		}, nil
	}

	result := e.run(ctx, workDir, "validate", "-json", "-no-color")
	return parseValidateOutput(result.Stdout), nil
}

// Run executes one allowlisted terraform subcommand in workingDir.
// apply and destroy refuse to run unless autoApprove is set; running
// them interactively would hang the server on a prompt.
func (e TerraformExecutor) Run(ctx context.Context, workingDir string, command string, args []string, autoApprove bool) (types.CommandResult, error) {
	if _, ok := allowedTerraformCommands[command]; !ok {
		return types.CommandResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported terraform command: " + command)
	}
	if info, err := os.Stat(workingDir); err != nil || !info.IsDir() {
		return types.CommandResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("working directory does not exist: " + workingDir)
	}

	full := append([]string{command}, args...)
	if command == "apply" || command == "destroy" {
		if !autoApprove {
			return types.CommandResult{}, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("apply and destroy require auto_approve")
		}
		full = append(full, "-auto-approve")
	}
	full = append(full, "-no-color")

	return e.run(ctx, workingDir, full...), nil
}

func (e TerraformExecutor) run(ctx context.Context, workingDir string, args ...string) types.CommandResult {
	cmd := exec.CommandContext(ctx, e.Binary, args...)
	cmd.Dir = workingDir
	cmd.Env = append(os.Environ(), "TF_IN_AUTOMATION=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := types.CommandResult{
		Command:  e.Binary + " " + strings.Join(args, " "),
		Stdout:   shared.StripANSI(stdout.String()),
		Stderr:   shared.StripANSI(stderr.String()),
		ExitCode: cmd.ProcessState.ExitCode(),
		Success:  err == nil,
	}
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("command", result.Command).Msg("terraform command failed")
	}
	return result
}

// parseValidateOutput decodes `terraform validate -json`. Output that
// is not JSON (older terraform, crashed run) degrades to a single raw
// diagnostic instead of failing.
func parseValidateOutput(stdout string) types.ValidationResult {
	var raw struct {
		Valid       bool `json:"valid"`
		ErrorCount  int  `json:"error_count"`
		Diagnostics []struct {
			Severity string `json:"severity"`
			Summary  string `json:"summary"`
			Detail   string `json:"detail"`
			Range    struct {
				Filename string `json:"filename"`
				Start    struct {
					Line   int `json:"line"`
					Column int `json:"column"`
				} `json:"start"`
			} `json:"range"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return types.ValidationResult{
			Valid:      false,
			ErrorCount: 1,
			Diagnostics: []types.Diagnostic{{
				Severity: "error",
				Summary:  "unparseable validate output",
				Detail:   stdout,
			}},
			RawOutput: stdout,
		}
	}

	result := types.ValidationResult{
		Valid:      raw.Valid,
		ErrorCount: raw.ErrorCount,
		RawOutput:  stdout,
	}
	for _, diag := range raw.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
			Severity: diag.Severity,
			Summary:  diag.Summary,
			Detail:   diag.Detail,
			Filename: diag.Range.Filename,
			Line:     diag.Range.Start.Line,
			Column:   diag.Range.Start.Column,
		})
	}
	return result
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}
