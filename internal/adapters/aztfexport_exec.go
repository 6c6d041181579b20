package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/shared"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// AztfexportRunner exports existing Azure resources to Terraform
// configuration via the aztfexport binary. Runs are always
// non-interactive; an interactive aztfexport would block the server.
type AztfexportRunner struct {
	Binary    string
	OutputDir string
	Clock     func() time.Time
}

func NewAztfexportRunner(binary, outputDir string) AztfexportRunner {
	if binary == "" {
		binary = "aztfexport"
	}
	return AztfexportRunner{Binary: binary, OutputDir: outputDir, Clock: time.Now}
}

// CheckInstallation reports whether aztfexport and the Azure CLI it
// depends on are available.
func (r AztfexportRunner) CheckInstallation(ctx context.Context) types.InstallationStatus {
	status := types.InstallationStatus{Tool: "aztfexport"}
	path, err := exec.LookPath(r.Binary)
	if err != nil {
		status.Help = "Install aztfexport from https://github.com/Azure/aztfexport"
		return status
	}
	status.Installed = true
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err == nil {
		status.Version = firstLine(shared.StripANSI(string(out)))
	}
	if _, err := exec.LookPath("az"); err != nil {
		status.Help = "aztfexport requires a logged-in Azure CLI (az)"
	}
	return status
}

// ExportResource exports a single resource by its ARM id.
func (r AztfexportRunner) ExportResource(ctx context.Context, resourceID string, outputDir string, provider string) (types.ExportResult, error) {
	if strings.TrimSpace(resourceID) == "" {
		return types.ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource id is empty")
	}
	return r.export(ctx, "resource", resourceID, outputDir, provider)
}

// ExportResourceGroup exports every resource in a resource group.
func (r AztfexportRunner) ExportResourceGroup(ctx context.Context, resourceGroup string, outputDir string, provider string) (types.ExportResult, error) {
	if strings.TrimSpace(resourceGroup) == "" {
		return types.ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource group name is empty")
	}
	return r.export(ctx, "resource-group", resourceGroup, outputDir, provider)
}

// ExportQuery exports the resources matched by an Azure Resource Graph
// where-clause.
func (r AztfexportRunner) ExportQuery(ctx context.Context, query string, outputDir string, provider string) (types.ExportResult, error) {
	if strings.TrimSpace(query) == "" {
		return types.ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("query is empty")
	}
	return r.export(ctx, "query", query, outputDir, provider)
}

func (r AztfexportRunner) export(ctx context.Context, mode string, target string, outputDir string, provider string) (types.ExportResult, error) {
	if outputDir == "" {
		outputDir = filepath.Join(r.OutputDir, fmt.Sprintf("aztfexport_%s", r.Clock().Format("20060102_150405")))
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return types.ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create export output directory").
			WithCause(err)
	}

	args := []string{mode, "--non-interactive", "--plain-ui", "--output-dir", outputDir}
	if provider != "" {
		args = append(args, "--provider-name", provider)
	}
	args = append(args, target)

	cmd := exec.CommandContext(ctx, r.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := types.ExportResult{
		OutputDir: outputDir,
		Result: types.CommandResult{
			Command:  r.Binary + " " + strings.Join(args, " "),
			Stdout:   shared.StripANSI(stdout.String()),
			Stderr:   shared.StripANSI(stderr.String()),
			ExitCode: cmd.ProcessState.ExitCode(),
			Success:  err == nil,
		},
	}
	if err != nil {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("aztfexport failed: " + firstLine(result.Result.Stderr)).
			WithCause(err)
	}
	return result, nil
}
