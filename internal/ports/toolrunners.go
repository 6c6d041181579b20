package ports

import (
	"context"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// TerraformPort wraps the terraform CLI against a working directory.
type TerraformPort interface {
	CheckInstallation(ctx context.Context) types.InstallationStatus
	ValidateHCL(ctx context.Context, hclContent string, fileName string) (types.ValidationResult, error)
	Run(ctx context.Context, workingDir string, command string, args []string, autoApprove bool) (types.CommandResult, error)
}

// TFLintPort wraps the tflint linter.
type TFLintPort interface {
	CheckInstallation(ctx context.Context) types.InstallationStatus
	LintWorkspace(ctx context.Context, workingDir string, severityFilter string) (types.LintReport, error)
}

// ConftestPort wraps conftest policy validation.
type ConftestPort interface {
	CheckInstallation(ctx context.Context) types.InstallationStatus
	ValidateWorkspace(ctx context.Context, workingDir string, policyDir string) (types.PolicyReport, error)
	ValidateHCL(ctx context.Context, hclContent string, policyDir string) (types.PolicyReport, error)
	ValidatePlan(ctx context.Context, planJSON string, policyDir string) (types.PolicyReport, error)
}

// AztfexportPort wraps the aztfexport exporter.
type AztfexportPort interface {
	CheckInstallation(ctx context.Context) types.InstallationStatus
	ExportResource(ctx context.Context, resourceID string, outputDir string, provider string) (types.ExportResult, error)
	ExportResourceGroup(ctx context.Context, resourceGroup string, outputDir string, provider string) (types.ExportResult, error)
	ExportQuery(ctx context.Context, query string, outputDir string, provider string) (types.ExportResult, error)
}
