package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/app"
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/shared"
)

func registerSchemaTools(s *server.MCPServer, service app.Service) {
	s.AddTool(mcp.NewTool("get_azapi_provider_documentation",
		mcp.WithDescription("Get the writable schema documentation for an ARM resource type, rendered as an azapi_resource block."),
		mcp.WithString("resource_type_name", mcp.Required(),
			mcp.Description("ARM resource type, e.g. Microsoft.Storage/storageAccounts")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resourceType, err := req.RequireString("resource_type_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, err := service.InitSchemas(ctx, false); err != nil {
			return mcp.NewToolResultErrorFromErr("schema documentation unavailable", err), nil
		}
		doc := service.SchemaDocumentation(resourceType)
		if doc == "" {
			return mcp.NewToolResultText(fmt.Sprintf("No schema found for resource type %q.", resourceType)), nil
		}
		return mcp.NewToolResultText(doc), nil
	})

	s.AddTool(mcp.NewTool("get_azapi_parent_resource",
		mcp.WithDescription("Get the parent resource type for an ARM resource type path."),
		mcp.WithString("resource_type_name", mcp.Required(),
			mcp.Description("ARM resource type, e.g. Microsoft.Storage/storageAccounts/tableServices")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resourceType, err := req.RequireString("resource_type_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(service.ParentType(resourceType)), nil
	})
}

func registerTerraformTools(s *server.MCPServer, service app.Service) {
	s.AddTool(mcp.NewTool("run_terraform_command",
		mcp.WithDescription("Run a terraform subcommand (init, validate, plan, apply, destroy, refresh, show, output, fmt, workspace) in a working directory."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Terraform subcommand")),
		mcp.WithString("working_directory", mcp.Required(), mcp.Description("Directory containing the configuration")),
		mcp.WithString("args", mcp.Description("Extra arguments, space separated")),
		mcp.WithBoolean("auto_approve", mcp.Description("Required true for apply and destroy")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		command, err := req.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		workingDir, err := req.RequireString("working_directory")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var extra []string
		if raw := strings.TrimSpace(req.GetString("args", "")); raw != "" {
			extra = strings.Fields(raw)
		}
		result, err := service.Terraform.Run(ctx, workingDir, command, extra, req.GetBool("auto_approve", false))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("terraform run failed", err), nil
		}
		return jsonResult(result)
	})

	s.AddTool(mcp.NewTool("validate_terraform_hcl",
		mcp.WithDescription("Validate a Terraform configuration snippet: HCL syntax check, then terraform validate when the binary is installed. Accepts raw HCL or markdown with fenced hcl/terraform blocks."),
		mcp.WithString("hcl_content", mcp.Required(), mcp.Description("Terraform configuration to validate")),
		mcp.WithString("file_name", mcp.Description("File name for diagnostics, default main.tf")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hclContent, err := req.RequireString("hcl_content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if fenced := shared.ExtractHCLFromMarkdown(hclContent); fenced != "" {
			hclContent = fenced
		}
		fileName := req.GetString("file_name", "main.tf")
		kinds := shared.ExtractResourceKinds(hclContent, fileName)
		resources := shared.ExtractResourceBlocks(hclContent, fileName)

		if messages := shared.CheckHCLSyntax(hclContent, fileName); len(messages) > 0 {
			return jsonResult(map[string]any{
				"valid":          false,
				"syntax_errors":  messages,
				"resource_kinds": kinds,
			})
		}
		if !service.Terraform.CheckInstallation(ctx).Installed {
			return jsonResult(map[string]any{
				"valid":          true,
				"note":           "syntax check only: terraform binary not installed",
				"resource_kinds": kinds,
				"resources":      resources,
			})
		}
		result, err := service.Terraform.ValidateHCL(ctx, hclContent, fileName)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("validation failed", err), nil
		}
		return jsonResult(map[string]any{
			"validation":     result,
			"resource_kinds": kinds,
			"resources":      resources,
		})
	})
}

func registerLintTools(s *server.MCPServer, service app.Service) {
	s.AddTool(mcp.NewTool("check_tflint_installation",
		mcp.WithDescription("Check whether tflint is installed and report its version."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(service.TFLint.CheckInstallation(ctx))
	})

	s.AddTool(mcp.NewTool("run_tflint_workspace_analysis",
		mcp.WithDescription("Lint a Terraform workspace with tflint and the azurerm ruleset."),
		mcp.WithString("working_directory", mcp.Required(), mcp.Description("Directory containing the configuration")),
		mcp.WithString("severity_filter", mcp.Description("Minimum severity to report: info, warning or error")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		workingDir, err := req.RequireString("working_directory")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		report, err := service.TFLint.LintWorkspace(ctx, workingDir, req.GetString("severity_filter", ""))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("tflint run failed", err), nil
		}
		return jsonResult(report)
	})

	s.AddTool(mcp.NewTool("check_conftest_installation",
		mcp.WithDescription("Check whether conftest is installed and report its version."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(service.Conftest.CheckInstallation(ctx))
	})

	s.AddTool(mcp.NewTool("run_conftest_workspace_validation",
		mcp.WithDescription("Validate a Terraform workspace against Azure Verified Modules policies with conftest."),
		mcp.WithString("working_directory", mcp.Required(), mcp.Description("Directory containing the configuration")),
		mcp.WithString("policy_dir", mcp.Description("Policy directory override")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		workingDir, err := req.RequireString("working_directory")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		policyDir := req.GetString("policy_dir", service.PolicyDir)
		report, err := service.Conftest.ValidateWorkspace(ctx, workingDir, policyDir)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("conftest run failed", err), nil
		}
		return jsonResult(report)
	})

	s.AddTool(mcp.NewTool("run_conftest_hcl_validation",
		mcp.WithDescription("Validate a Terraform configuration snippet against Azure Verified Modules policies with conftest. Accepts raw HCL or markdown with fenced hcl/terraform blocks."),
		mcp.WithString("hcl_content", mcp.Required(), mcp.Description("Terraform configuration to validate")),
		mcp.WithString("policy_dir", mcp.Description("Policy directory override")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hclContent, err := req.RequireString("hcl_content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if fenced := shared.ExtractHCLFromMarkdown(hclContent); fenced != "" {
			hclContent = fenced
		}
		report, err := service.Conftest.ValidateHCL(ctx, hclContent, req.GetString("policy_dir", service.PolicyDir))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("conftest run failed", err), nil
		}
		return jsonResult(report)
	})

	s.AddTool(mcp.NewTool("run_conftest_plan_validation",
		mcp.WithDescription("Validate a terraform plan exported with `terraform show -json` against Azure Verified Modules policies with conftest."),
		mcp.WithString("plan_json", mcp.Required(), mcp.Description("Plan document produced by terraform show -json")),
		mcp.WithString("policy_dir", mcp.Description("Policy directory override")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		planJSON, err := req.RequireString("plan_json")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		report, err := service.Conftest.ValidatePlan(ctx, planJSON, req.GetString("policy_dir", service.PolicyDir))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("conftest run failed", err), nil
		}
		return jsonResult(report)
	})
}

func registerExportTools(s *server.MCPServer, service app.Service) {
	s.AddTool(mcp.NewTool("check_aztfexport_installation",
		mcp.WithDescription("Check whether aztfexport is installed and report its version."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(service.Aztfexport.CheckInstallation(ctx))
	})

	s.AddTool(mcp.NewTool("export_azure_resource",
		mcp.WithDescription("Export an existing Azure resource to Terraform configuration with aztfexport."),
		mcp.WithString("resource_id", mcp.Required(), mcp.Description("ARM resource id")),
		mcp.WithString("output_dir", mcp.Description("Output directory, generated when empty")),
		mcp.WithString("provider", mcp.Description("Target provider: azurerm or azapi")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resourceID, err := req.RequireString("resource_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := service.Aztfexport.ExportResource(ctx, resourceID,
			req.GetString("output_dir", ""), req.GetString("provider", ""))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("export failed", err), nil
		}
		return jsonResult(result)
	})

	s.AddTool(mcp.NewTool("export_azure_resource_group",
		mcp.WithDescription("Export every resource in a resource group to Terraform configuration with aztfexport."),
		mcp.WithString("resource_group", mcp.Required(), mcp.Description("Resource group name")),
		mcp.WithString("output_dir", mcp.Description("Output directory, generated when empty")),
		mcp.WithString("provider", mcp.Description("Target provider: azurerm or azapi")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resourceGroup, err := req.RequireString("resource_group")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := service.Aztfexport.ExportResourceGroup(ctx, resourceGroup,
			req.GetString("output_dir", ""), req.GetString("provider", ""))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("export failed", err), nil
		}
		return jsonResult(result)
	})

	s.AddTool(mcp.NewTool("export_azure_resources_by_query",
		mcp.WithDescription("Export the Azure resources matched by an Azure Resource Graph where-clause with aztfexport."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Resource Graph where-clause")),
		mcp.WithString("output_dir", mcp.Description("Output directory, generated when empty")),
		mcp.WithString("provider", mcp.Description("Target provider: azurerm or azapi")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := service.Aztfexport.ExportQuery(ctx, query,
			req.GetString("output_dir", ""), req.GetString("provider", ""))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("export failed", err), nil
		}
		return jsonResult(result)
	})
}

func registerGuidanceTools(s *server.MCPServer, service app.Service) {
	s.AddTool(mcp.NewTool("get_azure_best_practices",
		mcp.WithDescription("Get curated Azure Terraform best practices for an action."),
		mcp.WithString("action", mcp.Required(),
			mcp.Description("One of: code-generation, deployment, security")),
		mcp.WithString("topic", mcp.Description("Optional topic filter, e.g. azapi")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		action, err := req.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(service.Practices.Query(action, req.GetString("topic", ""))), nil
	})
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
