// Package mcpserver wires the schema generator and CLI tool runners
// into an MCP server. Only wiring lives here; behavior belongs to the
// app service and its collaborators.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/app"
)

// New creates the MCP server with every tool registered.
func New(service app.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tf-mcp-server",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	registerSchemaTools(s, service)
	registerTerraformTools(s, service)
	registerLintTools(s, service)
	registerExportTools(s, service)
	registerGuidanceTools(s, service)
	return s
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `Azure Terraform MCP server.

Use get_azapi_provider_documentation to look up the writable schema of an
ARM resource type before generating azapi configuration. The terraform,
tflint, conftest and aztfexport tools run the corresponding local CLI
binaries; check the matching *_installation tool when a run fails.`
