// Package mcp exposes the workflow composer to AI agents over the
// Model Context Protocol. Only the side-effect-free operations are
// offered; running a workflow stays with the CLI.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with superact tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"superact",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("superact/validate",
			mcp.WithDescription("Validate a YAML step list (the action_list input format)"),
			mcp.WithString("steps", mcp.Required(), mcp.Description("YAML sequence of step specs")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("superact/plan",
			mcp.WithDescription("Compose the workflow a step list would produce, without executing it"),
			mcp.WithString("steps", mcp.Required(), mcp.Description("YAML sequence of step specs")),
			mcp.WithString("vars", mcp.Description("YAML mapping of variables for when: guards")),
			mcp.WithString("runner_os", mcp.Description("Runner OS label, defaults to ubuntu-latest")),
		),
		HandlePlan,
	)

	s.AddTool(
		mcp.NewTool("superact/schema",
			mcp.WithDescription("Export the step list JSON Schema"),
		),
		HandleSchema,
	)

	return s
}
