package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/superactdev/superact/pkg/inputs"
	"github.com/superactdev/superact/pkg/schema"
	"github.com/superactdev/superact/pkg/workflow"
)

// HandleValidate implements the superact/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	steps, _ := args["steps"].(string)
	if steps == "" {
		return errorResult("steps argument is required"), nil
	}

	specs, errs := schema.ValidateListString(steps)
	if schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	return textResult(fmt.Sprintf("✓ step list is valid (%d steps)", len(specs))), nil
}

// HandlePlan implements the superact/plan MCP tool. It runs the merge
// and document generation stages and returns the workflow YAML together
// with the id-to-index correlation map.
func HandlePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	stepsYAML, _ := args["steps"].(string)
	if stepsYAML == "" {
		return errorResult("steps argument is required"), nil
	}
	varsYAML, _ := args["vars"].(string)
	runnerOS, _ := args["runner_os"].(string)
	if runnerOS == "" {
		runnerOS = inputs.DefaultRunnerOS
	}

	specs, err := schema.LoadListString(stepsYAML)
	if err != nil {
		return errorResult(fmt.Sprintf("steps must be a YAML sequence: %s", err)), nil
	}
	vars, err := schema.LoadVars(varsYAML)
	if err != nil {
		return errorResult(fmt.Sprintf("vars must be a YAML mapping: %s", err)), nil
	}

	steps, err := workflow.Merge(nil, specs, vars)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	doc, corr := workflow.Build(steps, runnerOS, "results.json")
	docYAML, err := yaml.Marshal(doc)
	if err != nil {
		return errorResult(fmt.Sprintf("marshal workflow: %s", err)), nil
	}

	response := map[string]any{
		"workflow":        string(docYAML),
		"correlation_map": corr,
		"step_count":      len(steps),
	}
	data, _ := json.MarshalIndent(response, "", "  ")
	return textResult(string(data)), nil
}

// HandleSchema implements the superact/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func formatErrors(errs []*schema.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", e.Phase, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
