// Package mcp exposes a tool registry over the Model Context Protocol and
// consumes tools from remote MCP servers.
//
// The server side turns a [tool.Registry] into an MCP stdio server so MCP
// clients can discover and call the registered capabilities (web search,
// page crawling, code execution). The client side, [RemoteRegistry], is the
// mirror image: it proxies a remote MCP server's tools behind the same
// Execute contract the agent loop uses.
package mcp

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kwerner/anvil"
)

// ToMCPTool converts a tool definition to an MCP tool. The parameter JSON
// schema is passed through as the raw input schema.
func ToMCPTool(t anvil.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// FromMCPTool converts an MCP tool to a tool definition, extracting the
// schema from either the raw or the structured form.
func FromMCPTool(t mcp.Tool) anvil.Tool {
	var schema json.RawMessage
	if len(t.RawInputSchema) > 0 {
		schema = t.RawInputSchema
	} else if data, err := json.Marshal(t.InputSchema); err == nil {
		schema = data
	}

	return anvil.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// ToMCPTools converts a slice of tool definitions to MCP tools.
func ToMCPTools(tools []anvil.Tool) []mcp.Tool {
	out := make([]mcp.Tool, len(tools))
	for i, t := range tools {
		out[i] = ToMCPTool(t)
	}
	return out
}

// FromMCPTools converts a slice of MCP tools to tool definitions.
func FromMCPTools(tools []mcp.Tool) []anvil.Tool {
	out := make([]anvil.Tool, len(tools))
	for i, t := range tools {
		out[i] = FromMCPTool(t)
	}
	return out
}

// ToMCPCallToolRequest converts a tool call to an MCP call request.
func ToMCPCallToolRequest(call anvil.ToolCall) mcp.CallToolRequest {
	var args any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			args = string(call.Arguments)
		}
	}

	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      call.Name,
			Arguments: args,
		},
	}
}

// FromMCPCallToolResult converts an MCP call result to a tool result,
// concatenating the text content.
func FromMCPCallToolResult(callID string, result *mcp.CallToolResult) anvil.ToolResult {
	if result == nil {
		return anvil.ToolResult{
			ToolCallID: callID,
			IsError:    true,
		}
	}

	var textParts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			textParts = append(textParts, content.Text)
		case *mcp.TextContent:
			textParts = append(textParts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				textParts = append(textParts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			textParts = append(textParts, string(data))
		}
	}

	return anvil.ToolResult{
		ToolCallID: callID,
		Content:    strings.Join(textParts, "\n"),
		IsError:    result.IsError,
	}
}

// ToMCPCallToolResult converts a tool result to an MCP call result.
func ToMCPCallToolResult(result anvil.ToolResult) *mcp.CallToolResult {
	if result.IsError {
		return mcp.NewToolResultError(result.Content)
	}
	return mcp.NewToolResultText(result.Content)
}
