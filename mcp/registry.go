package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kwerner/anvil"
)

// RemoteRegistry proxies tools from a remote MCP server. It offers the same
// Tools/Execute surface as [tool.Registry], so an agent can use local and
// remote tools interchangeably.
//
// RemoteRegistry is safe for concurrent use. The tool list is cached
// locally and can be refreshed with [RemoteRegistry.Refresh].
type RemoteRegistry struct {
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]anvil.Tool
}

// NewRemoteRegistry connects to an MCP server over stdio. The command is the
// path to the server executable; args are passed to it.
//
// Example:
//
//	registry, err := mcp.NewRemoteRegistry(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
func NewRemoteRegistry(ctx context.Context, command string, env []string, args ...string) (*RemoteRegistry, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: create stdio client: %w", err)
	}

	return newRemoteRegistry(ctx, c)
}

// NewRemoteRegistrySSE connects to an MCP server over SSE.
func NewRemoteRegistrySSE(ctx context.Context, baseURL string) (*RemoteRegistry, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("mcp: create SSE client: %w", err)
	}

	return newRemoteRegistry(ctx, c)
}

// NewRemoteRegistryFromClient wraps an existing MCP client. The client will
// be started and initialized, and the tool list fetched.
func NewRemoteRegistryFromClient(ctx context.Context, c *client.Client) (*RemoteRegistry, error) {
	return newRemoteRegistry(ctx, c)
}

func newRemoteRegistry(ctx context.Context, c *client.Client) (*RemoteRegistry, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: start client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "anvil-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: initialize session: %w", err)
	}

	r := &RemoteRegistry{
		client: c,
		tools:  make(map[string]anvil.Tool),
	}

	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: list tools: %w", err)
	}

	return r, nil
}

// Close closes the connection to the MCP server.
func (r *RemoteRegistry) Close() error {
	return r.client.Close()
}

// Refresh fetches the current tool list from the server, replacing the
// cached one.
func (r *RemoteRegistry) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools = make(map[string]anvil.Tool, len(result.Tools))
	for _, t := range result.Tools {
		r.tools[t.Name] = FromMCPTool(t)
	}

	return nil
}

// Tools returns all tools available from the MCP server.
func (r *RemoteRegistry) Tools() []anvil.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]anvil.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	return tools
}

// GetTool retrieves a tool definition by name.
func (r *RemoteRegistry) GetTool(name string) (anvil.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns the names of all available tools.
func (r *RemoteRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Len returns the number of available tools.
func (r *RemoteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Has reports whether the registry has a tool with the given name.
func (r *RemoteRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Execute calls a tool on the remote MCP server. Transport failures are
// reported as error results rather than errors, matching the local
// registry's failure isolation.
func (r *RemoteRegistry) Execute(ctx context.Context, call anvil.ToolCall) (anvil.ToolResult, error) {
	result, err := r.client.CallTool(ctx, ToMCPCallToolRequest(call))
	if err != nil {
		return anvil.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}

	return FromMCPCallToolResult(call.ID, result), nil
}
