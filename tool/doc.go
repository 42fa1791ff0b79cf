// Package tool provides the tool registry and executor for the anvil library.
//
// A Registry maps tool names to handlers and produces the machine-readable
// tool definitions sent to the reasoning engine. Execution isolates failures
// per call: a handler error is converted into an error-flagged
// [anvil.ToolResult] rather than propagated, so one bad tool call cannot
// abort a conversation.
//
// # Registering Tools
//
// Define an argument struct, then register a typed handler:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" desc:"City name" required:"true"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (string, error) {
//	            return lookup(args.Location), nil
//	        }),
//	)
//
// # Built-in Tools
//
// Constructors for the coding-agent tool set wrap the capability interfaces
// from the root package:
//
//	registry := tool.NewRegistry().Add(
//	    tool.NewWebSearchTool(searcher),
//	    tool.NewWebCrawlTool(fetcher),
//	    tool.NewCodeRunnerTool(runner),
//	)
package tool
