package main

import (
	"github.com/spf13/cobra"

	"github.com/kwerner/anvil/config"
	"github.com/kwerner/anvil/crawl"
	"github.com/kwerner/anvil/mcp"
	"github.com/kwerner/anvil/sandbox"
	"github.com/kwerner/anvil/tool"
	"github.com/kwerner/anvil/websearch"
)

func mcpCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the built-in tools over MCP stdio",
		Long: `Serve the built-in tools (web crawl, code execution, and web search
when a search credential is configured) as an MCP server on stdin/stdout,
for use by MCP clients such as Claude Desktop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			registry := tool.NewRegistry().Add(
				tool.NewWebCrawlTool(crawl.NewFetcher()),
				tool.NewCodeRunnerTool(sandbox.New()),
			)

			if cfg.Search.APIKey != "" {
				searcher, err := websearch.New(websearch.Provider(cfg.Search.Provider), cfg.Search.APIKey)
				if err != nil {
					return err
				}
				registry.Add(tool.NewWebSearchTool(searcher))
			}

			return mcp.ServeStdio(registry,
				mcp.WithName("anvil-tools"),
				mcp.WithVersion("1.0.0"),
			)
		},
	}
}
