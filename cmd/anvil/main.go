// Command anvil runs the agent orchestration engine from the command line.
//
// Usage:
//
//	anvil run "Create a REST API for managing books"
//	anvil mcp
//
// Configuration comes from anvil.yaml, ANVIL_* environment variables, and
// the conventional provider credentials (ANTHROPIC_API_KEY and friends).
// A .env file in the working directory is loaded if present.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:           "anvil",
		Short:         "Agent orchestration engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCMD(), mcpCMD())

	if err := root.Execute(); err != nil {
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
