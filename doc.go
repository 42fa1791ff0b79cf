// Package anvil provides the shared types and capability contracts for a
// coding-agent orchestration engine.
//
// The anvil library turns a natural-language coding request into generated
// code by driving a small state machine of actions (analyze, plan, generate,
// search-and-crawl) over a shared state record, optionally consulting
// external tools through a reasoning engine that supports tool use.
//
// # Capability Interfaces
//
// The orchestration core never talks to a concrete backend. It consumes four
// small interfaces defined in this package:
//
//   - [Reasoner]: send a conversation, receive text or tool-call requests
//   - [Searcher]: run a web query, receive ranked snippets
//   - [Fetcher]: fetch a URL, receive status and extracted text
//   - [Runner]: execute source text in a sandbox with a wall-clock bound
//
// Production adapters live in provider/ (Anthropic, OpenAI, Google),
// websearch/ (Brave, Serper), crawl/, and sandbox/. Tests substitute
// deterministic stubs.
//
// # Basic Usage
//
// Wire a reasoning engine and run the loop:
//
//	reasoner := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"))
//	loop := engine.NewLoop(reasoner)
//
//	state, err := loop.Run(ctx, "write a function that parses RFC 3339 timestamps")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state.GeneratedOutput())
//
// # Higher-Level Pieces
//
// See the subpackages:
//
//   - [github.com/kwerner/anvil/engine]: state model, actions, orchestration loop
//   - [github.com/kwerner/anvil/agent]: bounded tool-use protocol
//   - [github.com/kwerner/anvil/tool]: tool registry and built-in tools
//   - [github.com/kwerner/anvil/crawl]: bounded concurrent fetching
//   - [github.com/kwerner/anvil/sandbox]: sandboxed code execution
package anvil
