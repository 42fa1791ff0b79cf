// Package agent runs bounded tool-use conversations against a reasoner.
//
// Each turn sends the transcript to the reasoner with the registry's tool
// catalog attached. When the reasoner requests tool calls, the agent executes
// them through the registry, appends the assistant tool-request message
// followed immediately by the matching tool-result message, and loops. A
// response with no tool calls ends the run; so does exhausting the turn
// budget.
//
//	ag := agent.New(reasoner, registry)
//	result, err := ag.Run(ctx, []anvil.Message{anvil.NewUserMessage("...")})
package agent
