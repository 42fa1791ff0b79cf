package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/kwerner/anvil"
	"github.com/kwerner/anvil/retry"
	"github.com/kwerner/anvil/tool"
)

// Agent orchestrates tool-calling conversations with a reasoner.
type Agent struct {
	reasoner anvil.Reasoner
	registry *tool.Registry
}

// New creates an Agent with the given reasoner and tool registry.
func New(reasoner anvil.Reasoner, registry *tool.Registry) *Agent {
	return &Agent{
		reasoner: reasoner,
		registry: registry,
	}
}

// Run executes the tool-use loop and returns the final result.
// This is a blocking call that runs until the reasoner answers without tool
// calls or the turn budget is exhausted.
//
// A max budget of N produces at most N reasoner calls. Every assistant
// message carrying tool calls is followed immediately by a tool-result
// message answering each call, so the transcript stays valid for a
// follow-up run.
func (a *Agent) Run(ctx context.Context, messages []anvil.Message, opts ...Option) (*Result, error) {
	options := ApplyOptions(opts...)

	chatOpts := append([]anvil.Option{anvil.WithTools(a.registry.Tools())}, options.ChatOptions...)

	history := make([]anvil.Message, len(messages), len(messages)+2*options.MaxTurns)
	copy(history, messages)

	result := &Result{}

	for turn := 1; turn <= options.MaxTurns; turn++ {
		resp, err := retry.Do(ctx, options.Retry, func() (*anvil.Response, error) {
			return a.reasoner.Chat(ctx, history, chatOpts...)
		})
		if err != nil {
			result.history = history
			return result, fmt.Errorf("agent: turn %d: %w", turn, err)
		}

		result.Turns = turn
		result.Usage.InputTokens += resp.Usage.InputTokens
		result.Usage.OutputTokens += resp.Usage.OutputTokens

		if len(resp.ToolCalls) == 0 {
			result.Content = resp.Content
			result.StopReason = StopFinal
			result.history = history
			return result, nil
		}

		history = append(history, anvil.Message{
			Role:      anvil.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		toolResults := a.executeToolCalls(ctx, resp.ToolCalls, options)
		history = append(history, anvil.NewToolResultMessage(toolResults...))

		for i, tc := range resp.ToolCalls {
			result.Calls = append(result.Calls, CallRecord{
				Name:    tc.Name,
				Input:   tc.Arguments,
				Result:  toolResults[i].Content,
				IsError: toolResults[i].IsError,
			})
		}

		result.Content = resp.Content
	}

	result.StopReason = StopMaxTurns
	result.Content = "Maximum iterations reached without a final response."
	result.history = history
	return result, nil
}

// executeToolCalls runs every call and returns results indexed by position,
// matching the order of toolCalls.
func (a *Agent) executeToolCalls(ctx context.Context, toolCalls []anvil.ToolCall, options *Options) []anvil.ToolResult {
	if options.ParallelToolCalls && len(toolCalls) > 1 {
		return a.executeParallel(ctx, toolCalls, options)
	}

	results := make([]anvil.ToolResult, len(toolCalls))
	for i, tc := range toolCalls {
		results[i] = a.executeToolCall(ctx, tc, options)
	}
	return results
}

func (a *Agent) executeParallel(ctx context.Context, toolCalls []anvil.ToolCall, options *Options) []anvil.ToolResult {
	results := make([]anvil.ToolResult, len(toolCalls))

	var wg sync.WaitGroup
	for i, tc := range toolCalls {
		wg.Add(1)
		go func(idx int, call anvil.ToolCall) {
			defer wg.Done()
			results[idx] = a.executeToolCall(ctx, call, options)
		}(i, tc)
	}
	wg.Wait()

	return results
}

// executeToolCall runs a single call through the registry. Handler failures
// come back as error-flagged results; they never abort the run.
func (a *Agent) executeToolCall(ctx context.Context, tc anvil.ToolCall, options *Options) anvil.ToolResult {
	if options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.HandlerTimeout)
		defer cancel()
	}

	tr, err := a.registry.Execute(ctx, tc)
	if err != nil {
		// Unknown tool or registry-level failure. Surface it to the model
		// as an error result so the conversation can recover.
		return anvil.ToolResult{
			ToolCallID: tc.ID,
			Content:    err.Error(),
			IsError:    true,
		}
	}
	return tr
}
