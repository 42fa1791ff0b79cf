package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwerner/anvil"
	"github.com/kwerner/anvil/retry"
	"github.com/kwerner/anvil/tool"
)

// scriptedReasoner returns canned responses in order and counts calls.
type scriptedReasoner struct {
	mu        sync.Mutex
	calls     int
	responses []*anvil.Response
	err       error
}

func (s *scriptedReasoner) Chat(ctx context.Context, messages []anvil.Message, opts ...anvil.Option) (*anvil.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *scriptedReasoner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func echoRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	type echoArgs struct {
		Text string `json:"text" required:"true"`
	}
	return tool.NewRegistry().Add(
		tool.Func("echo", "Echoes back the input text.", func(ctx context.Context, args echoArgs) (string, error) {
			return "echo: " + args.Text, nil
		}),
		tool.Func("fail", "Always fails.", func(ctx context.Context, args echoArgs) (string, error) {
			return "", errors.New("boom")
		}),
	)
}

func toolCallResponse(calls ...anvil.ToolCall) *anvil.Response {
	return &anvil.Response{
		Content:      "working on it",
		FinishReason: "tool_use",
		ToolCalls:    calls,
	}
}

func finalResponse(content string) *anvil.Response {
	return &anvil.Response{Content: content, FinishReason: "stop"}
}

func TestAgentRun_NoToolCalls(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*anvil.Response{finalResponse("done")}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("hi")})
	require.NoError(t, err)

	assert.Equal(t, "done", result.Content)
	assert.Equal(t, StopFinal, result.StopReason)
	assert.Equal(t, 1, result.Turns)
	assert.Empty(t, result.Calls)
	assert.Equal(t, 1, reasoner.callCount())
}

func TestAgentRun_ToolTurnsThenFinal(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*anvil.Response{
		toolCallResponse(anvil.ToolCall{ID: "c1", Name: "echo", Arguments: json.RawMessage(`{"text":"one"}`)}),
		toolCallResponse(anvil.ToolCall{ID: "c2", Name: "echo", Arguments: json.RawMessage(`{"text":"two"}`)}),
		finalResponse("all done"),
	}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")})
	require.NoError(t, err)

	assert.Equal(t, StopFinal, result.StopReason)
	assert.Equal(t, "all done", result.Content)
	assert.Equal(t, 3, result.Turns)
	assert.Equal(t, 3, reasoner.callCount())

	require.Len(t, result.Calls, 2)
	assert.Equal(t, "echo: one", result.Calls[0].Result)
	assert.Equal(t, "echo: two", result.Calls[1].Result)
	assert.False(t, result.Calls[0].IsError)
	assert.False(t, result.Calls[1].IsError)
}

func TestAgentRun_TranscriptPairsRequestsWithResults(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*anvil.Response{
		toolCallResponse(anvil.ToolCall{ID: "c1", Name: "echo", Arguments: json.RawMessage(`{"text":"x"}`)}),
		finalResponse("ok"),
	}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")})
	require.NoError(t, err)

	msgs := result.Messages()
	for i, m := range msgs {
		if len(m.ToolCalls) == 0 {
			continue
		}
		require.Less(t, i+1, len(msgs), "tool-request message must not end the transcript")
		next := msgs[i+1]
		assert.Equal(t, anvil.RoleTool, next.Role)
		require.Len(t, next.ToolResults, len(m.ToolCalls))
		for j, tc := range m.ToolCalls {
			assert.Equal(t, tc.ID, next.ToolResults[j].ToolCallID)
		}
	}
}

func TestAgentRun_MaxTurns(t *testing.T) {
	// Always requests a tool, never answers.
	reasoner := &scriptedReasoner{responses: []*anvil.Response{
		toolCallResponse(anvil.ToolCall{ID: "c", Name: "echo", Arguments: json.RawMessage(`{"text":"loop"}`)}),
	}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")},
		WithMaxTurns(3))
	require.NoError(t, err)

	assert.Equal(t, StopMaxTurns, result.StopReason)
	assert.Equal(t, 3, result.Turns)
	assert.Equal(t, 3, reasoner.callCount(), "budget of N means exactly N reasoner calls")
	assert.Len(t, result.Calls, 3)
}

func TestAgentRun_HandlerErrorIsIsolated(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*anvil.Response{
		toolCallResponse(
			anvil.ToolCall{ID: "c1", Name: "fail", Arguments: json.RawMessage(`{"text":"x"}`)},
			anvil.ToolCall{ID: "c2", Name: "echo", Arguments: json.RawMessage(`{"text":"x"}`)},
		),
		finalResponse("recovered"),
	}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")})
	require.NoError(t, err)

	assert.Equal(t, StopFinal, result.StopReason)
	require.Len(t, result.Calls, 2)
	assert.True(t, result.Calls[0].IsError)
	assert.Equal(t, "boom", result.Calls[0].Result)
	assert.False(t, result.Calls[1].IsError)
	assert.Equal(t, "echo: x", result.Calls[1].Result)
}

func TestAgentRun_UnknownToolBecomesErrorResult(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*anvil.Response{
		toolCallResponse(anvil.ToolCall{ID: "c1", Name: "nope", Arguments: json.RawMessage(`{}`)}),
		finalResponse("ok"),
	}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")})
	require.NoError(t, err)

	require.Len(t, result.Calls, 1)
	assert.True(t, result.Calls[0].IsError)
	assert.Contains(t, result.Calls[0].Result, "nope")
}

func TestAgentRun_SequentialExecution(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*anvil.Response{
		toolCallResponse(
			anvil.ToolCall{ID: "c1", Name: "echo", Arguments: json.RawMessage(`{"text":"a"}`)},
			anvil.ToolCall{ID: "c2", Name: "echo", Arguments: json.RawMessage(`{"text":"b"}`)},
		),
		finalResponse("ok"),
	}}
	ag := New(reasoner, echoRegistry(t))

	result, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")},
		WithParallelToolCalls(false))
	require.NoError(t, err)

	require.Len(t, result.Calls, 2)
	assert.Equal(t, "echo: a", result.Calls[0].Result)
	assert.Equal(t, "echo: b", result.Calls[1].Result)
}

func TestAgentRun_ReasonerError(t *testing.T) {
	reasoner := &scriptedReasoner{err: anvil.NewPermanentError("bad request", 400, nil)}
	ag := New(reasoner, echoRegistry(t))

	_, err := ag.Run(context.Background(), []anvil.Message{anvil.NewUserMessage("go")},
		WithRetry(retry.Config{MaxAttempts: 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turn 1")
}
