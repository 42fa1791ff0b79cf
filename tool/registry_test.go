package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwerner/anvil"
)

func echoRegistration() Registration {
	return Func("echo", "Echo text", func(ctx context.Context, args struct {
		Text string `json:"text"`
	}) (string, error) {
		return args.Text, nil
	})
}

func TestRegistryRegister(t *testing.T) {
	t.Run("registers and retrieves", func(t *testing.T) {
		r := NewRegistry().Add(echoRegistration())

		assert.Equal(t, 1, r.Len())
		assert.Contains(t, r.Names(), "echo")

		def, ok := r.GetTool("echo")
		require.True(t, ok)
		assert.Equal(t, "echo", def.Name)
		assert.NotEmpty(t, def.Parameters)

		handler, ok := r.Get("echo")
		require.True(t, ok)
		assert.NotNil(t, handler)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		r := NewRegistry().Add(echoRegistration())

		err := r.Register(anvil.Tool{Name: "echo"}, func(ctx context.Context, call anvil.ToolCall) (string, error) {
			return "", nil
		})

		var dup *ErrToolAlreadyRegistered
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "echo", dup.Name)
	})

	t.Run("unregister is idempotent", func(t *testing.T) {
		r := NewRegistry().Add(echoRegistration())

		r.Unregister("echo")
		assert.Equal(t, 0, r.Len())

		r.Unregister("echo")
		assert.Equal(t, 0, r.Len())
	})
}

func TestRegistryExecute(t *testing.T) {
	t.Run("runs the handler", func(t *testing.T) {
		r := NewRegistry().Add(echoRegistration())

		result, err := r.Execute(context.Background(), anvil.ToolCall{
			ID:        "call_1",
			Name:      "echo",
			Arguments: json.RawMessage(`{"text":"hello"}`),
		})
		require.NoError(t, err)

		assert.Equal(t, "call_1", result.ToolCallID)
		assert.Equal(t, "hello", result.Content)
		assert.False(t, result.IsError)
	})

	t.Run("unknown tool is an error", func(t *testing.T) {
		r := NewRegistry()

		_, err := r.Execute(context.Background(), anvil.ToolCall{Name: "nope"})

		var notFound *ErrToolNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.Name)
	})

	t.Run("handler failure becomes an error result", func(t *testing.T) {
		r := NewRegistry().Add(
			Func("boom", "Always fails", func(ctx context.Context, args struct{}) (string, error) {
				return "", errors.New("kaboom")
			}),
		)

		result, err := r.Execute(context.Background(), anvil.ToolCall{
			ID:        "call_2",
			Name:      "boom",
			Arguments: json.RawMessage(`{}`),
		})
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.Equal(t, "kaboom", result.Content)
		assert.Equal(t, "call_2", result.ToolCallID)
	})

	t.Run("malformed arguments become an error result", func(t *testing.T) {
		r := NewRegistry().Add(echoRegistration())

		result, err := r.Execute(context.Background(), anvil.ToolCall{
			ID:        "call_3",
			Name:      "echo",
			Arguments: json.RawMessage(`{"text":`),
		})
		require.NoError(t, err)

		assert.True(t, result.IsError)
	})
}
