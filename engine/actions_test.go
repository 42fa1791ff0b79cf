package engine

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwerner/anvil"
)

// stubReasoner returns a fixed response or error.
type stubReasoner struct {
	content string
	err     error
	calls   int
}

func (r *stubReasoner) Chat(ctx context.Context, messages []anvil.Message, opts ...anvil.Option) (*anvil.Response, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &anvil.Response{Content: r.content, FinishReason: "stop"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAnalyzeAction(t *testing.T) {
	t.Run("uses reasoner output", func(t *testing.T) {
		r := &stubReasoner{content: "detailed analysis"}
		a := NewAnalyzeAction(r, WithActionLogger(discardLogger()))

		res, err := a.Execute(context.Background(), NewState("build a cache"))
		require.NoError(t, err)
		assert.Equal(t, "detailed analysis", res.Analysis)
		assert.Equal(t, 1, r.calls)
	})

	t.Run("reasoner failure falls back, never errors", func(t *testing.T) {
		r := &stubReasoner{err: errors.New("api down")}
		a := NewAnalyzeAction(r, WithActionLogger(discardLogger()))

		res, err := a.Execute(context.Background(), NewState("build a cache"))
		require.NoError(t, err)
		assert.Contains(t, res.Analysis, "build a cache")
	})

	t.Run("nil reasoner uses fallback", func(t *testing.T) {
		a := NewAnalyzeAction(nil)
		res, err := a.Execute(context.Background(), NewState("build a cache"))
		require.NoError(t, err)
		assert.Contains(t, res.Analysis, "build a cache")
	})

	t.Run("can execute only before analysis", func(t *testing.T) {
		a := NewAnalyzeAction(nil)
		s := NewState("x")
		assert.True(t, a.CanExecute(s))
		s.SetAnalysis("done")
		assert.False(t, a.CanExecute(s))
	})
}

func TestPlanAction(t *testing.T) {
	t.Run("parses task lines with priorities", func(t *testing.T) {
		r := &stubReasoner{content: "- [high] Write the parser\n- Add tests\n- [low] Write docs\n"}
		a := NewPlanAction(r, WithActionLogger(discardLogger()))

		s := NewState("build a parser")
		s.SetAnalysis("analysis")

		res, err := a.Execute(context.Background(), s)
		require.NoError(t, err)
		require.Len(t, res.Tasks, 3)
		assert.Equal(t, "Write the parser", res.Tasks[0].Content)
		assert.Equal(t, PriorityHigh, res.Tasks[0].Priority)
		assert.Equal(t, PriorityMedium, res.Tasks[1].Priority)
		assert.Equal(t, PriorityLow, res.Tasks[2].Priority)
	})

	t.Run("caps parsed tasks", func(t *testing.T) {
		r := &stubReasoner{content: "1. a\n2. b\n3. c\n4. d\n5. e\n6. f\n7. g\n"}
		a := NewPlanAction(r, WithActionLogger(discardLogger()))

		s := NewState("x")
		s.SetAnalysis("analysis")

		res, err := a.Execute(context.Background(), s)
		require.NoError(t, err)
		assert.Len(t, res.Tasks, maxPlannedTasks)
	})

	t.Run("reasoner failure falls back to skeleton", func(t *testing.T) {
		r := &stubReasoner{err: errors.New("api down")}
		a := NewPlanAction(r, WithActionLogger(discardLogger()))

		s := NewState("build a very long request that should get truncated somewhere")
		s.SetAnalysis("analysis")

		res, err := a.Execute(context.Background(), s)
		require.NoError(t, err)
		require.Len(t, res.Tasks, 3)
		assert.Equal(t, PriorityHigh, res.Tasks[0].Priority)
		assert.Equal(t, PriorityMedium, res.Tasks[2].Priority)
	})

	t.Run("empty response falls back to skeleton", func(t *testing.T) {
		r := &stubReasoner{content: "   \n  \n"}
		a := NewPlanAction(r, WithActionLogger(discardLogger()))

		s := NewState("x")
		s.SetAnalysis("analysis")

		res, err := a.Execute(context.Background(), s)
		require.NoError(t, err)
		assert.Len(t, res.Tasks, 3)
	})

	t.Run("can execute needs analysis and no tasks", func(t *testing.T) {
		a := NewPlanAction(nil)
		s := NewState("x")
		assert.False(t, a.CanExecute(s))
		s.SetAnalysis("done")
		assert.True(t, a.CanExecute(s))
		s.AddTasks(TaskDraft{Content: "a"})
		assert.False(t, a.CanExecute(s))
	})
}

func TestGenerateAction(t *testing.T) {
	t.Run("uses reasoner output", func(t *testing.T) {
		r := &stubReasoner{content: "func main() {}"}
		a := NewGenerateAction(r, WithActionLogger(discardLogger()))

		s := NewState("hello world program")
		s.SetAnalysis("analysis")
		s.AddTasks(TaskDraft{Content: "write main"})

		res, err := a.Execute(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, "func main() {}", res.GeneratedOutput)
	})

	t.Run("reasoner failure falls back to placeholder", func(t *testing.T) {
		r := &stubReasoner{err: errors.New("api down")}
		a := NewGenerateAction(r, WithActionLogger(discardLogger()))

		s := NewState("hello world program")
		res, err := a.Execute(context.Background(), s)
		require.NoError(t, err)
		assert.Contains(t, res.GeneratedOutput, "hello world program")
	})

	t.Run("can execute only before output", func(t *testing.T) {
		a := NewGenerateAction(nil)
		s := NewState("x")
		assert.True(t, a.CanExecute(s))
		s.SetGeneratedOutput("out")
		assert.False(t, a.CanExecute(s))
	})
}
