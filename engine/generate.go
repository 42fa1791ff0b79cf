package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kwerner/anvil"
)

const generateSystemPrompt = "You are a code generator. " +
	"Return only the code, without surrounding explanations."

// GenerateAction produces the generated output from the request, the
// analysis and the current tasks. A reasoner failure degrades to a
// deterministic placeholder.
type GenerateAction struct {
	reasoner anvil.Reasoner
	cfg      *actionConfig
}

// NewGenerateAction creates the generate action. A nil reasoner always
// produces the placeholder.
func NewGenerateAction(reasoner anvil.Reasoner, opts ...ActionOption) *GenerateAction {
	return &GenerateAction{
		reasoner: reasoner,
		cfg:      applyActionOptions(opts),
	}
}

// Name implements Action.
func (a *GenerateAction) Name() string { return "generate" }

// CanExecute reports whether output is still missing.
func (a *GenerateAction) CanExecute(s *State) bool {
	return s.GeneratedOutput() == ""
}

// Execute produces {generated_output}.
func (a *GenerateAction) Execute(ctx context.Context, s *State) (*ActionResult, error) {
	if a.reasoner == nil {
		return &ActionResult{GeneratedOutput: fallbackOutput(s.Request())}, nil
	}

	prompt := a.buildPrompt(s)
	opts := append([]anvil.Option{anvil.WithSystem(generateSystemPrompt)}, a.cfg.chatOpts...)

	resp, err := a.reasoner.Chat(ctx, []anvil.Message{anvil.NewUserMessage(prompt)}, opts...)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		a.cfg.logger.Warn("generation degraded to fallback", "error", err)
		return &ActionResult{GeneratedOutput: fallbackOutput(s.Request())}, nil
	}

	return &ActionResult{GeneratedOutput: resp.Content}, nil
}

func (a *GenerateAction) buildPrompt(s *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Generate code for the following request:

User Request: %q

Analysis: %s
`, s.Request(), s.Analysis())

	if tasks := s.Tasks(); len(tasks) > 0 {
		b.WriteString("\nTasks:\n")
		for _, t := range tasks {
			fmt.Fprintf(&b, "- %s\n", t.Content)
		}
	}

	b.WriteString(`
Requirements:
1. Clear function/class definitions
2. Proper error handling
3. Documentation comments
4. Example usage if appropriate`)
	return b.String()
}

func fallbackOutput(request string) string {
	return fmt.Sprintf(`// Generated output for: %s
//
// Placeholder: the reasoning backend was unavailable, so no code could be
// produced for this request. Re-run with a configured provider.`, request)
}
