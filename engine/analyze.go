package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kwerner/anvil"
)

const analyzeSystemPrompt = "You are a requirements analyst for coding tasks. " +
	"Produce a clear, concise analysis that helps plan and generate code."

// AnalyzeAction produces the analysis text for the request. A reasoner
// failure is recoverable: it is logged and replaced with a deterministic
// templated analysis, so the action never fails the run.
type AnalyzeAction struct {
	reasoner anvil.Reasoner
	cfg      *actionConfig
}

// NewAnalyzeAction creates the analyze action. A nil reasoner always uses
// the deterministic fallback.
func NewAnalyzeAction(reasoner anvil.Reasoner, opts ...ActionOption) *AnalyzeAction {
	return &AnalyzeAction{
		reasoner: reasoner,
		cfg:      applyActionOptions(opts),
	}
}

// Name implements Action.
func (a *AnalyzeAction) Name() string { return "analyze" }

// CanExecute reports whether the record still lacks an analysis.
func (a *AnalyzeAction) CanExecute(s *State) bool {
	return s.Analysis() == ""
}

// Execute produces {analysis}.
func (a *AnalyzeAction) Execute(ctx context.Context, s *State) (*ActionResult, error) {
	if a.reasoner == nil {
		return &ActionResult{Analysis: fallbackAnalysis(s.Request())}, nil
	}

	prompt := a.buildPrompt(s)
	opts := append([]anvil.Option{anvil.WithSystem(analyzeSystemPrompt)}, a.cfg.chatOpts...)

	resp, err := a.reasoner.Chat(ctx, []anvil.Message{anvil.NewUserMessage(prompt)}, opts...)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		a.cfg.logger.Warn("analysis degraded to fallback", "error", err)
		return &ActionResult{Analysis: fallbackAnalysis(s.Request())}, nil
	}

	return &ActionResult{Analysis: resp.Content}, nil
}

func (a *AnalyzeAction) buildPrompt(s *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Analyze the following coding request and provide a detailed breakdown:

Request: %q

Cover:
1. What type of code needs to be created (function, class, script, etc.)
2. Key requirements and constraints
3. Input/output specifications
4. Edge cases to consider
5. Technology stack or language specifics
`, s.Request())

	// Fold in a few search snippets when a pre-analysis search pass ran.
	snippets := 0
	for _, rec := range s.Context().Searches {
		for _, r := range rec.Results {
			if r.IsError() || r.Snippet == "" {
				continue
			}
			if snippets == 0 {
				b.WriteString("\nRelevant findings from a web search:\n")
			}
			fmt.Fprintf(&b, "- %s: %s\n", r.Title, truncate(r.Snippet, 200))
			snippets++
			if snippets >= 3 {
				return b.String()
			}
		}
	}
	return b.String()
}

func fallbackAnalysis(request string) string {
	return fmt.Sprintf(`Basic analysis of request: %q

The request calls for generated code. Completing it requires:
1. Understanding the specific coding task
2. Breaking the work into actionable steps
3. Producing clean, functional code
4. Verifying the output meets the request

Next step: create a task list covering these steps.`, request)
}
