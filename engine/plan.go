package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kwerner/anvil"
)

const planSystemPrompt = "You are a planner for coding tasks. " +
	"Respond with one task per line, nothing else. " +
	"Prefix a task with [high], [medium] or [low] to set its priority."

const maxPlannedTasks = 5

// PlanAction turns the analysis into an ordered task list. A reasoner
// failure, or a response that parses to no tasks, degrades to a fixed
// deterministic skeleton.
type PlanAction struct {
	reasoner anvil.Reasoner
	cfg      *actionConfig
}

// NewPlanAction creates the plan action. A nil reasoner always uses the
// deterministic skeleton.
func NewPlanAction(reasoner anvil.Reasoner, opts ...ActionOption) *PlanAction {
	return &PlanAction{
		reasoner: reasoner,
		cfg:      applyActionOptions(opts),
	}
}

// Name implements Action.
func (a *PlanAction) Name() string { return "plan" }

// CanExecute reports whether an analysis exists and no tasks do yet.
func (a *PlanAction) CanExecute(s *State) bool {
	return s.Analysis() != "" && len(s.Tasks()) == 0
}

// Execute produces {tasks}.
func (a *PlanAction) Execute(ctx context.Context, s *State) (*ActionResult, error) {
	if a.reasoner == nil {
		return &ActionResult{Tasks: fallbackTasks(s.Request())}, nil
	}

	prompt := fmt.Sprintf(`Based on this analysis and user request, create a task list:

Analysis: %s

User Request: %q

Each task must be specific, actionable and ordered logically.`, s.Analysis(), s.Request())

	opts := append([]anvil.Option{anvil.WithSystem(planSystemPrompt)}, a.cfg.chatOpts...)

	resp, err := a.reasoner.Chat(ctx, []anvil.Message{anvil.NewUserMessage(prompt)}, opts...)
	if err != nil {
		a.cfg.logger.Warn("planning degraded to fallback", "error", err)
		return &ActionResult{Tasks: fallbackTasks(s.Request())}, nil
	}

	drafts := parseTaskLines(resp.Content)
	if len(drafts) == 0 {
		a.cfg.logger.Warn("planning response parsed to no tasks, using fallback")
		drafts = fallbackTasks(s.Request())
	}

	return &ActionResult{Tasks: drafts}, nil
}

// parseTaskLines extracts one draft per non-empty line, stripping list
// markers and reading an optional [priority] prefix.
func parseTaskLines(content string) []TaskDraft {
	var drafts []TaskDraft
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" {
			continue
		}

		priority := PriorityMedium
		for _, p := range []TaskPriority{PriorityHigh, PriorityMedium, PriorityLow} {
			prefix := "[" + string(p) + "]"
			if strings.HasPrefix(strings.ToLower(line), prefix) {
				priority = p
				line = strings.TrimSpace(line[len(prefix):])
				break
			}
		}
		if line == "" {
			continue
		}

		drafts = append(drafts, TaskDraft{Content: line, Priority: priority})
		if len(drafts) == maxPlannedTasks {
			break
		}
	}
	return drafts
}

func fallbackTasks(request string) []TaskDraft {
	return []TaskDraft{
		{Content: "Analyze and understand the requirements", Priority: PriorityHigh},
		{Content: "Create implementation for: " + truncate(request, 50), Priority: PriorityHigh},
		{Content: "Test and validate the generated code", Priority: PriorityMedium},
	}
}
