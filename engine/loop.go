package engine

import (
	"context"
	"log/slog"

	"github.com/kwerner/anvil"
)

// DefaultMaxIterations bounds action dispatches per run. Under the
// transition policy a run needs at most five (two search passes, analyze,
// plan, generate); the ceiling is a safety net, not a tuning knob.
const DefaultMaxIterations = 8

// Loop drives a run: it re-derives the phase from the state record on every
// pass, selects the next action, executes it and merges the result. The
// Loop is the state record's only owner; actions never touch it directly.
type Loop struct {
	analyze  Action
	plan     Action
	generate Action
	search   Action

	searchEnabled bool
	logger        *slog.Logger
	maxIterations int
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSearch enables the search-and-crawl passes with the given backends.
// A nil fetcher collects search results without crawling.
func WithSearch(searcher anvil.Searcher, fetcher anvil.Fetcher, opts ...SearchCrawlOption) LoopOption {
	return func(l *Loop) {
		l.search = NewSearchCrawlAction(searcher, fetcher, opts...)
		l.searchEnabled = true
	}
}

// WithSearchAction enables search passes with a custom action.
func WithSearchAction(a Action) LoopOption {
	return func(l *Loop) {
		l.search = a
		l.searchEnabled = a != nil
	}
}

// WithAnalyzeAction replaces the default analyze action.
func WithAnalyzeAction(a Action) LoopOption {
	return func(l *Loop) {
		l.analyze = a
	}
}

// WithPlanAction replaces the default plan action.
func WithPlanAction(a Action) LoopOption {
	return func(l *Loop) {
		l.plan = a
	}
}

// WithGenerateAction replaces the default generate action.
func WithGenerateAction(a Action) LoopOption {
	return func(l *Loop) {
		l.generate = a
	}
}

// WithLoopLogger sets the logger for dispatch and failure reporting.
// Defaults to slog.Default().
func WithLoopLogger(l *slog.Logger) LoopOption {
	return func(lp *Loop) {
		lp.logger = l
	}
}

// WithMaxIterations overrides the dispatch safety ceiling.
func WithMaxIterations(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// NewLoop creates a Loop with the default actions built on the given
// reasoner. A nil reasoner runs every action in its deterministic fallback
// mode.
func NewLoop(reasoner anvil.Reasoner, opts ...LoopOption) *Loop {
	l := &Loop{
		analyze:       NewAnalyzeAction(reasoner),
		plan:          NewPlanAction(reasoner),
		generate:      NewGenerateAction(reasoner),
		logger:        slog.Default(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes the loop for a request and returns the final state snapshot.
//
// An error escaping an action's Execute is the only fatal path: it is
// recorded into the context error field and the run is marked done. It is
// never returned to the caller; the returned error is reserved for context
// cancellation.
func (l *Loop) Run(ctx context.Context, request string) (*State, error) {
	state := NewState(request)

	for i := 0; i < l.maxIterations && !state.Done(); i++ {
		if err := ctx.Err(); err != nil {
			state.ctx.Error = err.Error()
			state.MarkDone()
			return state, err
		}

		action := l.nextAction(state)
		if action == nil || !action.CanExecute(state) {
			state.MarkDone()
			break
		}

		phase := state.Phase()
		l.logger.Debug("dispatching action", "action", action.Name(), "phase", phase)

		result, err := action.Execute(ctx, state)
		if err != nil {
			l.logger.Error("action failed", "action", action.Name(), "error", err)
			state.ctx.Error = err.Error()
			state.MarkDone()
			break
		}

		if action == l.search {
			// Guard against re-selecting search in the same phase even
			// when it produced no queries.
			state.markSearched(phase)
		}

		l.merge(state, result)
	}

	if !state.Done() {
		state.MarkDone()
	}
	return state, nil
}

// nextAction applies the transition policy against the current record.
// Returning nil means the run is complete.
func (l *Loop) nextAction(s *State) Action {
	switch s.Phase() {
	case PhaseStart:
		if l.searchEnabled && !s.ctx.SearchedAt(PhaseStart) {
			return l.search
		}
		return l.analyze

	case PhaseAnalyzed:
		return l.plan

	case PhasePlanned:
		if s.GeneratedOutput() != "" || len(s.PendingTasks()) == 0 {
			return nil
		}
		if l.searchEnabled && !s.ctx.SearchedAt(PhasePlanned) {
			return l.search
		}
		return l.generate

	default:
		return nil
	}
}

// merge applies an action result to the state record. Zero-valued fields
// are no-ops; only the Loop performs these transitions.
func (l *Loop) merge(s *State, result *ActionResult) {
	if result == nil {
		return
	}

	if result.Analysis != "" {
		s.SetAnalysis(result.Analysis)
	}

	if len(result.Tasks) > 0 {
		s.AddTasks(result.Tasks...)
	}

	if result.GeneratedOutput != "" {
		s.SetGeneratedOutput(result.GeneratedOutput)
		for _, t := range s.Tasks() {
			if t.Status == TaskPending || t.Status == TaskInProgress {
				if err := s.SetTaskStatus(t.ID, TaskCompleted); err != nil {
					l.logger.Warn("task completion skipped", "task", t.ID, "error", err)
				}
			}
		}
	}

	if result.SearchPerformed {
		s.ctx.SearchPerformed = true
		s.ctx.Searches = append(s.ctx.Searches, result.Searches...)
		for u, p := range result.Pages {
			s.ctx.Pages[u] = p
		}
		s.ctx.Summary.TotalQueries += result.Summary.TotalQueries
		s.ctx.Summary.SuccessfulQueries += result.Summary.SuccessfulQueries
		s.ctx.Summary.FailedQueries += result.Summary.FailedQueries
		s.ctx.Summary.TotalResults += result.Summary.TotalResults
		s.ctx.Summary.PagesCrawled += result.Summary.PagesCrawled
	}
}
