package engine

import (
	"github.com/google/uuid"

	"github.com/kwerner/anvil"
)

// Phase is the coarse milestone marker derived from the state record.
// It is a hint for action selection, not a strict FSM guard.
type Phase string

const (
	PhaseStart     Phase = "start"
	PhaseAnalyzed  Phase = "analyzed"
	PhasePlanned   Phase = "planned"
	PhaseCompleted Phase = "completed"
)

// SearchRecord is one executed search query with its results, error-marker
// entries included.
type SearchRecord struct {
	Query   string
	Results []anvil.SearchResult
}

// SearchSummary accumulates counters across every search pass of a run.
type SearchSummary struct {
	TotalQueries      int
	SuccessfulQueries int
	FailedQueries     int
	TotalResults      int
	PagesCrawled      int
}

// Context is the side-channel written by actions and merged by the Loop.
// Every field the core itself reads or writes is typed; Extra carries
// action-private keys with last-write-wins semantics.
type Context struct {
	// Error holds the message of a fatal action failure. Setting it ends
	// the run.
	Error string

	// Searches is the accumulated search log across all search passes.
	Searches []SearchRecord

	// Pages maps crawled URLs to their fetched pages.
	Pages map[string]anvil.Page

	// SearchPerformed reports whether any search pass produced results.
	SearchPerformed bool

	// SearchPhases records the phases at which a search pass ran, whether
	// or not it produced queries. Guards against re-running search in the
	// same phase.
	SearchPhases []Phase

	// Summary aggregates search and crawl counters.
	Summary SearchSummary

	// Extra holds action-private keys.
	Extra map[string]any
}

// SearchedAt reports whether a search pass already ran at the given phase.
func (c Context) SearchedAt(p Phase) bool {
	for _, ph := range c.SearchPhases {
		if ph == p {
			return true
		}
	}
	return false
}

// State is the shared record for one run. It is owned exclusively by the
// Loop and mutated only through its methods; actions read it through the
// accessors and return results for the Loop to merge.
type State struct {
	request   string
	tasks     []Task
	analysis  string
	generated string
	ctx       Context
	done      bool
}

// NewState creates a state record for a new run.
func NewState(request string) *State {
	return &State{
		request: request,
		ctx: Context{
			Pages: make(map[string]anvil.Page),
			Extra: make(map[string]any),
		},
	}
}

// Request returns the immutable original input text.
func (s *State) Request() string {
	return s.request
}

// Analysis returns the analysis text, or "" before the analyze action ran.
func (s *State) Analysis() string {
	return s.analysis
}

// GeneratedOutput returns the generated output text. Its presence is the
// primary completion signal.
func (s *State) GeneratedOutput() string {
	return s.generated
}

// Done reports whether the run has terminated.
func (s *State) Done() bool {
	return s.done
}

// Tasks returns a copy of the task list in insertion order.
func (s *State) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// PendingTasks returns the tasks with status pending, preserving insertion
// order.
func (s *State) PendingTasks() []Task {
	var out []Task
	for _, t := range s.tasks {
		if t.Status == TaskPending {
			out = append(out, t)
		}
	}
	return out
}

// Context returns a snapshot of the side-channel context. The contained
// slices and maps are shared; callers must treat them as read-only.
func (s *State) Context() Context {
	return s.ctx
}

// Phase derives the coarse milestone from the record. It is a pure function
// of the current field values, never stored.
func (s *State) Phase() Phase {
	switch {
	case s.done || s.generated != "":
		return PhaseCompleted
	case len(s.tasks) > 0:
		return PhasePlanned
	case s.analysis != "":
		return PhaseAnalyzed
	default:
		return PhaseStart
	}
}

// SetAnalysis records the analysis text. The first write wins; the analyze
// action runs at most once per run.
func (s *State) SetAnalysis(text string) {
	if s.analysis == "" {
		s.analysis = text
	}
}

// SetGeneratedOutput records the generated output. The first write wins.
func (s *State) SetGeneratedOutput(text string) {
	if s.generated == "" {
		s.generated = text
	}
}

// AddTasks appends drafts as pending tasks with freshly assigned unique ids
// and returns the created tasks. A draft without a priority defaults to
// medium.
func (s *State) AddTasks(drafts ...TaskDraft) []Task {
	added := make([]Task, 0, len(drafts))
	for _, d := range drafts {
		priority := d.Priority
		if priority == "" {
			priority = PriorityMedium
		}
		task := Task{
			ID:       uuid.NewString()[:8],
			Content:  d.Content,
			Status:   TaskPending,
			Priority: priority,
			Metadata: d.Metadata,
		}
		s.tasks = append(s.tasks, task)
		added = append(added, task)
	}
	return added
}

// SetTaskStatus moves a task to a new status. Backward transitions are
// rejected with ErrInvalidTransition; an unknown id yields ErrUnknownTask.
func (s *State) SetTaskStatus(id string, status TaskStatus) error {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if statusRank[status] < statusRank[s.tasks[i].Status] {
			return &ErrInvalidTransition{ID: id, From: s.tasks[i].Status, To: status}
		}
		s.tasks[i].Status = status
		return nil
	}
	return &ErrUnknownTask{ID: id}
}

// MarkDone sets the monotonic done flag. It is never reset.
func (s *State) MarkDone() {
	s.done = true
}

// markSearched records that a search pass ran at the given phase.
func (s *State) markSearched(phase Phase) {
	if !s.ctx.SearchedAt(phase) {
		s.ctx.SearchPhases = append(s.ctx.SearchPhases, phase)
	}
}
