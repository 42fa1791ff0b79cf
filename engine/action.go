package engine

import (
	"context"
	"log/slog"

	"github.com/kwerner/anvil"
)

// Action is a named unit of orchestration work. Execute must not mutate the
// state record; it returns an ActionResult and the Loop alone applies state
// transitions. CanExecute is a final escape hatch checked right before
// dispatch.
type Action interface {
	Name() string
	CanExecute(s *State) bool
	Execute(ctx context.Context, s *State) (*ActionResult, error)
}

// ActionResult is the typed output of one action execution. The Loop merges
// only the fields it knows about; zero values merge as no-ops.
type ActionResult struct {
	// Analysis is the analysis text produced by the analyze action.
	Analysis string

	// Tasks are drafts produced by the plan action.
	Tasks []TaskDraft

	// GeneratedOutput is the output text produced by the generate action.
	GeneratedOutput string

	// Searches are the query records of one search pass.
	Searches []SearchRecord

	// Pages maps crawled URLs to fetched pages.
	Pages map[string]anvil.Page

	// SearchPerformed reports whether any query actually ran.
	SearchPerformed bool

	// CrawlPerformed reports whether any URL was fetched.
	CrawlPerformed bool

	// Summary holds the counters for this pass.
	Summary SearchSummary
}

// actionConfig holds settings shared by the reasoner-backed actions.
type actionConfig struct {
	logger   *slog.Logger
	chatOpts []anvil.Option
}

// ActionOption configures a reasoner-backed action.
type ActionOption func(*actionConfig)

// WithActionLogger sets the logger used to report degraded fallbacks.
// Defaults to slog.Default().
func WithActionLogger(l *slog.Logger) ActionOption {
	return func(c *actionConfig) {
		c.logger = l
	}
}

// WithActionChatOptions passes options through to every reasoner call the
// action makes.
func WithActionChatOptions(opts ...anvil.Option) ActionOption {
	return func(c *actionConfig) {
		c.chatOpts = append(c.chatOpts, opts...)
	}
}

func applyActionOptions(opts []ActionOption) *actionConfig {
	cfg := &actionConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
