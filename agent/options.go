package agent

import (
	"time"

	"github.com/kwerner/anvil"
	"github.com/kwerner/anvil/retry"
)

// DefaultMaxTurns is the reasoner-call budget when none is configured.
const DefaultMaxTurns = 5

// Options contains configuration for a run.
type Options struct {
	// MaxTurns limits the number of reasoner calls.
	// A non-positive value falls back to DefaultMaxTurns.
	MaxTurns int

	// HandlerTimeout bounds each individual tool execution.
	// A value of 0 means no per-handler timeout. Default is 30 seconds.
	HandlerTimeout time.Duration

	// ParallelToolCalls enables concurrent execution when a turn requests
	// more than one tool call. Default is true.
	ParallelToolCalls bool

	// Retry governs retries of transient reasoner failures.
	Retry retry.Config

	// ChatOptions are passed through to every reasoner call.
	ChatOptions []anvil.Option
}

// Option is a functional option for configuring a run.
type Option func(*Options)

// WithMaxTurns sets the reasoner-call budget. Default is 5.
func WithMaxTurns(n int) Option {
	return func(o *Options) {
		o.MaxTurns = n
	}
}

// WithHandlerTimeout bounds each individual tool execution.
// Default is 30 seconds. Set to 0 for no per-handler timeout.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithParallelToolCalls enables or disables concurrent tool execution.
// Default is true.
func WithParallelToolCalls(enabled bool) Option {
	return func(o *Options) {
		o.ParallelToolCalls = enabled
	}
}

// WithRetry overrides the retry policy for reasoner calls.
func WithRetry(cfg retry.Config) Option {
	return func(o *Options) {
		o.Retry = cfg
	}
}

// WithChatOptions passes options through to every reasoner call.
func WithChatOptions(opts ...anvil.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// ApplyOptions applies functional options to an Options struct with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxTurns:          DefaultMaxTurns,
		HandlerTimeout:    30 * time.Second,
		ParallelToolCalls: true,
		Retry:             retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = DefaultMaxTurns
	}
	return o
}
