// Package sandbox executes model-supplied source code with a hard wall-clock
// bound and an ephemeral on-disk artifact.
//
// Each run writes the source to a temporary file scoped to the call, executes
// it with the language's interpreter, and removes the file on every exit path
// (success, non-zero exit, timeout, error). Unsupported language tags fail
// fast before any file is created.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kwerner/anvil"
)

// DefaultTimeout is the wall-clock bound applied to each execution.
const DefaultTimeout = 5 * time.Second

// ErrUnsupportedLanguage is returned for language tags the sandbox cannot run.
type ErrUnsupportedLanguage struct {
	Language string
}

// Error returns a formatted error message including the language tag.
func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("sandbox: unsupported language: %s", e.Language)
}

// language describes how to run source for one supported language.
type language struct {
	command string
	suffix  string
}

var languages = map[string]language{
	"python":     {command: "python3", suffix: ".py"},
	"javascript": {command: "node", suffix: ".js"},
}

// Runner executes code in a subprocess sandbox.
// It implements [anvil.Runner].
type Runner struct {
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides the per-execution wall-clock bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// New creates a Runner with the default 5 second timeout.
func New(opts ...Option) *Runner {
	r := &Runner{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run writes source to an ephemeral file and executes it.
//
// The returned ExecResult reports stdout, stderr, and the exit code. A run
// that exceeds the wall-clock bound is force-terminated and reported with
// TimedOut set; this is a result, not an error, so callers can surface it to
// the model. Run returns a non-nil error only for unsupported languages and
// for failures to stage the temporary file.
func (r *Runner) Run(ctx context.Context, lang, source string) (anvil.ExecResult, error) {
	spec, ok := languages[lang]
	if !ok {
		return anvil.ExecResult{}, &ErrUnsupportedLanguage{Language: lang}
	}

	f, err := os.CreateTemp("", "anvil-run-*"+spec.suffix)
	if err != nil {
		return anvil.ExecResult{}, fmt.Errorf("sandbox: create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(source); err != nil {
		f.Close()
		return anvil.ExecResult{}, fmt.Errorf("sandbox: write source: %w", err)
	}
	if err := f.Close(); err != nil {
		return anvil.ExecResult{}, fmt.Errorf("sandbox: close source file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, spec.command, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	result := anvil.ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Interpreter missing or failed to start.
		return result, fmt.Errorf("sandbox: run %s: %w", lang, runErr)
	}

	result.Success = true
	return result, nil
}

// Supported reports whether the sandbox can run the given language tag.
func Supported(lang string) bool {
	_, ok := languages[lang]
	return ok
}
