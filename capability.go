package anvil

import "context"

// Reasoner is the reasoning-engine capability consumed by the orchestration
// core. Implementations send a conversation transcript (optionally with tool
// definitions via WithTools) and return either a final answer or a set of
// tool invocation requests in Response.ToolCalls.
type Reasoner interface {
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}

// SourceError marks a SearchResult produced in place of a failed query.
// Failed queries are reported inline rather than raised, so one bad query
// cannot abort a batch.
const SourceError = "error"

// SearchResult represents a single ranked search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// IsError reports whether the result is a failed-query sentinel.
func (r SearchResult) IsError() bool { return r.Source == SourceError }

// Searcher is the web-search capability. Implementations return up to
// maxResults ranked results for the query. A failed query may be reported
// either as an error or as a single SourceError sentinel result.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Page represents a fetched web page.
type Page struct {
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	Text          string `json:"text,omitempty"`
	StatusCode    int    `json:"statusCode"`
	ContentLength int    `json:"contentLength"`
	// Error carries a fetch or extraction failure. A page with a non-empty
	// Error is excluded from valid-result counts but kept in the crawl log.
	Error string `json:"error,omitempty"`
}

// Fetcher is the page-fetch capability consumed by the crawl helpers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// ExecResult represents the outcome of a sandboxed code execution.
type ExecResult struct {
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	// TimedOut is set when the wall-clock bound force-terminated the run.
	TimedOut bool `json:"timedOut,omitempty"`
}

// Runner is the sandboxed code-execution capability. Run executes source in
// the given language within a bounded wall-clock time and reports stdout,
// stderr, and the exit code. Unsupported language tags fail fast.
type Runner interface {
	Run(ctx context.Context, language, source string) (ExecResult, error)
}
