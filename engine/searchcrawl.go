package engine

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kwerner/anvil"
	"github.com/kwerner/anvil/crawl"
)

const (
	// DefaultSearchResults is how many results each query requests.
	DefaultSearchResults = 3

	// DefaultMaxCrawl caps the URLs queued for crawling per pass.
	DefaultMaxCrawl = 3

	maxQueriesPerPass = 3
	maxErrorQueryLen  = 80
)

// SearchCrawlAction gathers web context for the run: it derives queries from
// the current state, searches, filters the results to well-formed URLs and
// crawls them through the bounded concurrent fetch helper.
//
// Failures are isolated per query and per URL. A failed query becomes an
// error-marker result in the record; a failed fetch becomes a Page with
// Error set. Neither aborts the pass.
type SearchCrawlAction struct {
	searcher anvil.Searcher
	fetcher  anvil.Fetcher
	logger   *slog.Logger

	maxResults  int
	maxCrawl    int
	concurrency int

	// history accumulates every query record across executions.
	history []SearchRecord
}

// SearchCrawlOption configures a SearchCrawlAction.
type SearchCrawlOption func(*SearchCrawlAction)

// WithMaxCrawl caps how many URLs are crawled per pass. Default is 3.
func WithMaxCrawl(n int) SearchCrawlOption {
	return func(a *SearchCrawlAction) {
		a.maxCrawl = n
	}
}

// WithSearchResults sets how many results each query requests. Default is 3.
func WithSearchResults(n int) SearchCrawlOption {
	return func(a *SearchCrawlAction) {
		a.maxResults = n
	}
}

// WithCrawlConcurrency sets the fetch ceiling. Default is
// crawl.DefaultConcurrency.
func WithCrawlConcurrency(n int) SearchCrawlOption {
	return func(a *SearchCrawlAction) {
		a.concurrency = n
	}
}

// WithSearchLogger sets the logger for per-query failures.
func WithSearchLogger(l *slog.Logger) SearchCrawlOption {
	return func(a *SearchCrawlAction) {
		a.logger = l
	}
}

// NewSearchCrawlAction creates the search action. A nil fetcher disables
// crawling; search results are still collected.
func NewSearchCrawlAction(searcher anvil.Searcher, fetcher anvil.Fetcher, opts ...SearchCrawlOption) *SearchCrawlAction {
	a := &SearchCrawlAction{
		searcher:    searcher,
		fetcher:     fetcher,
		logger:      slog.Default(),
		maxResults:  DefaultSearchResults,
		maxCrawl:    DefaultMaxCrawl,
		concurrency: crawl.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Action.
func (a *SearchCrawlAction) Name() string { return "search_and_crawl" }

// CanExecute reports whether a searcher is configured.
func (a *SearchCrawlAction) CanExecute(s *State) bool {
	return a.searcher != nil
}

// History returns every query record accumulated across executions.
func (a *SearchCrawlAction) History() []SearchRecord {
	out := make([]SearchRecord, len(a.history))
	copy(out, a.history)
	return out
}

// Execute produces {searches, pages, search_performed, crawl_performed,
// summary}.
func (a *SearchCrawlAction) Execute(ctx context.Context, s *State) (*ActionResult, error) {
	queries := a.buildQueries(s)
	if len(queries) == 0 {
		return &ActionResult{}, nil
	}

	result := &ActionResult{
		SearchPerformed: true,
		Summary:         SearchSummary{TotalQueries: len(queries)},
	}

	var candidates []string
	for _, query := range queries {
		record := a.runQuery(ctx, query)
		result.Searches = append(result.Searches, record)
		a.history = append(a.history, record)

		valid := 0
		for _, r := range record.Results {
			if r.IsError() {
				continue
			}
			valid++
			if wellFormedURL(r.URL) {
				candidates = append(candidates, r.URL)
			}
		}
		result.Summary.TotalResults += valid
		if valid > 0 {
			result.Summary.SuccessfulQueries++
		} else {
			result.Summary.FailedQueries++
		}
	}

	urls := dedupe(candidates)
	if len(urls) > a.maxCrawl {
		urls = urls[:a.maxCrawl]
	}

	if a.fetcher != nil && len(urls) > 0 {
		result.Pages = crawl.FetchAll(ctx, a.fetcher, urls, a.concurrency)
		result.CrawlPerformed = true
		for _, p := range result.Pages {
			if p.Error == "" {
				result.Summary.PagesCrawled++
			}
		}
	}

	return result, nil
}

// runQuery executes one search. A searcher error is converted into an
// error-marker result rather than propagated.
func (a *SearchCrawlAction) runQuery(ctx context.Context, query string) SearchRecord {
	results, err := a.searcher.Search(ctx, query, a.maxResults)
	if err != nil {
		a.logger.Warn("search query failed", "query", query, "error", err)
		return SearchRecord{
			Query: query,
			Results: []anvil.SearchResult{{
				Title:   "Search failed",
				Snippet: err.Error(),
				Source:  anvil.SourceError,
			}},
		}
	}
	return SearchRecord{Query: query, Results: results}
}

// buildQueries derives the search queries from the current state. The
// derivation is deterministic: general queries before analysis, keyword
// queries for the first two pending tasks after planning, one query for a
// recorded error. Duplicates are dropped preserving first-seen order and
// the total is capped.
func (a *SearchCrawlAction) buildQueries(s *State) []string {
	var queries []string
	request := s.Request()

	if s.Analysis() == "" {
		queries = append(queries,
			"how to implement "+request+" example",
			"best practices "+request,
		)
	}

	if s.Analysis() != "" && len(s.Tasks()) > 0 {
		pending := s.PendingTasks()
		if len(pending) > 2 {
			pending = pending[:2]
		}
		for _, task := range pending {
			content := strings.ToLower(task.Content)
			switch {
			case strings.Contains(content, "function") || strings.Contains(content, "class"):
				queries = append(queries, task.Content+" example implementation")
			case strings.Contains(content, "api"):
				queries = append(queries, "how to create "+task.Content)
			case strings.Contains(content, "database"):
				queries = append(queries, task.Content+" tutorial")
			}
		}
	}

	if errText := s.Context().Error; errText != "" {
		queries = append(queries, truncate(errText, maxErrorQueryLen)+" solution")
	}

	queries = dedupe(queries)
	if len(queries) > maxQueriesPerPass {
		queries = queries[:maxQueriesPerPass]
	}
	return queries
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func wellFormedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
