package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwerner/anvil"
)

// stubSearcher returns canned results per query and can fail selected
// queries.
type stubSearcher struct {
	mu      sync.Mutex
	queries []string
	failOn  string
	results []anvil.SearchResult
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]anvil.SearchResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if s.failOn != "" && strings.Contains(query, s.failOn) {
		return nil, errors.New("backend unavailable")
	}
	if s.results != nil {
		return s.results, nil
	}
	return []anvil.SearchResult{
		{Title: "Result for " + query, URL: "https://example.com/" + fmt.Sprint(len(s.queries)), Snippet: "snippet", Source: "stub"},
	}, nil
}

// stubFetcher records fetched URLs and succeeds.
type stubFetcher struct {
	mu      sync.Mutex
	fetched []string
}

func (f *stubFetcher) Fetch(ctx context.Context, pageURL string) (anvil.Page, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, pageURL)
	f.mu.Unlock()
	return anvil.Page{URL: pageURL, Title: "page", Text: "text", StatusCode: 200}, nil
}

func TestSearchCrawlQueryGeneration(t *testing.T) {
	a := NewSearchCrawlAction(&stubSearcher{}, nil)

	t.Run("no analysis yields two general queries", func(t *testing.T) {
		s := NewState("a json parser")
		queries := a.buildQueries(s)
		require.Len(t, queries, 2)
		assert.Equal(t, "how to implement a json parser example", queries[0])
		assert.Equal(t, "best practices a json parser", queries[1])
	})

	t.Run("pending task keywords drive queries", func(t *testing.T) {
		s := NewState("x")
		s.SetAnalysis("analysis")
		s.AddTasks(
			TaskDraft{Content: "write a function to sort"},
			TaskDraft{Content: "create the REST api"},
			TaskDraft{Content: "setup the database schema"},
		)

		queries := a.buildQueries(s)
		// Only the first two pending tasks are considered.
		require.Len(t, queries, 2)
		assert.Equal(t, "write a function to sort example implementation", queries[0])
		assert.Equal(t, "how to create create the REST api", queries[1])
	})

	t.Run("context error adds a query", func(t *testing.T) {
		s := NewState("x")
		s.SetAnalysis("analysis")
		s.ctx.Error = "undefined variable foo"

		queries := a.buildQueries(s)
		require.Len(t, queries, 1)
		assert.Equal(t, "undefined variable foo solution", queries[0])
	})

	t.Run("queries are deduplicated and capped", func(t *testing.T) {
		s := NewState("x")
		// No analysis: two general queries. Error adds a third; a long
		// error is truncated.
		s.ctx.Error = strings.Repeat("e", 200)

		queries := a.buildQueries(s)
		require.Len(t, queries, 3)
		assert.LessOrEqual(t, len(queries[2]), maxErrorQueryLen+len("... solution"))
	})

	t.Run("no queries when nothing to search for", func(t *testing.T) {
		s := NewState("x")
		s.SetAnalysis("analysis")
		assert.Empty(t, a.buildQueries(s))
	})
}

func TestSearchCrawlExecuteIsolatesQueryFailure(t *testing.T) {
	searcher := &stubSearcher{failOn: "best practices"}
	a := NewSearchCrawlAction(searcher, nil, WithSearchLogger(discardLogger()))

	s := NewState("a json parser")
	res, err := a.Execute(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, res.SearchPerformed)
	require.Len(t, res.Searches, 2)

	// The failed query is an error-marker entry, the sibling succeeded.
	var failed, ok int
	for _, rec := range res.Searches {
		for _, r := range rec.Results {
			if r.IsError() {
				failed++
			} else {
				ok++
			}
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, res.Summary.SuccessfulQueries)
	assert.Equal(t, 1, res.Summary.FailedQueries)
}

func TestSearchCrawlExecuteCrawlsValidURLs(t *testing.T) {
	searcher := &stubSearcher{results: []anvil.SearchResult{
		{Title: "a", URL: "https://example.com/a", Source: "stub"},
		{Title: "b", URL: "https://example.com/b", Source: "stub"},
		{Title: "dup", URL: "https://example.com/a", Source: "stub"},
		{Title: "bad", URL: "not a url", Source: "stub"},
		{Title: "err", URL: "https://example.com/ignored", Snippet: "failed", Source: anvil.SourceError},
	}}
	fetcher := &stubFetcher{}
	a := NewSearchCrawlAction(searcher, fetcher, WithSearchLogger(discardLogger()))

	s := NewState("a json parser")
	res, err := a.Execute(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, res.CrawlPerformed)
	// Both queries return the same fixture; URLs are deduplicated across
	// queries and error-marker results are excluded.
	assert.Len(t, res.Pages, 2)
	assert.Contains(t, res.Pages, "https://example.com/a")
	assert.Contains(t, res.Pages, "https://example.com/b")
	assert.Equal(t, 2, res.Summary.PagesCrawled)
}

func TestSearchCrawlExecuteCapsCrawledURLs(t *testing.T) {
	var results []anvil.SearchResult
	for i := 0; i < 6; i++ {
		results = append(results, anvil.SearchResult{
			Title:  fmt.Sprintf("r%d", i),
			URL:    fmt.Sprintf("https://example.com/%d", i),
			Source: "stub",
		})
	}
	fetcher := &stubFetcher{}
	a := NewSearchCrawlAction(&stubSearcher{results: results}, fetcher,
		WithSearchLogger(discardLogger()), WithMaxCrawl(2))

	s := NewState("a json parser")
	res, err := a.Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)
}

func TestSearchCrawlHistoryAccumulates(t *testing.T) {
	a := NewSearchCrawlAction(&stubSearcher{}, nil, WithSearchLogger(discardLogger()))

	s1 := NewState("first request")
	_, err := a.Execute(context.Background(), s1)
	require.NoError(t, err)

	s2 := NewState("second request")
	_, err = a.Execute(context.Background(), s2)
	require.NoError(t, err)

	assert.Len(t, a.History(), 4, "two queries per pass, accumulated")
}

func TestSearchCrawlNoQueriesNoSearch(t *testing.T) {
	searcher := &stubSearcher{}
	a := NewSearchCrawlAction(searcher, nil)

	s := NewState("x")
	s.SetAnalysis("analysis")

	res, err := a.Execute(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.SearchPerformed)
	assert.Empty(t, searcher.queries)
}
