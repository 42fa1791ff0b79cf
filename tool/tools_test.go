package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwerner/anvil"
)

type stubSearcher struct {
	results []anvil.SearchResult
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]anvil.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) > maxResults {
		return s.results[:maxResults], nil
	}
	return s.results, nil
}

type stubFetcher struct {
	page anvil.Page
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (anvil.Page, error) {
	if f.err != nil {
		return anvil.Page{}, f.err
	}
	page := f.page
	page.URL = url
	return page, nil
}

type stubRunner struct {
	result anvil.ExecResult
	err    error
}

func (r *stubRunner) Run(ctx context.Context, lang, source string) (anvil.ExecResult, error) {
	return r.result, r.err
}

func execute(t *testing.T, reg Registration, args string) (anvil.ToolResult, error) {
	t.Helper()
	r := NewRegistry().Add(reg)
	return r.Execute(context.Background(), anvil.ToolCall{
		ID:        "call_1",
		Name:      reg.Tool.Name,
		Arguments: json.RawMessage(args),
	})
}

func TestWebSearchTool(t *testing.T) {
	t.Run("returns results as JSON", func(t *testing.T) {
		searcher := &stubSearcher{results: []anvil.SearchResult{
			{Title: "Go by Example", URL: "https://gobyexample.com", Snippet: "examples", Source: "brave"},
		}}

		result, err := execute(t, NewWebSearchTool(searcher), `{"query":"golang examples"}`)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var out struct {
			Success bool                 `json:"success"`
			Query   string               `json:"query"`
			Results []anvil.SearchResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))

		assert.True(t, out.Success)
		assert.Equal(t, "golang examples", out.Query)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "Go by Example", out.Results[0].Title)
	})

	t.Run("filters failed-query sentinels", func(t *testing.T) {
		searcher := &stubSearcher{results: []anvil.SearchResult{
			{Title: "good", URL: "https://example.com", Source: "brave"},
			{Title: "Search failed", Snippet: "timeout", Source: anvil.SourceError},
		}}

		result, err := execute(t, NewWebSearchTool(searcher), `{"query":"q"}`)
		require.NoError(t, err)

		var out struct {
			Results []anvil.SearchResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))

		require.Len(t, out.Results, 1)
		assert.Equal(t, "good", out.Results[0].Title)
	})

	t.Run("search error is isolated as error result", func(t *testing.T) {
		searcher := &stubSearcher{err: assert.AnError}

		result, err := execute(t, NewWebSearchTool(searcher), `{"query":"q"}`)
		require.NoError(t, err)

		assert.True(t, result.IsError)
	})
}

func TestWebCrawlTool(t *testing.T) {
	t.Run("returns page content", func(t *testing.T) {
		fetcher := &stubFetcher{page: anvil.Page{
			Title:      "Docs",
			Text:       "page body",
			StatusCode: 200,
		}}

		result, err := execute(t, NewWebCrawlTool(fetcher), `{"url":"https://example.com","extract_text":true}`)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var out struct {
			Success    bool   `json:"success"`
			URL        string `json:"url"`
			Title      string `json:"title"`
			Text       string `json:"text"`
			StatusCode int    `json:"status_code"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))

		assert.True(t, out.Success)
		assert.Equal(t, "https://example.com", out.URL)
		assert.Equal(t, "Docs", out.Title)
		assert.Equal(t, "page body", out.Text)
		assert.Equal(t, 200, out.StatusCode)
	})

	t.Run("omits text unless requested", func(t *testing.T) {
		fetcher := &stubFetcher{page: anvil.Page{Text: "body", StatusCode: 200}}

		result, err := execute(t, NewWebCrawlTool(fetcher), `{"url":"https://example.com"}`)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))
		assert.NotContains(t, out, "text")
	})

	t.Run("truncates long text", func(t *testing.T) {
		fetcher := &stubFetcher{page: anvil.Page{
			Text:       strings.Repeat("a", MaxCrawlTextLength+100),
			StatusCode: 200,
		}}

		result, err := execute(t, NewWebCrawlTool(fetcher), `{"url":"https://example.com","extract_text":true}`)
		require.NoError(t, err)

		var out struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))
		assert.Len(t, out.Text, MaxCrawlTextLength)
	})

	t.Run("page error travels in the payload", func(t *testing.T) {
		fetcher := &stubFetcher{page: anvil.Page{
			StatusCode: 404,
			Error:      "HTTP 404",
		}}

		result, err := execute(t, NewWebCrawlTool(fetcher), `{"url":"https://example.com/missing"}`)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var out struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))

		assert.False(t, out.Success)
		assert.Equal(t, "HTTP 404", out.Error)
	})
}

func TestCodeRunnerTool(t *testing.T) {
	t.Run("returns structured execution result", func(t *testing.T) {
		runner := &stubRunner{result: anvil.ExecResult{
			Success:  true,
			Stdout:   "42\n",
			ExitCode: 0,
		}}

		result, err := execute(t, NewCodeRunnerTool(runner), `{"language":"python","code":"print(42)"}`)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var out anvil.ExecResult
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))

		assert.True(t, out.Success)
		assert.Equal(t, "42\n", out.Stdout)
		assert.Equal(t, 0, out.ExitCode)
	})

	t.Run("failed run is still structured output", func(t *testing.T) {
		runner := &stubRunner{result: anvil.ExecResult{
			Success:  false,
			Stderr:   "SyntaxError",
			ExitCode: 1,
		}}

		result, err := execute(t, NewCodeRunnerTool(runner), `{"language":"python","code":"prin t(42)"}`)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var out anvil.ExecResult
		require.NoError(t, json.Unmarshal([]byte(result.Content), &out))

		assert.False(t, out.Success)
		assert.Equal(t, "SyntaxError", out.Stderr)
		assert.Equal(t, 1, out.ExitCode)
	})

	t.Run("runner error is isolated as error result", func(t *testing.T) {
		runner := &stubRunner{err: assert.AnError}

		result, err := execute(t, NewCodeRunnerTool(runner), `{"language":"python","code":"x"}`)
		require.NoError(t, err)

		assert.True(t, result.IsError)
	})
}
