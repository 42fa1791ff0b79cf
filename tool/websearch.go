package tool

import (
	"context"
	"encoding/json"

	"github.com/kwerner/anvil"
)

// webSearchArgs defines arguments for the web_search tool.
type webSearchArgs struct {
	Query      string `json:"query" desc:"Search query string" required:"true"`
	MaxResults int    `json:"max_results" desc:"Maximum number of results to return"`
}

// webSearchOutput is the JSON payload returned to the model.
type webSearchOutput struct {
	Success bool                 `json:"success"`
	Query   string               `json:"query"`
	Results []anvil.SearchResult `json:"results"`
}

// DefaultSearchResults is the result count used when the model omits max_results.
const DefaultSearchResults = 5

// NewWebSearchTool creates the web_search tool backed by the given Searcher.
// Failed-query sentinel results are filtered out of the payload so the model
// only sees usable hits; a search error is surfaced as an error-flagged tool
// result by the registry.
func NewWebSearchTool(searcher anvil.Searcher) Registration {
	return Func("web_search",
		"Search the web for information. Useful for finding code examples, documentation, and best practices.",
		func(ctx context.Context, args webSearchArgs) (string, error) {
			max := args.MaxResults
			if max <= 0 {
				max = DefaultSearchResults
			}

			results, err := searcher.Search(ctx, args.Query, max)
			if err != nil {
				return "", err
			}

			out := webSearchOutput{
				Success: true,
				Query:   args.Query,
				Results: make([]anvil.SearchResult, 0, len(results)),
			}
			for _, r := range results {
				if r.IsError() {
					continue
				}
				out.Results = append(out.Results, r)
			}

			data, err := json.Marshal(out)
			if err != nil {
				return "", err
			}
			return string(data), nil
		})
}
