package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kwerner/anvil"
)

const braveBaseURL = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API.
// https://api.search.brave.com/app/documentation/web-search
type Brave struct {
	apiKey string
	cfg    *config
}

// NewBrave creates a Brave search backend.
func NewBrave(apiKey string, opts ...Option) *Brave {
	return &Brave{
		apiKey: apiKey,
		cfg:    applyOptions(braveBaseURL, opts),
	}
}

// Search returns up to maxResults web results for the query.
func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]anvil.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", b.cfg.baseURL, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websearch: brave request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.cfg.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: brave: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: brave: HTTP %d", resp.StatusCode)
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("websearch: brave decode: %w", err)
	}

	var out []anvil.SearchResult
	for i, r := range raw.Web.Results {
		if i >= maxResults {
			break
		}
		out = append(out, anvil.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
			Source:  string(ProviderBrave),
		})
	}
	return out, nil
}
