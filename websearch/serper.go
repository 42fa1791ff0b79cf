package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kwerner/anvil"
)

const serperBaseURL = "https://google.serper.dev/search"

// Serper queries the Serper API.
// https://serper.dev
type Serper struct {
	apiKey string
	cfg    *config
}

// NewSerper creates a Serper search backend.
func NewSerper(apiKey string, opts ...Option) *Serper {
	return &Serper{
		apiKey: apiKey,
		cfg:    applyOptions(serperBaseURL, opts),
	}
}

// Search returns up to maxResults organic results for the query.
func (s *Serper) Search(ctx context.Context, query string, maxResults int) ([]anvil.SearchResult, error) {
	payload, err := json.Marshal(map[string]any{"q": query, "num": maxResults})
	if err != nil {
		return nil, fmt.Errorf("websearch: serper encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("websearch: serper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.cfg.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: serper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("websearch: serper: HTTP %d", resp.StatusCode)
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("websearch: serper decode: %w", err)
	}

	var out []anvil.SearchResult
	for i, r := range raw.Organic {
		if i >= maxResults {
			break
		}
		out = append(out, anvil.SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Source:  string(ProviderSerper),
		})
	}
	return out, nil
}
