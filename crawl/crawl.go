// Package crawl fetches web pages and extracts readable text.
//
// The HTTP fetcher implements [anvil.Fetcher]; FetchAll fans a batch of URLs
// out over a bounded number of concurrent fetches and collects one result per
// URL without letting a single failure abort the batch.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/kwerner/anvil"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 2 << 20

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// HTTPFetcher fetches pages over plain HTTP and extracts article text with
// go-readability. It implements [anvil.Fetcher].
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// NewFetcher creates an HTTPFetcher with browser-like defaults.
func NewFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves a page and extracts its title and readable text.
//
// Fetch-level failures (network errors, non-2xx statuses, extraction
// failures) are reported in Page.Error rather than as a returned error, so a
// failed page stays in the crawl log without aborting sibling fetches.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (anvil.Page, error) {
	page := anvil.Page{URL: pageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		page.Error = fmt.Sprintf("invalid request: %v", err)
		return page, nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		page.Error = fmt.Sprintf("fetch failed: %v", err)
		return page, nil
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		page.Error = fmt.Sprintf("read body: %v", err)
		return page, nil
	}
	page.ContentLength = len(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		page.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return page, nil
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		page.Error = fmt.Sprintf("parse url: %v", err)
		return page, nil
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		page.Error = fmt.Sprintf("extract text: %v", err)
		return page, nil
	}

	page.Title = article.Title
	page.Text = strings.TrimSpace(article.TextContent)
	return page, nil
}
