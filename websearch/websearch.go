// Package websearch provides web-search backends implementing [anvil.Searcher].
//
// Two hosted search APIs are supported: Brave and Serper. Both are thin HTTP
// adapters; ranking quality is whatever the backend returns. A missing API
// key is a configuration error reported at construction time, never a silent
// degradation at query time.
package websearch

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kwerner/anvil"
)

// Provider identifies a search backend.
type Provider string

const (
	ProviderBrave  Provider = "brave"
	ProviderSerper Provider = "serper"
)

// ErrUnsupportedProvider is returned for unknown provider names.
type ErrUnsupportedProvider struct {
	Provider string
}

// Error returns a formatted error message including the provider name.
func (e *ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("websearch: unsupported provider: %s", e.Provider)
}

// ErrMissingAPIKey is returned when a backend is selected without a credential.
type ErrMissingAPIKey struct {
	Provider string
}

// Error returns a formatted error message including the provider name.
func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("websearch: no API key configured for %s", e.Provider)
}

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 10 * time.Second

// config holds shared backend settings.
type config struct {
	client  *http.Client
	baseURL string
}

// Option configures a search backend.
type Option func(*config)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.client = c
	}
}

// WithBaseURL overrides the API endpoint. Intended for tests.
func WithBaseURL(u string) Option {
	return func(cfg *config) {
		cfg.baseURL = u
	}
}

func applyOptions(defaultBaseURL string, opts []Option) *config {
	cfg := &config{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// New creates a Searcher for the named provider.
// Construction fails fast on an unknown provider or a missing API key.
func New(provider Provider, apiKey string, opts ...Option) (anvil.Searcher, error) {
	if apiKey == "" {
		return nil, &ErrMissingAPIKey{Provider: string(provider)}
	}
	switch provider {
	case ProviderBrave:
		return NewBrave(apiKey, opts...), nil
	case ProviderSerper:
		return NewSerper(apiKey, opts...), nil
	default:
		return nil, &ErrUnsupportedProvider{Provider: string(provider)}
	}
}
