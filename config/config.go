// Package config loads runtime configuration from file and environment.
//
// Settings come from an optional anvil.yaml plus ANVIL_* environment
// variables; provider credentials additionally fall back to their
// conventional variables (ANTHROPIC_API_KEY and friends). Validate reports
// missing credentials before a run starts instead of degrading silently.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all settings for a run.
type Config struct {
	Provider string       `mapstructure:"provider"`
	Model    string       `mapstructure:"model"`
	MaxTurns int          `mapstructure:"max_turns"`
	LogLevel string       `mapstructure:"log_level"`
	Search   SearchConfig `mapstructure:"search"`
	APIKeys  APIKeys      `mapstructure:"api_keys"`
}

// SearchConfig controls the search-and-crawl passes.
type SearchConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	MaxResults  int    `mapstructure:"max_results"`
	MaxCrawl    int    `mapstructure:"max_crawl"`
	Concurrency int    `mapstructure:"concurrency"`
}

// APIKeys holds reasoner provider credentials.
type APIKeys struct {
	Anthropic string `mapstructure:"anthropic"`
	OpenAI    string `mapstructure:"openai"`
	Google    string `mapstructure:"google"`
}

// Load reads configuration from anvil.yaml (working directory or
// ~/.config/anvil) and the environment. A missing config file is fine;
// defaults and environment variables apply either way.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("anvil")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.config/anvil")
	}

	v.SetDefault("provider", "anthropic")
	v.SetDefault("max_turns", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("search.enabled", false)
	v.SetDefault("search.provider", "brave")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.max_crawl", 3)
	v.SetDefault("search.concurrency", 3)

	v.SetEnvPrefix("ANVIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.fillFromEnv()
	return &cfg, nil
}

// fillFromEnv fills credentials from their conventional variables when the
// config file and ANVIL_* variables left them empty.
func (c *Config) fillFromEnv() {
	if c.APIKeys.Anthropic == "" {
		c.APIKeys.Anthropic = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.APIKeys.OpenAI == "" {
		c.APIKeys.OpenAI = os.Getenv("OPENAI_API_KEY")
	}
	if c.APIKeys.Google == "" {
		c.APIKeys.Google = os.Getenv("GEMINI_API_KEY")
	}
	if c.Search.APIKey == "" {
		switch c.Search.Provider {
		case "brave":
			c.Search.APIKey = os.Getenv("BRAVE_API_KEY")
		case "serper":
			c.Search.APIKey = os.Getenv("SERPER_API_KEY")
		}
	}
}

// ReasonerAPIKey returns the credential for the selected reasoner provider.
func (c *Config) ReasonerAPIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.APIKeys.Anthropic
	case "openai":
		return c.APIKeys.OpenAI
	case "google":
		return c.APIKeys.Google
	default:
		return ""
	}
}

// Validate fails fast on configuration that would only surface mid-run: an
// unknown provider name or a selected backend without its credential.
func (c *Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "google":
	case "":
		return errors.New("config: provider is required")
	default:
		return fmt.Errorf("config: unknown provider: %s", c.Provider)
	}

	if c.ReasonerAPIKey() == "" {
		return fmt.Errorf("config: no API key configured for provider %s", c.Provider)
	}

	if c.MaxTurns <= 0 {
		return errors.New("config: max_turns must be positive")
	}

	if c.Search.Enabled {
		switch c.Search.Provider {
		case "brave", "serper":
		default:
			return fmt.Errorf("config: unknown search provider: %s", c.Search.Provider)
		}
		if c.Search.APIKey == "" {
			return fmt.Errorf("config: no API key configured for search provider %s", c.Search.Provider)
		}
	}

	return nil
}
