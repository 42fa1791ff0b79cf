package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kwerner/anvil"
	"github.com/kwerner/anvil/config"
	"github.com/kwerner/anvil/crawl"
	"github.com/kwerner/anvil/engine"
	"github.com/kwerner/anvil/provider/anthropic"
	"github.com/kwerner/anvil/provider/google"
	"github.com/kwerner/anvil/provider/openai"
	"github.com/kwerner/anvil/websearch"
)

func runCMD() *cobra.Command {
	var (
		provider string
		model    string
		search   bool
		maxTurns int
		maxCrawl int
	)

	cmd := &cobra.Command{
		Use:   "run \"request\"",
		Short: "Run the orchestration loop for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if model != "" {
				cfg.Model = model
			}
			if cmd.Flags().Changed("search") {
				cfg.Search.Enabled = search
			}
			if cmd.Flags().Changed("max-turns") {
				cfg.MaxTurns = maxTurns
			}
			if cmd.Flags().Changed("max-crawl") {
				cfg.Search.MaxCrawl = maxCrawl
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cfg.LogLevel)

			reasoner, err := buildReasoner(ctx, cfg)
			if err != nil {
				return err
			}

			opts := []engine.LoopOption{engine.WithLoopLogger(logger)}
			if cmd.Flags().Changed("max-turns") {
				opts = append(opts, engine.WithMaxIterations(cfg.MaxTurns))
			}
			if cfg.Search.Enabled {
				searcher, err := websearch.New(websearch.Provider(cfg.Search.Provider), cfg.Search.APIKey)
				if err != nil {
					return err
				}
				opts = append(opts, engine.WithSearch(searcher, crawl.NewFetcher(),
					engine.WithSearchResults(cfg.Search.MaxResults),
					engine.WithMaxCrawl(cfg.Search.MaxCrawl),
					engine.WithCrawlConcurrency(cfg.Search.Concurrency),
					engine.WithSearchLogger(logger),
				))
			}

			loop := engine.NewLoop(reasoner, opts...)
			state, err := loop.Run(ctx, args[0])
			if state != nil {
				printState(cmd.OutOrStdout(), state)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "reasoner provider (anthropic, openai, google)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().BoolVar(&search, "search", false, "enable web search and crawl passes")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "max action dispatches for the run")
	cmd.Flags().IntVar(&maxCrawl, "max-crawl", 0, "max pages crawled per search pass")

	return cmd
}

func buildReasoner(ctx context.Context, cfg *config.Config) (anvil.Reasoner, error) {
	key := cfg.ReasonerAPIKey()

	switch cfg.Provider {
	case "anthropic":
		var opts []anthropic.ClientOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(key, opts...), nil
	case "openai":
		var opts []openai.ClientOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		return openai.New(key, opts...), nil
	case "google":
		var opts []google.ClientOption
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(cfg.Model))
		}
		return google.New(ctx, key, opts...)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func printState(w io.Writer, state *engine.State) {
	fmt.Fprintln(w, "Request:", state.Request())
	fmt.Fprintln(w)

	if tasks := state.Tasks(); len(tasks) > 0 {
		fmt.Fprintln(w, "Tasks:")
		for _, t := range tasks {
			fmt.Fprintf(w, "  [%s] %s\n", t.Status, t.Content)
		}
		fmt.Fprintln(w)
	}

	if analysis := state.Analysis(); analysis != "" {
		fmt.Fprintln(w, "Analysis:")
		fmt.Fprintln(w, analysis)
		fmt.Fprintln(w)
	}

	if output := state.GeneratedOutput(); output != "" {
		fmt.Fprintln(w, "Output:")
		fmt.Fprintln(w, output)
		fmt.Fprintln(w)
	}

	sctx := state.Context()
	if sctx.SearchPerformed {
		s := sctx.Summary
		fmt.Fprintf(w, "Search: %d queries (%d ok, %d failed), %d results, %d pages crawled\n",
			s.TotalQueries, s.SuccessfulQueries, s.FailedQueries, s.TotalResults, s.PagesCrawled)
	}
	if sctx.Error != "" {
		fmt.Fprintln(w, "Run ended with error:", sctx.Error)
	}
}
