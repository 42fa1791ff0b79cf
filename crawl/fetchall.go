package crawl

import (
	"context"
	"sync"

	"github.com/kwerner/anvil"
)

// DefaultConcurrency is the fetch ceiling used when the caller passes a
// non-positive limit to FetchAll.
const DefaultConcurrency = 3

// FetchAll fetches every URL with at most limit fetches in flight at once and
// returns a map with exactly one Page per distinct input URL.
//
// The semaphore is a counting admission gate: it bounds concurrency but
// imposes no ordering between in-flight fetches. A per-fetch error is
// converted into a Page with Error set for that URL; it never aborts sibling
// fetches. FetchAll returns only after every fetch has settled.
func FetchAll(ctx context.Context, fetcher anvil.Fetcher, urls []string, limit int) map[string]anvil.Page {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make(map[string]anvil.Page, len(urls))
	seen := make(map[string]bool, len(urls))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)

	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true

		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			page, err := fetcher.Fetch(ctx, pageURL)
			if err != nil {
				page = anvil.Page{URL: pageURL, Error: err.Error()}
			}

			mu.Lock()
			results[pageURL] = page
			mu.Unlock()
		}(u)
	}

	wg.Wait()
	return results
}
