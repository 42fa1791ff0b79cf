package tool

import (
	"context"
	"encoding/json"

	"github.com/kwerner/anvil"
)

// webCrawlArgs defines arguments for the web_crawl tool.
type webCrawlArgs struct {
	URL         string `json:"url" desc:"URL of the page to fetch" required:"true"`
	ExtractText bool   `json:"extract_text" desc:"Whether to extract plain text content"`
}

// webCrawlOutput is the JSON payload returned to the model.
type webCrawlOutput struct {
	Success    bool   `json:"success"`
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text,omitempty"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
}

// MaxCrawlTextLength caps the extracted text returned to the model.
const MaxCrawlTextLength = 5000

// NewWebCrawlTool creates the web_crawl tool backed by the given Fetcher.
// A fetch failure is reported inside the payload rather than as a handler
// error: the page-level error string travels back to the model, which can
// decide to try a different URL.
func NewWebCrawlTool(fetcher anvil.Fetcher) Registration {
	return Func("web_crawl",
		"Fetch a web page and extract its text content. Useful for reading documentation pages in detail.",
		func(ctx context.Context, args webCrawlArgs) (string, error) {
			page, err := fetcher.Fetch(ctx, args.URL)
			if err != nil {
				return "", err
			}

			out := webCrawlOutput{
				URL:        page.URL,
				StatusCode: page.StatusCode,
			}
			if page.Error != "" {
				out.Error = page.Error
			} else {
				out.Success = true
				out.Title = page.Title
				if args.ExtractText {
					text := page.Text
					if len(text) > MaxCrawlTextLength {
						text = text[:MaxCrawlTextLength]
					}
					out.Text = text
				}
			}

			data, err := json.Marshal(out)
			if err != nil {
				return "", err
			}
			return string(data), nil
		})
}
