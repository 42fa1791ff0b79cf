// Package openai adapts the OpenAI SDK to the anvil.Reasoner interface.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kwerner/anvil"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.ChatModelGPT4o

// Client wraps the OpenAI SDK to implement anvil.Reasoner.
type Client struct {
	client *openai.Client
	model  string
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client: &client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []anvil.Message, opts ...anvil.Option) (*anvil.Response, error) {
	options := anvil.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	converted := convertMessages(messages, options.System)
	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: converted,
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	return &anvil.Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: anvil.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ToolCalls: extractToolCalls(resp.Choices[0].Message),
	}, nil
}

var _ anvil.Reasoner = (*Client)(nil)
