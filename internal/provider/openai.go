// Package provider: OpenAI-backed completion provider.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// chatService defines the minimal interface for chat completions, allowing
// tests to substitute a mock for the real OpenAI client.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the OpenAI provider.
type Opts struct {
	APIKey  string
	BaseURL string
	Model   string
	Name    string
}

// Option defines a configuration option for the OpenAI provider.
type Option func(*Opts)

// WithAPIKey sets the API key used to authenticate requests.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the API endpoint, for OpenAI-compatible backends.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithName overrides the provider name reported in logs.
func WithName(name string) Option {
	return func(o *Opts) { o.Name = name }
}

// OpenAI delegates completions to the OpenAI chat API, or to any
// OpenAI-compatible endpoint configured via WithBaseURL.
type OpenAI struct {
	name  string
	model string
	chat  chatService
}

// NewOpenAI creates an OpenAI provider from the given options. The API key
// is required.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	cli := openai.NewClient(reqOpts...)

	slog.Debug("OpenAI provider created", "name", cfg.Name, "model", cfg.Model, "base_url_set", cfg.BaseURL != "")
	return &OpenAI{name: cfg.Name, model: cfg.Model, chat: &cli.Chat.Completions}, nil
}

// Name identifies the provider.
func (p *OpenAI) Name() string {
	return p.name
}

// Generate builds the chat messages from the request and returns the first
// completion choice.
func (p *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: buildMessages(req),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	resp, err := p.chat.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// buildMessages creates the OpenAI message array: system prompt, prior
// turns oldest first, then the new user message.
func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(req.Turns)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, turn := range req.Turns {
		messages = append(messages, openai.UserMessage(turn.UserText))
		messages = append(messages, openai.AssistantMessage(turn.ResponseText))
	}
	messages = append(messages, openai.UserMessage(req.Message))
	return messages
}
