// Package provider: YandexGPT completion provider.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultYandexEndpoint is the YandexGPT foundation-models completion URL.
const DefaultYandexEndpoint = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

// yandexMessage is one message in the YandexGPT wire format.
type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// yandexCompletionOptions mirrors the completionOptions request object.
type yandexCompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"maxTokens"`
}

// yandexRequest is the completion request body.
type yandexRequest struct {
	ModelURI          string                  `json:"modelUri"`
	CompletionOptions yandexCompletionOptions `json:"completionOptions"`
	Messages          []yandexMessage         `json:"messages"`
}

// yandexResponse is the subset of the completion response the provider reads.
type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
		} `json:"alternatives"`
	} `json:"result"`
}

// Yandex delegates completions to the YandexGPT API. Unlike DeepSeek, the
// wire format is not OpenAI-compatible, so it speaks the API directly.
type Yandex struct {
	apiKey   string
	folderID string
	endpoint string
	client   *http.Client
}

// YandexOption defines a configuration option for the Yandex provider.
type YandexOption func(*Yandex)

// WithYandexEndpoint overrides the completion endpoint, used in tests.
func WithYandexEndpoint(url string) YandexOption {
	return func(y *Yandex) { y.endpoint = url }
}

// WithYandexHTTPClient overrides the HTTP client.
func WithYandexHTTPClient(c *http.Client) YandexOption {
	return func(y *Yandex) { y.client = c }
}

// NewYandex creates a YandexGPT provider for the given API key and folder.
func NewYandex(apiKey, folderID string, opts ...YandexOption) *Yandex {
	y := &Yandex{
		apiKey:   apiKey,
		folderID: folderID,
		endpoint: DefaultYandexEndpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(y)
	}
	slog.Debug("Yandex provider created", "folder_id_set", folderID != "")
	return y
}

// Name identifies the provider.
func (y *Yandex) Name() string {
	return "yandexgpt"
}

// Generate sends a completion request and returns the first alternative.
// The request honours ctx for timeout and cancellation.
func (y *Yandex) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]yandexMessage, 0, 2*len(req.Turns)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, yandexMessage{Role: "system", Text: req.SystemPrompt})
	}
	for _, turn := range req.Turns {
		messages = append(messages, yandexMessage{Role: "user", Text: turn.UserText})
		messages = append(messages, yandexMessage{Role: "assistant", Text: turn.ResponseText})
	}
	messages = append(messages, yandexMessage{Role: "user", Text: req.Message})

	body := yandexRequest{
		ModelURI: fmt.Sprintf("gpt://%s/yandexgpt-lite", y.folderID),
		CompletionOptions: yandexCompletionOptions{
			Stream:      false,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		},
		Messages: messages,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal yandexgpt request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, y.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build yandexgpt request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Api-Key "+y.apiKey)
	httpReq.Header.Set("x-folder-id", y.folderID)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := y.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("yandexgpt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("yandexgpt returned status %d", resp.StatusCode)
	}

	var parsed yandexResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode yandexgpt response: %w", err)
	}
	if len(parsed.Result.Alternatives) == 0 {
		return "", ErrNoChoices
	}
	return parsed.Result.Alternatives[0].Message.Text, nil
}
