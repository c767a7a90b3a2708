// Package provider: GigaChat completion provider.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// GigaChat API constants. The completion endpoint is OpenAI-shaped, but
// every call must first exchange the long-lived authorization key for a
// short-lived access token at the OAuth endpoint.
const (
	DefaultGigaChatAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultGigaChatAPIURL  = "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"

	gigaChatModel = "GigaChat"
	gigaChatScope = "GIGACHAT_API_PERS"
)

// gigaChatMessage is one message in the GigaChat wire format.
type gigaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// gigaChatRequest is the chat completion request body.
type gigaChatRequest struct {
	Model       string            `json:"model"`
	Messages    []gigaChatMessage `json:"messages"`
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   int64             `json:"max_tokens,omitempty"`
}

// gigaChatResponse is the subset of the completion response the provider reads.
type gigaChatResponse struct {
	Choices []struct {
		Message gigaChatMessage `json:"message"`
	} `json:"choices"`
}

// gigaChatAuthResponse is the OAuth token exchange response.
type gigaChatAuthResponse struct {
	AccessToken string `json:"access_token"`
}

// GigaChat delegates completions to the Sber GigaChat API. The wire format
// resembles OpenAI's, but the bespoke OAuth step rules out reusing the
// OpenAI client, so it speaks the API directly like Yandex does.
type GigaChat struct {
	authKey string
	authURL string
	apiURL  string
	client  *http.Client
}

// GigaChatOption defines a configuration option for the GigaChat provider.
type GigaChatOption func(*GigaChat)

// WithGigaChatAuthURL overrides the OAuth endpoint, used in tests.
func WithGigaChatAuthURL(url string) GigaChatOption {
	return func(g *GigaChat) { g.authURL = url }
}

// WithGigaChatAPIURL overrides the completion endpoint, used in tests.
func WithGigaChatAPIURL(url string) GigaChatOption {
	return func(g *GigaChat) { g.apiURL = url }
}

// WithGigaChatHTTPClient overrides the HTTP client.
func WithGigaChatHTTPClient(c *http.Client) GigaChatOption {
	return func(g *GigaChat) { g.client = c }
}

// NewGigaChat creates a GigaChat provider for the given authorization key.
func NewGigaChat(authKey string, opts ...GigaChatOption) *GigaChat {
	g := &GigaChat{
		authKey: authKey,
		authURL: DefaultGigaChatAuthURL,
		apiURL:  DefaultGigaChatAPIURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	slog.Debug("GigaChat provider created")
	return g
}

// Name identifies the provider.
func (g *GigaChat) Name() string {
	return "gigachat"
}

// fetchAccessToken exchanges the authorization key for a short-lived access
// token. Tokens expire after roughly 30 minutes, so each completion fetches
// a fresh one rather than caching.
func (g *GigaChat) fetchAccessToken(ctx context.Context) (string, error) {
	form := url.Values{"scope": {gigaChatScope}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build gigachat auth request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.authKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gigachat auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("gigachat auth returned status %d", resp.StatusCode)
	}

	var parsed gigaChatAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode gigachat auth response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("gigachat auth returned no access token")
	}
	return parsed.AccessToken, nil
}

// Generate exchanges the auth key for an access token, sends a completion
// request, and returns the first choice. The request honours ctx for
// timeout and cancellation across both calls.
func (g *GigaChat) Generate(ctx context.Context, req Request) (string, error) {
	token, err := g.fetchAccessToken(ctx)
	if err != nil {
		return "", err
	}

	messages := make([]gigaChatMessage, 0, 2*len(req.Turns)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, gigaChatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, turn := range req.Turns {
		messages = append(messages, gigaChatMessage{Role: "user", Content: turn.UserText})
		messages = append(messages, gigaChatMessage{Role: "assistant", Content: turn.ResponseText})
	}
	messages = append(messages, gigaChatMessage{Role: "user", Content: req.Message})

	body := gigaChatRequest{
		Model:       gigaChatModel,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gigachat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build gigachat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gigachat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("gigachat returned status %d", resp.StatusCode)
	}

	var parsed gigaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode gigachat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrNoChoices
	}
	return parsed.Choices[0].Message.Content, nil
}
