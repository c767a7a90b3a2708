// Package provider defines the completion-provider abstraction and the
// concrete backends MindMate can delegate responses to.
//
// Providers are constructed once at startup from environment configuration
// and consulted by the response router in priority order. Adding a backend
// means adding one implementation of Provider; the router never changes.
package provider

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/TsarRusi/mindmate/internal/models"
)

// Request is the uniform shape of one completion attempt.
type Request struct {
	SystemPrompt string
	Turns        []models.ConversationTurn // prior exchanges, oldest first
	Message      string                    // the new user message
	Temperature  float64
	MaxTokens    int64
}

// Provider is a single external completion backend.
type Provider interface {
	// Name identifies the provider in logs and diagnostics.
	Name() string

	// Generate produces a reply for the request. Any error (timeout, bad
	// status, malformed body) is a recoverable ProviderError: the caller
	// falls through to the next provider.
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrNoChoices indicates the backend returned a well-formed but empty
// completion.
var ErrNoChoices = errors.New("provider returned no choices")

// FromEnv constructs the configured providers in fixed priority order:
// OpenAI, then DeepSeek, then GigaChat, then YandexGPT. Backends without
// credentials are skipped. An empty result is a valid, fully-supported
// state; the router then answers from the canned-reply table only.
func FromEnv() []Provider {
	var providers []Provider

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p, err := NewOpenAI(WithAPIKey(key))
		if err != nil {
			slog.Error("provider.FromEnv: failed to build OpenAI provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		p, err := NewDeepSeek(key)
		if err != nil {
			slog.Error("provider.FromEnv: failed to build DeepSeek provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	if key := os.Getenv("GIGACHAT_TOKEN"); key != "" {
		providers = append(providers, NewGigaChat(key))
	}

	if key := os.Getenv("YANDEX_API_KEY"); key != "" {
		folder := os.Getenv("YANDEX_FOLDER_ID")
		if folder == "" {
			slog.Warn("provider.FromEnv: YANDEX_API_KEY set but YANDEX_FOLDER_ID missing, skipping YandexGPT")
		} else {
			providers = append(providers, NewYandex(key, folder))
		}
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	slog.Info("provider.FromEnv: providers configured", "count", len(providers), "order", names)
	return providers
}
