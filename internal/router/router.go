// Package router decides how each user message is answered: a fixed crisis
// reply, delegation to a completion provider with ordered fallback, or a
// canned response.
//
// Every invocation terminates in a produced, non-empty string. Provider
// failures are recovered locally and never surface to the user.
package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/TsarRusi/mindmate/internal/crisis"
	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/provider"
	"github.com/TsarRusi/mindmate/internal/store"
)

// Default request parameters for provider attempts.
const (
	// DefaultProviderTimeout bounds each provider attempt. A timed-out
	// provider is not retried; the router falls through to the next one.
	DefaultProviderTimeout = 10 * time.Second
	defaultTemperature     = 0.7
	defaultMaxTokens       = 500
)

// CrisisMessage is the fixed, reviewed reply for high-severity messages.
// It is the only response whose content is fully controlled, which is why
// crisis text never reaches an external provider.
const CrisisMessage = `IMPORTANT: Please reach out for help right now.

Call or text:
- 988 - Suicide & Crisis Lifeline (24/7, free)
- 911 - emergency services
- Text HOME to 741741 - Crisis Text Line

While you wait:
1. Try the 5-4-3-2-1 grounding technique
2. Try 4-7-8 breathing
3. Reach out to someone close to you

You are not alone. Help is available around the clock.`

// crisisFooter is appended to responses for low-severity distress.
const crisisFooter = `If things get too heavy, support is always there: call or text 988 (24/7, free).`

// systemPrompts select the persona sent to providers per chat mode.
var systemPrompts = map[models.ChatMode]string{
	models.ChatModeSupport:  "You are MindMate, an empathetic mental-wellbeing companion. Be supportive, suggest relaxation techniques, and keep replies short. Do not give medical advice. In critical situations, direct the user to professionals.",
	models.ChatModeAnalysis: "You are MindMate, helping the user analyze a situation. Ask clarifying questions and help them see different sides. Keep replies short and never give medical advice.",
	models.ChatModeAdvice:   "You are MindMate, offering practical suggestions and techniques for improving wellbeing. Keep replies short and actionable. Do not give medical advice.",
}

// Opts holds configuration options for the Router.
type Opts struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int64
}

// Option defines a configuration option for the Router.
type Option func(*Opts)

// WithTimeout overrides the per-attempt provider timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithTemperature overrides the sampling temperature sent to providers.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithMaxTokens overrides the completion token limit sent to providers.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) { o.MaxTokens = n }
}

// Router routes user messages to crisis, provider, or canned responses.
type Router struct {
	providers   []provider.Provider
	store       store.Store
	timeout     time.Duration
	temperature float64
	maxTokens   int64
}

// New creates a Router over the given providers (highest priority first)
// and history store. An empty provider list is valid: the router then runs
// in canned-reply-only mode.
func New(providers []provider.Provider, st store.Store, opts ...Option) *Router {
	cfg := Opts{
		Timeout:     DefaultProviderTimeout,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Router{
		providers:   providers,
		store:       st,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// HasProviders reports whether any completion provider is configured.
func (r *Router) HasProviders() bool {
	return len(r.providers) > 0
}

// Respond produces the reply for one user message. The result is always a
// non-empty string: crisis messages short-circuit, provider failures fall
// through the priority order, and the canned table is the terminal fallback.
func (r *Router) Respond(ctx context.Context, userID, text string, mode models.ChatMode) string {
	if !models.IsValidChatMode(mode) {
		mode = models.ChatModeSupport
	}

	sig := crisis.Classify(text)
	if sig.IsCrisis() {
		// Never log or forward the message content itself.
		slog.Info("Router.Respond: crisis short-circuit", "user_id", userID, "severity", sig.Severity)
		return CrisisMessage
	}

	response := r.delegate(ctx, userID, text, mode)

	if sig.Severity == crisis.SeverityLow {
		slog.Info("Router.Respond: distress detected, appending resources", "user_id", userID, "severity", sig.Severity)
		response = response + "\n\n" + crisisFooter
	}
	return response
}

// delegate tries the configured providers in priority order and falls back
// to the canned-reply table.
func (r *Router) delegate(ctx context.Context, userID, text string, mode models.ChatMode) string {
	if len(r.providers) == 0 {
		slog.Debug("Router.delegate: no providers configured, using canned reply", "user_id", userID)
		return cannedReply(text)
	}

	turns, err := r.store.RecentTurns(userID, models.HistoryContextWindow)
	if err != nil {
		slog.Error("Router.delegate: failed to load history, continuing without context", "error", err, "user_id", userID)
		turns = nil
	}

	req := provider.Request{
		SystemPrompt: systemPrompts[mode],
		Turns:        turns,
		Message:      text,
		Temperature:  r.temperature,
		MaxTokens:    r.maxTokens,
	}

	for _, p := range r.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		reply, err := p.Generate(attemptCtx, req)
		cancel()
		if err != nil {
			slog.Warn("Router.delegate: provider attempt failed", "provider", p.Name(), "error", err, "user_id", userID)
			continue
		}
		if reply == "" {
			slog.Warn("Router.delegate: provider returned empty reply", "provider", p.Name(), "user_id", userID)
			continue
		}

		turn := models.ConversationTurn{
			UserText:     text,
			ResponseText: reply,
			Timestamp:    time.Now(),
		}
		if err := r.store.AddTurn(userID, turn); err != nil {
			slog.Error("Router.delegate: failed to record turn", "error", err, "user_id", userID)
		}
		slog.Debug("Router.delegate: provider succeeded", "provider", p.Name(), "user_id", userID)
		return reply
	}

	slog.Warn("Router.delegate: all providers failed, using canned reply", "user_id", userID, "providers", len(r.providers))
	return cannedReply(text)
}
