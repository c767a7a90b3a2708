package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/provider"
	"github.com/TsarRusi/mindmate/internal/store"
)

// stubProvider implements provider.Provider for testing.
type stubProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(ctx context.Context, req provider.Request) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func TestRespondCrisisShortCircuit(t *testing.T) {
	stub := &stubProvider{name: "stub", reply: "should never be used"}
	r := New([]provider.Provider{stub}, store.NewInMemoryStore())

	out := r.Respond(context.Background(), "u1", "I don't want to live anymore", models.ChatModeSupport)
	if out != CrisisMessage {
		t.Errorf("expected the fixed crisis message, got %q", out)
	}
	if stub.calls != 0 {
		t.Errorf("crisis text must never reach a provider, got %d calls", stub.calls)
	}
}

func TestRespondNoProvidersCannedReply(t *testing.T) {
	r := New(nil, store.NewInMemoryStore())

	out := r.Respond(context.Background(), "u1", "my anxiety is bad today", models.ChatModeSupport)
	if out == "" {
		t.Fatal("expected non-empty canned reply")
	}
	// Must come from the anxiety theme pool.
	found := false
	for _, reply := range cannedThemes[0].replies {
		if out == reply {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an anxiety-themed reply, got %q", out)
	}
}

func TestRespondProviderFallbackOrder(t *testing.T) {
	st := store.NewInMemoryStore()
	first := &stubProvider{name: "first", err: errors.New("timeout")}
	second := &stubProvider{name: "second", err: errors.New("bad status")}
	third := &stubProvider{name: "third", reply: "it helps to slow your breathing"}
	r := New([]provider.Provider{first, second, third}, st)

	out := r.Respond(context.Background(), "u1", "how do I calm down?", models.ChatModeAdvice)
	if out != "it helps to slow your breathing" {
		t.Errorf("expected the third provider's reply, got %q", out)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("expected one attempt per provider, got %d/%d/%d", first.calls, second.calls, third.calls)
	}

	// Exactly one turn recorded, not one per attempt.
	turns, err := st.RecentTurns("u1", models.HistoryCap)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected exactly 1 recorded turn, got %d", len(turns))
	}
	if turns[0].ResponseText != "it helps to slow your breathing" {
		t.Errorf("unexpected recorded turn: %+v", turns[0])
	}
}

func TestRespondAllProvidersFail(t *testing.T) {
	st := store.NewInMemoryStore()
	first := &stubProvider{name: "first", err: errors.New("boom")}
	second := &stubProvider{name: "second", err: errors.New("boom")}
	r := New([]provider.Provider{first, second}, st)

	out := r.Respond(context.Background(), "u1", "hello there", models.ChatModeSupport)
	if out == "" {
		t.Fatal("expected a non-empty fallback reply")
	}

	// No phantom turn for a nonexistent successful exchange.
	turns, err := st.RecentTurns("u1", models.HistoryCap)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected no recorded turns, got %d", len(turns))
	}
}

func TestRespondSendsHistoryWindow(t *testing.T) {
	st := store.NewInMemoryStore()
	for i := 0; i < 6; i++ {
		st.AddTurn("u1", models.ConversationTurn{UserText: "old", ResponseText: "older"})
	}

	var seen provider.Request
	capture := &captureProvider{reply: "ok", seen: &seen}
	r := New([]provider.Provider{capture}, st)

	r.Respond(context.Background(), "u1", "new message", models.ChatModeSupport)
	if len(seen.Turns) != models.HistoryContextWindow {
		t.Errorf("expected %d context turns, got %d", models.HistoryContextWindow, len(seen.Turns))
	}
	if seen.Message != "new message" {
		t.Errorf("unexpected message in request: %q", seen.Message)
	}
	if seen.SystemPrompt == "" {
		t.Error("expected a mode-specific system prompt")
	}
}

type captureProvider struct {
	reply string
	seen  *provider.Request
}

func (p *captureProvider) Name() string { return "capture" }

func (p *captureProvider) Generate(ctx context.Context, req provider.Request) (string, error) {
	*p.seen = req
	return p.reply, nil
}

func TestRespondLowSeverityAppendsResources(t *testing.T) {
	r := New(nil, store.NewInMemoryStore())

	out := r.Respond(context.Background(), "u1", "I can't take it anymore at work", models.ChatModeSupport)
	if !strings.Contains(out, "988") {
		t.Errorf("expected crisis resources appended for low severity, got %q", out)
	}
	if out == CrisisMessage {
		t.Error("low severity must not produce the full crisis short-circuit")
	}
}

func TestCannedReplyAlwaysNonEmpty(t *testing.T) {
	for _, text := range []string{"", "random words", "stress and sadness", "ANXIETY"} {
		if cannedReply(text) == "" {
			t.Errorf("cannedReply(%q) returned empty string", text)
		}
	}
}
