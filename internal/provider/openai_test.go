package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	return &m.resp, nil
}

func TestOpenAIGenerate_Success(t *testing.T) {
	mock := &mockChatService{
		resp: openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "You are doing great."}},
			},
		},
	}
	p := &OpenAI{name: "openai", model: openai.ChatModelGPT4oMini, chat: mock}

	out, err := p.Generate(context.Background(), Request{
		SystemPrompt: "be supportive",
		Turns: []models.ConversationTurn{
			{UserText: "hi", ResponseText: "hello"},
		},
		Message:     "how do I relax?",
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "You are doing great." {
		t.Errorf("unexpected reply: %q", out)
	}
	// system + (user, assistant) turn + new message
	if len(mock.params.Messages) != 4 {
		t.Errorf("expected 4 messages, got %d", len(mock.params.Messages))
	}
}

func TestOpenAIGenerate_ServiceError(t *testing.T) {
	p := &OpenAI{name: "openai", chat: &mockChatService{err: errors.New("service failure")}}
	_, err := p.Generate(context.Background(), Request{Message: "hello"})
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestOpenAIGenerate_NoChoices(t *testing.T) {
	p := &OpenAI{name: "openai", chat: &mockChatService{resp: openai.ChatCompletion{}}}
	_, err := p.Generate(context.Background(), Request{Message: "hello"})
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("expected ErrNoChoices, got %v", err)
	}
}

func TestNewOpenAI_NoKey(t *testing.T) {
	_, err := NewOpenAI()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewOpenAI_WithKey(t *testing.T) {
	p, err := NewOpenAI(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected default name openai, got %s", p.Name())
	}
}

func TestNewDeepSeek(t *testing.T) {
	p, err := NewDeepSeek("test-key")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Name() != "deepseek" {
		t.Errorf("expected name deepseek, got %s", p.Name())
	}
	if p.model != deepSeekModel {
		t.Errorf("expected model %s, got %s", deepSeekModel, p.model)
	}
}
