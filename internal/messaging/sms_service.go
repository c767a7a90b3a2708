package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/sms"
)

// SMSService implements the Service interface over a Twilio SMS sender.
type SMSService struct {
	client   sms.Sender // real Twilio client or sms.MockClient
	messages chan models.Message
	done     chan struct{}
	mu       sync.RWMutex
	stopped  bool
}

// NewSMSService creates an SMSService backed by the given sender.
func NewSMSService(client sms.Sender) *SMSService {
	return &SMSService{
		client:   client,
		messages: make(chan models.Message, DefaultChannelBufferSize),
		done:     make(chan struct{}),
	}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a phone number.
// It removes all non-numeric characters and validates the result has at least 6 digits.
func (s *SMSService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	wasModified := recipient != canonical

	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}

	if wasModified {
		slog.Debug("SMSService canonicalized recipient", "original", recipient, "canonical", canonical)
	}

	return canonical, nil
}

// Start is a no-op for SMS; inbound traffic arrives via the webhook handler.
func (s *SMSService) Start(ctx context.Context) error {
	return nil
}

// Stop marks the service stopped and signals shutdown. The messages
// channel is never closed: a webhook request racing Stop may still try a
// buffered send, and consumers exit on their context instead.
func (s *SMSService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	return nil
}

// SendMessage sends a message via the underlying Twilio sender.
func (s *SMSService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrServiceStopped
	}
	s.mu.RUnlock()

	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("SMSService SendMessage validation error", "error", err, "to", to)
		return err
	}

	return s.client.SendMessage(ctx, canonicalTo, body)
}

// Messages returns the channel of inbound user messages.
func (s *SMSService) Messages() <-chan models.Message {
	return s.messages
}

// WebhookHandler handles inbound Twilio webhook requests.
// It parses incoming messages and emits them into the Messages() channel.
func (s *SMSService) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("Twilio webhook received")

	if err := r.ParseForm(); err != nil {
		slog.Error("Failed to parse Twilio webhook form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")

	if from == "" || body == "" {
		slog.Warn("Twilio webhook missing fields", "from_set", from != "", "body_set", body != "")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	slog.Info("Inbound SMS from Twilio", "from", from)

	s.safeEmitMessage(models.Message{
		From: from,
		Body: body,
		Time: time.Now().Unix(),
	})

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// safeEmitMessage safely pushes messages into the inbound channel.
func (s *SMSService) safeEmitMessage(msg models.Message) {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		slog.Warn("SMSService dropping inbound message (service stopped)", "from", msg.From)
		return
	}

	select {
	case s.messages <- msg:
		slog.Debug("SMSService emitted inbound message", "from", msg.From)
	case <-s.done:
		slog.Warn("SMSService dropping inbound message (service stopped)", "from", msg.From)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("SMSService messages channel blocked, dropping message", "from", msg.From)
	}
}
