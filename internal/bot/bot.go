// Package bot implements the conversational front-end: a menu-driven
// dispatcher that reads inbound messages from a messaging.Service and
// replies using the router, mood log, and technique catalog.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/TsarRusi/mindmate/internal/messaging"
	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/mood"
	"github.com/TsarRusi/mindmate/internal/router"
	"github.com/TsarRusi/mindmate/internal/store"
	"github.com/TsarRusi/mindmate/internal/techniques"
)

// Button labels. Dispatch is keyed on these exact strings.
const (
	ButtonChat       = "💬 Chat"
	ButtonTechniques = "🧘 Techniques"
	ButtonMood       = "📊 Mood"
	ButtonStats      = "📈 Stats"
	ButtonCrisis     = "🆘 Crisis Help"
	ButtonHelp       = "ℹ️ Help"
	ButtonBack       = "⬅️ Back"

	ButtonModeSupport  = "🤗 Support"
	ButtonModeAnalysis = "🧠 Analysis"
	ButtonModeAdvice   = "💡 Advice"

	ButtonQuickRelief = "⚡ Quick Relief"
	ButtonMeditation  = "🧘 Meditation"
	ButtonSleep       = "😴 Sleep"
	ButtonRandom      = "🎲 Random"
)

// MainKeyboard is the top-level menu.
var MainKeyboard = [][]string{
	{ButtonChat, ButtonTechniques},
	{ButtonMood, ButtonStats},
	{ButtonCrisis, ButtonHelp},
}

// ChatKeyboard selects the conversation mode.
var ChatKeyboard = [][]string{
	{ButtonModeSupport, ButtonModeAnalysis},
	{ButtonModeAdvice, ButtonBack},
}

// TechniquesKeyboard selects a technique category.
var TechniquesKeyboard = [][]string{
	{ButtonQuickRelief, ButtonMeditation},
	{ButtonSleep, ButtonRandom},
	{ButtonBack},
}

// MoodKeyboard offers the 1..10 mood scale.
var MoodKeyboard = [][]string{
	{"1", "2", "3", "4", "5"},
	{"6", "7", "8", "9", "10"},
	{ButtonBack},
}

const welcomeText = `Hi, I'm MindMate 🌱

I'm here to listen, help you track your mood, and share relaxation techniques.

I'm not a therapist and I can't replace one. If you're in immediate danger, call 911 or dial 988.`

const helpText = `Here's what I can do:

💬 Chat — talk things through in support, analysis, or advice mode
🧘 Techniques — breathing, grounding, meditation, and sleep exercises
📊 Mood — log how you feel on a 1-10 scale
📈 Stats — your mood and practice history

Pick an option from the menu, or just type what's on your mind.`

// moodBandEmoji maps a mood band to the emoji shown in acknowledgements.
var moodBandEmoji = map[models.MoodBand]string{
	models.MoodBandLow:  "😔",
	models.MoodBandMid:  "😐",
	models.MoodBandHigh: "😊",
}

// Bot wires the messaging transport to the conversation features.
type Bot struct {
	store   store.Store
	router  *router.Router
	moodLog *mood.Log
	tracker *techniques.Tracker
	svc     messaging.Service
}

// New creates a Bot over the given store, router, and transport.
func New(st store.Store, rt *router.Router, svc messaging.Service) *Bot {
	return &Bot{
		store:   st,
		router:  rt,
		moodLog: mood.NewLog(st),
		tracker: techniques.NewTracker(st),
		svc:     svc,
	}
}

// Run consumes inbound messages until the context is cancelled or the
// transport's channel closes.
func (b *Bot) Run(ctx context.Context) {
	slog.Info("Bot starting message processing")

	go func() {
		defer slog.Info("Bot stopped message processing")

		for {
			select {
			case msg, ok := <-b.svc.Messages():
				if !ok {
					slog.Debug("Bot messages channel closed")
					return
				}
				if err := b.HandleMessage(ctx, msg); err != nil {
					slog.Error("Bot failed to handle message", "error", err, "from", msg.From)
				}
			case <-ctx.Done():
				slog.Debug("Bot stopping due to context cancellation")
				return
			}
		}
	}()
}

// HandleMessage dispatches one inbound message and sends the reply.
func (b *Bot) HandleMessage(ctx context.Context, msg models.Message) error {
	userID, err := b.svc.ValidateAndCanonicalizeRecipient(msg.From)
	if err != nil {
		slog.Error("Bot.HandleMessage sender validation failed", "error", err, "from", msg.From)
		return fmt.Errorf("invalid sender: %w", err)
	}
	if strings.TrimSpace(msg.Body) == "" {
		return models.ErrEmptyMessageBody
	}

	reply := b.Dispatch(ctx, userID, msg.Body)
	if err := b.svc.SendMessage(ctx, userID, RenderReply(reply)); err != nil {
		slog.Error("Bot.HandleMessage send failed", "error", err, "to", userID)
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// Dispatch routes one message body to a feature and returns the reply.
// It never returns an empty reply.
func (b *Bot) Dispatch(ctx context.Context, userID, body string) models.Reply {
	user, isNew := b.loadUser(userID)
	text := strings.TrimSpace(body)

	if isNew || text == "/start" || strings.EqualFold(text, "start") {
		return models.Reply{Text: welcomeText, Keyboard: MainKeyboard}
	}

	switch text {
	case ButtonChat:
		return models.Reply{
			Text:     "How would you like to talk? Pick a mode:",
			Keyboard: ChatKeyboard,
		}
	case ButtonModeSupport:
		return b.enterChat(user, models.ChatModeSupport, "Support mode 🤗 I'm here to listen. What's on your mind?")
	case ButtonModeAnalysis:
		return b.enterChat(user, models.ChatModeAnalysis, "Analysis mode 🧠 Tell me what's going on and we'll look at it together.")
	case ButtonModeAdvice:
		return b.enterChat(user, models.ChatModeAdvice, "Advice mode 💡 Describe the situation and I'll suggest concrete steps.")
	case ButtonBack:
		user.InChat = false
		b.saveUser(user)
		return models.Reply{Text: "Back to the main menu.", Keyboard: MainKeyboard}
	case ButtonTechniques:
		return models.Reply{
			Text:     "What kind of technique are you looking for?",
			Keyboard: TechniquesKeyboard,
		}
	case ButtonQuickRelief:
		return b.categoryReply(techniques.CategoryQuick)
	case ButtonMeditation:
		return b.categoryReply(techniques.CategoryMeditation)
	case ButtonSleep:
		return b.categoryReply(techniques.CategorySleep)
	case ButtonRandom:
		return models.Reply{
			Text:     FormatTechnique(techniques.PickRandom()),
			Keyboard: TechniquesKeyboard,
		}
	case ButtonMood:
		return models.Reply{
			Text:     "How are you feeling right now, from 1 (worst) to 10 (best)?",
			Keyboard: MoodKeyboard,
		}
	case ButtonStats:
		return b.statsReply(userID)
	case ButtonCrisis:
		return models.Reply{Text: router.CrisisMessage, Keyboard: MainKeyboard}
	case ButtonHelp:
		return models.Reply{Text: helpText, Keyboard: MainKeyboard}
	}

	if user.InChat {
		return models.Reply{Text: b.router.Respond(ctx, userID, body, user.ChatMode)}
	}

	if score, err := strconv.Atoi(text); err == nil {
		return b.moodReply(userID, score)
	}

	// Free text outside of chat mode still gets a real response rather
	// than a "command not recognized" dead end.
	return models.Reply{
		Text:     b.router.Respond(ctx, userID, body, models.ChatModeSupport),
		Keyboard: MainKeyboard,
	}
}

func (b *Bot) enterChat(user *models.User, mode models.ChatMode, text string) models.Reply {
	user.ChatMode = mode
	user.InChat = true
	b.saveUser(user)
	return models.Reply{Text: text, Keyboard: [][]string{{ButtonBack}}}
}

func (b *Bot) categoryReply(category string) models.Reply {
	list, err := techniques.Pick(category)
	if err != nil {
		slog.Error("Bot.categoryReply unknown category", "category", category, "error", err)
		return models.Reply{Text: "That category isn't available right now.", Keyboard: TechniquesKeyboard}
	}

	var sb strings.Builder
	for i, t := range list {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(FormatTechnique(t))
	}
	return models.Reply{Text: sb.String(), Keyboard: TechniquesKeyboard}
}

func (b *Bot) moodReply(userID string, score int) models.Reply {
	ack, err := b.moodLog.Record(userID, score, "")
	if err != nil {
		return models.Reply{
			Text:     "Mood scores go from 1 to 10. Which number fits best?",
			Keyboard: MoodKeyboard,
		}
	}

	suggestion := techniques.PickForMood(score)
	text := fmt.Sprintf("%s Logged %d/10 (entry #%d).\n\n%s\n\nSomething that might fit right now: %s (%s)",
		moodBandEmoji[ack.Band], ack.Score, ack.Count, ack.Encouragement, suggestion.Name, suggestion.Duration)
	return models.Reply{Text: text, Keyboard: MainKeyboard}
}

func (b *Bot) statsReply(userID string) models.Reply {
	var sb strings.Builder
	sb.WriteString("📈 Your stats\n")

	summary, err := b.moodLog.Summarize(userID)
	if err != nil {
		sb.WriteString("\nNo mood entries yet. Tap 📊 Mood to log your first one.")
	} else {
		sb.WriteString(fmt.Sprintf("\nMood: %d entries, average %.1f, last %d/10.", summary.Count, summary.Average, summary.Last))
	}

	stats, err := b.tracker.Stats(userID)
	if err == nil && stats.TotalSessions > 0 {
		sb.WriteString(fmt.Sprintf("\nPractice: %d sessions, %d favorites, average mood lift %+.1f.",
			stats.TotalSessions, stats.Favorites, stats.AvgEffect))
		if stats.MostEffective != 0 {
			if t, err := techniques.ByID(stats.MostEffective); err == nil {
				sb.WriteString(fmt.Sprintf("\nWorks best for you: %s.", t.Name))
			}
		}
	} else {
		sb.WriteString("\nNo practice sessions yet. Tap 🧘 Techniques to try one.")
	}

	return models.Reply{Text: sb.String(), Keyboard: MainKeyboard}
}

// loadUser fetches or creates the per-user state record.
func (b *Bot) loadUser(userID string) (*models.User, bool) {
	user, err := b.store.GetUser(userID)
	if err != nil {
		slog.Warn("Bot.loadUser store error", "error", err, "userID", userID)
	}
	if user != nil {
		return user, false
	}

	fresh := &models.User{
		ID:       userID,
		ChatMode: models.ChatModeSupport,
		JoinedAt: time.Now(),
	}
	b.saveUser(fresh)
	return fresh, true
}

func (b *Bot) saveUser(user *models.User) {
	if err := b.store.SaveUser(*user); err != nil {
		slog.Error("Bot.saveUser failed", "error", err, "userID", user.ID)
	}
}

// FormatTechnique renders one technique as a message body.
func FormatTechnique(t models.Technique) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧘 %s (%s)\n%s\n", t.Name, t.Duration, t.Description))
	for i, step := range t.Steps {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, step))
	}
	return sb.String()
}

// RenderReply flattens a reply with keyboard into plain text for
// transports without interactive buttons.
func RenderReply(r models.Reply) string {
	if len(r.Keyboard) == 0 {
		return r.Text
	}

	var sb strings.Builder
	sb.WriteString(r.Text)
	sb.WriteString("\n")
	for _, row := range r.Keyboard {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, "  |  "))
	}
	return sb.String()
}
