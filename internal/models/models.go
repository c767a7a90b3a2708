// Package models defines the core data structures for MindMate.
//
// It includes types for conversation turns, mood entries, techniques, and
// incoming/outgoing messages, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// ChatMode selects the persona used when delegating to a completion provider.
type ChatMode string

const (
	// ChatModeSupport provides empathetic emotional support.
	ChatModeSupport ChatMode = "support"
	// ChatModeAnalysis helps the user examine a situation from several sides.
	ChatModeAnalysis ChatMode = "analysis"
	// ChatModeAdvice offers practical suggestions and techniques.
	ChatModeAdvice ChatMode = "advice"
)

// IsValidChatMode checks if the given chat mode is supported.
func IsValidChatMode(m ChatMode) bool {
	switch m {
	case ChatModeSupport, ChatModeAnalysis, ChatModeAdvice:
		return true
	default:
		return false
	}
}

// MoodBand is the coarse category a mood score falls into. It is used only to
// select which canned encouragement or technique to show.
type MoodBand string

const (
	// MoodBandLow covers scores 1-3.
	MoodBandLow MoodBand = "low"
	// MoodBandMid covers scores 4-6.
	MoodBandMid MoodBand = "mid"
	// MoodBandHigh covers scores 7-10.
	MoodBandHigh MoodBand = "high"
)

// Validation constants for input validation
const (
	// MinMoodScore defines the lowest accepted mood score
	MinMoodScore = 1
	// MaxMoodScore defines the highest accepted mood score
	MaxMoodScore = 10
	// MinTechniqueRating defines the lowest accepted technique rating
	MinTechniqueRating = 1
	// MaxTechniqueRating defines the highest accepted technique rating
	MaxTechniqueRating = 5
)

// History constants shared by the store and the response router.
const (
	// HistoryCap is the maximum number of conversation turns retained per user.
	HistoryCap = 10
	// HistoryContextWindow is the number of recent turns sent to providers as context.
	HistoryContextWindow = 3
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserID       = errors.New("user id cannot be empty")
	ErrInvalidMoodScore  = errors.New("mood score must be between 1 and 10")
	ErrInvalidRating     = errors.New("technique rating must be between 1 and 5")
	ErrInvalidChatMode   = errors.New("invalid chat mode")
	ErrCategoryNotFound  = errors.New("technique category not found")
	ErrTechniqueNotFound = errors.New("technique not found")
	ErrNoMoodData        = errors.New("no mood entries recorded")
	ErrEmptyMessageBody  = errors.New("message body cannot be empty")
)

// ValidateMoodScore checks that a mood score is inside the accepted range.
func ValidateMoodScore(score int) error {
	if score < MinMoodScore || score > MaxMoodScore {
		return ErrInvalidMoodScore
	}
	return nil
}

// BandForScore maps a valid mood score to its band.
func BandForScore(score int) MoodBand {
	switch {
	case score <= 3:
		return MoodBandLow
	case score <= 6:
		return MoodBandMid
	default:
		return MoodBandHigh
	}
}

// ConversationTurn is one user message paired with the reply produced for it.
type ConversationTurn struct {
	UserText     string    `json:"user_text"`
	ResponseText string    `json:"response_text"`
	Timestamp    time.Time `json:"timestamp"`
}

// MoodEntry represents one recorded mood score for a user.
type MoodEntry struct {
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodSummary aggregates a user's recorded moods.
type MoodSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Last    int     `json:"last"`
}

// User holds per-user bot state.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	ChatMode ChatMode `json:"chat_mode"`
	InChat   bool     `json:"in_chat"`
	JoinedAt time.Time `json:"joined_at"`
}

// Technique is one relaxation technique from the static catalog.
type Technique struct {
	ID          int      `json:"id"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Steps       []string `json:"steps"`
}

// PracticeSession records one completed technique practice.
type PracticeSession struct {
	UserID      string    `json:"user_id"`
	TechniqueID int       `json:"technique_id"`
	Minutes     int       `json:"minutes"`
	MoodBefore  int       `json:"mood_before"`
	MoodAfter   int       `json:"mood_after"`
	CreatedAt   time.Time `json:"created_at"`
}

// Effectiveness is the mood delta achieved by a practice session.
func (s PracticeSession) Effectiveness() int {
	return s.MoodAfter - s.MoodBefore
}

// PracticeStats aggregates a user's technique practice history.
type PracticeStats struct {
	TotalSessions int     `json:"total_sessions"`
	Favorites     int     `json:"favorites"`
	AvgEffect     float64 `json:"avg_effectiveness"`
	MostEffective int     `json:"most_effective,omitempty"` // technique id, 0 when unknown
}

// Message represents an incoming message event from a user.
type Message struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// Reply is an outbound response: text plus an optional reply keyboard.
type Reply struct {
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard,omitempty"`
}
