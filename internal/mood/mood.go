// Package mood provides the per-user mood log: validated recording and
// simple aggregation.
package mood

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/store"
	"github.com/TsarRusi/mindmate/internal/util"
)

// Ack acknowledges a recorded mood entry. Band selects which encouragement
// text is shown; it has no other effect.
type Ack struct {
	Score         int             `json:"score"`
	Count         int             `json:"count"`
	Band          models.MoodBand `json:"band"`
	Encouragement string          `json:"encouragement"`
}

// encouragements holds the canned acknowledgement lines per mood band.
var encouragements = map[models.MoodBand][]string{
	models.MoodBandLow: {
		"Thank you for checking in, even on a hard day. Be gentle with yourself.",
		"Rough days count too. A short breathing exercise might help right now.",
	},
	models.MoodBandMid: {
		"Noted. Steady days are worth tracking as much as the big ones.",
		"Thanks for logging. Anything small you could do for yourself today?",
	},
	models.MoodBandHigh: {
		"Great to see. Keep doing what works for you!",
		"Wonderful! Worth remembering what made today good.",
	},
}

// Log records and summarizes mood entries for users.
type Log struct {
	store store.Store
}

// NewLog creates a mood log backed by the given store.
func NewLog(st store.Store) *Log {
	return &Log{store: st}
}

// Record validates and appends a mood entry, returning an acknowledgement
// with the running count and the band the score falls into. Scores outside
// [1,10] are rejected before anything is stored.
func (l *Log) Record(userID string, score int, note string) (Ack, error) {
	if userID == "" {
		return Ack{}, models.ErrEmptyUserID
	}
	if err := models.ValidateMoodScore(score); err != nil {
		return Ack{}, err
	}

	entry := models.MoodEntry{
		UserID:    userID,
		Score:     score,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := l.store.AddMoodEntry(entry); err != nil {
		return Ack{}, fmt.Errorf("failed to record mood entry: %w", err)
	}

	entries, err := l.store.MoodEntries(userID)
	if err != nil {
		return Ack{}, fmt.Errorf("failed to count mood entries: %w", err)
	}

	band := models.BandForScore(score)
	ack := Ack{
		Score:         score,
		Count:         len(entries),
		Band:          band,
		Encouragement: util.PickOne(encouragements[band]),
	}
	slog.Debug("mood.Log.Record: entry recorded", "user_id", userID, "score", score, "band", band, "count", ack.Count)
	return ack, nil
}

// Summarize aggregates a user's mood entries. It returns ErrNoMoodData for
// users with zero records instead of producing a zero-division average.
func (l *Log) Summarize(userID string) (models.MoodSummary, error) {
	entries, err := l.store.MoodEntries(userID)
	if err != nil {
		return models.MoodSummary{}, fmt.Errorf("failed to load mood entries: %w", err)
	}
	if len(entries) == 0 {
		return models.MoodSummary{}, models.ErrNoMoodData
	}

	sum := 0
	for _, e := range entries {
		sum += e.Score
	}
	return models.MoodSummary{
		Count:   len(entries),
		Average: float64(sum) / float64(len(entries)),
		Last:    entries[len(entries)-1].Score,
	}, nil
}
