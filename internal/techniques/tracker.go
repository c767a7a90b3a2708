// Package techniques: practice progress tracking.
package techniques

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/store"
)

// Tracker records technique practice sessions, favorites, and ratings, and
// computes per-user practice statistics.
type Tracker struct {
	store store.Store
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// RecordSession validates and stores one completed practice session.
func (t *Tracker) RecordSession(userID string, techniqueID, minutes, moodBefore, moodAfter int) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	if _, err := ByID(techniqueID); err != nil {
		return err
	}
	if err := models.ValidateMoodScore(moodBefore); err != nil {
		return err
	}
	if err := models.ValidateMoodScore(moodAfter); err != nil {
		return err
	}

	sess := models.PracticeSession{
		UserID:      userID,
		TechniqueID: techniqueID,
		Minutes:     minutes,
		MoodBefore:  moodBefore,
		MoodAfter:   moodAfter,
		CreatedAt:   time.Now(),
	}
	if err := t.store.AddSession(sess); err != nil {
		return fmt.Errorf("failed to record practice session: %w", err)
	}
	slog.Debug("Tracker.RecordSession: session recorded", "user_id", userID, "technique_id", techniqueID, "effectiveness", sess.Effectiveness())
	return nil
}

// AddFavorite marks a technique as a favorite for the user.
func (t *Tracker) AddFavorite(userID string, techniqueID int) error {
	if _, err := ByID(techniqueID); err != nil {
		return err
	}
	return t.store.AddFavorite(userID, techniqueID)
}

// Rate stores the user's rating for a technique.
func (t *Tracker) Rate(userID string, techniqueID, rating int) error {
	if _, err := ByID(techniqueID); err != nil {
		return err
	}
	if rating < models.MinTechniqueRating || rating > models.MaxTechniqueRating {
		return models.ErrInvalidRating
	}
	return t.store.RateTechnique(userID, techniqueID, rating)
}

// Stats computes the user's practice statistics: total sessions, favorites
// count, average mood improvement, and the most effective technique.
func (t *Tracker) Stats(userID string) (models.PracticeStats, error) {
	sessions, err := t.store.Sessions(userID)
	if err != nil {
		return models.PracticeStats{}, fmt.Errorf("failed to load practice sessions: %w", err)
	}
	favorites, err := t.store.Favorites(userID)
	if err != nil {
		return models.PracticeStats{}, fmt.Errorf("failed to load favorites: %w", err)
	}

	stats := models.PracticeStats{
		TotalSessions: len(sessions),
		Favorites:     len(favorites),
	}
	if len(sessions) == 0 {
		return stats, nil
	}

	sum := 0
	perTechnique := make(map[int][]int)
	for _, sess := range sessions {
		effect := sess.Effectiveness()
		sum += effect
		perTechnique[sess.TechniqueID] = append(perTechnique[sess.TechniqueID], effect)
	}
	stats.AvgEffect = float64(sum) / float64(len(sessions))

	best := 0
	bestAvg := float64(models.MinMoodScore - models.MaxMoodScore - 1)
	for id, effects := range perTechnique {
		total := 0
		for _, e := range effects {
			total += e
		}
		avg := float64(total) / float64(len(effects))
		// Ties break on the lower technique ID so repeated calls agree.
		if avg > bestAvg || (avg == bestAvg && (best == 0 || id < best)) {
			bestAvg = avg
			best = id
		}
	}
	stats.MostEffective = best

	return stats, nil
}
