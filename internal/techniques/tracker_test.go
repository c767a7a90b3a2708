package techniques

import (
	"testing"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/store"
)

func TestTrackerRecordSessionValidation(t *testing.T) {
	tr := NewTracker(store.NewInMemoryStore())

	if err := tr.RecordSession("", 1, 5, 3, 6); err != models.ErrEmptyUserID {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
	if err := tr.RecordSession("u1", 99, 5, 3, 6); err != models.ErrTechniqueNotFound {
		t.Errorf("expected ErrTechniqueNotFound, got %v", err)
	}
	if err := tr.RecordSession("u1", 1, 5, 0, 6); err != models.ErrInvalidMoodScore {
		t.Errorf("expected ErrInvalidMoodScore for mood_before, got %v", err)
	}
	if err := tr.RecordSession("u1", 1, 5, 3, 11); err != models.ErrInvalidMoodScore {
		t.Errorf("expected ErrInvalidMoodScore for mood_after, got %v", err)
	}
}

func TestTrackerStatsEmpty(t *testing.T) {
	tr := NewTracker(store.NewInMemoryStore())
	stats, err := tr.Stats("u1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalSessions != 0 || stats.Favorites != 0 || stats.AvgEffect != 0 || stats.MostEffective != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestTrackerStats(t *testing.T) {
	tr := NewTracker(store.NewInMemoryStore())

	// Technique 1: effects +3, +1. Technique 3: effect +4.
	mustRecord := func(techniqueID, before, after int) {
		t.Helper()
		if err := tr.RecordSession("u1", techniqueID, 5, before, after); err != nil {
			t.Fatalf("RecordSession failed: %v", err)
		}
	}
	mustRecord(1, 3, 6)
	mustRecord(1, 4, 5)
	mustRecord(3, 2, 6)

	if err := tr.AddFavorite("u1", 1); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	stats, err := tr.Stats("u1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalSessions != 3 {
		t.Errorf("expected 3 sessions, got %d", stats.TotalSessions)
	}
	if stats.Favorites != 1 {
		t.Errorf("expected 1 favorite, got %d", stats.Favorites)
	}
	want := float64(3+1+4) / 3
	if stats.AvgEffect != want {
		t.Errorf("expected avg effectiveness %.3f, got %.3f", want, stats.AvgEffect)
	}
	if stats.MostEffective != 3 {
		t.Errorf("expected technique 3 as most effective, got %d", stats.MostEffective)
	}
}

func TestTrackerStatsTieBreaksOnTechniqueID(t *testing.T) {
	tr := NewTracker(store.NewInMemoryStore())

	// Techniques 2 and 4 both average +3; the lower ID must win every run.
	if err := tr.RecordSession("u1", 4, 5, 3, 6); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	if err := tr.RecordSession("u1", 2, 5, 4, 7); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		stats, err := tr.Stats("u1")
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.MostEffective != 2 {
			t.Fatalf("expected technique 2 on tie, got %d", stats.MostEffective)
		}
	}
}

func TestTrackerRateValidation(t *testing.T) {
	tr := NewTracker(store.NewInMemoryStore())
	if err := tr.Rate("u1", 1, 0); err != models.ErrInvalidRating {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}
	if err := tr.Rate("u1", 1, 6); err != models.ErrInvalidRating {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}
	if err := tr.Rate("u1", 1, 4); err != nil {
		t.Errorf("expected valid rating to succeed, got %v", err)
	}
}
