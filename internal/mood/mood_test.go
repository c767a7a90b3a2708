package mood

import (
	"testing"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/store"
)

func TestRecordRejectsOutOfRangeScores(t *testing.T) {
	st := store.NewInMemoryStore()
	l := NewLog(st)

	for _, score := range []int{0, -1, 11, 42} {
		if _, err := l.Record("u1", score, ""); err != models.ErrInvalidMoodScore {
			t.Errorf("expected ErrInvalidMoodScore for %d, got %v", score, err)
		}
	}

	// Nothing must be stored after rejected inputs.
	entries, err := st.MoodEntries("u1")
	if err != nil {
		t.Fatalf("MoodEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no stored entries after rejections, got %d", len(entries))
	}
}

func TestRecordAck(t *testing.T) {
	l := NewLog(store.NewInMemoryStore())

	ack, err := l.Record("u1", 2, "")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if ack.Count != 1 || ack.Band != models.MoodBandLow || ack.Encouragement == "" {
		t.Errorf("unexpected ack: %+v", ack)
	}

	ack, err = l.Record("u1", 8, "good walk")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if ack.Count != 2 || ack.Band != models.MoodBandHigh {
		t.Errorf("unexpected ack: %+v", ack)
	}
}

func TestSummarizeExactAverage(t *testing.T) {
	l := NewLog(store.NewInMemoryStore())

	for _, score := range []int{3, 7, 5} {
		if _, err := l.Record("u1", score, ""); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	summary, err := l.Summarize("u1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if summary.Average != 5.0 {
		t.Errorf("expected average 5.0, got %v", summary.Average)
	}
	if summary.Last != 5 {
		t.Errorf("expected last 5, got %d", summary.Last)
	}
}

func TestSummarizeNoData(t *testing.T) {
	l := NewLog(store.NewInMemoryStore())
	if _, err := l.Summarize("nobody"); err != models.ErrNoMoodData {
		t.Errorf("expected ErrNoMoodData, got %v", err)
	}
}
