package techniques

import (
	"testing"

	"github.com/TsarRusi/mindmate/internal/models"
)

func TestPickKnownCategories(t *testing.T) {
	for _, category := range Categories() {
		techniques, err := Pick(category)
		if err != nil {
			t.Fatalf("Pick(%s) failed: %v", category, err)
		}
		if len(techniques) == 0 {
			t.Errorf("Pick(%s) returned no techniques", category)
		}
		for _, tech := range techniques {
			if tech.Name == "" || len(tech.Steps) == 0 {
				t.Errorf("incomplete technique in %s: %+v", category, tech)
			}
		}
	}
}

func TestPickUnknownCategory(t *testing.T) {
	_, err := Pick("hypnosis")
	if err != models.ErrCategoryNotFound {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestByID(t *testing.T) {
	tech, err := ByID(2)
	if err != nil {
		t.Fatalf("ByID(2) failed: %v", err)
	}
	if tech.Name != "5-4-3-2-1 Grounding" {
		t.Errorf("unexpected technique: %s", tech.Name)
	}
	if _, err := ByID(99); err != models.ErrTechniqueNotFound {
		t.Errorf("expected ErrTechniqueNotFound, got %v", err)
	}
}

// Distributional smoke test: over 100 picks every technique in the catalog
// should appear at least once with overwhelming probability.
func TestPickRandomCoversCatalog(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		seen[PickRandom().ID] = true
	}
	total := 0
	for _, category := range Categories() {
		techniques, _ := Pick(category)
		total += len(techniques)
	}
	if len(seen) != total {
		t.Errorf("expected all %d techniques to appear over 100 picks, saw %d", total, len(seen))
	}
}

func TestPickForMoodBands(t *testing.T) {
	// Critically low mood always gets the fixed grounding technique.
	for _, score := range []int{1, 2, 3} {
		if tech := PickForMood(score); tech.ID != 2 {
			t.Errorf("PickForMood(%d) = technique %d, want grounding (2)", score, tech.ID)
		}
	}
	for _, score := range []int{4, 5} {
		if tech := PickForMood(score); tech.Category != CategoryQuick {
			t.Errorf("PickForMood(%d) category = %s, want quick", score, tech.Category)
		}
	}
	for _, score := range []int{6, 7} {
		if tech := PickForMood(score); tech.Category != CategoryMeditation {
			t.Errorf("PickForMood(%d) category = %s, want meditation", score, tech.Category)
		}
	}
	for _, score := range []int{8, 10} {
		if tech := PickForMood(score); tech.Category != CategorySleep {
			t.Errorf("PickForMood(%d) category = %s, want sleep", score, tech.Category)
		}
	}
}
