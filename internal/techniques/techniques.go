// Package techniques provides the static relaxation-technique catalog and
// selection helpers.
//
// The catalog is read-only: categories map to ordered technique lists, and
// the only personalization is the coarse mood-band selection in PickForMood.
package techniques

import (
	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/util"
)

// Category names used by the catalog and the bot menus.
const (
	CategoryQuick      = "quick"
	CategoryMeditation = "meditation"
	CategorySleep      = "sleep"
)

// catalog is the fixed technique database. Order within a category is
// meaningful: PickForMood relies on it for the grounding technique.
var catalog = map[string][]models.Technique{
	CategoryQuick: {
		{
			ID:          1,
			Category:    CategoryQuick,
			Name:        "4-7-8 Breathing",
			Description: "Quickly calms the nervous system",
			Duration:    "3-5 minutes",
			Steps: []string{
				"Sit comfortably",
				"Exhale fully through your mouth",
				"Inhale through your nose for a count of 4",
				"Hold for a count of 7",
				"Exhale for a count of 8",
				"Repeat 4 times",
			},
		},
		{
			ID:          2,
			Category:    CategoryQuick,
			Name:        "5-4-3-2-1 Grounding",
			Description: "Brings you back to the present moment",
			Duration:    "5 minutes",
			Steps: []string{
				"Name 5 things you can see",
				"Find 4 things you can touch",
				"Listen for 3 sounds",
				"Notice 2 smells",
				"Recall 1 taste",
			},
		},
	},
	CategoryMeditation: {
		{
			ID:          3,
			Category:    CategoryMeditation,
			Name:        "Mindfulness Meditation",
			Description: "Observing thoughts without judgement",
			Duration:    "10-15 minutes",
			Steps: []string{
				"Sit with a straight back",
				"Close your eyes",
				"Focus on your breathing",
				"Notice thoughts without judging them",
				"Return to your breath",
			},
		},
	},
	CategorySleep: {
		{
			ID:          4,
			Category:    CategorySleep,
			Name:        "Falling-Asleep Routine",
			Description: "Progressive relaxation before sleep",
			Duration:    "10 minutes",
			Steps: []string{
				"Lie down in bed",
				"Relax your toes",
				"Move the relaxation up through your body",
				"Imagine a feeling of heaviness",
				"Breathe deeply",
			},
		},
	},
}

// Categories returns the catalog category names with at least one technique.
func Categories() []string {
	return []string{CategoryQuick, CategoryMeditation, CategorySleep}
}

// Pick returns the ordered technique list for a category.
func Pick(category string) ([]models.Technique, error) {
	techniques, ok := catalog[category]
	if !ok || len(techniques) == 0 {
		return nil, models.ErrCategoryNotFound
	}
	out := make([]models.Technique, len(techniques))
	copy(out, techniques)
	return out, nil
}

// ByID returns the technique with the given id.
func ByID(id int) (models.Technique, error) {
	for _, techniques := range catalog {
		for _, t := range techniques {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return models.Technique{}, models.ErrTechniqueNotFound
}

// PickRandom returns a uniformly random technique over the flattened set of
// all techniques across all categories.
func PickRandom() models.Technique {
	var all []models.Technique
	for _, category := range Categories() {
		all = append(all, catalog[category]...)
	}
	return util.PickOne(all)
}

// PickForMood selects a technique by mood band: very low scores get the
// fixed grounding technique, low scores a random quick technique, middling
// scores a meditation, and good scores a sleep or maintenance technique.
func PickForMood(score int) models.Technique {
	switch {
	case score <= 3:
		return catalog[CategoryQuick][1] // 5-4-3-2-1 grounding
	case score <= 5:
		return util.PickOne(catalog[CategoryQuick])
	case score <= 7:
		return util.PickOne(catalog[CategoryMeditation])
	default:
		return util.PickOne(catalog[CategorySleep])
	}
}
