package usecase

import (
	"strings"
	"testing"

	"github.com/porespective/backend/internal/domain"
)

func TestFormatIngredients(t *testing.T) {
	ingredients := []domain.IngredientEntry{
		{Name: "Water", Score: "1", Concerns: []string{"None"}},
		{Name: "Fragrance", Score: "8", Concerns: []string{"Allergen"}},
		{Name: "Glycerin", Score: "N/A", Concerns: []string{}},
	}

	want := "Water (Hazard Score: 1)\n  - Concerns: None\n" +
		"Fragrance (Hazard Score: 8)\n  - Concerns: Allergen\n" +
		"Glycerin (Hazard Score: N/A)\n  - Concerns: None"

	if got := FormatIngredients(ingredients); got != want {
		t.Errorf("FormatIngredients() = %q, want %q", got, want)
	}
}

func TestBuildRecommendationInput(t *testing.T) {
	ingredients := []domain.IngredientEntry{{Name: "Water", Score: "1", Concerns: []string{}}}

	t.Run("with profile", func(t *testing.T) {
		got := BuildRecommendationInput("CeraVe", ingredients, &domain.UserProfile{
			SkinType:     "Combination",
			SkinConcerns: "Hyperpigmentation",
			Allergies:    "None",
		})

		for _, want := range []string{
			"Product Name: CeraVe\n",
			"Ingredients:\nWater (Hazard Score: 1)\n  - Concerns: None\n",
			"7-10 suggests a higher hazard potential",
			"- Skin Type: Combination\n",
			"- Skin Concerns: Hyperpigmentation\n",
			"- Allergies: None",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("BuildRecommendationInput() missing %q in:\n%s", want, got)
			}
		}
	})

	t.Run("without profile", func(t *testing.T) {
		got := BuildRecommendationInput("CeraVe", ingredients, nil)

		if strings.Count(got, notProvided) != 3 {
			t.Errorf("BuildRecommendationInput() should mark all three profile fields as %q:\n%s", notProvided, got)
		}
	})
}
