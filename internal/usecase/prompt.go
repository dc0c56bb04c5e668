package usecase

import (
	"fmt"
	"strings"

	"github.com/porespective/backend/internal/domain"
)

const notProvided = "Not provided"

const recommendationSystemPrompt = `You are a helpful skincare recommendation assistant.
You receive a product's ingredient list with EWG hazard scores and known concerns, plus the user's skin profile.
Decide whether this user should use the product and explain why in under 80 words.
Mention the highest-risk ingredients by name and relate them to the user's skin type, concerns and allergies when they are known.`

const followUpSystemPrompt = `You are a helpful skincare recommendation assistant continuing a conversation.
Earlier turns contain the product you analysed and your recommendation.
Answer the user's follow-up question with reference to that recommendation. Be concise and practical.
If the question is unrelated to skincare, say so briefly.`

const summarySystemPrompt = `You summarise skincare ingredient lists.
Reply with a JSON array of at most five short benefit tags for the product as a whole, for example ["Hydrating", "Fragrance-free"].
Reply with the JSON array only.`

const hazardScale = "The hazard score represents the potential risk level of the ingredient. " +
	"A lower score (1-2) means it's considered low risk, 3-6 indicates moderate risk, " +
	"and 7-10 suggests a higher hazard potential. Please analyze the safety of the product based on these scores."

// FormatIngredients renders one block per ingredient:
//
//	Water (Hazard Score: 1)
//	  - Concerns: None
func FormatIngredients(ingredients []domain.IngredientEntry) string {
	blocks := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		concerns := "None"
		if len(ing.Concerns) > 0 {
			concerns = strings.Join(ing.Concerns, ", ")
		}
		blocks = append(blocks, fmt.Sprintf("%s (Hazard Score: %s)\n  - Concerns: %s", ing.Name, ing.Score, concerns))
	}
	return strings.Join(blocks, "\n")
}

// BuildRecommendationInput renders the user turn for a recommendation request
func BuildRecommendationInput(productName string, ingredients []domain.IngredientEntry, profile *domain.UserProfile) string {
	var p domain.UserProfile
	if profile != nil {
		p = *profile
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Product Name: %s\n", productName)
	fmt.Fprintf(&b, "Ingredients:\n%s\n\n", FormatIngredients(ingredients))
	fmt.Fprintf(&b, "%s\n\n", hazardScale)
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Skin Type: %s\n", orNotProvided(p.SkinType))
	fmt.Fprintf(&b, "- Skin Concerns: %s\n", orNotProvided(p.SkinConcerns))
	fmt.Fprintf(&b, "- Allergies: %s", orNotProvided(p.Allergies))
	return b.String()
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}
