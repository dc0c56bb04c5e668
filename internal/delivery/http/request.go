package http

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/porespective/backend/internal/domain"
)

type recommendRequest struct {
	ProductName string              `json:"product_name"`
	Ingredients json.RawMessage     `json:"ingredients"`
	SessionID   string              `json:"session_id"`
	UserProfile *domain.UserProfile `json:"user_profile"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type summaryRequest struct {
	Ingredients json.RawMessage `json:"ingredients"`
}

// parseIngredients validates a client-supplied ingredient list.
// Scores may be JSON strings or numbers; concerns must be a list of strings.
func parseIngredients(raw json.RawMessage) ([]domain.IngredientEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, domain.NewValidationError("Missing ingredients")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, domain.NewValidationError("Invalid ingredients (Should be a list)")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("Missing ingredients")
	}

	ingredients := make([]domain.IngredientEntry, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, domain.NewValidationError("Ingredient missing 'name' field")
		}

		var name string
		if err := json.Unmarshal(fields["name"], &name); err != nil || name == "" {
			return nil, domain.NewValidationError("Ingredient missing 'name' field")
		}

		score, ok := scoreText(fields["score"])
		if !ok {
			return nil, domain.NewValidationError("Ingredient '%s' missing 'score' field", name)
		}

		var concerns []string
		if err := json.Unmarshal(fields["concerns"], &concerns); err != nil || concerns == nil {
			return nil, domain.NewValidationError("Ingredient '%s' missing 'concerns' field or the 'concern' field is not a list", name)
		}

		ingredients = append(ingredients, domain.IngredientEntry{Name: name, Score: score, Concerns: concerns})
	}
	return ingredients, nil
}

// scoreText accepts "4", 4 or 4.0 and returns the display text
func scoreText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
