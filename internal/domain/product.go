package domain

import "time"

// ScoreNotAvailable is the hazard score used when a row has no readable score
const ScoreNotAvailable = "N/A"

// UnknownProductName is used when the product heading cannot be read
const UnknownProductName = "Unknown Product"

// ProductRecord is one scraped or cached snapshot of a product
type ProductRecord struct {
	ProductURL  string            `json:"product_url"`
	ProductName string            `json:"product_name"`
	Ingredients []IngredientEntry `json:"ingredients"`
	LastUpdated *time.Time        `json:"last_updated,omitempty"` // nil until first cached
}

// IngredientEntry is a single ingredient row in page display order
type IngredientEntry struct {
	Name     string   `json:"name"`
	Score    string   `json:"score"`    // "1".."10" or "N/A"
	Concerns []string `json:"concerns"` // never nil once extracted
}

// UserProfile carries optional skin details used to personalise a recommendation
type UserProfile struct {
	SkinType     string `json:"skinType,omitempty"`
	SkinConcerns string `json:"skinConcerns,omitempty"`
	Allergies    string `json:"allergies,omitempty"`
}

// Stamp sets LastUpdated to t
func (r *ProductRecord) Stamp(t time.Time) {
	stamped := t
	r.LastUpdated = &stamped
}

// IsFresh reports whether the record was written less than maxAge before now
func (r *ProductRecord) IsFresh(now time.Time, maxAge time.Duration) bool {
	if r.LastUpdated == nil {
		return false
	}
	return now.Sub(*r.LastUpdated) < maxAge
}
