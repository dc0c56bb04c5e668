package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no products", ErrNoProductsFound, "no_products_found"},
		{"wrapped table timeout", fmt.Errorf("%w: context deadline exceeded", ErrIngredientTableTimeout), "ingredient_table_timeout"},
		{"no ingredients", ErrNoIngredientData, "no_ingredient_data"},
		{"cache io", fmt.Errorf("%w: permission denied", ErrCacheIO), "cache_io_error"},
		{"completion", ErrCompletionService, "completion_service_error"},
		{"validation", NewValidationError("Missing product_name"), "invalid_request"},
		{"rate limited", ErrRateLimited, "rate_limited"},
		{"session", fmt.Errorf("%w: S1", ErrSessionNotFound), "session_not_found"},
		{"unknown", errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

func TestFieldError(t *testing.T) {
	cause := errors.New("attribute missing")
	err := &FieldError{Field: "score", Index: 2, Err: cause}

	assert.ErrorIs(t, err, ErrExtractionField)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "score (row 2)")

	pageLevel := &FieldError{Field: "product_name", Index: -1, Err: cause}
	assert.NotContains(t, pageLevel.Error(), "row")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("Ingredient '%s' missing 'score' field", "Water")

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, "Ingredient 'Water' missing 'score' field", err.Error())
}

func TestProductRecord_IsFresh(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("never stamped is stale", func(t *testing.T) {
		r := &ProductRecord{}
		assert.False(t, r.IsFresh(now, time.Hour))
	})

	t.Run("inside window", func(t *testing.T) {
		r := &ProductRecord{}
		r.Stamp(now.Add(-30 * time.Minute))
		assert.True(t, r.IsFresh(now, time.Hour))
	})

	t.Run("exactly max age is stale", func(t *testing.T) {
		r := &ProductRecord{}
		r.Stamp(now.Add(-time.Hour))
		assert.False(t, r.IsFresh(now, time.Hour))
	})
}

func TestExchangesToMessages(t *testing.T) {
	msgs := ExchangesToMessages([]Exchange{{Input: "a", Output: "b"}, {Input: "c", Output: "d"}})

	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
		{Role: RoleAssistant, Content: "d"},
	}, msgs)
}
