package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProductsFound is returned when the search page yields no result link in time
	ErrNoProductsFound = errors.New("no products found")

	// ErrIngredientTableTimeout is returned when the product page never renders its ingredient table
	ErrIngredientTableTimeout = errors.New("ingredient table did not load")

	// ErrNoIngredientData is returned when the ingredient table is present but no rows parse
	ErrNoIngredientData = errors.New("no ingredient data found")

	// ErrExtractionField marks a single field that could not be read and was replaced by a fallback
	ErrExtractionField = errors.New("extraction field unavailable")

	// ErrCacheMiss is returned when data is absent or stale in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheIO is returned when the cache medium cannot be read or written
	ErrCacheIO = errors.New("cache storage unavailable")

	// ErrCompletionService is returned when the language model call fails
	ErrCompletionService = errors.New("completion service failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSessionNotFound is returned when a session id is not in the registry
	ErrSessionNotFound = errors.New("session not found")
)

// FieldError describes a per-field extraction failure that was absorbed with a fallback
type FieldError struct {
	Field string // "product_name", "score", "concerns", "name"
	Index int    // ingredient row index, -1 for page-level fields
	Err   error
}

func (e *FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %v", ErrExtractionField, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s (row %d): %v", ErrExtractionField, e.Field, e.Index, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrExtractionField, e.Err}
}

// ValidationError carries a client-facing message for a rejected request
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Reason maps an error to a short machine-readable reason
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoProductsFound):
		return "no_products_found"
	case errors.Is(err, ErrIngredientTableTimeout):
		return "ingredient_table_timeout"
	case errors.Is(err, ErrNoIngredientData):
		return "no_ingredient_data"
	case errors.Is(err, ErrCacheIO):
		return "cache_io_error"
	case errors.Is(err, ErrCompletionService):
		return "completion_service_error"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal_error"
	}
}
