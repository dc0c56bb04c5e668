package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// SummaryService produces short benefit tags for an ingredient list
type SummaryService struct {
	llm    domain.CompletionClient
	cache  domain.SummaryCache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSummaryService creates a summary service
func NewSummaryService(llm domain.CompletionClient, cache domain.SummaryCache, ttl time.Duration) *SummaryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SummaryService{
		llm:    llm,
		cache:  cache,
		ttl:    ttl,
		logger: observability.Component("summary"),
	}
}

// Summarize returns cached tags for an equivalent ingredient list or asks the model
func (s *SummaryService) Summarize(ctx context.Context, ingredients []domain.IngredientEntry) ([]string, error) {
	if len(ingredients) == 0 {
		return nil, domain.NewValidationError("Missing ingredients")
	}

	key, err := summaryKey(ingredients)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached, nil
	}

	reply, err := s.llm.Complete(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: summarySystemPrompt},
		{Role: domain.RoleUser, Content: "Ingredients:\n" + FormatIngredients(ingredients)},
	})
	if err != nil {
		return nil, err
	}

	tags, err := parseSummary(reply)
	if err != nil {
		s.logger.Warn().Err(err).Str("reply", reply).Msg("unparsable summary")
		return nil, err
	}

	if err := s.cache.Set(ctx, key, tags, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache summary")
	}

	return tags, nil
}

// summaryKey hashes the ingredient list in the order given; page order is part of the identity
func summaryKey(ingredients []domain.IngredientEntry) (string, error) {
	data, err := json.Marshal(ingredients)
	if err != nil {
		return "", fmt.Errorf("encode ingredients: %w", err)
	}

	sum := sha256.Sum256(data)
	return "summary:" + hex.EncodeToString(sum[:]), nil
}

// parseSummary extracts a JSON string array from a model reply, tolerating code fences and surrounding prose
func parseSummary(reply string) ([]string, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: summary is not a JSON array", domain.ErrCompletionService)
	}

	var tags []string
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &tags); err != nil {
		return nil, fmt.Errorf("%w: decode summary: %v", domain.ErrCompletionService, err)
	}

	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty summary", domain.ErrCompletionService)
	}
	return out, nil
}
