package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	MaxAge time.Duration
}

// ProductResult is a product record plus where it came from
type ProductResult struct {
	Record   *domain.ProductRecord
	CacheHit bool
}

// ProductService handles ingredient lookup with caching
type ProductService struct {
	cache   domain.ProductCache
	scraper domain.ProductScraper
	maxAge  time.Duration
	logger  zerolog.Logger
}

// NewProductService creates a new product service with dependencies
func NewProductService(cache domain.ProductCache, scraper domain.ProductScraper, config ProductServiceConfig) *ProductService {
	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = 720 * time.Hour // Default 30 days
	}

	return &ProductService{
		cache:   cache,
		scraper: scraper,
		maxAge:  maxAge,
		logger:  observability.Component("product"),
	}
}

// GetProduct looks up ingredient data for a search query.
// Flow: check cache -> scrape -> cache under the raw query -> return.
// Cache hits are returned as stored, without re-stamping.
func (s *ProductService) GetProduct(ctx context.Context, query string) (*ProductResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("Missing product name")
	}

	cached, err := s.cache.Get(ctx, query, s.maxAge)
	if err == nil {
		s.logger.Info().Str("query", query).Msg("using cached data")
		return &ProductResult{Record: cached, CacheHit: true}, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		return nil, err
	}

	record, err := s.scraper.Scrape(ctx, query)
	if err != nil {
		return nil, err
	}

	if record.ProductName == "" {
		record.ProductName = query
	}

	if err := s.cache.Put(ctx, query, record); err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to cache product")
		return nil, err
	}

	return &ProductResult{Record: record, CacheHit: false}, nil
}
