package ewg

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// Config holds scraper settings
type Config struct {
	BaseURL        string        // e.g. https://www.ewg.org/skindeep
	WaitTimeout    time.Duration // bound on each page-readiness wait
	NormalizeQuery bool
}

// Scraper looks products up on EWG Skin Deep through a headless browser
type Scraper struct {
	browser Browser
	cfg     Config
	cleaner *QueryCleaner
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewScraper creates a scraper. perMinute <= 0 disables rate limiting.
func NewScraper(browser Browser, cfg Config, perMinute int) *Scraper {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	}

	return &Scraper{
		browser: browser,
		cfg:     cfg,
		cleaner: NewQueryCleaner(100),
		limiter: limiter,
		logger:  observability.Component("ewg"),
	}
}

// SearchURL builds the search page address for a query
func (s *Scraper) SearchURL(query string) string {
	if s.cfg.NormalizeQuery {
		query = s.cleaner.Clean(query)
	}
	return s.cfg.BaseURL + searchPathSuffix + strings.ReplaceAll(query, " ", "%20")
}

// Scrape searches for query, opens the first result and extracts its ingredient table.
// The page is released exactly once on every path.
func (s *Scraper) Scrape(ctx context.Context, query string) (*domain.ProductRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	page, release, err := s.browser.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser page: %w", err)
	}
	defer release()

	searchURL := s.SearchURL(query)
	s.logger.Info().Str("query", query).Str("url", searchURL).Msg("searching")

	productURL, err := s.firstResult(page, searchURL)
	if err != nil {
		s.logger.Info().Err(err).Str("query", query).Msg("no search result")
		return nil, fmt.Errorf("%w: %v", domain.ErrNoProductsFound, err)
	}
	s.logger.Info().Str("product_url", productURL).Msg("found product")

	if err := page.Navigate(productURL); err != nil {
		return nil, fmt.Errorf("%w: navigate: %v", domain.ErrIngredientTableTimeout, err)
	}
	if _, err := page.WaitElement(selIngredientCell, s.cfg.WaitTimeout); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIngredientTableTimeout, err)
	}

	result, err := extractProduct(page, productURL)
	if result != nil {
		for _, fe := range result.Fields {
			s.logger.Warn().Err(fe.Err).Str("field", fe.Field).Int("row", fe.Index).Str("product_url", productURL).Msg("field extraction fell back")
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product", result.Record.ProductName).
		Int("ingredients", len(result.Record.Ingredients)).
		Msg("extracted ingredients")

	return result.Record, nil
}

func (s *Scraper) firstResult(page Page, searchURL string) (string, error) {
	if err := page.Navigate(searchURL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	link, err := page.WaitElement(selSearchResult, s.cfg.WaitTimeout)
	if err != nil {
		return "", err
	}

	href, err := link.Attribute("href")
	if err != nil {
		return "", err
	}
	if href == nil || strings.TrimSpace(*href) == "" {
		return "", fmt.Errorf("result link has no href")
	}

	return resolveURL(searchURL, strings.TrimSpace(*href))
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse result link: %w", err)
	}
	return b.ResolveReference(r).String(), nil
}
