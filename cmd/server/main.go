package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/porespective/backend/config"
	httpDelivery "github.com/porespective/backend/internal/delivery/http"
	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/cache"
	"github.com/porespective/backend/internal/infrastructure/ewg"
	"github.com/porespective/backend/internal/infrastructure/observability"
	"github.com/porespective/backend/internal/infrastructure/ollama"
	"github.com/porespective/backend/internal/session"
	"github.com/porespective/backend/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("porespective-backend", cfg.Server.Environment)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache_type", cfg.Cache.Type).
		Dur("cache_max_age", cfg.Cache.MaxAge).
		Msg("starting Porespective backend")

	store, closeStore, err := newProductStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStore()

	browser := ewg.NewRodBrowser(ewg.RodOptions{
		Bin:               cfg.Scraper.BrowserBin,
		ControlURL:        cfg.Scraper.ControlURL,
		Headless:          cfg.Scraper.Headless,
		NavigationTimeout: cfg.Scraper.NavigationTimeout,
	})
	defer func() {
		if err := browser.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close browser")
		}
	}()

	scraper := ewg.NewScraper(browser, ewg.Config{
		BaseURL:        cfg.Scraper.BaseURL,
		WaitTimeout:    cfg.Scraper.WaitTimeout,
		NormalizeQuery: cfg.Scraper.NormalizeQuery,
	}, cfg.RateLimit.Scraper)

	llm, err := ollama.NewClient(ollama.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create completion client: %w", err)
	}
	log.Info().Str("base_url", cfg.LLM.BaseURL).Str("model", cfg.LLM.Model).Msg("completion service configured")

	registry := session.NewRegistry(cfg.Session.IdleTTL)
	registry.StartCleanup(ctx, cfg.Session.CleanupInterval)

	summaryCache := cache.NewMemoryCache[[]string]()
	summaryCache.StartCleanup(ctx, cfg.Session.CleanupInterval)

	productService := usecase.NewProductService(store, scraper, usecase.ProductServiceConfig{
		MaxAge: cfg.Cache.MaxAge,
	})
	conversationService := usecase.NewConversationService(llm, registry, cfg.Session.IDLength)
	summaryService := usecase.NewSummaryService(llm, summaryCache, cfg.Cache.SummaryTTL)

	handler := httpDelivery.NewHandler(productService, conversationService, summaryService)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newProductStore builds the configured product cache and a func releasing it
func newProductStore(ctx context.Context, cfg config.CacheConfig) (domain.ProductCache, func(), error) {
	switch cfg.Type {
	case config.CacheTypeRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using redis product cache")
		return cache.NewRedisStore(client, cfg.MaxAge), closer("redis", client), nil

	case config.CacheTypeSQLite:
		store, err := cache.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		purged, err := store.PurgeOlderThan(ctx, time.Now().Add(-cfg.MaxAge))
		if err != nil {
			log.Warn().Err(err).Msg("failed to purge stale products")
		}
		log.Info().Str("path", cfg.Path).Int64("purged", purged).Msg("using sqlite product cache")
		return store, closer("sqlite", store), nil

	default:
		log.Info().Str("path", cfg.Path).Msg("using file product cache")
		return cache.NewFileStore(cfg.Path), func() {}, nil
	}
}

func closer(name string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Str("store", name).Msg("failed to close product cache")
		}
	}
}
