package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends
const (
	CacheTypeFile   = "file"
	CacheTypeRedis  = "redis"
	CacheTypeSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	LLM       LLMConfig
	Cache     CacheConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScraperConfig holds settings for the ingredient database scraper
type ScraperConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	Headless          bool          `mapstructure:"headless"`
	BrowserBin        string        `mapstructure:"browser_bin"`
	ControlURL        string        `mapstructure:"control_url"` // attach to a running Chrome instead of launching
	NormalizeQuery    bool          `mapstructure:"normalize_query"`
}

// LLMConfig holds completion service configuration
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "file", "redis" or "sqlite"
	Path       string        `mapstructure:"path"`
	RedisURL   string        `mapstructure:"redis_url"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	SummaryTTL time.Duration `mapstructure:"summary_ttl"`
}

// SessionConfig holds conversation session configuration
type SessionConfig struct {
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	IDLength        int           `mapstructure:"id_length"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP   int `mapstructure:"per_ip"`  // requests per minute
	Scraper int `mapstructure:"scraper"` // scrapes per minute
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/porespective/")

	v.SetEnvPrefix("PORESPECTIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding existing variables
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("scraper.base_url", "https://www.ewg.org/skindeep")
	v.SetDefault("scraper.wait_timeout", "10s")
	v.SetDefault("scraper.navigation_timeout", "30s")
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.browser_bin", "")
	v.SetDefault("scraper.control_url", "")
	v.SetDefault("scraper.normalize_query", false)

	v.SetDefault("llm.base_url", "http://127.0.0.1:11500")
	v.SetDefault("llm.model", "llama3.2")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("cache.type", CacheTypeFile)
	v.SetDefault("cache.path", "product_cache.json")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.max_age", "720h") // 30 days
	v.SetDefault("cache.summary_ttl", "24h")

	v.SetDefault("session.idle_ttl", "24h")
	v.SetDefault("session.cleanup_interval", "10m")
	v.SetDefault("session.id_length", 16)

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.scraper", 30)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Cache.Type {
	case CacheTypeFile, CacheTypeSQLite:
		if config.Cache.Path == "" {
			return fmt.Errorf("cache path is required when cache type is '%s'", config.Cache.Type)
		}
	case CacheTypeRedis:
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'file', 'redis' or 'sqlite', got: %s", config.Cache.Type)
	}

	if config.Cache.MaxAge <= 0 {
		return fmt.Errorf("cache max age must be positive, got: %s", config.Cache.MaxAge)
	}

	if config.Scraper.WaitTimeout <= 0 {
		return fmt.Errorf("scraper wait timeout must be positive, got: %s", config.Scraper.WaitTimeout)
	}

	if config.LLM.BaseURL == "" {
		return fmt.Errorf("LLM base URL is required (set PORESPECTIVE_LLM_BASE_URL)")
	}

	if config.LLM.Model == "" {
		return fmt.Errorf("LLM model is required (set PORESPECTIVE_LLM_MODEL)")
	}

	if config.Session.IDLength <= 0 {
		return fmt.Errorf("session id length must be positive, got: %d", config.Session.IDLength)
	}

	return nil
}
