// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for SQLite databases (always absolute)
	DatabaseURL       string // PostgreSQL DSN, used when UseSQLite is false
	LogLevel          string
	ReportingCurrency string
	Port              int
	DevMode           bool
	UseSQLite         bool
	Providers         *ProviderConfig
	Scheduler         *SchedulerConfig
}

// ProviderConfig holds outbound data-source settings
type ProviderConfig struct {
	PriceProviders     []string // Priority order, first valid quote wins
	RateProviders      []string // Priority order, first valid rate wins
	AlphaVantageAPIKey string
	FinnhubAPIKey      string
	FixerAPIKey        string
	CurrencyAPIKey     string
	ProviderTimeout    time.Duration // Per-call bound applied on top of each client's own timeout
	BatchSpacing       time.Duration // Minimum gap between consecutive tickers in a batch
	RateCacheTTL       time.Duration
}

// SchedulerConfig holds cron schedules for background jobs
type SchedulerConfig struct {
	RateSyncSchedule string
	CleanupSchedule  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PRICEFOLIO_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Port:              getEnvAsInt("PORT", 8001),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		UseSQLite:         getEnvAsBool("USE_SQLITE", true),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ReportingCurrency: strings.ToUpper(getEnv("REPORTING_CURRENCY", "EUR")),
		Providers:         loadProviderConfig(),
		Scheduler: &SchedulerConfig{
			RateSyncSchedule: getEnv("RATE_SYNC_SCHEDULE", "@every 30m"),
			CleanupSchedule:  getEnv("CLEANUP_SCHEDULE", "@daily"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		PriceProviders:     getEnvAsList("PRICE_PROVIDERS", []string{"yahoo", "alphavantage", "marketwatch", "finnhub"}),
		RateProviders:      getEnvAsList("RATE_PROVIDERS", []string{"exchangerate-api", "fixer", "currencyapi"}),
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", "demo"),
		FinnhubAPIKey:      getEnv("FINNHUB_API_KEY", "demo"),
		FixerAPIKey:        getEnv("FIXER_API_KEY", "demo"),
		CurrencyAPIKey:     getEnv("CURRENCYAPI_API_KEY", "demo"),
		ProviderTimeout:    getEnvAsDuration("PROVIDER_TIMEOUT", 8*time.Second),
		BatchSpacing:       getEnvAsDuration("BATCH_SPACING", 100*time.Millisecond),
		RateCacheTTL:       getEnvAsDuration("RATE_CACHE_TTL", time.Hour),
	}
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if money.GetCurrency(c.ReportingCurrency) == nil {
		return fmt.Errorf("unknown reporting currency %q", c.ReportingCurrency)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !c.UseSQLite && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when USE_SQLITE=false")
	}

	if p := c.Providers; p != nil {
		if p.ProviderTimeout <= 0 {
			return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
		}
		if p.BatchSpacing < 0 {
			return fmt.Errorf("BATCH_SPACING must not be negative")
		}
		if p.RateCacheTTL <= 0 {
			return fmt.Errorf("RATE_CACHE_TTL must be positive")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("8s") or bare integers as seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
