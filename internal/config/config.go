package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kakeibo/internal/classify"
)

type Config struct {
	// HTTP Server
	Port string

	// Object store
	StoreBackend string // "s3" or "fs"
	S3Bucket     string
	Prefix       string
	DataDir      string

	// Loader
	LoaderConcurrency int
	LoaderMaxRetries  int

	// Raw-load memoization
	CacheTTL     time.Duration
	CacheEntries int

	// Classification
	IncomeMarker        string
	SalaryMarker        string
	BonusMarker         string
	FoodMarker          string
	FixedCostCategories []string
	FixedCostKeywords   []string
	FixedCostStrategy   string

	// Food drill-down
	WorkdayMinorCategory string

	// Statement filing: days past a statement's start date that land in
	// its calendar month. Payroll-convention specific, so configurable.
	StatementOffsetDays int
}

func Load() *Config {
	defaults := classify.DefaultConfig()

	cfg := &Config{
		Port: getEnv("PORT", "8083"),

		StoreBackend: getEnv("STORE_BACKEND", "s3"),
		S3Bucket:     getEnv("S3_BUCKET_NAME", ""),
		Prefix:       getEnv("S3_PREFIX", ""),
		DataDir:      getEnv("DATA_DIR", "./data"),

		LoaderConcurrency: getEnvInt("LOADER_CONCURRENCY", 4),
		LoaderMaxRetries:  getEnvInt("LOADER_MAX_RETRIES", 3),

		CacheTTL:     getEnvDuration("CACHE_TTL", time.Hour),
		CacheEntries: getEnvInt("CACHE_ENTRIES", 8),

		IncomeMarker:        getEnv("INCOME_MARKER", defaults.IncomeMarker),
		SalaryMarker:        getEnv("SALARY_MARKER", defaults.SalaryMarker),
		BonusMarker:         getEnv("BONUS_MARKER", defaults.BonusMarker),
		FoodMarker:          getEnv("FOOD_MARKER", defaults.FoodMarker),
		FixedCostCategories: getEnvList("FIXED_COST_CATEGORIES", defaults.FixedCostCategories),
		FixedCostKeywords:   getEnvList("FIXED_COST_KEYWORDS", defaults.FixedCostKeywords),
		FixedCostStrategy:   getEnv("FIXED_COST_STRATEGY", string(classify.StrategyCategoryList)),

		WorkdayMinorCategory: getEnv("WORKDAY_MINOR_CATEGORY", "食費-会"),

		StatementOffsetDays: getEnvInt("STATEMENT_MONTH_OFFSET_DAYS", 32),
	}

	return cfg
}

// ClassifierConfig assembles the classification policy from the loaded
// values. Configuration is passed in explicitly; the classifier holds no
// package-level state.
func (c *Config) ClassifierConfig() classify.Config {
	return classify.Config{
		IncomeMarker:        c.IncomeMarker,
		SalaryMarker:        c.SalaryMarker,
		BonusMarker:         c.BonusMarker,
		FoodMarker:          c.FoodMarker,
		FixedCostCategories: c.FixedCostCategories,
		FixedCostKeywords:   c.FixedCostKeywords,
		Strategy:            classify.FixedCostStrategy(c.FixedCostStrategy),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "s3":
		if c.S3Bucket == "" {
			errors = append(errors, "S3 bucket name is required when using the s3 store backend")
		}
	case "fs":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using the fs store backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be 's3' or 'fs'", c.StoreBackend))
	}

	switch classify.FixedCostStrategy(c.FixedCostStrategy) {
	case classify.StrategyCategoryList:
		if len(c.FixedCostCategories) == 0 {
			errors = append(errors, "fixed-cost category list cannot be empty with the category-list strategy")
		}
	case classify.StrategyKeywordMatch:
		if len(c.FixedCostKeywords) == 0 {
			errors = append(errors, "fixed-cost keyword list cannot be empty with the keyword-match strategy")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid fixed-cost strategy '%s': must be 'category-list' or 'keyword-match'", c.FixedCostStrategy))
	}

	if c.IncomeMarker == "" {
		errors = append(errors, "income marker cannot be empty")
	}
	if c.SalaryMarker == "" {
		errors = append(errors, "salary marker cannot be empty")
	}
	if c.FoodMarker == "" {
		errors = append(errors, "food marker cannot be empty")
	}

	if c.LoaderConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid loader concurrency %d: must be at least 1", c.LoaderConcurrency))
	} else if c.LoaderConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid loader concurrency %d: must be at most 64", c.LoaderConcurrency))
	}
	if c.LoaderMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("invalid loader max retries %d: cannot be negative", c.LoaderMaxRetries))
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}
	if c.CacheEntries < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache entry limit %d: must be at least 1", c.CacheEntries))
	}

	if c.StatementOffsetDays < 28 || c.StatementOffsetDays > 62 {
		errors = append(errors, fmt.Sprintf("invalid statement month offset %d: must map the start date into the following month (28-62 days)", c.StatementOffsetDays))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
