package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Fetcher kinds
const (
	FetcherHTTP   = "http"
	FetcherChrome = "chrome"
)

// Store kinds
const (
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	// Source site configuration
	BaseURL  string
	ListPath string

	// Fetcher configuration
	Fetcher     string
	ChromeWSURL string

	// Politeness delays between consecutive requests
	PageDelay   time.Duration
	DetailDelay time.Duration
	UpsertDelay time.Duration

	// Fetch block window after a rate-limited response
	FetchBlock time.Duration

	// Store configuration
	Store       string
	SupabaseURL string
	SupabaseKey string
	PostgresDSN string

	// Artifact configuration
	ArtifactPath string

	// Memcache configuration (fetch block cache, optional)
	MemcacheAddr string

	// Redis configuration (record publishing, optional)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_MS", "2000"))
	detailDelay, _ := strconv.Atoi(getEnv("DETAIL_DELAY_MS", "1000"))
	upsertDelay, _ := strconv.Atoi(getEnv("UPSERT_DELAY_MS", "500"))
	fetchBlock, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))

	return Config{
		BaseURL:           getEnv("SCHOOL_BASE_URL", "https://outgoing-iep.nccu.edu.tw"),
		ListPath:          getEnv("SCHOOL_LIST_PATH", "/school-list"),
		Fetcher:           getEnv("FETCHER", FetcherHTTP),
		ChromeWSURL:       getEnv("CHROME_WS_URL", ""),
		PageDelay:         time.Duration(pageDelay) * time.Millisecond,
		DetailDelay:       time.Duration(detailDelay) * time.Millisecond,
		UpsertDelay:       time.Duration(upsertDelay) * time.Millisecond,
		FetchBlock:        time.Duration(fetchBlock) * time.Second,
		Store:             getEnv("STORE", StoreSupabase),
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		ArtifactPath:      getEnv("ARTIFACT_PATH", "schools_data.json"),
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "schools"),
		RedisStreamMaxLen: redisStreamMaxLen,
		Environment:       getEnv("SCHOOLCRAWLER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SCHOOL_BASE_URL must be an absolute URL, got %q", c.BaseURL)
	}

	if c.Fetcher != FetcherHTTP && c.Fetcher != FetcherChrome {
		return fmt.Errorf("FETCHER must be %q or %q, got %q", FetcherHTTP, FetcherChrome, c.Fetcher)
	}

	switch c.Store {
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required when STORE=%s", StoreSupabase)
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreSupabase, StorePostgres, c.Store)
	}

	if c.PageDelay < 0 || c.DetailDelay < 0 || c.UpsertDelay < 0 {
		return fmt.Errorf("politeness delays must not be negative")
	}

	if c.ArtifactPath == "" {
		return fmt.Errorf("ARTIFACT_PATH must not be empty")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
