package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"sjsage522/schoolcrawler/config"
	"sjsage522/schoolcrawler/internal/crawler"
	"sjsage522/schoolcrawler/logger"
	"sjsage522/schoolcrawler/services/artifact"
	"sjsage522/schoolcrawler/services/cache"
	"sjsage522/schoolcrawler/services/publisher"
	"sjsage522/schoolcrawler/services/storage"
	"sjsage522/schoolcrawler/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := config.LoadConfig()
	log := logger.New(cfg.Environment)

	if err := run(context.Background(), &cfg, log); err != nil {
		log.Error().Err(err).Msg("Run aborted")
		os.Exit(1)
	}
}

// run wires the services and executes one crawl, so that every deferred
// cleanup fires before the process decides its exit code.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Str("fetcher", cfg.Fetcher).
		Str("store", cfg.Store).
		Msg("Starting school crawler")

	source := buildSource(cfg, log)
	defer source.Close()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		defer redisPub.Close()
		pub = redisPub
		log.Info().
			Str("addr", cfg.RedisAddr).
			Str("stream", cfg.RedisStream).
			Msg("Publishing records to Redis")
	}

	c, err := crawler.NewSchoolCrawler(crawler.Config{
		BaseURL:     cfg.BaseURL,
		ListPath:    cfg.ListPath,
		PageDelay:   cfg.PageDelay,
		DetailDelay: cfg.DetailDelay,
	}, source, log)
	if err != nil {
		return err
	}

	w := worker.New(c, store, artifact.NewWriter(cfg.ArtifactPath), pub, cfg.UpsertDelay, log)
	_, err = w.Run(ctx)
	return err
}

// buildSource picks the page source from configuration
func buildSource(cfg *config.Config, log *logger.Logger) crawler.Source {
	if cfg.Fetcher == config.FetcherChrome {
		return crawler.NewChromeSource(cfg.ChromeWSURL)
	}

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using Memcache as the fetch block cache")
	}
	return crawler.NewHTTPSource(cacheSvc, cfg.FetchBlock)
}

// buildStore picks the persistence backend from configuration
func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Store == config.StorePostgres {
		return storage.NewPostgresStore(ctx, cfg.PostgresDSN)
	}
	return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey), nil
}
