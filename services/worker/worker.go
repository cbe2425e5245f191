package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/schoolcrawler/internal/crawler"
	"sjsage522/schoolcrawler/logger"
	cerrors "sjsage522/schoolcrawler/pkg/errors"
	"sjsage522/schoolcrawler/services/artifact"
	"sjsage522/schoolcrawler/services/publisher"
	"sjsage522/schoolcrawler/services/storage"
)

// Summary aggregates the counters reported at the end of a run
type Summary struct {
	Pages        int
	PageErrors   int
	Schools      int
	Duplicates   int
	DetailErrors int
	Persisted    int
	Failed       int
	Elapsed      time.Duration
}

// Worker executes one crawl-and-persist run: ensure the destination
// schema, crawl the catalog, write the JSON artifact, then upsert every
// cleaned record one at a time.
type Worker struct {
	crawler     crawler.Crawler
	store       storage.Store
	artifact    *artifact.Writer
	pub         publisher.Publisher
	upsertDelay time.Duration
	log         *logger.Logger
}

// New creates a worker. The publisher may be nil when record publishing
// is disabled.
func New(
	c crawler.Crawler,
	store storage.Store,
	artifactWriter *artifact.Writer,
	pub publisher.Publisher,
	upsertDelay time.Duration,
	log *logger.Logger,
) *Worker {
	return &Worker{
		crawler:     c,
		store:       store,
		artifact:    artifactWriter,
		pub:         pub,
		upsertDelay: upsertDelay,
		log:         log.Component("worker"),
	}
}

// Run executes the pipeline once. A schema failure and every per-page,
// per-detail and per-record failure are logged and absorbed; only a fatal
// crawl error aborts the run, and even then the artifact is written from
// whatever was collected first.
func (w *Worker) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	if err := w.store.EnsureSchema(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Schema creation failed, assuming the table exists")
	}

	records, stats, crawlErr := w.crawler.Crawl(ctx)

	cleaned := make([]crawler.SchoolRecord, len(records))
	for i, record := range records {
		cleaned[i] = crawler.Clean(record)
	}

	if err := w.artifact.Write(cleaned); err != nil {
		w.log.Error().Err(err).Str("path", w.artifact.Path()).Msg("Failed to write artifact")
	} else {
		w.log.Info().Str("path", w.artifact.Path()).Int("schools", len(cleaned)).Msg("Artifact written")
	}

	summary := Summary{
		Pages:        stats.Pages,
		PageErrors:   stats.PageErrors,
		Schools:      len(cleaned),
		Duplicates:   stats.Duplicates,
		DetailErrors: stats.DetailErrors,
	}

	if crawlErr != nil {
		summary.Elapsed = time.Since(start)
		return summary, crawlErr
	}

	summary.Persisted, summary.Failed = w.persistAll(ctx, cleaned)
	summary.Elapsed = time.Since(start)

	w.log.Info().
		Int("pages", summary.Pages).
		Int("page_errors", summary.PageErrors).
		Int("schools", summary.Schools).
		Int("duplicates", summary.Duplicates).
		Int("detail_errors", summary.DetailErrors).
		Int("persisted", summary.Persisted).
		Int("failed", summary.Failed).
		Dur("elapsed", summary.Elapsed).
		Msg("Run complete")

	return summary, nil
}

// persistAll upserts each record in order with a pause between writes.
// Failures are logged with the record's name and never touch sibling
// records.
func (w *Worker) persistAll(ctx context.Context, records []crawler.SchoolRecord) (persisted, failed int) {
	for i, record := range records {
		if i > 0 {
			time.Sleep(w.upsertDelay)
		}

		if record.Name == "" {
			failed++
			w.log.Error().
				Err(cerrors.NewValidation(record.NCCUPageURL, "record has no name after cleaning")).
				Msg("Record rejected")
			continue
		}

		if err := w.store.Upsert(ctx, record); err != nil {
			failed++
			w.log.Error().Err(err).Str("school", record.Name).Msg("Failed to persist record")
			continue
		}
		persisted++
		w.log.Debug().Str("school", record.Name).Msg("Record persisted")

		w.publish(record)
	}

	if w.pub != nil {
		if err := w.pub.TrimStream(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to trim stream")
		}
	}

	return persisted, failed
}

// publish forwards one persisted record when a publisher is configured
func (w *Worker) publish(record crawler.SchoolRecord) {
	if w.pub == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		w.log.Warn().Err(err).Str("school", record.Name).Msg("Failed to marshal record for publishing")
		return
	}
	if err := w.pub.Publish(payload); err != nil {
		w.log.Warn().Err(err).Str("school", record.Name).Msg("Failed to publish record")
	}
}
