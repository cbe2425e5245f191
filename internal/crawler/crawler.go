package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/schoolcrawler/logger"
	cerrors "sjsage522/schoolcrawler/pkg/errors"
)

// SchoolCrawler walks the partner school catalog page by page, extracts
// listing records, then enriches each admitted record from its detail page
// and returns everything collected in traversal order.
//
// Navigation is strictly sequential with fixed pauses between requests, so
// a run is slow by construction and gentle on the source site.
type SchoolCrawler struct {
	cfg       Config
	source    Source
	selectors Selectors
	dedup     *Deduplicator
	baseURL   *url.URL
	log       *logger.Logger
}

// NewSchoolCrawler creates a crawler for the configured catalog
func NewSchoolCrawler(cfg Config, source Source, log *logger.Logger) (*SchoolCrawler, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, cerrors.NewConfiguration(fmt.Sprintf("invalid base URL %q", cfg.BaseURL), err)
	}

	selectors := cfg.Selectors
	if selectors == (Selectors{}) {
		selectors = DefaultSelectors()
	}

	return &SchoolCrawler{
		cfg:       cfg,
		source:    source,
		selectors: selectors,
		dedup:     NewDeduplicator(),
		baseURL:   base,
		log:       log.Component("crawler"),
	}, nil
}

// Crawl visits every listing page in order and then every admitted detail
// page, returning the extracted records along with run counters. Failed
// pages and detail fetches are logged and skipped; only fatal source
// errors and context cancellation abort the run, returning whatever was
// collected so far.
func (c *SchoolCrawler) Crawl(ctx context.Context) ([]SchoolRecord, Stats, error) {
	var stats Stats

	last := 0
	if doc, err := c.source.Navigate(ctx, c.listURL(0)); err != nil {
		if cerrors.IsFatalError(err) {
			return nil, stats, err
		}
		c.log.Warn().Err(err).Msg("Pager discovery failed, assuming a single page")
	} else {
		last = c.lastPageIndex(doc)
	}
	c.log.Info().Int("last_page", last).Msg("Starting crawl")

	records, err := c.crawlListing(ctx, last, &stats)
	stats.Discovered = len(records)
	if err != nil {
		return records, stats, err
	}

	err = c.enrichAll(ctx, records, &stats)
	return records, stats, err
}

// crawlListing walks pages 0..last, extracting and deduplicating entries
func (c *SchoolCrawler) crawlListing(ctx context.Context, last int, stats *Stats) ([]SchoolRecord, error) {
	var records []SchoolRecord

	for page := 0; page <= last; page++ {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		if page > 0 {
			time.Sleep(c.cfg.PageDelay)
		}

		pageURL := c.listURL(page)
		stats.Pages++

		doc, err := c.source.Navigate(ctx, pageURL)
		if err != nil {
			if cerrors.IsFatalError(err) {
				return records, err
			}
			stats.PageErrors++
			c.log.Error().Err(cerrors.NewPageLoad(pageURL, err)).Int("page", page).Msg("Listing page failed, skipping")
			continue
		}

		pageRecords := 0
		doc.Find(c.selectors.EntryList).Each(func(_ int, cell *goquery.Selection) {
			record := c.extractListingEntry(cell)
			if record == nil {
				return
			}
			if !c.dedup.Admit(record) {
				stats.Duplicates++
				c.log.Debug().Str("url", record.NCCUPageURL).Msg("Duplicate entry skipped")
				return
			}
			records = append(records, *record)
			pageRecords++
			c.log.Debug().Str("school", record.Name).Msg("School discovered")
		})

		c.log.Info().Int("page", page).Int("schools", pageRecords).Msg("Listing page processed")
	}

	return records, nil
}

// enrichAll fetches the detail page of every record that carries one,
// merging detail fields in place. A failed fetch leaves the record with
// its listing fields only.
func (c *SchoolCrawler) enrichAll(ctx context.Context, records []SchoolRecord, stats *Stats) error {
	fetched := 0
	for i := range records {
		record := &records[i]
		if record.NCCUPageURL == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if fetched > 0 {
			time.Sleep(c.cfg.DetailDelay)
		}
		fetched++

		if err := c.enrich(ctx, record); err != nil {
			if cerrors.IsFatalError(err) {
				return err
			}
			stats.DetailErrors++
			c.log.Warn().Err(err).Str("school", record.Name).Msg("Detail enrichment failed, keeping listing fields")
			continue
		}

		c.log.Debug().
			Str("school", record.Name).
			Str("progress", fmt.Sprintf("%d/%d", i+1, len(records))).
			Msg("School enriched")
	}

	return nil
}
