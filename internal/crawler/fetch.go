package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/schoolcrawler/helpers"
	cerrors "sjsage522/schoolcrawler/pkg/errors"
	"sjsage522/schoolcrawler/services/cache"
)

// blockKey marks the source as rate limited in the cache. While the key
// lives, every navigation fails fast instead of hitting the site again.
const blockKey = "school_source_blocked"

// HTTPSource loads pages with plain HTTP requests. A cache service is
// optional; without one, rate limit responses are not remembered between
// navigations.
type HTTPSource struct {
	cacheSvc  cache.CacheService
	blockTime time.Duration
}

// NewHTTPSource creates an HTTP source with an optional rate limit cache
func NewHTTPSource(cacheSvc cache.CacheService, blockTime time.Duration) *HTTPSource {
	return &HTTPSource{
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
	}
}

// Navigate fetches the page and parses it into a goquery document
func (s *HTTPSource) Navigate(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if s.cacheSvc != nil {
		if _, err := s.cacheSvc.Get(blockKey); err == nil {
			return nil, cerrors.NewRateLimit(pageURL, s.blockTime)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(ctx, pageURL)
	if err != nil {
		if s.cacheSvc != nil && strings.HasPrefix(err.Error(), "rate limited") {
			blockSeconds := int(s.blockTime.Seconds())
			if cacheErr := s.cacheSvc.Set(blockKey, []byte(fmt.Sprintf("%d", blockSeconds)), s.blockTime); cacheErr != nil {
				return nil, cacheErr
			}
			return nil, cerrors.NewRateLimit(pageURL, s.blockTime)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, cerrors.NewParsing(pageURL, "failed to parse HTML", err)
	}

	return doc, nil
}

// Close implements Source; an HTTP source holds no resources
func (s *HTTPSource) Close() error {
	return nil
}
