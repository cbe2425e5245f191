package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DegreeType identifies a program level offered to exchange students.
// The string value is both the detection substring and the stored value.
type DegreeType string

const (
	DegreeBachelor DegreeType = "Bachelor"
	DegreeMaster   DegreeType = "Master"
	DegreePhD      DegreeType = "Ph.D"
)

// degreeVocabulary fixes the canonical order of degree types. Detection
// iterates this slice, so the output order never depends on where a degree
// is mentioned in the page text.
var degreeVocabulary = []DegreeType{DegreeBachelor, DegreeMaster, DegreePhD}

// SchoolRecord represents one partner school scraped from the catalog.
// Empty optional fields are omitted from serialized payloads; created_at
// and updated_at are assigned by the store.
type SchoolRecord struct {
	Name            string       `json:"name"`
	Country         string       `json:"country,omitempty"`
	City            string       `json:"city,omitempty"`
	ExchangeQuota   *int         `json:"exchange_quota,omitempty"`
	DegreeTypes     []DegreeType `json:"degree_types,omitempty"`
	Description     string       `json:"description,omitempty"`
	OfficialWebsite string       `json:"official_website,omitempty"`
	LocationInfo    string       `json:"location_info,omitempty"`
	ImageURL        string       `json:"image_url,omitempty"`
	NCCUPageURL     string       `json:"nccu_page_url,omitempty"`
}

// Source fetches a URL and returns its parsed HTML document. Implementations
// are interchangeable as long as they return a document goquery can query.
type Source interface {
	Navigate(ctx context.Context, pageURL string) (*goquery.Document, error)
	Close() error
}

// Crawler collects every school record from the catalog in one run
type Crawler interface {
	Crawl(ctx context.Context) ([]SchoolRecord, Stats, error)
}

// Selectors contains CSS selectors for the elements of the source site
type Selectors struct {
	EntryList   string // listing cells that may each hold one school
	NameLink    string // anchor carrying the school name and detail link
	Image       string // school image inside a listing cell
	Description string // paragraph-like blocks on a detail page
	DetailLink  string // outbound anchor candidates on a detail page
	DetailBlock string // blocks scanned for location keywords
	PagerLast   string // "last page" link in the pager
	PagerPage   string // numbered page links in the pager
}

// DefaultSelectors returns the selector set for the NCCU partner catalog
func DefaultSelectors() Selectors {
	return Selectors{
		EntryList:   "table tr td",
		NameLink:    "h3 a",
		Image:       "img",
		Description: "p",
		DetailLink:  "a[href*='http']",
		DetailBlock: "div",
		PagerLast:   "a[href*='last']",
		PagerPage:   "a[href*='page=']",
	}
}

// Config contains configuration for the school crawler
type Config struct {
	BaseURL     string
	ListPath    string
	PageDelay   time.Duration
	DetailDelay time.Duration
	Selectors   Selectors
}

// Stats aggregates counters for one crawl run
type Stats struct {
	Pages        int // listing pages attempted
	PageErrors   int // listing pages that failed to load
	Discovered   int // records extracted and admitted
	Duplicates   int // listing entries rejected by the deduplicator
	DetailErrors int // detail pages that failed to load
}
