package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Labeled fields in the listing cells. Labels are the Traditional Chinese
// captions used by the catalog; values run to the next whitespace.
var (
	countryRe = regexp.MustCompile(`國家:\s*(\S+)`)
	cityRe    = regexp.MustCompile(`城市:\s*(\S+)`)
	quotaRe   = regexp.MustCompile(`交換名額:\s*(\d+)`)
)

// locationKeywords flag a detail page block as location information.
var locationKeywords = []string{"Location", "Address", "地址", "位置"}

// DetailFields holds the extra fields a school detail page can contribute.
type DetailFields struct {
	Description     string
	OfficialWebsite string
	LocationInfo    string
}

// extractListingEntry builds a record from one listing cell. Cells without
// a named school link (layout cells, spacers) yield nil.
func (c *SchoolCrawler) extractListingEntry(cell *goquery.Selection) *SchoolRecord {
	nameLink := cell.Find(c.selectors.NameLink).First()
	if nameLink.Length() == 0 {
		return nil
	}

	name := strings.TrimSpace(nameLink.Text())
	if name == "" {
		return nil
	}

	record := &SchoolRecord{Name: name}

	if href, ok := nameLink.Attr("href"); ok {
		record.NCCUPageURL = c.resolveURL(strings.TrimSpace(href))
	}
	if src, ok := cell.Find(c.selectors.Image).First().Attr("src"); ok {
		record.ImageURL = c.resolveURL(strings.TrimSpace(src))
	}

	text := cell.Text()
	if m := countryRe.FindStringSubmatch(text); m != nil {
		record.Country = m[1]
	}
	if m := cityRe.FindStringSubmatch(text); m != nil {
		record.City = m[1]
	}
	if m := quotaRe.FindStringSubmatch(text); m != nil {
		if quota, err := strconv.Atoi(m[1]); err == nil {
			record.ExchangeQuota = &quota
		}
	}
	record.DegreeTypes = detectDegreeTypes(text)

	return record
}

// extractDetail pulls description, official website and location blocks
// from a school detail page.
func (c *SchoolCrawler) extractDetail(doc *goquery.Document) DetailFields {
	var detail DetailFields

	detail.Description = strings.TrimSpace(doc.Find(c.selectors.Description).First().Text())

	// The official website is the first absolute link pointing away from
	// the catalog host.
	doc.Find(c.selectors.DetailLink).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		href = strings.TrimSpace(href)
		parsed, err := url.Parse(href)
		if err != nil || parsed.Host == "" {
			return true
		}
		if parsed.Host != c.baseURL.Host {
			detail.OfficialWebsite = href
			return false
		}
		return true
	})

	var blocks []string
	doc.Find(c.selectors.DetailBlock).Each(func(_ int, block *goquery.Selection) {
		text := strings.TrimSpace(block.Text())
		if text == "" {
			return
		}
		if containsLocationKeyword(text) {
			blocks = append(blocks, text)
		}
	})
	detail.LocationInfo = strings.Join(blocks, " ")

	return detail
}

// resolveURL turns a possibly relative href into an absolute URL against
// the catalog base; absolute URLs pass through unchanged.
func (c *SchoolCrawler) resolveURL(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return c.baseURL.ResolveReference(ref).String()
}

func detectDegreeTypes(text string) []DegreeType {
	var degrees []DegreeType
	for _, degree := range degreeVocabulary {
		if strings.Contains(text, string(degree)) {
			degrees = append(degrees, degree)
		}
	}
	return degrees
}

func containsLocationKeyword(text string) bool {
	for _, keyword := range locationKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
