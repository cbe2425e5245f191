package crawler

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/schoolcrawler/helpers"
)

// listURL returns the listing URL for a zero indexed page
func (c *SchoolCrawler) listURL(page int) string {
	u := *c.baseURL
	u.Path = c.cfg.ListPath
	u.RawQuery = "page=" + strconv.Itoa(page)
	return u.String()
}

// lastPageIndex discovers the final page index from the pager on the first
// listing page. It prefers the explicit "last page" link, falls back to the
// highest numbered page link, and reports 0 when the pager is absent.
func (c *SchoolCrawler) lastPageIndex(doc *goquery.Document) int {
	if href, ok := doc.Find(c.selectors.PagerLast).First().Attr("href"); ok {
		if page, err := helpers.QueryInt(href, "page"); err == nil && page >= 0 {
			return page
		}
	}

	last := 0
	doc.Find(c.selectors.PagerPage).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if page, err := helpers.QueryInt(href, "page"); err == nil && page > last {
			last = page
		}
	})
	return last
}
