package crawler

import (
	"context"

	cerrors "sjsage522/schoolcrawler/pkg/errors"
)

// enrich loads the record's detail page and merges the extracted fields.
// Fatal source errors pass through unwrapped so the caller can abort.
func (c *SchoolCrawler) enrich(ctx context.Context, record *SchoolRecord) error {
	doc, err := c.source.Navigate(ctx, record.NCCUPageURL)
	if err != nil {
		if cerrors.IsFatalError(err) {
			return err
		}
		return cerrors.NewDetailFetch(record.NCCUPageURL, err)
	}

	merge(record, c.extractDetail(doc))
	return nil
}

// merge fills detail fields only where the listing left them empty
func merge(record *SchoolRecord, detail DetailFields) {
	if record.Description == "" {
		record.Description = detail.Description
	}
	if record.OfficialWebsite == "" {
		record.OfficialWebsite = detail.OfficialWebsite
	}
	if record.LocationInfo == "" {
		record.LocationInfo = detail.LocationInfo
	}
}
