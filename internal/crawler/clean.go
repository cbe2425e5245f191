package crawler

import "strings"

// Clean returns a canonical copy of the record with every string field
// trimmed. Fields left empty disappear from serialized payloads through
// their omitempty tags, so cleaning an already clean record is a no-op.
func Clean(record SchoolRecord) SchoolRecord {
	record.Name = strings.TrimSpace(record.Name)
	record.Country = strings.TrimSpace(record.Country)
	record.City = strings.TrimSpace(record.City)
	record.Description = strings.TrimSpace(record.Description)
	record.OfficialWebsite = strings.TrimSpace(record.OfficialWebsite)
	record.LocationInfo = strings.TrimSpace(record.LocationInfo)
	record.ImageURL = strings.TrimSpace(record.ImageURL)
	record.NCCUPageURL = strings.TrimSpace(record.NCCUPageURL)
	return record
}
