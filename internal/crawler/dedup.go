package crawler

// Deduplicator tracks the detail page URLs admitted during a single run.
// Records without a detail URL cannot be keyed and are always admitted,
// even when their remaining fields match an earlier record.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty deduplicator for one run
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit reports whether the record is the first with its detail URL and
// remembers the URL for the rest of the run.
func (d *Deduplicator) Admit(record *SchoolRecord) bool {
	if record.NCCUPageURL == "" {
		return true
	}
	if _, dup := d.seen[record.NCCUPageURL]; dup {
		return false
	}
	d.seen[record.NCCUPageURL] = struct{}{}
	return true
}
