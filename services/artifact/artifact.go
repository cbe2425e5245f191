package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"sjsage522/schoolcrawler/internal/crawler"
)

// Writer serializes the run's collected records to a JSON file. The file
// is written in place, not through a temp-file rename, so a crash mid-write
// can leave a partial file behind.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting the given path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns where the artifact is written
func (w *Writer) Path() string {
	return w.path
}

// Write dumps the records as an indented JSON array. Non-ASCII text is
// written as-is, so CJK field values stay readable in the file.
func (w *Writer) Write(records []crawler.SchoolRecord) error {
	if records == nil {
		records = []crawler.SchoolRecord{}
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	return nil
}
