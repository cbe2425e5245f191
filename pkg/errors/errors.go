package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypePageLoad represents listing page load failures
	ErrorTypePageLoad ErrorType = "page_load"
	// ErrorTypeDetailFetch represents detail page fetch failures
	ErrorTypeDetailFetch ErrorType = "detail_fetch"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting by the source site
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeSchema represents destination schema creation errors
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypePersistence represents per-record upsert errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeValidation represents record validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeFatal represents structural faults that abort the run
	ErrorTypeFatal ErrorType = "fatal"
)

// CrawlError represents a crawl-specific error
type CrawlError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must abort the run.
// Every other error type is confined to a single page, entity, or record.
func (e *CrawlError) IsFatal() bool {
	return e.Type == ErrorTypeFatal || e.Type == ErrorTypeConfiguration
}

// IsFatalError reports whether err is a fatal crawl error. Fatal errors
// are never wrapped in non-fatal ones, so checking the outermost
// CrawlError in the chain is enough.
func IsFatalError(err error) bool {
	var crawlErr *CrawlError
	if errors.As(err, &crawlErr) {
		return crawlErr.IsFatal()
	}
	return false
}

// New creates a new CrawlError
func New(errType ErrorType, source, message string, err error) *CrawlError {
	return &CrawlError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewPageLoad creates a new page load error for a listing page
func NewPageLoad(pageURL string, err error) *CrawlError {
	return New(ErrorTypePageLoad, pageURL, "failed to load listing page", err)
}

// NewDetailFetch creates a new detail fetch error
func NewDetailFetch(detailURL string, err error) *CrawlError {
	return New(ErrorTypeDetailFetch, detailURL, "failed to fetch detail page", err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *CrawlError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewSchema creates a new schema creation error
func NewSchema(message string, err error) *CrawlError {
	return New(ErrorTypeSchema, "schools", message, err)
}

// NewPersistence creates a new persistence error for a single record
func NewPersistence(recordName string, err error) *CrawlError {
	return New(ErrorTypePersistence, recordName, "failed to upsert record", err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *CrawlError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewFatal creates a new fatal error
func NewFatal(source, message string, err error) *CrawlError {
	return New(ErrorTypeFatal, source, message, err)
}
