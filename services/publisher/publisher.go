package publisher

// Publisher forwards persisted records to downstream consumers
type Publisher interface {
	// Publish appends one record payload to the stream
	Publish(message []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
