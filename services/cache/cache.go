package cache

import "time"

// CacheService stores small values with a TTL. The crawler uses it to
// remember a fetch-block window across navigations, so a rate-limited
// source site is left alone until the window expires.
type CacheService interface {
	// Get retrieves a value; a miss or an expired entry is an error
	Get(key string) ([]byte, error)

	// Set stores a value until the expiration elapses
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value before its expiration
	Delete(key string) error
}
