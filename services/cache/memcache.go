package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// keyPrefix namespaces the crawler's entries on a shared memcached
const keyPrefix = "schoolcrawler:"

// MemcacheService implements CacheService on a memcached instance. The
// connection is lazy; an unreachable server surfaces as an error on the
// first operation, not at construction.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a cache service for the given server address
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{client: memcache.New(serverAddr)}
}

// Get retrieves a value; memcache.ErrCacheMiss signals an absent entry
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(keyPrefix + key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value with the given expiration
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        keyPrefix + key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a value from the cache
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(keyPrefix + key)
}
