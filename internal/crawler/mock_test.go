package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// mockSource serves canned HTML per URL and records every navigation
type mockSource struct {
	pages    map[string]string
	failures map[string]error
	visited  []string
	fatalErr error
}

func newMockSource() *mockSource {
	return &mockSource{
		pages:    make(map[string]string),
		failures: make(map[string]error),
	}
}

func (m *mockSource) Navigate(ctx context.Context, pageURL string) (*goquery.Document, error) {
	m.visited = append(m.visited, pageURL)
	if m.fatalErr != nil {
		return nil, m.fatalErr
	}
	if err, ok := m.failures[pageURL]; ok {
		return nil, err
	}
	html, ok := m.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("no such page: %s", pageURL)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (m *mockSource) Close() error {
	return nil
}

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, &mockError{message: "cache miss"}
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}
