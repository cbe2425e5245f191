package storage

import (
	"context"

	"sjsage522/schoolcrawler/internal/crawler"
)

// Store persists cleaned school records
type Store interface {
	// EnsureSchema creates the schools table if it does not already exist
	EnsureSchema(ctx context.Context) error

	// Upsert creates or updates a single record, keyed by its detail page
	// URL. Records without one always insert a fresh row.
	Upsert(ctx context.Context, record crawler.SchoolRecord) error

	// Close releases the store's connections
	Close() error
}

// createTableSQL is the destination schema. The unique constraint on
// nccu_page_url is what makes the upsert a create-or-update instead of a
// blind insert.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS schools (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    country TEXT,
    city TEXT,
    exchange_quota INTEGER,
    degree_types TEXT[],
    description TEXT,
    official_website TEXT,
    location_info TEXT,
    image_url TEXT,
    nccu_page_url TEXT UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
