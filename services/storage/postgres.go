package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sjsage522/schoolcrawler/internal/crawler"
	cerrors "sjsage522/schoolcrawler/pkg/errors"
)

// upsertSQL keys on nccu_page_url. Records without one insert NULL, which
// never conflicts, so URL-less records always create fresh rows.
const upsertSQL = `
INSERT INTO schools (name, country, city, exchange_quota, degree_types,
                     description, official_website, location_info, image_url, nccu_page_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (nccu_page_url) DO UPDATE SET
    name = EXCLUDED.name,
    country = EXCLUDED.country,
    city = EXCLUDED.city,
    exchange_quota = EXCLUDED.exchange_quota,
    degree_types = EXCLUDED.degree_types,
    description = EXCLUDED.description,
    official_website = EXCLUDED.official_website,
    location_info = EXCLUDED.location_info,
    image_url = EXCLUDED.image_url,
    updated_at = CURRENT_TIMESTAMP`

// PostgresStore persists records over a direct Postgres connection pool,
// for deployments that talk to the database without the REST layer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a small connection pool for the given DSN
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, cerrors.NewConfiguration("invalid Postgres DSN", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, cerrors.NewFatal("postgres", "failed to create connection pool", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the schools table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return cerrors.NewSchema("failed to create schools table", err)
	}
	return nil
}

// Upsert writes one record. Empty optional fields are stored as NULL,
// matching what the REST path produces when it omits them.
func (s *PostgresStore) Upsert(ctx context.Context, record crawler.SchoolRecord) error {
	_, err := s.pool.Exec(ctx, upsertSQL,
		record.Name,
		nullable(record.Country),
		nullable(record.City),
		record.ExchangeQuota,
		degreeStrings(record.DegreeTypes),
		nullable(record.Description),
		nullable(record.OfficialWebsite),
		nullable(record.LocationInfo),
		nullable(record.ImageURL),
		nullable(record.NCCUPageURL),
	)
	if err != nil {
		return cerrors.NewPersistence(record.Name, err)
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func degreeStrings(degrees []crawler.DegreeType) []string {
	if len(degrees) == 0 {
		return nil
	}
	out := make([]string, len(degrees))
	for i, d := range degrees {
		out[i] = string(d)
	}
	return out
}
