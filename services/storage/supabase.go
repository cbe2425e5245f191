package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"sjsage522/schoolcrawler/internal/crawler"
	cerrors "sjsage522/schoolcrawler/pkg/errors"
)

// SupabaseStore persists records through the Supabase REST API (PostgREST).
// Every row carries the project API key; column defaults fill created_at
// and updated_at on the server.
type SupabaseStore struct {
	client *resty.Client
}

// NewSupabaseStore creates a store for the given project URL and API key
func NewSupabaseStore(projectURL, apiKey string) *SupabaseStore {
	client := resty.New().
		SetBaseURL(projectURL).
		SetTimeout(10 * time.Second).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")

	return &SupabaseStore{client: client}
}

// EnsureSchema creates the schools table through the exec_sql RPC
func (s *SupabaseStore) EnsureSchema(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"sql": createTableSQL}).
		Post("/rest/v1/rpc/exec_sql")
	if err != nil {
		return cerrors.NewSchema("failed to call schema RPC", err)
	}
	if resp.IsError() {
		return cerrors.NewSchema(fmt.Sprintf("schema RPC returned %d: %s", resp.StatusCode(), resp.String()), nil)
	}
	return nil
}

// Upsert posts one record to the schools table. Rows sharing a
// nccu_page_url are merged server side; empty fields are omitted from the
// payload entirely rather than sent as nulls.
func (s *SupabaseStore) Upsert(ctx context.Context, record crawler.SchoolRecord) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "nccu_page_url").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(record).
		Post("/rest/v1/schools")
	if err != nil {
		return cerrors.NewPersistence(record.Name, err)
	}
	if resp.IsError() {
		return cerrors.NewPersistence(record.Name, fmt.Errorf("store returned %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}

// Close implements Store; the REST client holds no persistent connections
func (s *SupabaseStore) Close() error {
	return nil
}
