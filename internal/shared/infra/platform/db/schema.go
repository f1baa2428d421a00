package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema se aplica en orden y es idempotente.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,

	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS outbox_events (
		id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ NULL,
		indexed_at TIMESTAMPTZ NULL,
		CONSTRAINT outbox_indexed_after_published CHECK (indexed_at IS NULL OR published_at IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_events_pending_idx
		ON outbox_events (created_at) WHERE published_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS outbox_events_unindexed_idx
		ON outbox_events (published_at) WHERE published_at IS NOT NULL AND indexed_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS search_documents (
		document_id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		indexed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		search_vector TSVECTOR GENERATED ALWAYS AS (
			setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
			setweight(to_tsvector('english', coalesce(body, '')), 'B')
		) STORED,
		title_trgm TEXT GENERATED ALWAYS AS (lower(title)) STORED
	)`,
	`CREATE INDEX IF NOT EXISTS search_documents_vector_idx
		ON search_documents USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS search_documents_title_trgm_idx
		ON search_documents USING GIN (title_trgm gin_trgm_ops)`,
}

// ApplySchema crea extensión, tablas e índices si no existen.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
