package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	searchDomain "github.com/davicafu/docsearch/internal/search/domain"
)

const (
	upsertSQL = `
	INSERT INTO search_documents (document_id, title, body, updated_at, indexed_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (document_id) DO UPDATE
	SET title = EXCLUDED.title,
	    body = EXCLUDED.body,
	    updated_at = EXCLUDED.updated_at,
	    indexed_at = now()`

	fullTextSQL = `
	SELECT document_id, title,
	       ts_headline('english', body, q, 'StartSel=<b>, StopSel=</b>, MaxWords=35, MinWords=15, MaxFragments=2') AS snippet,
	       ts_rank_cd(search_vector, q)::float8 AS score,
	       updated_at
	FROM search_documents, websearch_to_tsquery('english', $1) AS q
	WHERE search_vector @@ q
	ORDER BY score DESC, updated_at DESC, document_id DESC
	LIMIT $2 OFFSET $3`

	fullTextCountSQL = `
	SELECT count(*)
	FROM search_documents
	WHERE search_vector @@ websearch_to_tsquery('english', $1)`

	fuzzySQL = `
	SELECT document_id, title,
	       left(body, 200) AS snippet,
	       similarity(title_trgm, lower($1))::float8 AS score,
	       updated_at
	FROM search_documents
	WHERE similarity(title_trgm, lower($1)) > $2
	ORDER BY score DESC, updated_at DESC, document_id DESC
	LIMIT $3 OFFSET $4`
)

type SearchRepoPostgres struct {
	pool *pgxpool.Pool
}

func NewSearchRepoPostgres(pool *pgxpool.Pool) *SearchRepoPostgres {
	return &SearchRepoPostgres{pool: pool}
}

// Upsert es idempotente: reaplicar el mismo evento deja la misma fila.
func (r *SearchRepoPostgres) Upsert(ctx context.Context, tx pgx.Tx, doc searchDomain.SearchDocument) error {
	if _, err := tx.Exec(ctx, upsertSQL, doc.DocumentID, doc.Title, doc.Body, doc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert search document %s: %w", doc.DocumentID, err)
	}
	return nil
}

func (r *SearchRepoPostgres) FullText(ctx context.Context, q searchDomain.Query) ([]searchDomain.Hit, int64, error) {
	hits, err := r.queryHits(ctx, fullTextSQL, q.Text, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("full-text search failed: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, fullTextCountSQL, q.Text).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("full-text count failed: %w", err)
	}
	return hits, total, nil
}

func (r *SearchRepoPostgres) Fuzzy(ctx context.Context, q searchDomain.Query, threshold float64) ([]searchDomain.Hit, error) {
	hits, err := r.queryHits(ctx, fuzzySQL, q.Text, threshold, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("trigram search failed: %w", err)
	}
	return hits, nil
}

func (r *SearchRepoPostgres) queryHits(ctx context.Context, sql string, args ...interface{}) ([]searchDomain.Hit, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []searchDomain.Hit{}
	for rows.Next() {
		var h searchDomain.Hit
		if err := rows.Scan(&h.DocumentID, &h.Title, &h.Snippet, &h.Score, &h.UpdatedAt); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

var _ searchDomain.SearchRepository = (*SearchRepoPostgres)(nil)
