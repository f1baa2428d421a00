package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	documentDomain "github.com/davicafu/docsearch/internal/document/domain"
	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
)

type DocumentRepoPostgres struct {
	pool   *pgxpool.Pool
	tx     sharedDomain.Transactor
	outbox sharedDomain.OutboxRepository
}

func NewDocumentRepoPostgres(pool *pgxpool.Pool, tx sharedDomain.Transactor, outbox sharedDomain.OutboxRepository) *DocumentRepoPostgres {
	return &DocumentRepoPostgres{pool: pool, tx: tx, outbox: outbox}
}

// ------------------ CRUD + Outbox ------------------

// Create inserta documento y evento en transacción
func (r *DocumentRepoPostgres) Create(ctx context.Context, d *documentDomain.Document, evt sharedDomain.OutboxEvent) error {
	return r.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO documents (id, title, body, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			d.ID, d.Title, d.Body, d.CreatedAt, d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}

		return r.outbox.Append(ctx, tx, evt)
	})
}

// Update actualiza documento y crea evento en transacción
func (r *DocumentRepoPostgres) Update(ctx context.Context, d *documentDomain.Document, evt sharedDomain.OutboxEvent) error {
	return r.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE documents SET title = $1, body = $2, updated_at = $3 WHERE id = $4`,
			d.Title, d.Body, d.UpdatedAt, d.ID,
		)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return documentDomain.ErrDocumentNotFound
		}

		return r.outbox.Append(ctx, tx, evt)
	})
}

// ------------------ Lectura ------------------

func (r *DocumentRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*documentDomain.Document, error) {
	var d documentDomain.Document
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, body, created_at, updated_at FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.Title, &d.Body, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, documentDomain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &d, nil
}

func (r *DocumentRepoPostgres) List(ctx context.Context, limit int) ([]*documentDomain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, body, created_at, updated_at
		 FROM documents
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	docs := []*documentDomain.Document{}
	for rows.Next() {
		var d documentDomain.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Body, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

var _ documentDomain.DocumentRepository = (*DocumentRepoPostgres)(nil)
