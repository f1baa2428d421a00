package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
)

// OutboxRepoPostgres implementa sharedDomain.OutboxRepository sobre outbox_events.
type OutboxRepoPostgres struct{}

func NewOutboxRepoPostgres() *OutboxRepoPostgres {
	return &OutboxRepoPostgres{}
}

func (r *OutboxRepoPostgres) Append(ctx context.Context, tx pgx.Tx, evt sharedDomain.OutboxEvent) error {
	createdAt := evt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO outbox_events (id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		evt.ID, evt.EventType, []byte(evt.Payload), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (r *OutboxRepoPostgres) ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]sharedDomain.OutboxEvent, error) {
	return r.claim(ctx, tx,
		`SELECT id, event_type, payload, created_at, published_at, indexed_at
		 FROM outbox_events
		 WHERE published_at IS NULL
		 ORDER BY created_at ASC
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, limit)
}

func (r *OutboxRepoPostgres) ClaimPublished(ctx context.Context, tx pgx.Tx, limit int) ([]sharedDomain.OutboxEvent, error) {
	return r.claim(ctx, tx,
		`SELECT id, event_type, payload, created_at, published_at, indexed_at
		 FROM outbox_events
		 WHERE published_at IS NOT NULL AND indexed_at IS NULL
		 ORDER BY published_at ASC, created_at ASC
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, limit)
}

func (r *OutboxRepoPostgres) claim(ctx context.Context, tx pgx.Tx, query string, limit int) ([]sharedDomain.OutboxEvent, error) {
	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []sharedDomain.OutboxEvent
	for rows.Next() {
		var evt sharedDomain.OutboxEvent
		var payload []byte
		if err := rows.Scan(&evt.ID, &evt.EventType, &payload, &evt.CreatedAt, &evt.PublishedAt, &evt.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		evt.Payload = payload
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outbox events: %w", err)
	}

	return events, nil
}

// MarkPublished fija published_at en bloque; un único UPDATE por lote.
func (r *OutboxRepoPostgres) MarkPublished(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	if _, err := tx.Exec(ctx,
		`UPDATE outbox_events SET published_at = now() WHERE id = ANY($1::uuid[])`, strIDs,
	); err != nil {
		return fmt.Errorf("failed to mark events published: %w", err)
	}
	return nil
}

func (r *OutboxRepoPostgres) MarkIndexed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `UPDATE outbox_events SET indexed_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark event indexed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	return nil
}

// Verificación en tiempo de compilación.
var _ sharedDomain.OutboxRepository = (*OutboxRepoPostgres)(nil)
