package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OutboxEvent es una fila del ledger. Estados: pendiente (published_at nulo),
// publicado, indexado. indexed_at nunca se fija antes que published_at.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id"`
	EventType   string          `json:"event_type"` // ej. "document.upserted.v1"
	Payload     json.RawMessage `json:"payload"`    // sobre JSON completo
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	IndexedAt   *time.Time      `json:"indexed_at,omitempty"`
}

// NewOutboxEvent serializa el evento de integración como payload.
// El ID de la fila coincide con meta.event_id cuando se le pasa.
func NewOutboxEvent(id uuid.UUID, eventType string, event interface{}) (OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxEvent{}, err
	}
	return OutboxEvent{
		ID:        id,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (e OutboxEvent) IsPublished() bool { return e.PublishedAt != nil }
func (e OutboxEvent) IsIndexed() bool   { return e.IndexedAt != nil }

// OutboxRepository agrupa las operaciones sobre el ledger. Todas corren dentro
// de la transacción del llamador.
type OutboxRepository interface {
	Append(ctx context.Context, tx pgx.Tx, evt OutboxEvent) error
	// ClaimPending bloquea filas sin publicar, más antiguas primero (SKIP LOCKED).
	ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error
	// ClaimPublished bloquea filas publicadas y no indexadas por orden de publicación;
	// dentro de un mismo lote publicado (mismo published_at) desempata created_at.
	ClaimPublished(ctx context.Context, tx pgx.Tx, limit int) ([]OutboxEvent, error)
	MarkIndexed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// Transactor ejecuta fn dentro de una transacción: commit si devuelve nil,
// rollback en error o panic.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
