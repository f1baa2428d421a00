package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// SearchRepository lee y escribe la proyección search_documents.
type SearchRepository interface {
	// Upsert sobrescribe por document_id dentro de la transacción del indexer.
	Upsert(ctx context.Context, tx pgx.Tx, doc SearchDocument) error
	FullText(ctx context.Context, q Query) ([]Hit, int64, error)
	Fuzzy(ctx context.Context, q Query, threshold float64) ([]Hit, error)
}

// QueryLogEntry es una búsqueda servida, para analítica.
type QueryLogEntry struct {
	Query     string
	Mode      Mode
	Limit     int
	Offset    int
	Count     int
	Total     *int64
	Latency   time.Duration
	Timestamp time.Time
}

// QueryRecorder registra búsquedas; su fallo nunca afecta a la respuesta.
type QueryRecorder interface {
	Record(ctx context.Context, entry QueryLogEntry) error
}
