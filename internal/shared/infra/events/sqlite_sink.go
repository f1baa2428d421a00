package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

// SQLiteSink guarda un diario local de eventos publicados (despliegue local).
type SQLiteSink struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteSink(db *sql.DB, log *zap.Logger) *SQLiteSink {
	return &SQLiteSink{db: db, log: log}
}

func InitSQLiteJournal(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS published_events (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		partition_key TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL,
		published_at TEXT NOT NULL
	)`)
	return err
}

// Publish es idempotente por event_id: una reentrega no duplica filas.
func (s *SQLiteSink) Publish(ctx context.Context, msg sharedBus.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO published_events (event_id, event_type, partition_key, payload, created_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(event_id) DO NOTHING`,
		msg.ID.String(), msg.EventType, msg.Key, string(msg.Payload),
		msg.CreatedAt.UTC().Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to journal event %s: %w", msg.ID, err)
	}
	return nil
}

// Count devuelve cuántos eventos hay en el diario.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM published_events`).Scan(&n)
	return n, err
}

var _ sharedBus.EventBus = (*SQLiteSink)(nil)
