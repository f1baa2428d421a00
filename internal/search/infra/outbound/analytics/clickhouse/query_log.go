package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	searchDomain "github.com/davicafu/docsearch/internal/search/domain"
)

const createQueryLogSQL = `
CREATE TABLE IF NOT EXISTS search_queries_log (
	query String,
	mode LowCardinality(String),
	limit_value UInt16,
	offset_value UInt16,
	result_count UInt16,
	total Nullable(Int64),
	latency_ms Float64,
	event_time DateTime64(3)
) ENGINE = MergeTree()
ORDER BY (event_time, mode)`

// QueryLogRepo acumula búsquedas y las inserta en lotes; ClickHouse funciona
// mejor con pocas inserciones grandes.
type QueryLogRepo struct {
	db        *sql.DB
	log       *zap.Logger
	batchSize int

	mu      sync.Mutex
	pending []searchDomain.QueryLogEntry
}

func NewQueryLogRepo(addr, dbName string, batchSize int, log *zap.Logger) (*QueryLogRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return newQueryLogRepo(conn, batchSize, log), nil
}

func newQueryLogRepo(db *sql.DB, batchSize int, log *zap.Logger) *QueryLogRepo {
	if batchSize < 1 {
		batchSize = 1
	}
	return &QueryLogRepo{db: db, batchSize: batchSize, log: log}
}

func (r *QueryLogRepo) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createQueryLogSQL)
	return err
}

// Record encola la entrada y vuelca cuando se alcanza el tamaño de lote.
func (r *QueryLogRepo) Record(ctx context.Context, entry searchDomain.QueryLogEntry) error {
	r.mu.Lock()
	r.pending = append(r.pending, entry)
	if len(r.pending) < r.batchSize {
		r.mu.Unlock()
		return nil
	}
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	return r.LogBatch(ctx, batch)
}

// Flush vuelca lo pendiente; se llama al apagar.
func (r *QueryLogRepo) Flush(ctx context.Context) error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return r.LogBatch(ctx, batch)
}

// LogBatch inserta un lote de búsquedas en una transacción.
func (r *QueryLogRepo) LogBatch(ctx context.Context, entries []searchDomain.QueryLogEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO search_queries_log (query, mode, limit_value, offset_value, result_count, total, latency_ms, event_time)")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.Query,
			string(e.Mode),
			uint16(e.Limit),
			uint16(e.Offset),
			uint16(e.Count),
			e.Total,
			float64(e.Latency.Microseconds())/1000,
			e.Timestamp,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to exec statement for query %q: %w", e.Query, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	r.log.Debug("search queries logged", zap.Int("count", len(entries)))
	return nil
}

func (r *QueryLogRepo) Close() error {
	return r.db.Close()
}

var _ searchDomain.QueryRecorder = (*QueryLogRepo)(nil)
