package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
)

// TxManager abre transacciones sobre el pool inyectado.
type TxManager struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewTxManager(pool *pgxpool.Pool, log *zap.Logger) *TxManager {
	return &TxManager{pool: pool, log: log}
}

// WithinTx hace commit si fn devuelve nil; en cualquier otra salida (error o
// panic) hace rollback y el panic sigue propagándose.
func (m *TxManager) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// El rollback debe ejecutarse aunque el contexto de la petición se haya cancelado.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.log.Error("failed to rollback tx", zap.Error(rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	committed = true
	return nil
}

var _ sharedDomain.Transactor = (*TxManager)(nil)
