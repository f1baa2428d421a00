package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
)

const DefaultListLimit = 100

// ---------- Interfaces (Ports) ----------

// DocumentRepository persiste documentos. Create y Update escriben el documento
// y su evento de outbox en la misma transacción: o ambos o ninguno.
type DocumentRepository interface {
	Create(ctx context.Context, d *Document, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrDocumentNotFound si no existe.
	Update(ctx context.Context, d *Document, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrDocumentNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// List devuelve los más recientes primero.
	List(ctx context.Context, limit int) ([]*Document, error)
}
