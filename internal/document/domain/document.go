package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

const (
	// MaxTitleLength se mide en caracteres, igual que el binding max=500.
	MaxTitleLength = 500
	MaxBodyLength  = 1 << 20
)

// Document es la entidad de origen; el índice de búsqueda es una proyección suya.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument asigna el ID aquí para que sirva de clave de correlación del
// evento dentro de la misma transacción.
func NewDocument(title, body string) (*Document, error) {
	title, body, err := normalize(title, body)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Revise sustituye título y cuerpo y avanza updated_at.
func (d *Document) Revise(title, body string) error {
	title, body, err := normalize(title, body)
	if err != nil {
		return err
	}
	d.Title = title
	d.Body = body
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *Document) PartitionKey() string {
	return d.ID.String()
}

func normalize(title, body string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is required", ErrInvalidDocument)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", "", fmt.Errorf("%w: title exceeds %d characters", ErrInvalidDocument, MaxTitleLength)
	}
	if len(body) > MaxBodyLength {
		return "", "", fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidDocument, MaxBodyLength)
	}
	return title, body, nil
}

func CacheKeyByID(id uuid.UUID) string {
	return "document:" + id.String()
}

// Verificación estática para asegurar que Document implementa la interfaz
var _ sharedBus.Keyer = (*Document)(nil)
