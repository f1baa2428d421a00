package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeFullText Mode = "fts"
	ModeTrigram  Mode = "trgm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	MaxOffset    = 1000

	// SimilarityThreshold es el mínimo (exclusivo) de similarity() para el modo trgm.
	SimilarityThreshold = 0.3
)

var ErrEmptyQuery = errors.New("query must not be empty")

// Query es una búsqueda ya normalizada: texto recortado, límites acotados.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// NewQuery recorta el texto y acota limit a [1, 50] (0 => 10) y offset a [0, 1000].
func NewQuery(text string, limit, offset int) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrEmptyQuery
	}

	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}
	if offset > MaxOffset {
		offset = MaxOffset
	}

	return Query{Text: text, Limit: limit, Offset: offset}, nil
}

type Hit struct {
	DocumentID uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	Score      float64   `json:"score"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Result: Total es nil en modo trgm.
type Result struct {
	Mode    Mode   `json:"mode"`
	Query   string `json:"q"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	Total   *int64 `json:"total"`
	Count   int    `json:"count"`
	Results []Hit  `json:"results"`
}

func NewResult(mode Mode, q Query, hits []Hit, total *int64) *Result {
	if hits == nil {
		hits = []Hit{}
	}
	return &Result{
		Mode:    mode,
		Query:   q.Text,
		Limit:   q.Limit,
		Offset:  q.Offset,
		Total:   total,
		Count:   len(hits),
		Results: hits,
	}
}

// SearchDocument es la fila proyectada en search_documents.
type SearchDocument struct {
	DocumentID uuid.UUID
	Title      string
	Body       string
	UpdatedAt  time.Time
	IndexedAt  time.Time
}
