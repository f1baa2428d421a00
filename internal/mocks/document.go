package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	documentDomain "github.com/davicafu/docsearch/internal/document/domain"
	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
)

// InMemoryDocumentRepo simula DocumentRepository con outbox incluido.
// Err, si se fija, lo devuelven todas las escrituras sin tocar el estado.
type InMemoryDocumentRepo struct {
	Documents map[uuid.UUID]documentDomain.Document
	Outbox    []sharedDomain.OutboxEvent
	Err       error
	Reads     int
	mu        sync.Mutex
}

func NewInMemoryDocumentRepo() *InMemoryDocumentRepo {
	return &InMemoryDocumentRepo{
		Documents: make(map[uuid.UUID]documentDomain.Document),
		Outbox:    []sharedDomain.OutboxEvent{},
	}
}

func (r *InMemoryDocumentRepo) Create(ctx context.Context, d *documentDomain.Document, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Documents[d.ID] = *d
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryDocumentRepo) Update(ctx context.Context, d *documentDomain.Document, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.Documents[d.ID]; !ok {
		return documentDomain.ErrDocumentNotFound
	}
	r.Documents[d.ID] = *d
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*documentDomain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	d, ok := r.Documents[id]
	if !ok {
		return nil, documentDomain.ErrDocumentNotFound
	}
	return &d, nil
}

func (r *InMemoryDocumentRepo) List(ctx context.Context, limit int) ([]*documentDomain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]*documentDomain.Document, 0, len(r.Documents))
	for _, d := range r.Documents {
		d := d
		docs = append(docs, &d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

var _ documentDomain.DocumentRepository = (*InMemoryDocumentRepo)(nil)
