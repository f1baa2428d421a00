package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/document/domain"
	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
	sharedEvents "github.com/davicafu/docsearch/internal/shared/events"
	sharedCache "github.com/davicafu/docsearch/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/docsearch/internal/shared/infra/utils"
)

// DocumentService define los casos de uso relacionados con Document.
type DocumentService struct {
	repo     domain.DocumentRepository
	cache    sharedCache.Cache
	cacheTTL time.Duration
	producer string
	log      *zap.Logger
}

func NewDocumentService(repo domain.DocumentRepository, cache sharedCache.Cache, cacheTTL time.Duration, producer string, log *zap.Logger) *DocumentService {
	return &DocumentService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		producer: producer,
		log:      log,
	}
}

// upsertedEvent construye el sobre document.upserted v1 y su fila de outbox.
// El ID de la fila es el event_id del sobre.
func (s *DocumentService) upsertedEvent(d *domain.Document) (sharedDomain.OutboxEvent, error) {
	evt := sharedEvents.NewDocumentUpsertedV1(s.producer, sharedEvents.DocumentUpsertedData{
		DocumentID: d.ID,
		Title:      d.Title,
		Body:       d.Body,
		UpdatedAt:  d.UpdatedAt,
	})
	outboxEvent, err := sharedDomain.NewOutboxEvent(evt.Meta.EventID, sharedEvents.DocumentUpsertedV1Kind.EventTypeName(), evt)
	if err != nil {
		return sharedDomain.OutboxEvent{}, fmt.Errorf("failed to build outbox event: %w", err)
	}
	return outboxEvent, nil
}

func (s *DocumentService) CreateDocument(ctx context.Context, title, body string) (*domain.Document, error) {
	doc, err := domain.NewDocument(title, body)
	if err != nil {
		return nil, err
	}

	outboxEvent, err := s.upsertedEvent(doc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, doc, outboxEvent); err != nil {
		s.log.Error("Failed to create document", zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, domain.CacheKeyByID(doc.ID), doc, s.cacheTTL, s.log)
	return doc, nil
}

// UpdateDocument reescribe título y cuerpo; emite otro document.upserted.
func (s *DocumentService) UpdateDocument(ctx context.Context, id uuid.UUID, title, body string) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Revise(title, body); err != nil {
		return nil, err
	}

	outboxEvent, err := s.upsertedEvent(doc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, doc, outboxEvent); err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			s.log.Error("Failed to update document", zap.String("id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	sharedCache.InvalidateSync(ctx, s.cache, domain.CacheKeyByID(id), s.log)
	return doc, nil
}

// GetDocument obtiene un documento (primero intenta desde cache).
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	// 1. Intentar cache
	if s.cache != nil {
		var d domain.Document
		if ok, err := s.cache.Get(ctx, domain.CacheKeyByID(id), &d); err == nil && ok {
			return &d, nil
		}
	}

	// 2. Ir al repo con reintentos; un not found no se reintenta
	var doc *domain.Document
	err := sharedUtils.RetryIf(ctx, 3, 100*time.Millisecond,
		func(err error) bool { return !errors.Is(err, domain.ErrDocumentNotFound) },
		func() error {
			var err error
			doc, err = s.repo.GetByID(ctx, id)
			return err
		})
	if err != nil {
		return nil, err
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	sharedCache.AsyncCacheSet(s.cache, domain.CacheKeyByID(doc.ID), doc, s.cacheTTL, s.log)
	return doc, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	docs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return docs, nil
}
