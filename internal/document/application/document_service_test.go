package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/document/domain"
	"github.com/davicafu/docsearch/internal/mocks"
	sharedEvents "github.com/davicafu/docsearch/internal/shared/events"
)

func newService(repo domain.DocumentRepository, cache *mocks.DummyCache) *DocumentService {
	if cache == nil {
		return NewDocumentService(repo, nil, time.Minute, "docsearch-api", zap.NewNop())
	}
	return NewDocumentService(repo, cache, time.Minute, "docsearch-api", zap.NewNop())
}

func TestCreateDocument_Success(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	service := newService(repo, mocks.NewDummyCache())

	doc, err := service.CreateDocument(context.Background(), "Hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Title)

	// ✅ Verificar que se creó un evento Outbox con el sobre correcto
	require.Len(t, repo.Outbox, 1)
	row := repo.Outbox[0]
	assert.Equal(t, "document.upserted.v1", row.EventType)

	evt, err := sharedEvents.Decode(row.Payload)
	require.NoError(t, err)
	upserted, ok := evt.(sharedEvents.DocumentUpsertedV1)
	require.True(t, ok)
	assert.Equal(t, doc.ID, upserted.Data.DocumentID)
	assert.Equal(t, "world", upserted.Data.Body)
	assert.Equal(t, "docsearch-api", upserted.Meta.Producer)
	assert.Equal(t, row.ID, upserted.Meta.EventID)
}

func TestCreateDocument_InvalidTitle(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	service := newService(repo, nil)

	_, err := service.CreateDocument(context.Background(), "  ", "body")
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	assert.Empty(t, repo.Outbox)
	assert.Empty(t, repo.Documents)
}

func TestCreateDocument_RepoFailure(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	repo.Err = errors.New("connection refused")
	service := newService(repo, nil)

	_, err := service.CreateDocument(context.Background(), "t", "b")
	assert.EqualError(t, err, "connection refused")
	assert.Empty(t, repo.Outbox)
}

func TestUpdateDocument_EmitsNewEventAndInvalidatesCache(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	cache := mocks.NewDummyCache()
	service := newService(repo, cache)

	doc, err := domain.NewDocument("v1", "b1")
	require.NoError(t, err)
	repo.Documents[doc.ID] = *doc
	cache.SetForTest(domain.CacheKeyByID(doc.ID), doc)

	updated, err := service.UpdateDocument(context.Background(), doc.ID, "v2", "b2")
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Title)

	require.Len(t, repo.Outbox, 1)
	evt, err := sharedEvents.Decode(repo.Outbox[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "v2", evt.(sharedEvents.DocumentUpsertedV1).Data.Title)
	assert.False(t, cache.Has(domain.CacheKeyByID(doc.ID)))

	stored, _ := repo.GetByID(context.Background(), doc.ID)
	assert.Equal(t, "b2", stored.Body)
}

func TestUpdateDocument_NotFound(t *testing.T) {
	service := newService(mocks.NewInMemoryDocumentRepo(), nil)

	_, err := service.UpdateDocument(context.Background(), uuid.New(), "t", "b")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

// -------------------- GetDocument con Cache --------------------
func TestGetDocument_CacheHit(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	cache := mocks.NewDummyCache()
	doc, _ := domain.NewDocument("cached", "body")
	cache.SetForTest(domain.CacheKeyByID(doc.ID), doc)

	got, err := newService(repo, cache).GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Title)
	assert.Equal(t, 0, repo.Reads)
}

func TestGetDocument_CacheMissFillsCache(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	cache := mocks.NewDummyCache()
	doc, _ := domain.NewDocument("stored", "body")
	repo.Documents[doc.ID] = *doc

	got, err := newService(repo, cache).GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "stored", got.Title)
	assert.Eventually(t, func() bool { return cache.Has(domain.CacheKeyByID(doc.ID)) }, time.Second, 5*time.Millisecond)
}

func TestGetDocument_NotFoundIsNotRetried(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()

	_, err := newService(repo, nil).GetDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.Equal(t, 1, repo.Reads)
}

func TestListDocuments_NewestFirst(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	service := newService(repo, nil)

	first, _ := service.CreateDocument(context.Background(), "first", "")
	time.Sleep(2 * time.Millisecond)
	second, _ := service.CreateDocument(context.Background(), "second", "")

	docs, err := service.ListDocuments(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second.ID, docs[0].ID)
	assert.Equal(t, first.ID, docs[1].ID)
}

func TestListDocuments_EmptyIsNotNil(t *testing.T) {
	docs, err := newService(mocks.NewInMemoryDocumentRepo(), nil).ListDocuments(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Len(t, docs, 0)
}
