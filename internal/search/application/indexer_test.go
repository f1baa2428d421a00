package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davicafu/docsearch/internal/mocks"
	"github.com/davicafu/docsearch/internal/search/domain"
	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
	sharedEvents "github.com/davicafu/docsearch/internal/shared/events"
)

func publishedRow(t *testing.T, data sharedEvents.DocumentUpsertedData) sharedDomain.OutboxEvent {
	evt := sharedEvents.NewDocumentUpsertedV1("test", data)
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	now := time.Now().UTC()
	return sharedDomain.OutboxEvent{
		ID:          evt.Meta.EventID,
		EventType:   "document.upserted.v1",
		Payload:     payload,
		CreatedAt:   now,
		PublishedAt: &now,
	}
}

func rawRow(eventType, payload string) sharedDomain.OutboxEvent {
	now := time.Now().UTC()
	return sharedDomain.OutboxEvent{ID: uuid.New(), EventType: eventType, Payload: []byte(payload), PublishedAt: &now}
}

func TestIndexer_ProcessOnce_UpsertsAndMarks(t *testing.T) {
	txm := &mocks.FakeTransactor{}
	outbox := new(mocks.MockOutboxRepository)
	search := new(mocks.MockSearchRepository)

	data := sharedEvents.DocumentUpsertedData{
		DocumentID: uuid.New(), Title: "Hello", Body: "world", UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	row := publishedRow(t, data)

	outbox.On("ClaimPublished", mock.Anything, mock.Anything, 10).Return([]sharedDomain.OutboxEvent{row}, nil).Once()
	search.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(d domain.SearchDocument) bool {
		return d.DocumentID == data.DocumentID && d.Title == "Hello" && d.Body == "world" && d.UpdatedAt.Equal(data.UpdatedAt)
	})).Return(nil).Once()
	outbox.On("MarkIndexed", mock.Anything, mock.Anything, row.ID).Return(nil).Once()

	n, err := NewIndexer(txm, outbox, search, zap.NewNop()).ProcessOnce(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, txm.Commits)
	outbox.AssertExpectations(t)
	search.AssertExpectations(t)
}

func TestIndexer_ProcessOnce_IndexesUppercaseEventID(t *testing.T) {
	txm := &mocks.FakeTransactor{}
	outbox := new(mocks.MockOutboxRepository)
	search := new(mocks.MockSearchRepository)

	docID := uuid.New()
	row := rawRow("document.upserted.v1", `{"type":"document.upserted","meta":{"event_id":"`+
		strings.ToUpper(uuid.NewString())+`","occurred_at":"2024-01-01T00:00:00Z","producer":"x","schema_version":1},`+
		`"data":{"document_id":"`+docID.String()+`","title":"Hello","body":"world","updated_at":"2024-01-01T00:00:00Z"}}`)

	outbox.On("ClaimPublished", mock.Anything, mock.Anything, 10).Return([]sharedDomain.OutboxEvent{row}, nil).Once()
	search.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(d domain.SearchDocument) bool {
		return d.DocumentID == docID && d.Title == "Hello"
	})).Return(nil).Once()
	outbox.On("MarkIndexed", mock.Anything, mock.Anything, row.ID).Return(nil).Once()

	n, err := NewIndexer(txm, outbox, search, zap.NewNop()).ProcessOnce(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	outbox.AssertExpectations(t)
	search.AssertExpectations(t)
}

func TestIndexer_ProcessOnce_DrainsPoisonEvents(t *testing.T) {
	txm := &mocks.FakeTransactor{}
	outbox := new(mocks.MockOutboxRepository)
	search := new(mocks.MockSearchRepository)

	validMeta := `"meta":{"event_id":"` + uuid.NewString() + `","occurred_at":"2024-01-01T00:00:00Z","producer":"x","schema_version":1}`
	rows := []sharedDomain.OutboxEvent{
		rawRow("document.deleted.v1", `{}`),
		rawRow("document.upserted.v1", `not json`),
		rawRow("document.upserted.v1", `{"type":"document.upserted",`+validMeta+`,"data":{"title":"no id"}}`),
		rawRow("document.upserted.v1", `{"type":"document.renamed",`+validMeta+`,"data":{}}`),
	}

	outbox.On("ClaimPublished", mock.Anything, mock.Anything, 10).Return(rows, nil).Once()
	for _, r := range rows {
		outbox.On("MarkIndexed", mock.Anything, mock.Anything, r.ID).Return(nil).Once()
	}

	core, logs := observer.New(zap.WarnLevel)
	n, err := NewIndexer(txm, outbox, search, zap.New(core)).ProcessOnce(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, logs.FilterMessage("draining unprocessable event").Len())
	search.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	outbox.AssertExpectations(t)
}

func TestIndexer_ProcessOnce_UpsertFailureRollsBack(t *testing.T) {
	txm := &mocks.FakeTransactor{}
	outbox := new(mocks.MockOutboxRepository)
	search := new(mocks.MockSearchRepository)

	row := publishedRow(t, sharedEvents.DocumentUpsertedData{DocumentID: uuid.New(), Title: "t", UpdatedAt: time.Now()})
	outbox.On("ClaimPublished", mock.Anything, mock.Anything, 10).Return([]sharedDomain.OutboxEvent{row}, nil).Once()
	search.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	n, err := NewIndexer(txm, outbox, search, zap.NewNop()).ProcessOnce(context.Background(), 10)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, txm.Rollbacks)
	outbox.AssertNotCalled(t, "MarkIndexed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexer_ProcessOnce_Empty(t *testing.T) {
	txm := &mocks.FakeTransactor{}
	outbox := new(mocks.MockOutboxRepository)
	outbox.On("ClaimPublished", mock.Anything, mock.Anything, 10).Return([]sharedDomain.OutboxEvent{}, nil).Once()

	n, err := NewIndexer(txm, outbox, new(mocks.MockSearchRepository), zap.NewNop()).ProcessOnce(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
