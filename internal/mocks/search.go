package mocks

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	searchDomain "github.com/davicafu/docsearch/internal/search/domain"
)

type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) Upsert(ctx context.Context, tx pgx.Tx, doc searchDomain.SearchDocument) error {
	args := m.Called(ctx, tx, doc)
	return args.Error(0)
}

func (m *MockSearchRepository) FullText(ctx context.Context, q searchDomain.Query) ([]searchDomain.Hit, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]searchDomain.Hit), args.Get(1).(int64), args.Error(2)
}

func (m *MockSearchRepository) Fuzzy(ctx context.Context, q searchDomain.Query, threshold float64) ([]searchDomain.Hit, error) {
	args := m.Called(ctx, q, threshold)
	return args.Get(0).([]searchDomain.Hit), args.Error(1)
}

var _ searchDomain.SearchRepository = (*MockSearchRepository)(nil)

// RecordingQueryLog guarda las entradas en memoria.
type RecordingQueryLog struct {
	mu      sync.Mutex
	entries []searchDomain.QueryLogEntry
	Err     error
}

func (r *RecordingQueryLog) Record(ctx context.Context, entry searchDomain.QueryLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *RecordingQueryLog) Entries() []searchDomain.QueryLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]searchDomain.QueryLogEntry(nil), r.entries...)
}

var _ searchDomain.QueryRecorder = (*RecordingQueryLog)(nil)
