package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

// FakeTransactor ejecuta fn sin base de datos (tx nil). Cuenta commits y rollbacks
// para comprobar que el llamador propaga los errores.
type FakeTransactor struct {
	Commits   int
	Rollbacks int
}

func (f *FakeTransactor) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f.Rollbacks++
			panic(r)
		}
	}()
	if err := fn(nil); err != nil {
		f.Rollbacks++
		return err
	}
	f.Commits++
	return nil
}

var _ sharedDomain.Transactor = (*FakeTransactor)(nil)

// MockOutboxRepository simula el ledger
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Append(ctx context.Context, tx pgx.Tx, evt sharedDomain.OutboxEvent) error {
	args := m.Called(ctx, tx, evt)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]sharedDomain.OutboxEvent, error) {
	args := m.Called(ctx, tx, limit)
	return args.Get(0).([]sharedDomain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	args := m.Called(ctx, tx, ids)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimPublished(ctx context.Context, tx pgx.Tx, limit int) ([]sharedDomain.OutboxEvent, error) {
	args := m.Called(ctx, tx, limit)
	return args.Get(0).([]sharedDomain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkIndexed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

var _ sharedDomain.OutboxRepository = (*MockOutboxRepository)(nil)

// MockPublisher simula un sink del bus
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg sharedBus.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

var _ sharedBus.EventBus = (*MockPublisher)(nil)
