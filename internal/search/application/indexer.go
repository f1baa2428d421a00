package application

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/search/domain"
	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
	sharedEvents "github.com/davicafu/docsearch/internal/shared/events"
	"github.com/davicafu/docsearch/pkg/logger"
)

// Indexer proyecta eventos publicados del outbox en search_documents.
type Indexer struct {
	tx     sharedDomain.Transactor
	outbox sharedDomain.OutboxRepository
	search domain.SearchRepository
	log    *zap.Logger
}

func NewIndexer(tx sharedDomain.Transactor, outbox sharedDomain.OutboxRepository, search domain.SearchRepository, log *zap.Logger) *Indexer {
	return &Indexer{tx: tx, outbox: outbox, search: search, log: log}
}

// ProcessOnce reclama hasta limit eventos publicados y sin indexar, los aplica y
// los marca, todo en una transacción. Los eventos que no se pueden proyectar se
// marcan igualmente para que no bloqueen la cola. Devuelve las filas reclamadas.
func (ix *Indexer) ProcessOnce(ctx context.Context, limit int) (int, error) {
	ctx, span := tracer.Start(ctx, "indexer.process_once")
	defer span.End()
	span.SetAttributes(attribute.Int("indexer.limit", limit))

	claimed := 0
	err := ix.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		rows, err := ix.outbox.ClaimPublished(ctx, tx, limit)
		if err != nil {
			return err
		}
		claimed = len(rows)

		for _, row := range rows {
			doc, reason := project(row)
			if reason != "" {
				logger.Warn(ctx, ix.log, "draining unprocessable event",
					zap.String("event_id", row.ID.String()),
					zap.String("event_type", row.EventType),
					zap.String("reason", reason),
				)
			} else if err := ix.search.Upsert(ctx, tx, doc); err != nil {
				return err
			}

			if err := ix.outbox.MarkIndexed(ctx, tx, row.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("indexer.claimed", claimed))
	return claimed, nil
}

// project devuelve el documento a indexar o el motivo por el que no se puede.
func project(row sharedDomain.OutboxEvent) (domain.SearchDocument, string) {
	if row.EventType != sharedEvents.DocumentUpsertedV1Kind.EventTypeName() {
		return domain.SearchDocument{}, "unknown event type"
	}

	evt, err := sharedEvents.Decode(row.Payload)
	if err != nil {
		return domain.SearchDocument{}, err.Error()
	}

	switch e := evt.(type) {
	case sharedEvents.DocumentUpsertedV1:
		return domain.SearchDocument{
			DocumentID: e.Data.DocumentID,
			Title:      e.Data.Title,
			Body:       e.Data.Body,
			UpdatedAt:  e.Data.UpdatedAt,
		}, ""
	default:
		return domain.SearchDocument{}, "unsupported envelope variant " + evt.Kind().EventTypeName()
	}
}
