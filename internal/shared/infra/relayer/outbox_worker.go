package relayer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/docsearch/internal/shared/domain"
	sharedEvents "github.com/davicafu/docsearch/internal/shared/events"
	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
	"github.com/davicafu/docsearch/pkg/logger"
)

var tracer = otel.Tracer("docsearch/relayer")

type PublishResult struct {
	Published int `json:"published"`
}

// Publisher reclama filas pendientes del outbox, las entrega al sink y las marca
// como publicadas, todo en una única transacción.
type Publisher struct {
	tx   sharedDomain.Transactor
	repo sharedDomain.OutboxRepository
	bus  sharedBus.EventBus
	log  *zap.Logger
}

func NewPublisher(
	tx sharedDomain.Transactor,
	repo sharedDomain.OutboxRepository,
	bus sharedBus.EventBus,
	log *zap.Logger,
) *Publisher {
	return &Publisher{tx: tx, repo: repo, bus: bus, log: log}
}

// PublishBatch publica hasta limit eventos en orden de creación. Si el sink falla
// con cualquiera de ellos se revierte el lote completo (ninguno queda marcado),
// así que un evento puede entregarse más de una vez.
func (p *Publisher) PublishBatch(ctx context.Context, limit int) (PublishResult, error) {
	ctx, span := tracer.Start(ctx, "outbox.publish_batch")
	defer span.End()
	span.SetAttributes(attribute.Int("outbox.limit", limit))

	var result PublishResult
	err := p.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		rows, err := p.repo.ClaimPending(ctx, tx, limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			if err := p.bus.Publish(ctx, toMessage(row)); err != nil {
				return fmt.Errorf("failed to publish event %s: %w", row.ID, err)
			}
			ids = append(ids, row.ID)
		}

		if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
			return err
		}
		result.Published = len(ids)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PublishResult{}, err
	}

	span.SetAttributes(attribute.Int("outbox.published", result.Published))
	if result.Published > 0 {
		logger.Info(ctx, p.log, "📬 outbox batch published", zap.Int("count", result.Published))
	}
	return result, nil
}

// RunOnce adapta PublishBatch a la firma del Loop.
func (p *Publisher) RunOnce(limit int) BatchFunc {
	return func(ctx context.Context) (int, error) {
		res, err := p.PublishBatch(ctx, limit)
		return res.Published, err
	}
}

func toMessage(row sharedDomain.OutboxEvent) sharedBus.Message {
	msg := sharedBus.Message{
		ID:        row.ID,
		EventType: row.EventType,
		Payload:   row.Payload,
		CreatedAt: row.CreatedAt,
	}
	// Sin document_id el evento se publica igual, sin clave de partición.
	if key, err := sharedEvents.CorrelationKey(row.Payload); err == nil {
		msg.Key = key.String()
	}
	return msg
}
