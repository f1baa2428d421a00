package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/document/domain"
	sharedEvents "github.com/davicafu/docsearch/internal/shared/events"
	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/docsearch/internal/shared/infra/platform/cache"
)

// DocumentConsumer invalida la caché local de documentos al ver un document.upserted.
// Sirve cuando varias instancias de la API tienen caché en memoria.
type DocumentConsumer struct {
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewDocumentConsumer(cache sharedCache.Cache, log *zap.Logger) *DocumentConsumer {
	return &DocumentConsumer{cache: cache, log: log}
}

func (c *DocumentConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	evt, err := sharedEvents.Decode(payload)
	if err != nil {
		c.log.Warn("Failed to decode document event", zap.String("key", key), zap.Error(err))
		return
	}

	switch e := evt.(type) {
	case sharedEvents.DocumentUpsertedV1:
		sharedCache.InvalidateSync(ctx, c.cache, domain.CacheKeyByID(e.Data.DocumentID), c.log)
		c.log.Debug("Document cache invalidated via event",
			zap.String("document_id", e.Data.DocumentID.String()),
			zap.String("event_id", e.Meta.EventID.String()),
		)
	case sharedEvents.Unknown:
		c.log.Warn("Unknown event type", zap.String("type", e.Type), zap.Int("schema_version", e.Meta.SchemaVersion))
	}
}

// BackgroundConsumerChan consume los mensajes del bus en memoria hasta que ctx se cancele
// o el canal se cierre.
func BackgroundConsumerChan(ctx context.Context, ch <-chan sharedBus.Message, consumer *DocumentConsumer) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				consumer.log.Info("DocumentConsumer stopped")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				consumer.HandleMessage(ctx, msg.Key, msg.Payload)
			}
		}
	}()
}
