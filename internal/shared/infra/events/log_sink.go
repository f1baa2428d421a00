package events

import (
	"context"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

// LogSink "publica" escribiendo el evento en el log. Sink por defecto en local.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(ctx context.Context, msg sharedBus.Message) error {
	s.log.Info("[PUBLISH]",
		zap.String("event_id", msg.ID.String()),
		zap.String("event_type", msg.EventType),
		zap.String("key", msg.Key),
		zap.ByteString("payload", msg.Payload),
	)
	return nil
}

var _ sharedBus.EventBus = (*LogSink)(nil)
