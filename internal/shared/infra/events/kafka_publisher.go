package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

// MessageWriter es la parte de *kafka.Writer que usamos.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(writer MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

// NewKafkaWriter usa balanceo por hash para que la clave (document_id) fije la partición.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg sharedBus.Message) error {
	var key []byte
	if msg.PartitionKey() != "" {
		key = []byte(msg.PartitionKey())
	}

	kmsg := kafka.Message{
		Key:   key,
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(msg.ID.String())},
			{Key: "event_type", Value: []byte(msg.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, kmsg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("event_id", msg.ID.String()), zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.String("event_id", msg.ID.String()))
	return nil
}

// Verificación estática
var _ sharedBus.EventBus = (*KafkaPublisher)(nil)
