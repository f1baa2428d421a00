package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler es cualquier consumidor de eventos (p. ej. DocumentConsumer).
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// MessageReader es la parte de *kafka.Reader que usamos.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ConsumerAdapter escucha un topic de Kafka y entrega cada mensaje al handler.
type ConsumerAdapter struct {
	reader  MessageReader
	handler MessageHandler
	topic   string
	log     *zap.Logger
	done    chan struct{}
}

func NewConsumerAdapter(reader MessageReader, handler MessageHandler, topic string, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		topic:   topic,
		log:     log,
		done:    make(chan struct{}),
	}
}

// NewKafkaReader crea un reader con consumer group; cada instancia de la API usa su propio grupo.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
	})
}

// Run bloquea hasta que ctx se cancele.
func (c *ConsumerAdapter) Run(ctx context.Context) {
	defer close(c.done)
	c.log.Info("🎧 Iniciando consumidor de Kafka...", zap.String("topic", c.topic))

	for {
		// ReadMessage es bloqueante.
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", c.topic))
				return
			}
			c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
			continue
		}

		c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
	}
}

// Start lanza Run en una goroutine.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	go c.Run(ctx)
}

func (c *ConsumerAdapter) Done() <-chan struct{} {
	return c.done
}
