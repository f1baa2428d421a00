package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Keyer interface {
	PartitionKey() string
}

// Message es una fila del outbox camino del sink: el sobre viaja intacto.
type Message struct {
	ID        uuid.UUID
	EventType string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
}

func (m Message) PartitionKey() string { return m.Key }

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventBus interface {
	Publish(ctx context.Context, msg Message) error
}
