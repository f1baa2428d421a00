package events

import (
	"context"
	"errors"
	"sync"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

var ErrBusClosed = errors.New("in-memory bus closed")

// InMemoryBus reparte cada mensaje entre sus suscriptores dentro del proceso.
// Un suscriptor con el buffer lleno pierde el mensaje; el publisher no se bloquea.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers []chan sharedBus.Message
	closed      bool
}

var _ sharedBus.EventBus = (*InMemoryBus)(nil)

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{}
}

func (b *InMemoryBus) Publish(ctx context.Context, msg sharedBus.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	for _, sub := range b.subscribers {
		select {
		case sub <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registra un oyente nuevo con el buffer indicado.
func (b *InMemoryBus) Subscribe(bufferSize int) <-chan sharedBus.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan sharedBus.Message, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Close cierra todos los canales de suscripción. Es idempotente.
func (b *InMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}
