package events

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

// BreakerSink corta las llamadas al sink tras N fallos consecutivos. Con el
// circuito abierto Publish falla al instante con gobreaker.ErrOpenState y el
// lote se revierte sin esperar timeouts del broker.
type BreakerSink struct {
	next sharedBus.EventBus
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSink(next sharedBus.EventBus, name string, maxFailures uint32, openTimeout time.Duration, log *zap.Logger) *BreakerSink {
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerSink{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (s *BreakerSink) Publish(ctx context.Context, msg sharedBus.Message) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Publish(ctx, msg)
	})
	return err
}

func (s *BreakerSink) State() gobreaker.State {
	return s.cb.State()
}

var _ sharedBus.EventBus = (*BreakerSink)(nil)
