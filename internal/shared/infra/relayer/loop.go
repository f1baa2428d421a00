package relayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// BatchFunc procesa un lote y devuelve cuántos elementos tocó.
type BatchFunc func(ctx context.Context) (int, error)

// Loop ejecuta un BatchFunc repetidamente: pausa fija tras un lote correcto y
// backoff exponencial (con tope) tras fallos consecutivos. Se detiene al cancelar
// el contexto o con Stop. Un panic dentro del lote cuenta como fallo.
type Loop struct {
	name       string
	fn         BatchFunc
	interval   time.Duration
	maxBackoff time.Duration
	log        *zap.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewLoop(name string, fn BatchFunc, interval, maxBackoff time.Duration, log *zap.Logger) *Loop {
	if maxBackoff < interval {
		maxBackoff = interval
	}
	return &Loop{
		name:       name,
		fn:         fn,
		interval:   interval,
		maxBackoff: maxBackoff,
		log:        log.With(zap.String("loop", name)),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (l *Loop) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.interval
	b.MaxInterval = l.maxBackoff
	b.MaxElapsedTime = 0 // nunca se rinde
	b.Reset()
	return b
}

// Run bloquea hasta que se cancela ctx o se llama a Stop.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	l.log.Info("🚀 loop iniciado", zap.Duration("interval", l.interval))
	b := l.newBackoff()
	failures := 0

	for {
		n, err := l.runOnce(ctx)

		delay := l.interval
		switch {
		case err != nil && ctx.Err() == nil:
			failures++
			delay = b.NextBackOff()
			l.log.Error("batch failed",
				zap.Error(err),
				zap.Int("consecutive_failures", failures),
				zap.Duration("retry_in", delay),
			)
		case err == nil:
			if failures > 0 {
				l.log.Info("batch recovered", zap.Int("after_failures", failures))
			}
			failures = 0
			b.Reset()
			if n > 0 {
				l.log.Info("batch processed", zap.Int("count", n))
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.log.Info("🛑 loop detenido", zap.String("reason", "context"))
			return
		case <-l.stop:
			timer.Stop()
			l.log.Info("🛑 loop detenido", zap.String("reason", "stop"))
			return
		case <-timer.C:
		}
	}
}

func (l *Loop) runOnce(ctx context.Context) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s batch: %v", l.name, r)
		}
	}()
	return l.fn(ctx)
}

// Start lanza Run en su propia goroutine.
func (l *Loop) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Stop pide la parada; el lote en curso termina antes de salir.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Done se cierra cuando Run ha terminado.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
