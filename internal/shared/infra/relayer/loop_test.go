package relayer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoop_StopsOnContextCancel(t *testing.T) {
	var calls int32
	loop := NewLoop("test", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}, 5*time.Millisecond, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	loop := NewLoop("test", func(ctx context.Context) (int, error) {
		return 0, nil
	}, time.Hour, time.Hour, zap.NewNop())

	loop.Start(context.Background())
	loop.Stop()
	loop.Stop()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoop_KeepsRunningAfterFailuresAndPanics(t *testing.T) {
	var calls int32
	loop := NewLoop("test", func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			return 0, errors.New("transient")
		case 2:
			panic("boom")
		}
		return 0, nil
	}, 2*time.Millisecond, 4*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop.Start(ctx)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 4 }, 2*time.Second, time.Millisecond)
	loop.Stop()
	<-loop.Done()
}

func TestLoop_RunOnceRecoversPanic(t *testing.T) {
	loop := NewLoop("test", func(ctx context.Context) (int, error) {
		panic("kaboom")
	}, time.Millisecond, time.Millisecond, zap.NewNop())

	n, err := loop.runOnce(context.Background())
	assert.Equal(t, 0, n)
	assert.ErrorContains(t, err, "kaboom")
}

func TestLoop_BackoffIsCapped(t *testing.T) {
	loop := NewLoop("test", nil, 10*time.Millisecond, 40*time.Millisecond, zap.NewNop())
	b := loop.newBackoff()

	var last time.Duration
	for i := 0; i < 20; i++ {
		last = b.NextBackOff()
		assert.LessOrEqual(t, last, 60*time.Millisecond) // tope + jitter
		assert.Greater(t, last, time.Duration(0))
	}
}

func TestLoop_StopLetsInFlightBatchFinish(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var ctxAlive atomic.Value

	loop := NewLoop("test", func(ctx context.Context) (int, error) {
		select {
		case started <- struct{}{}:
		default:
			return 0, nil
		}
		<-release
		// el lote sigue teniendo un contexto vivo aunque el padre se haya cancelado
		ctxAlive.Store(ctx.Err() == nil)
		return 1, nil
	}, time.Millisecond, time.Millisecond, zap.NewNop())

	parent, cancel := context.WithCancel(context.Background())
	loop.Start(context.WithoutCancel(parent))

	<-started
	cancel()
	loop.Stop()
	close(release)

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, true, ctxAlive.Load())
}
