package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/on-the-ground/increment_al_go/memo/internal/model"
)

// NewFireAndForgetHandler starts a single worker that runs handleFn for every
// payload handed to FireAndForget. Payloads accepted before Close are flushed
// before teardown runs.
func NewFireAndForgetHandler[T any](
	ctx context.Context,
	config model.HandlerConfig,
	handleFn func(context.Context, T),
	teardown func(),
) FireAndForgetHandler[T] {
	return FireAndForgetHandler[T]{
		effectScope: newEffectScope(ctx, config, handleFn, teardown),
	}
}

type FireAndForgetHandler[T any] struct {
	*effectScope[T]
}

// FireAndForget enqueues payload unless either the caller's context or the
// handler has already been cancelled. It blocks while the buffer is full.
func (ffh FireAndForgetHandler[T]) FireAndForget(ctx context.Context, payload T) {
	if ctx.Err() != nil || ffh.ctx.Err() != nil {
		return
	}
	select {
	case <-ctx.Done():
	case <-ffh.ctx.Done():
	case ffh.effectCh <- payload:
	}
}

// This scope is owned by the goroutine that created it. Close must not race
// with itself; FireAndForget may be called from any goroutine.
type effectScope[T any] struct {
	EffectId string
	ctx      context.Context
	effectCh chan T
	closeFn  func()
	closed   bool
}

func (es *effectScope[T]) Close() {
	if !es.closed {
		es.closeFn()
		es.closed = true
	}
}

func newEffectScope[T any](
	ctx context.Context,
	config model.HandlerConfig,
	handleFn func(context.Context, T),
	teardown func(),
) *effectScope[T] {
	ctx, cancelFn := context.WithCancel(ctx)
	effCh := make(chan T, config.BufferSize)
	done := make(chan struct{})
	ready := make(chan struct{})

	go func() {
		defer close(done)
		close(ready)
		for {
			select {
			case msg := <-effCh:
				handleFn(ctx, msg)
			case <-ctx.Done():
				for {
					select {
					case msg := <-effCh:
						handleFn(ctx, msg)
					default:
						return
					}
				}
			}
		}
	}()
	<-ready

	return &effectScope[T]{
		EffectId: uuid.New().String(),
		ctx:      ctx,
		effectCh: effCh,
		closeFn: func() {
			cancelFn()
			<-done
			teardown()
		},
		closed: false,
	}
}
