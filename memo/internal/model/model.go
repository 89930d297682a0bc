package model

import "errors"

// ContextKey names a value the engine stores in a context.Context.
type ContextKey string

const (
	EffectLog     ContextKey = "increment_al_go_effect_log"
	ActiveContext ContextKey = "increment_al_go_active_context"
	ActiveScope   ContextKey = "increment_al_go_active_scope"
)

var ErrNoEffectHandler = errors.New("no effect handler registered for this effect")

type HandlerConfig struct {
	BufferSize int // default: 1
}

func NewHandlerConfig(bufferSize int) HandlerConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return HandlerConfig{
		BufferSize: bufferSize,
	}
}
