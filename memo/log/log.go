package log

import (
	"context"

	"github.com/on-the-ground/increment_al_go/memo/internal/handlers"
	"github.com/on-the-ground/increment_al_go/memo/internal/helper"
	"github.com/on-the-ground/increment_al_go/memo/internal/model"
	"go.uber.org/zap"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// LogPayload is the payload structure for logging effect.
// It contains the log level, message string, and optional structured fields.
type LogPayload struct {
	Level   LogLevel
	Message string
	Fields  map[string]interface{}
}

// WithZapEffectHandler registers a fire-and-forget log effect handler using zap.Logger.
// The returned context carries the handler; the returned function closes it,
// flushes pending messages, syncs the logger and hands back the outer context.
func WithZapEffectHandler(
	ctx context.Context,
	bufferSize int,
	logger *zap.Logger,
) (context.Context, func() context.Context) {
	handler := handlers.NewFireAndForgetHandler(
		ctx,
		model.NewHandlerConfig(bufferSize),
		func(_ context.Context, payload LogPayload) {
			write(logger, payload)
		},
		func() {
			// stdout/stderr sinks report EINVAL on Sync; nothing useful to do with it.
			_ = logger.Sync()
		},
	)
	ctxWith := context.WithValue(ctx, model.EffectLog, handler)
	logger.Debug("created log effect handler", zap.String("effectId", handler.EffectId))

	return ctxWith, func() context.Context {
		handler.Close()
		return ctx
	}
}

// Effect performs a fire-and-forget log effect using the handler in the context.
// It is a no-op when no log handler has been registered.
func Effect(ctx context.Context, level LogLevel, msg string, fields map[string]interface{}) {
	raw, err := helper.GetHandler(ctx, model.EffectLog)
	if err != nil {
		return
	}
	handler, ok := raw.(handlers.FireAndForgetHandler[LogPayload])
	if !ok {
		return
	}
	handler.FireAndForget(ctx, LogPayload{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

// Enabled reports whether a log handler is registered in ctx.
func Enabled(ctx context.Context) bool {
	_, err := helper.GetHandler(ctx, model.EffectLog)
	return err == nil
}

func write(logger *zap.Logger, payload LogPayload) {
	fields := make([]zap.Field, 0, len(payload.Fields))
	for k, v := range payload.Fields {
		fields = append(fields, zap.Any(k, v))
	}

	switch payload.Level {
	case LogInfo:
		logger.Info(payload.Message, fields...)
	case LogWarn:
		logger.Warn(payload.Message, fields...)
	case LogError:
		logger.Error(payload.Message, fields...)
	case LogDebug:
		logger.Debug(payload.Message, fields...)
	default:
		logger.Info(payload.Message, fields...)
	}
}
