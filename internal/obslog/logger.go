// Package obslog wraps zap with the structured-logging conventions the
// rest of this module relies on: a component/environment-tagged logger
// that can be threaded through context.Context.
package obslog

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

type ctxKey struct{}

// New builds a Logger tagged with component and environment fields, at
// the given level. Level parsing from a raw string lives in
// config.Load, not here.
func New(component, environment string, level zapcore.Level) (*Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build(
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("component", component),
			zap.String("environment", environment),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Logger{zl.Sugar()}, nil
}

// Default returns a development logger, falling back to zap's bare
// default if construction somehow fails.
func Default() *Logger {
	l, err := New("simulator", "development", zapcore.InfoLevel)
	if err != nil {
		zl, _ := zap.NewDevelopment()
		return &Logger{zl.Sugar()}
	}
	return l
}

// ToContext attaches l to ctx.
func ToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the Logger attached to ctx, or Default().
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// With returns a child logger with additional structured fields.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{l.SugaredLogger.With(args...)}
}
