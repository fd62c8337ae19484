// Package logger keeps the application's zap logger in a context.Context.
package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey int

const (
	loggerContextKey contextKey = iota
	sugarLoggerContextKey
)

// RegisterLoggerInContext builds the console logger and stores it in ctx.
// Debug output is only enabled when verbose is set.
func RegisterLoggerInContext(ctx context.Context, verbose bool) (context.Context, error) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.DisableStacktrace = true
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := config.Build()
	if err != nil {
		return ctx, err
	}

	return WithLogger(ctx, l), nil
}

// WithLogger stores an already built logger in ctx.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	ctx = context.WithValue(ctx, loggerContextKey, l)
	return context.WithValue(ctx, sugarLoggerContextKey, l.Sugar())
}

// AttachArgsToLogger returns a context whose logger carries the given key/value pairs.
func AttachArgsToLogger(ctx context.Context, args ...interface{}) context.Context {
	l := FromContext(ctx)
	updated := l.With(args...)

	return context.WithValue(ctx, sugarLoggerContextKey, updated)
}

// FromContext returns the sugared logger stored in ctx. It panics when none was registered.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	s, ok := ctx.Value(sugarLoggerContextKey).(*zap.SugaredLogger)
	if !ok {
		panic("no sugared logger in context")
	}

	return s
}

// ReleaseLogger flushes the logger stored in ctx.
func ReleaseLogger(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if err != nil {
				err = fmt.Errorf("panic releasing logger after previous error: %v, previous error: %w", r, err)
			} else {
				err = fmt.Errorf("panic releasing logger: %v", r)
			}
		}
	}()

	l, ok := ctx.Value(loggerContextKey).(*zap.Logger)
	if !ok {
		panic("no logger in context")
	}

	return l.Sync()
}
