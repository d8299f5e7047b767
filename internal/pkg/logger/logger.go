package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var global = zap.NewNop().Sugar()

// Init заменяет глобальный логгер.
func Init(level string, development bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	global = l.Sugar()
	return nil
}

// SetLogger is used by tests to capture output.
func SetLogger(l *zap.Logger) {
	global = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func Sync() {
	_ = global.Sync()
}

// ToContext returns ctx carrying a logger with the given key/value pairs attached.
func ToContext(ctx context.Context, keysAndValues ...interface{}) context.Context {
	return context.WithValue(ctx, ctxKey{}, fromContext(ctx).With(keysAndValues...))
}

func fromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return global
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok {
		return l
	}
	return global
}

func Debug(ctx context.Context, args ...interface{}) { fromContext(ctx).Debug(args...) }
func Info(ctx context.Context, args ...interface{})  { fromContext(ctx).Info(args...) }
func Warn(ctx context.Context, args ...interface{})  { fromContext(ctx).Warn(args...) }
func Error(ctx context.Context, args ...interface{}) { fromContext(ctx).Error(args...) }
func Fatal(ctx context.Context, args ...interface{}) { fromContext(ctx).Fatal(args...) }

func Debugf(ctx context.Context, template string, args ...interface{}) {
	fromContext(ctx).Debugf(template, args...)
}

func Infof(ctx context.Context, template string, args ...interface{}) {
	fromContext(ctx).Infof(template, args...)
}

func Warnf(ctx context.Context, template string, args ...interface{}) {
	fromContext(ctx).Warnf(template, args...)
}

func Errorf(ctx context.Context, template string, args ...interface{}) {
	fromContext(ctx).Errorf(template, args...)
}
