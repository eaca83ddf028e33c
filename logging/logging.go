// Package logging provides the structured logger used by every component of the
// agent. It is a thin, named-logger wrapper around zap, in the same spirit as the
// teacher repo's logging package: a Level enum plus a small interface so call sites
// never depend on zap directly.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface every component of the agent logs through.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	With(keysAndValues ...interface{}) Logger
	Named(name string) Logger
}

type impl struct {
	sugar *zap.SugaredLogger
}

func (l *impl) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *impl) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *impl) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *impl) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }
func (l *impl) Debug(args ...interface{})            { l.sugar.Debug(args...) }
func (l *impl) Info(args ...interface{})             { l.sugar.Info(args...) }
func (l *impl) Warn(args ...interface{})             { l.sugar.Warn(args...) }
func (l *impl) Error(args ...interface{})            { l.sugar.Error(args...) }

func (l *impl) With(kv ...interface{}) Logger {
	return &impl{sugar: l.sugar.With(kv...)}
}

func (l *impl) Named(name string) Logger {
	return &impl{sugar: l.sugar.Named(name)}
}

var (
	baseOnce sync.Once
	base     *zap.Logger
)

func baseLogger() *zap.Logger {
	baseOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	})
	return base
}

// NewLogger returns a named logger, the usual entry point for a component.
func NewLogger(name string) Logger {
	return &impl{sugar: baseLogger().Named(name).Sugar()}
}

// NewTestLogger returns a logger suitable for unit tests (no sampling, debug level).
func NewTestLogger() Logger {
	l, _ := zap.NewDevelopment()
	return &impl{sugar: l.Sugar()}
}
