// Package logging contains the zap-backed loggers used by imageflow.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewLoggerConfig returns the console config used by the imageflow command:
// production field names, ISO8601 times, colored levels and no stacktraces.
func NewLoggerConfig(level zapcore.Level) zap.Config {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "console",
		EncoderConfig:     enc,
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// NewLogger returns a logger that writes Info and above to stdout.
func NewLogger(name string) Logger {
	return newLogger(name, zapcore.InfoLevel)
}

// NewDebugLogger returns a logger that writes Debug and above to stdout.
func NewDebugLogger(name string) Logger {
	return newLogger(name, zapcore.DebugLevel)
}

func newLogger(name string, level zapcore.Level) Logger {
	return &impl{zap.Must(NewLoggerConfig(level).Build()).Sugar().Named(name)}
}

// NewTestLogger returns a new logger that outputs Debug+ logs to the test's log.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	testCore := zaptest.NewLogger(tb, zaptest.Level(zap.DebugLevel)).Core()
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return &impl{zap.New(zapcore.NewTee(testCore, observerCore)).Sugar()}, observedLogs
}
