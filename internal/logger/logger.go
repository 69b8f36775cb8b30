// Package logger provides package-level debug logging backed by zap.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv enables logging when set to a non-empty value.
const DebugEnv = "MT_DEBUG"

var sugar = newLogger()

func newLogger() *zap.SugaredLogger {
	if os.Getenv(DebugEnv) == "" {
		return zap.NewNop().Sugar()
	}

	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar().Named("mt")
}

// Set replaces the package logger. Tests use it with zaptest/observer.
func Set(l *zap.Logger) {
	sugar = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = sugar.Sync()
}

// Info logs an info message with key/value pairs
func Info(msg string, args ...interface{}) {
	sugar.Infow(msg, args...)
}

// Error logs an error message with key/value pairs
func Error(msg string, args ...interface{}) {
	sugar.Errorw(msg, args...)
}

// Debug logs a debug message with key/value pairs
func Debug(msg string, args ...interface{}) {
	sugar.Debugw(msg, args...)
}

// Warn logs a warning message with key/value pairs
func Warn(msg string, args ...interface{}) {
	sugar.Warnw(msg, args...)
}
