// Package logging builds the zap logger used for debug tracing.
//
// The pipeline is silent by default; --debug switches on a development
// logger writing to stderr so review output on stdout stays machine-parsable.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for the current run. When debug is false the returned
// logger is a no-op, so callers can log unconditionally.
func New(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
