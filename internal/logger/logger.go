package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger. Debug mode uses the colored console encoder and
// enables debug-level output; otherwise logs are production JSON on stderr.
func New(debug bool) (*zap.Logger, error) {
	var cfg zap.Config

	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(debug bool) *zap.Logger {
	log, err := New(debug)
	if err != nil {
		panic(err)
	}
	return log
}
