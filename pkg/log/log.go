package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds a sugared zap logger tagged with the given service
// name and minimum level. Output is JSON to stderr, matching the
// defaults expected by the surrounding container orchestration.
func NewZapLogger(service string, level zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.InitialFields = map[string]interface{}{
		"service": service,
	}

	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than crash the process over
		// a logging misconfiguration.
		return zap.NewNop().Sugar()
	}

	return logger.Sugar()
}
