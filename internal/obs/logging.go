// Package obs holds observability plumbing: logger construction and the
// process-wide metric collectors.
package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the service logger at the given level ("debug", "info",
// "warn", ...). Unknown levels fall back to info.
func NewLogger(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}

	return logger.Sugar()
}
