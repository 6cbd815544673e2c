// Package log builds the application's zap logger from configuration.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-container/framework/config"
)

// New returns the logger registered as the "log" service. Production uses the
// JSON encoder; every other environment the development console encoder.
// cfg.Format overrides the encoder when set.
func New(cfg config.LogConfig, env string) (*zap.Logger, error) {
	var zc zap.Config
	if env == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	switch cfg.Format {
	case "":
	case "json", "console":
		zc.Encoding = cfg.Format
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	return zc.Build()
}
