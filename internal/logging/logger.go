// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger for the service. Every entry carries the service
// name so crawl log lines stay attributable when aggregated.
func New(development bool) (*zap.Logger, error) {
	cfg := newConfig(development)
	logger, err := cfg.Build(zap.Fields(zap.String("service", "webparser")))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func newConfig(development bool) zap.Config {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	// Per-routine OK/FAIL pairs are the primary diagnostic output; sampling
	// would drop some of them under load.
	cfg.Sampling = nil
	return cfg
}
