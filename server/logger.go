package server

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/n9te9/go-graphql-devserver/config"
)

// buildLogger constructs the zap logger from the logging settings: "text"
// uses the development encoder, "json" the production one.
func buildLogger(settings config.LoggingSetting) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(settings.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", settings.Level, err)
	}

	var zapCfg zap.Config
	switch settings.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "text", "":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", settings.Format)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
