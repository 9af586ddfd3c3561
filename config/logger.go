package config

import (
	"strings"

	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// InitLogger builds the process-wide sugared logger. APP_MODE=prod
// switches to the JSON production config.
func InitLogger(mode string) error {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = logger.Sugar()
	return nil
}
