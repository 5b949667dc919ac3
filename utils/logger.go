package utils

import (
	"log"
	"sync"

	"innkeeper/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global logger instance
var (
	Logger     *zap.Logger
	loggerOnce sync.Once
)

// InitializeLogger sets up the logging configuration
func InitializeLogger() {
	var cfg zap.Config

	if config.IsProduction() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if config.AppConfig.LogLevel != "" {
		if parsed, err := zapcore.ParseLevel(config.AppConfig.LogLevel); err == nil {
			level = zap.NewAtomicLevelAt(parsed)
		}
	} else if !config.IsProduction() {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.Level = level

	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(Logger)
}

// GetLogger retrieves the global logger
func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		if Logger == nil {
			InitializeLogger()
		}
	})
	return Logger
}
