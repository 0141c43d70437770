package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plasma/internal/domain"
)

// LoggingConfig configures logging wiring.
type LoggingConfig struct {
	Logger *zap.Logger
}

// Logging bundles the logger and its adjustable level.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// NewLogging derives the application logger. A project with enableLog off
// only logs errors.
func NewLogging(cfg LoggingConfig, project domain.ProjectConfig) Logging {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	level := zap.NewAtomicLevelAt(zapcore.LevelOf(logger.Core()))
	if !project.EnableLog && level.Level() < zapcore.ErrorLevel {
		level.SetLevel(zapcore.ErrorLevel)
	}
	logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		gated, err := zapcore.NewIncreaseLevelCore(core, level)
		if err != nil {
			return core
		}
		return gated
	})).Named("app")

	return Logging{
		Logger: logger,
		Level:  level,
	}
}

// NewLogger returns the logger from a Logging bundle.
func NewLogger(logging Logging) *zap.Logger {
	return logging.Logger
}
