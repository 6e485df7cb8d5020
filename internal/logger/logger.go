package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// New создает zap логгер: JSON в production, читаемый вывод в остальных окружениях
func New(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.ToLower(environment) == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewGormLogger направляет логи GORM в zap. Ошибка "record not found"
// не логируется: для репозиториев это штатный исход.
func NewGormLogger(logger *zap.Logger, environment string) gormlogger.Interface {
	level := gormlogger.Warn
	if strings.ToLower(environment) == "development" {
		level = gormlogger.Info
	}

	return gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
