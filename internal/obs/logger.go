package obs

import (
	"fmt"
	"magic-villa-api/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger собирает zap-логгер по секции log конфигурации.
// Pretty включает консольный вывод для локальной разработки, иначе JSON.
// Каждая запись помечается именем, окружением и версией приложения.
func NewLogger(logCfg config.LogConfig, app config.AppInfo) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logCfg.Level)
	if err != nil {
		return nil, fmt.Errorf("неизвестный уровень логирования %q: %w", logCfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if logCfg.Pretty {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build(zap.Fields(
		zap.String("app", app.Name),
		zap.String("env", app.Env),
		zap.String("version", app.Version),
	))
}
