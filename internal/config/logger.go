package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger builds the process logger: JSON in production, console otherwise. An unknown
// LOG_LEVEL falls back to info.
func (a App) Logger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if a.Production() {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(a.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("env", a.Env)), nil
}
