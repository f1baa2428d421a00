package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

// Config describe cómo construir el logger del proceso.
type Config struct {
	Level string
	Env   string
}

// New construye un logger zap: JSON en producción, consola en desarrollo.
func New(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Encoding = "json"            // Logs estructurados en JSON
		zapCfg.EncoderConfig.TimeKey = "ts" // timestamp
		zapCfg.EncoderConfig.MessageKey = "msg"
		zapCfg.EncoderConfig.LevelKey = "level"
		zapCfg.EncoderConfig.CallerKey = "caller"
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// Init inicializa el logger global
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	log = l
	return nil
}

// Sugar retorna un logger más “friendly” para usar con printf-like
func Sugar() *zap.SugaredLogger {
	return log.Sugar()
}

// Logger retorna el logger estructurado
func Logger() *zap.Logger {
	return log
}
