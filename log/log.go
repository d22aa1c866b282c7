package log

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config selects the zap preset and level used by New.
type Config struct {
	Level       Level
	Encoding    string // "json" or "console"
	Development bool
}

func DefaultConfig() Config {
	return Config{
		Level:    InfoLevel,
		Encoding: "console",
	}
}

func (l Level) zapLevel() (zapcore.Level, error) {
	if l == "" {
		return zapcore.InfoLevel, nil
	}
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(l)); err != nil {
		return zl, errors.Wrapf(err, "invalid log level %q", string(l))
	}
	return zl, nil
}

// New builds a zap logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	lvl, err := cfg.Level.zapLevel()
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	zc.DisableStacktrace = !cfg.Development

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// SetLogger replaces the process-wide logger. A nil logger resets it to a no-op.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Log writes msg at the given level on the process-wide logger.
func Log(level Level, msg string, fields ...zap.Field) {
	l := L()
	switch level {
	case DebugLevel:
		l.Debug(msg, fields...)
	case WarnLevel:
		l.Warn(msg, fields...)
	case ErrorLevel:
		l.Error(msg, fields...)
	default:
		l.Info(msg, fields...)
	}
}

func Debug(msg string, fields ...zap.Field) { Log(DebugLevel, msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log(InfoLevel, msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log(WarnLevel, msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log(ErrorLevel, msg, fields...) }
