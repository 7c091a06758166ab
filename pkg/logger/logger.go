package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger это минимальный интерфейс логгера, который получают все сервисы через конструкторы.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// ZapLogger реализует Logger поверх zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New создаёт JSON-логгер в stdout. Уровень берётся из LOG_LEVEL (debug|info|warn|error).
func New() (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: log.Sugar()}, nil
}

// NewWithCore оборачивает произвольное ядро zap.
func NewWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

// NewNop возвращает логгер, который ничего не пишет. Используется в тестах.
func NewNop() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// With возвращает логгер с постоянными полями (например, component).
func (l *ZapLogger) With(keysAndValues ...any) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *ZapLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *ZapLogger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *ZapLogger) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *ZapLogger) Errorf(err error, format string, args ...any) {
	l.sugar.With(zap.Error(err)).Errorf(format, args...)
}

// Sync сбрасывает буферы; вызывается при остановке приложения.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
