package zaplogger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

// Logger adapts *zap.Logger to observability.Logger.
type Logger struct{ l *zap.Logger }

// New builds a production JSON logger writing to stdout, and additionally to
// logFile when it is not empty. fixed fields are attached to every entry.
func New(logFile string, fixed ...observability.Field) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}

	if logFile != "" {
		if err := ensureLogFile(logFile); err != nil {
			return nil, fmt.Errorf("prepare log file: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, logFile)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	cfg.InitialFields = make(map[string]any, len(fixed))
	for _, f := range fixed {
		cfg.InitialFields[f.Key] = f.Value
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{l: l}, nil
}

// MustNew is like New but panics if the logger cannot be built.
func MustNew(logFile string, fixed ...observability.Field) *Logger {
	l, err := New(logFile, fixed...)
	if err != nil {
		panic(err)
	}
	return l
}

// Wrap adapts an existing zap logger.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{l: l}
}

func (z *Logger) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return z
	}
	return &Logger{l: z.l.With(toZapFields(fields)...)}
}

func (z *Logger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZapFields(fields)...)
}
func (z *Logger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZapFields(fields)...)
}
func (z *Logger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZapFields(fields)...)
}
func (z *Logger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZapFields(fields)...)
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func (z *Logger) Sync() error {
	return z.l.Sync()
}

// Zap exposes the underlying logger, e.g. for zap.ReplaceGlobals.
func (z *Logger) Zap() *zap.Logger { return z.l }

func toZapFields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func ensureLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
