// Package log provides structured session logging. The TUI owns the
// terminal, so log output goes to a file (or nowhere) rather than stderr.
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger carrying session context.
type Logger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// New creates a JSON file logger at path with the given minimum level
// ("debug", "info", "warn", "error"). Every entry carries the session ID.
// An empty path yields a no-op logger.
func New(path, level, sessionID string) (*Logger, error) {
	if path == "" {
		return Nop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log: invalid level %q: %w", level, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("log: creating %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log: opening %s: %w", path, err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(f),
		lvl,
	)

	logger := zap.New(core).With(zap.String("session_id", sessionID))
	return &Logger{sugar: logger.Sugar(), file: f}, nil
}

// With returns a Logger with additional context fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sugar: l.sugar.With(args...), file: l.file}
}

// Debugf logs a debug message with printf-style formatting.
func (l *Logger) Debugf(template string, args ...any) {
	l.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(template string, args ...any) {
	l.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(template string, args ...any) {
	l.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(template string, args ...any) {
	l.sugar.Errorf(template, args...)
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
