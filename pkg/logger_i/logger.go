package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger resolves the process default at call time, so package level loggers
// created before Init still write through the configured handler.
type Logger struct {
	attrs []any
}

func (l *Logger) inner() *slog.Logger {
	return slog.Default().With(l.attrs...)
}

// Init installs the process default logger. Console output is always on,
// the rotating file under config.LogDirName is skipped when LOG_TO_FILE=0.
func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(console io.Writer) {
	options := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL"), slog.LevelDebug),
	}

	out := console
	if os.Getenv("LOG_TO_FILE") != "0" {
		if fileWriter := newRotatingFile(); fileWriter != nil {
			out = io.MultiWriter(console, fileWriter)
		}
	}

	var handler slog.Handler
	if config.IS_PROD {
		options.Level = parseLevel(os.Getenv("LOG_LEVEL"), config.LOG_LEVEL_PROD)
		handler = slog.NewJSONHandler(out, options)

	} else {
		handler = slog.NewTextHandler(out, options)

	}
	newLogger := slog.New(handler)
	slog.SetDefault(newLogger)
}

func newRotatingFile() io.Writer {
	if err := os.MkdirAll(config.LogDirName, 0o755); err != nil {
		return nil
	}
	name := time.Now().Format("2006-01-02 15-04-05") + ".log"
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDirName, name),
		MaxSize:    config.MaxLogSizeMB,
		MaxBackups: config.LogBackupCount,
	}
}

func parseLevel(raw string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return fallback
	}
}

func NewLogger(section string) *Logger {
	return &Logger{
		attrs: []any{"component", section},
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.logWithSource(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithSource(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithSource(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logWithSource(slog.LevelDebug, msg, args...)
}

func (l *Logger) logWithSource(level slog.Level, msg string, args ...any) {
	inner := l.inner()
	if !inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// Skip 3 levels: runtime.Callers, logWithSource, and the level wrapper
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	_ = inner.Handler().Handle(context.Background(), record)
}

func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	return &Logger{
		attrs: append(attrs, args...),
	}
}
