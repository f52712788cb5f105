package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewJSONHandler(os.Stdout, nil))
)

// Init routes all log lines to w as JSON at the given level
// ("debug", "info", "warn", "error"). An empty level means info.
func Init(w io.Writer, level string) {
	if w == nil {
		w = os.Stdout
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})

	mu.Lock()
	base = slog.New(h)
	mu.Unlock()

	Debug("logger initialized", map[string]any{"level": strings.ToLower(level)})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, fields map[string]any) {
	write(slog.LevelDebug, msg, fields)
}

func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
	os.Exit(1)
}

func write(lvl slog.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := base
	mu.RUnlock()

	if !l.Enabled(context.Background(), lvl) {
		return
	}

	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	l.LogAttrs(context.Background(), lvl, msg, slog.Attr{
		Key:   "fields",
		Value: slog.GroupValue(attrs...),
	})
}
