package logger

import (
	"log/slog"
	"time"
)

// Query logs one database round trip. Routine traffic goes out at debug so
// only failures surface at the default level.
func Query(operation, query string, took time.Duration, err error, attrs ...any) {
	base := []any{
		slog.String("type", "db"),
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Duration("took", took),
	}
	base = append(base, attrs...)

	if err != nil {
		slog.Error("Query failed", append(base, slog.Any("error", err))...)
		return
	}
	slog.Debug("Query executed", base...)
}

// System logs a process lifecycle event.
func System(msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("type", "sys")}, attrs...)...)
}

// SystemError logs a failed lifecycle step.
func SystemError(msg string, err error, attrs ...any) {
	slog.Error(msg, append([]any{
		slog.String("type", "sys"),
		slog.Any("error", err),
	}, attrs...)...)
}
