package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/srdcrawl"
)

// Ensure LoggingEntryWriter implements srdcrawl.EntryWriter.
var _ srdcrawl.EntryWriter = (*LoggingEntryWriter)(nil)

// LoggingEntryWriter wraps an EntryWriter with logging.
type LoggingEntryWriter struct {
	next   srdcrawl.EntryWriter
	name   string
	logger *slog.Logger
}

// NewLoggingEntryWriter creates a new LoggingEntryWriter.
// The name identifies the destination in log lines.
func NewLoggingEntryWriter(next srdcrawl.EntryWriter, name string, logger *slog.Logger) *LoggingEntryWriter {
	return &LoggingEntryWriter{next: next, name: name, logger: logger}
}

// WriteEntries delegates to the wrapped writer and logs the operation.
func (w *LoggingEntryWriter) WriteEntries(ctx context.Context, entries []string) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		w.logger.Log(ctx, level, "write entries",
			"dest", w.name,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteEntries(ctx, entries)
}
