// Package logger builds the logrus loggers used across the gallery and
// carries request ids through contexts.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const requestIDKey ctxKey = "requestId"

// New returns a logger writing to stderr. level is a logrus level name
// (default "info"); format is "json" or "text" (default).
func New(level, format string) *logrus.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return l
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// ContextWithID stores a request id in ctx.
func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// For returns an entry of base tagged with the request id in ctx, if any.
func For(ctx context.Context, base *logrus.Logger) *logrus.Entry {
	entry := logrus.NewEntry(base)
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

// Track logs msg with its duration when the returned func is called.
// Durations above slow are logged as warnings.
func Track(entry *logrus.Entry, msg string, slow time.Duration) func() {
	start := time.Now()
	return func() {
		dur := time.Since(start)
		e := entry.WithField("duration", dur.String())
		if slow > 0 && dur > slow {
			e.Warnf("%s completed (slow)", msg)
			return
		}
		e.Infof("%s completed", msg)
	}
}
