// Package ctxlog carries the structured logger through a context.Context.
//
// The app installs its logger once per run; engine components, the loader
// and replay workers pull it back out and tag their records with a
// component attribute.
package ctxlog

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() when
// there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// Component derives a logger tagged with component=name and returns it
// together with a context that carries it, so nested calls log under the
// same component.
func Component(ctx context.Context, name string) (context.Context, *slog.Logger) {
	logger := FromContext(ctx).With("component", name)
	return WithLogger(ctx, logger), logger
}
