// Package logging configures log/slog for checksec: a console handler on
// stderr and an optional JSON log file, fanned out through MultiHandler.
package logging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
)

// MultiHandler is a slog.Handler that dispatches log records to multiple handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a new MultiHandler that wraps the given handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether at least one underlying handler is enabled.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(h.handlers, func(handler slog.Handler) bool {
		return handler.Enabled(ctx, level)
	})
}

// Handle passes a clone of r to every enabled handler. Errors from all
// handlers are joined.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs returns a new MultiHandler whose handlers have the given attributes.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MultiHandler{handlers: lo.Map(h.handlers, func(handler slog.Handler, _ int) slog.Handler {
		return handler.WithAttrs(attrs)
	})}
}

// WithGroup returns a new MultiHandler whose handlers have the given group name.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return &MultiHandler{handlers: lo.Map(h.handlers, func(handler slog.Handler, _ int) slog.Handler {
		return handler.WithGroup(name)
	})}
}
