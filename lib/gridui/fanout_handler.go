// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler sends each record to every handler enabled for its
// level. It pairs a [TUILogHandler] with a file handler so the status
// bar and a log file see the same records.
//
// A failing handler does not starve the others; Handle reports every
// failure joined.
type FanoutHandler []slog.Handler

func (handlers FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		// Each handler gets its own copy; handlers may add attributes.
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (handlers FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handlers.derive(func(handler slog.Handler) slog.Handler {
		return handler.WithAttrs(attrs)
	})
}

func (handlers FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handlers
	}
	return handlers.derive(func(handler slog.Handler) slog.Handler {
		return handler.WithGroup(name)
	})
}

func (handlers FanoutHandler) derive(apply func(slog.Handler) slog.Handler) FanoutHandler {
	derived := make(FanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = apply(handler)
	}
	return derived
}
