// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	// Summary is the one-line "message (key=value, ...)" form.
	Summary string

	// Structured is the full record as JSON, kept for the debug view.
	Structured string

	Level slog.Level
}

// logRecordFadeDelay is how long log messages stay in the status bar
// before the key help line comes back.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that routes records into a running
// bubbletea program so they show in the status bar instead of being
// written over the alt screen.
//
// Create the handler before the program, then call SetProgram once the
// tea.Program exists. Records arriving before that are dropped. All
// handlers derived through WithAttrs and WithGroup share the program
// pointer, so one SetProgram call reaches every derived handler.
type TUILogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	groups  []string
}

// NewTUILogHandler creates a handler that delivers records at or above
// level.
func NewTUILogHandler(level slog.Level) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program that receives log messages. Safe to call
// from any goroutine.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	program.Send(handler.message(record))
	return nil
}

// message formats record for the status bar.
func (handler *TUILogHandler) message(record slog.Record) logRecordMsg {
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	prefix := handler.groupPrefix()
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	return logRecordMsg{
		Summary:    summary,
		Structured: handler.buildStructuredJSON(record),
		Level:      record.Level,
	}
}

func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := handler.groupPrefix()
	prefixed := make([]slog.Attr, len(attrs))
	for index, attr := range attrs {
		prefixed[index] = slog.Attr{Key: prefix + attr.Key, Value: attr.Value}
	}
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append(slices.Clone(handler.attrs), prefixed...),
		groups:  slices.Clone(handler.groups),
	}
}

func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   slices.Clone(handler.attrs),
		groups:  append(slices.Clone(handler.groups), name),
	}
}

// groupPrefix returns "a.b." for groups [a b], or "" with no groups.
func (handler *TUILogHandler) groupPrefix() string {
	if len(handler.groups) == 0 {
		return ""
	}
	return strings.Join(handler.groups, ".") + "."
}

// buildStructuredJSON produces the record with all attributes as one
// JSON object.
func (handler *TUILogHandler) buildStructuredJSON(record slog.Record) string {
	fields := map[string]any{
		"time":  record.Time.Format(time.RFC3339),
		"level": record.Level.String(),
		"msg":   record.Message,
	}
	for _, attr := range handler.attrs {
		fields[attr.Key] = attr.Value.String()
	}
	prefix := handler.groupPrefix()
	record.Attrs(func(attr slog.Attr) bool {
		fields[prefix+attr.Key] = attr.Value.String()
		return true
	})

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf(`{"msg":%q,"error":"marshal failed"}`, record.Message)
	}
	return string(data)
}
