// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/grid"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// numericCharLimit bounds numeric editors; whole numbers longer than
// this are not plausible field values.
const numericCharLimit = 12

// newEditor builds the inline editor widget for a cell entering
// editing. Kinds that do not request focus get a widget that focuses
// itself here; for the others the caller focuses the returned widget.
func newEditor(definition column.Column, activation grid.Activation) textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = definition.Title
	input.Width = max(columnWidth(definition)-1, 1)
	if !activation.RequestFocus {
		input.CharLimit = numericCharLimit
		input.Focus()
	}
	input.SetValue(activation.Value)
	input.CursorEnd()
	return input
}

// commitResultMsg carries a finished commit attempt back to the event
// loop, where the outcome is applied to its cell.
type commitResultMsg struct {
	outcome grid.CommitOutcome
}

// runCommit returns a command that runs the attempt's validation off
// the event loop. No timeout is imposed.
func runCommit(ctx context.Context, attempt *grid.CommitAttempt) tea.Cmd {
	return func() tea.Msg {
		return commitResultMsg{outcome: attempt.Run(ctx)}
	}
}

// statusFadeMsg clears the status line if nothing newer replaced it.
type statusFadeMsg struct {
	generation int
}

// validationFadeDelay is how long a validation message stays in the
// status bar.
const validationFadeDelay = 4 * time.Second

// statusLine is the transient message shown in place of the key help.
// The model shares one instance across its copies so the diagnostics
// collaborator can write to it from inside Cell.Resolve.
type statusLine struct {
	text       string
	level      slog.Level
	generation int
}

// set replaces the message and returns the command that fades it.
func (status *statusLine) set(text string, level slog.Level, delay time.Duration) tea.Cmd {
	status.text = text
	status.level = level
	status.generation++
	return status.fadeAfter(delay)
}

// fadeAfter returns the command that fades the current message.
func (status *statusLine) fadeAfter(delay time.Duration) tea.Cmd {
	generation := status.generation
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return statusFadeMsg{generation: generation}
	})
}

// fade clears the message when generation is still current.
func (status *statusLine) fade(generation int) {
	if generation == status.generation {
		status.text = ""
	}
}

// statusDiagnostics is the grid's diagnostics collaborator. Validation
// failures go to the status bar, and to the log at info level.
type statusDiagnostics struct {
	status *statusLine
	logger *slog.Logger
}

func (diagnostics statusDiagnostics) ValidationFailed(key record.Key, field record.Field, err error) {
	diagnostics.logger.Info("validation failed",
		"key", key,
		"field", field,
		"error", err,
	)
	text := err.Error()
	var validationError *grid.ValidationError
	if errors.As(err, &validationError) {
		if message := validationError.Message(field); message != "" {
			text = message
		}
	}
	diagnostics.status.text = text
	diagnostics.status.level = slog.LevelWarn
	diagnostics.status.generation++
}
