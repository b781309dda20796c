// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// State is the view state of a cell.
type State int

const (
	// Viewing shows the stored value. Initial state, and the state
	// every cell returns to after a successful commit.
	Viewing State = iota
	// Editing shows an editor holding the session's pending value.
	Editing
)

func (state State) String() string {
	switch state {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Trigger says what started a commit attempt. Submit and blur run the
// same attempt; there is no cancel path.
type Trigger int

const (
	// TriggerSubmit is an explicit submit, such as Enter.
	TriggerSubmit Trigger = iota
	// TriggerBlur is focus leaving the editor.
	TriggerBlur
)

func (trigger Trigger) String() string {
	if trigger == TriggerBlur {
		return "blur"
	}
	return "submit"
}

// Diagnostics receives validation failures from cells.
type Diagnostics interface {
	ValidationFailed(key record.Key, field record.Field, err error)
}

// LogDiagnostics reports validation failures as warnings.
type LogDiagnostics struct {
	Logger *slog.Logger
}

func (diagnostics LogDiagnostics) ValidationFailed(key record.Key, field record.Field, err error) {
	if diagnostics.Logger == nil {
		return
	}
	diagnostics.Logger.Warn("validation failed",
		"key", key,
		"field", field,
		"error", err,
	)
}

// binding is what a cell needs from the grid to commit: the controller
// to save through, the fields a commit may replace, and where to send
// validation failures. Rows builds one per grid and shares it.
type binding struct {
	controller  *Controller
	editable    []record.Field
	diagnostics Diagnostics
}

// Cell is the edit state machine of one (row, column) pair.
type Cell struct {
	key     record.Key
	column  column.Column
	session *Session
	binding *binding

	state   State
	pending bool
	err     error
}

// Activation describes what the editor should show after a cell
// enters editing.
type Activation struct {
	// Value is the editor's initial content.
	Value string
	// RequestFocus is true when the caller should focus the editor
	// explicitly. Kinds whose widget focuses itself leave it false.
	RequestFocus bool
}

// Key returns the key of the cell's row.
func (cell *Cell) Key() record.Key { return cell.key }

// Column returns the cell's column definition.
func (cell *Cell) Column() column.Column { return cell.column }

// Field returns the record field the cell edits.
func (cell *Cell) Field() record.Field { return cell.column.Field }

// State returns the current view state.
func (cell *Cell) State() State { return cell.state }

// Pending reports whether a commit attempt has started and not yet
// resolved.
func (cell *Cell) Pending() bool { return cell.pending }

// Err returns the error from the last failed commit attempt, cleared
// when a commit succeeds or the cell is activated from viewing.
func (cell *Cell) Err() error { return cell.err }

// Value returns the pending editor value while editing.
func (cell *Cell) Value() string {
	value, _ := cell.session.Value(cell.column.Field)
	return value
}

// Activate moves the cell from viewing to editing, seeding the
// session with the field's value from owning. Activating a cell that
// is already editing returns its pending value without reseeding, so
// input survives moving away and back.
func (cell *Cell) Activate(owning record.Record) (Activation, error) {
	if !cell.column.Editable || cell.column.IsOperation() {
		return Activation{}, ErrNotEditable
	}
	requestFocus := cell.column.Kind.RequestsFocus()

	if cell.state == Editing {
		// A sibling's successful commit resets the shared session;
		// reseed from the record it saved.
		if value, ok := cell.session.Value(cell.column.Field); ok {
			return Activation{Value: value, RequestFocus: requestFocus}, nil
		}
	}

	stored, _ := owning.Get(cell.column.Field)
	seed := cell.column.Kind.Seed(stored)
	cell.session.Seed(Values{cell.column.Field: seed})
	cell.state = Editing
	cell.err = nil

	return Activation{Value: seed, RequestFocus: requestFocus}, nil
}

// Input records editor content into the session.
func (cell *Cell) Input(value string) error {
	if cell.state != Editing {
		return ErrNotEditing
	}
	cell.session.Set(cell.column.Field, value)
	return nil
}

// BeginCommit starts a commit attempt. It fails with [ErrNotEditing]
// in the viewing state and with [ErrCommitPending] while a previous
// attempt on this cell has not been resolved.
func (cell *Cell) BeginCommit(trigger Trigger) (*CommitAttempt, error) {
	if cell.state != Editing {
		return nil, ErrNotEditing
	}
	if cell.pending {
		return nil, ErrCommitPending
	}
	cell.pending = true
	return &CommitAttempt{
		Key:     cell.key,
		Field:   cell.column.Field,
		Trigger: trigger,
		session: cell.session,
	}, nil
}

// CommitAttempt is an in-flight commit. Run is safe to call from any
// goroutine.
type CommitAttempt struct {
	Key     record.Key
	Field   record.Field
	Trigger Trigger

	session *Session
}

// Run validates the row's session. It does not touch the cell; the
// outcome must be handed to [Cell.Resolve] on the event loop.
func (attempt *CommitAttempt) Run(ctx context.Context) CommitOutcome {
	values, err := attempt.session.Validate(ctx)
	return CommitOutcome{
		Key:     attempt.Key,
		Field:   attempt.Field,
		Trigger: attempt.Trigger,
		Values:  values,
		Err:     err,
	}
}

// CommitOutcome is the result of a commit attempt's validation.
type CommitOutcome struct {
	Key     record.Key
	Field   record.Field
	Trigger Trigger
	Values  Values
	Err     error
}

// Resolve applies an outcome. On failure the cell stays editing, the
// error goes to diagnostics and nothing is saved. On success the cell
// returns to viewing, the session is reset, and exactly one Save is
// issued with the validated values merged into the record current
// holds for this key. Only editable fields are replaced.
//
// Resolve always applies the outcome, even if input arrived while the
// attempt was running. It reports whether the commit succeeded.
func (cell *Cell) Resolve(outcome CommitOutcome, current record.Sequence) bool {
	cell.pending = false

	if outcome.Err != nil {
		cell.err = outcome.Err
		if cell.binding.diagnostics != nil {
			cell.binding.diagnostics.ValidationFailed(cell.key, cell.column.Field, outcome.Err)
		}
		return false
	}

	cell.state = Viewing
	cell.err = nil
	cell.session.Reset()

	// A row deleted while validation ran yields a blank base; Save
	// then finds no record and leaves the sequence alone.
	merged, found := current.Find(cell.key)
	if !found {
		merged = record.Blank(cell.key)
	}
	for _, field := range cell.binding.editable {
		if value, ok := outcome.Values[field]; ok {
			merged = merged.With(field, value)
		}
	}
	cell.binding.controller.Save(current, merged)
	return true
}

// Commit runs a whole commit attempt synchronously: begin, validate,
// resolve. Non-interactive callers and tests use it; the terminal UI
// splits the steps around its event loop.
func (cell *Cell) Commit(ctx context.Context, trigger Trigger, current record.Sequence) error {
	attempt, err := cell.BeginCommit(trigger)
	if err != nil {
		return err
	}
	outcome := attempt.Run(ctx)
	cell.Resolve(outcome, current)
	return outcome.Err
}

// unmount returns the cell to viewing when its row leaves the grid.
func (cell *Cell) unmount() {
	cell.state = Viewing
	cell.err = nil
}
