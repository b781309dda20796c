// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/recordgrid/lib/record"
)

var (
	// ErrKeyNotFound marks a Delete or Save naming a key the current
	// sequence does not hold. Such calls are no-ops: the reference is
	// stale, not a user error.
	ErrKeyNotFound = errors.New("no record with that key")

	// ErrNoOwner marks a mutation on a controller with no onChange
	// callback. The computed sequence is discarded.
	ErrNoOwner = errors.New("no owner registered")

	// ErrNotEditable is returned when activating a cell whose column
	// is not editable, including the operation column.
	ErrNotEditable = errors.New("cell is not editable")

	// ErrNotEditing is returned for input or commit on a cell that is
	// in the viewing state.
	ErrNotEditing = errors.New("cell is not editing")

	// ErrCommitPending is returned when a commit is requested while a
	// previous commit on the same cell has not resolved.
	ErrCommitPending = errors.New("commit already in progress")
)

// ValidationError reports per-field validation failures for one row.
// It is recoverable: the cell stays in editing and the messages are
// shown next to the fields.
type ValidationError struct {
	Key    record.Key
	Fields map[record.Field]string
}

// Error lists the field messages in record field order, then any
// unknown fields alphabetically.
func (err *ValidationError) Error() string {
	var parts []string
	for _, field := range err.orderedFields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, err.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the failure message for a field, or "" if the field
// passed.
func (err *ValidationError) Message(field record.Field) string {
	return err.Fields[field]
}

func (err *ValidationError) orderedFields() []record.Field {
	var ordered []record.Field
	for _, field := range record.Fields {
		if _, failed := err.Fields[field]; failed {
			ordered = append(ordered, field)
		}
	}
	var extra []record.Field
	for field := range err.Fields {
		if !slices.Contains(record.Fields, field) {
			extra = append(extra, field)
		}
	}
	slices.Sort(extra)
	return append(ordered, extra...)
}
