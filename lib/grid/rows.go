// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// Row is the edit state of one displayed record: its session and one
// cell per data column. The session is created with the row and
// handed to each cell explicitly.
type Row struct {
	Key     record.Key
	Session *Session

	cells map[record.Field]*Cell
}

// Cell returns the row's cell for field. The operation column has no
// cell; cells of non-editable data columns refuse activation.
func (row *Row) Cell(field record.Field) (*Cell, bool) {
	cell, ok := row.cells[field]
	return cell, ok
}

// Rows tracks the mounted rows of a grid. [Rows.Sync] is called with
// each newly supplied sequence: rows for new keys are mounted, rows for
// vanished keys are unmounted and their sessions reset.
type Rows struct {
	schema    column.Schema
	validator Validator
	binding   *binding
	rows      map[record.Key]*Row
}

// NewRows creates an empty row set. Cells commit through controller,
// sessions validate through validator, and validation failures go to
// diagnostics (which may be nil).
func NewRows(schema column.Schema, controller *Controller, validator Validator, diagnostics Diagnostics) *Rows {
	return &Rows{
		schema:    schema,
		validator: validator,
		binding: &binding{
			controller:  controller,
			editable:    schema.EditableFields(),
			diagnostics: diagnostics,
		},
		rows: make(map[record.Key]*Row),
	}
}

// Sync mounts and unmounts rows to match sequence and returns the keys
// of both sets. Rows that persist across calls keep their sessions and
// cell states.
func (rows *Rows) Sync(sequence record.Sequence) (mounted, unmounted []record.Key) {
	present := make(map[record.Key]struct{}, len(sequence))
	for _, item := range sequence {
		present[item.Key] = struct{}{}
		if _, exists := rows.rows[item.Key]; exists {
			continue
		}
		rows.rows[item.Key] = rows.mount(item.Key)
		mounted = append(mounted, item.Key)
	}
	for key, row := range rows.rows {
		if _, ok := present[key]; ok {
			continue
		}
		for _, cell := range row.cells {
			cell.unmount()
		}
		row.Session.Reset()
		delete(rows.rows, key)
		unmounted = append(unmounted, key)
	}
	return mounted, unmounted
}

// Row returns the mounted row for key.
func (rows *Rows) Row(key record.Key) (*Row, bool) {
	row, ok := rows.rows[key]
	return row, ok
}

// Cell returns the cell at (key, field).
func (rows *Rows) Cell(key record.Key, field record.Field) (*Cell, bool) {
	row, ok := rows.rows[key]
	if !ok {
		return nil, false
	}
	return row.Cell(field)
}

// Len returns the number of mounted rows.
func (rows *Rows) Len() int {
	return len(rows.rows)
}

// Editing returns every cell currently in the editing state, in no
// particular order.
func (rows *Rows) Editing() []*Cell {
	var editing []*Cell
	for _, row := range rows.rows {
		for _, cell := range row.cells {
			if cell.state == Editing {
				editing = append(editing, cell)
			}
		}
	}
	return editing
}

func (rows *Rows) mount(key record.Key) *Row {
	session := NewSession(key, rows.validator)
	row := &Row{
		Key:     key,
		Session: session,
		cells:   make(map[record.Field]*Cell),
	}
	for _, definition := range rows.schema.Columns {
		if definition.IsOperation() {
			continue
		}
		row.cells[definition.Field] = &Cell{
			key:     key,
			column:  definition,
			session: session,
			binding: rows.binding,
		}
	}
	return row
}
